package recognition

import (
	"context"
	"sync"
	"time"

	"github.com/leonardotrapani/hyprnote/internal/recording"
)

// stubCapturer hands out frames pushed by the test instead of recording.
type stubCapturer struct {
	frames  chan recording.AudioFrame
	errs    chan error
	once    sync.Once
	stopped chan struct{}
}

func newStubCapturer() *stubCapturer {
	return &stubCapturer{
		frames:  make(chan recording.AudioFrame, 16),
		errs:    make(chan error, 1),
		stopped: make(chan struct{}),
	}
}

func (c *stubCapturer) Start(ctx context.Context) (<-chan recording.AudioFrame, <-chan error, error) {
	return c.frames, c.errs, nil
}

func (c *stubCapturer) Stop() error {
	c.once.Do(func() { close(c.stopped) })
	return nil
}

func (c *stubCapturer) push(data []byte) {
	c.frames <- recording.AudioFrame{Data: data, Timestamp: time.Now()}
}

func (c *stubCapturer) isStopped() bool {
	select {
	case <-c.stopped:
		return true
	default:
		return false
	}
}
