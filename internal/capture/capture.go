package capture

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/leonardotrapani/hyprnote/internal/recognition"
)

// ErrFeatureUnavailable is returned by Start when the host has no speech
// recognition capability.
var ErrFeatureUnavailable = errors.New("speech recognition is not available")

// Controller owns at most one recognition source and republishes its results
// as a single transcript string.
//
// Callbacks for one session run on one goroutine, in arrival order, and never
// after Stop (or the Start that replaced the session) returns. Callbacks must
// not call Start or Stop.
type Controller struct {
	platform recognition.Platform

	mu       sync.Mutex // guards everything below
	source   recognition.Source
	cancel   context.CancelFunc
	done     chan struct{} // closed when the current session's pump exits
	session  uint64
	onUpdate func(string)
	onEnded  func(error)
}

func New(platform recognition.Platform) *Controller {
	return &Controller{platform: platform}
}

// OnTranscriptUpdate registers the callback receiving the full transcript
// after every result event.
func (c *Controller) OnTranscriptUpdate(fn func(text string)) {
	c.mu.Lock()
	c.onUpdate = fn
	c.mu.Unlock()
}

// OnEnded registers the callback invoked when a session terminates without
// Stop being called. err is nil when the source finished cleanly.
func (c *Controller) OnEnded(fn func(err error)) {
	c.mu.Lock()
	c.onEnded = fn
	c.mu.Unlock()
}

// Start begins a capture session in the given language, replacing any active one.
func (c *Controller) Start(ctx context.Context, languageTag string) error {
	if !c.platform.Available() {
		return ErrFeatureUnavailable
	}

	c.Stop()

	src, err := c.platform.NewSource(recognition.Options{
		Language:        languageTag,
		Continuous:      true,
		MaxAlternatives: 1,
		InterimResults:  true,
	})
	if err != nil {
		return fmt.Errorf("create recognition source: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := src.Start(runCtx); err != nil {
		cancel()
		return fmt.Errorf("start recognition source: %w", err)
	}

	c.mu.Lock()
	if c.source != nil {
		// a concurrent Start won the race; keep a single owner
		c.mu.Unlock()
		cancel()
		src.Stop()
		return fmt.Errorf("capture session already active")
	}
	c.session++
	id := c.session
	done := make(chan struct{})
	c.source = src
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	go c.pump(runCtx, id, src, done)

	log.Printf("Capture: session %d started (language=%s)", id, languageTag)
	return nil
}

// Stop terminates the active session. It is a no-op when none is active.
func (c *Controller) Stop() {
	c.mu.Lock()
	src, cancel, done, id := c.source, c.cancel, c.done, c.session
	c.source, c.cancel, c.done = nil, nil, nil
	c.mu.Unlock()

	if src == nil {
		return
	}

	cancel()
	if err := src.Stop(); err != nil {
		log.Printf("Capture: error stopping session %d: %v", id, err)
	}
	<-done
	log.Printf("Capture: session %d stopped", id)
}

// Active reports whether a session currently owns the recognition source.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source != nil
}

func (c *Controller) pump(ctx context.Context, id uint64, src recognition.Source, done chan struct{}) {
	defer close(done)

	results := src.Results()
	for {
		select {
		case <-ctx.Done():
			c.sessionEnded(ctx, id, src)
			return

		case rs, ok := <-results:
			if !ok {
				c.sessionEnded(ctx, id, src)
				return
			}
			if ctx.Err() != nil {
				c.sessionEnded(ctx, id, src)
				return
			}

			c.mu.Lock()
			fn := c.onUpdate
			c.mu.Unlock()
			if fn != nil {
				fn(rs.Transcript())
			}
		}
	}
}

// sessionEnded releases a session that terminated without Stop: the source
// finished or failed, or the caller's context was cancelled. Sessions already
// released by Stop or a replacing Start are left alone.
func (c *Controller) sessionEnded(ctx context.Context, id uint64, src recognition.Source) {
	c.mu.Lock()
	if c.session != id || c.source != src {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	c.source, c.cancel, c.done = nil, nil, nil
	fn := c.onEnded
	c.mu.Unlock()

	// read before cancel so a source failure wins over our own cancellation
	ctxErr := ctx.Err()
	cancel()
	src.Stop()

	err := src.Err()
	if err == nil {
		err = ctxErr
	}
	if err != nil {
		log.Printf("Capture: session %d failed: %v", id, err)
	} else {
		log.Printf("Capture: session %d ended by the recognizer", id)
	}
	if fn != nil {
		fn(err)
	}
}
