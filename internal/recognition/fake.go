package recognition

import (
	"context"
	"fmt"
	"sync"
)

// FakePlatform is an in-memory Platform for tests.
type FakePlatform struct {
	mu          sync.Mutex
	unavailable bool
	startErr    error
	sources     []*FakeSource
}

func NewFakePlatform() *FakePlatform {
	return &FakePlatform{}
}

// SetAvailable toggles the capability flag.
func (p *FakePlatform) SetAvailable(available bool) {
	p.mu.Lock()
	p.unavailable = !available
	p.mu.Unlock()
}

// FailNextStart makes the next created source fail to start.
func (p *FakePlatform) FailNextStart(err error) {
	p.mu.Lock()
	p.startErr = err
	p.mu.Unlock()
}

func (p *FakePlatform) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.unavailable
}

func (p *FakePlatform) NewSource(opts Options) (Source, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	s := &FakeSource{
		Opts:      opts,
		startErr:  p.startErr,
		resultsCh: make(chan ResultSet, 16),
		done:      make(chan struct{}),
	}
	p.startErr = nil
	p.sources = append(p.sources, s)
	return s, nil
}

// Sources returns every source created so far.
func (p *FakePlatform) Sources() []*FakeSource {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*FakeSource(nil), p.sources...)
}

// Last returns the most recently created source, or nil.
func (p *FakePlatform) Last() *FakeSource {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.sources) == 0 {
		return nil
	}
	return p.sources[len(p.sources)-1]
}

// ActiveCount counts sources that were started and have not terminated.
func (p *FakePlatform) ActiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.sources {
		if s.Active() {
			n++
		}
	}
	return n
}

// FakeSource is driven by the test through Push and Fail.
type FakeSource struct {
	Opts Options

	mu       sync.Mutex
	startErr error
	started  bool
	ended    bool
	err      error

	sendMu    sync.Mutex
	resultsCh chan ResultSet
	done      chan struct{}
	endOnce   sync.Once
}

func (s *FakeSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("fake: source already started")
	}
	if s.startErr != nil {
		return s.startErr
	}
	s.started = true

	go func() {
		select {
		case <-ctx.Done():
			s.end(nil)
		case <-s.done:
		}
	}()
	return nil
}

func (s *FakeSource) Results() <-chan ResultSet { return s.resultsCh }

func (s *FakeSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *FakeSource) Stop() error {
	s.end(nil)
	return nil
}

// Push delivers a result set. It returns false once the source has ended.
func (s *FakeSource) Push(rs ResultSet) bool {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.resultsCh <- rs.clone():
		return true
	case <-s.done:
		return false
	}
}

// PushText delivers a result set made of one interim result per text.
func (s *FakeSource) PushText(texts ...string) bool {
	rs := make(ResultSet, len(texts))
	for i, t := range texts {
		rs[i] = Result{Alternatives: []Alternative{{Transcript: t}}}
	}
	return s.Push(rs)
}

// Fail terminates the source with err, as a revoked microphone would.
func (s *FakeSource) Fail(err error) {
	s.end(err)
}

// Active reports whether the source was started and has not ended.
func (s *FakeSource) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started && !s.ended
}

func (s *FakeSource) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

func (s *FakeSource) end(err error) {
	s.endOnce.Do(func() {
		s.mu.Lock()
		s.ended = true
		s.err = err
		s.mu.Unlock()

		close(s.done)
		s.sendMu.Lock()
		close(s.resultsCh)
		s.sendMu.Unlock()
	})
}
