package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leonardotrapani/hyprnote/internal/recognition"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestController(t *testing.T) (*Controller, *recognition.FakePlatform, chan string) {
	t.Helper()
	platform := recognition.NewFakePlatform()
	c := New(platform)
	updates := make(chan string, 32)
	c.OnTranscriptUpdate(func(text string) { updates <- text })
	t.Cleanup(c.Stop)
	return c, platform, updates
}

func nextUpdate(t *testing.T, updates <-chan string) string {
	t.Helper()
	select {
	case u := <-updates:
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for transcript update")
		return ""
	}
}

func TestStopWithoutSessionIsNoop(t *testing.T) {
	c, platform, _ := newTestController(t)

	c.Stop()
	c.Stop()

	if c.Active() {
		t.Error("controller should not be active")
	}
	if n := len(platform.Sources()); n != 0 {
		t.Errorf("Stop created %d sources", n)
	}
}

func TestStartUnavailable(t *testing.T) {
	c, platform, _ := newTestController(t)
	platform.SetAvailable(false)

	err := c.Start(context.Background(), "pt-BR")
	if !errors.Is(err, ErrFeatureUnavailable) {
		t.Fatalf("Start() error = %v, want ErrFeatureUnavailable", err)
	}
	if c.Active() {
		t.Error("controller should not be active")
	}
	if n := len(platform.Sources()); n != 0 {
		t.Errorf("no source should be created, got %d", n)
	}
}

func TestStartConfiguresSource(t *testing.T) {
	c, platform, _ := newTestController(t)

	if err := c.Start(context.Background(), "pt-BR"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	opts := platform.Last().Opts
	want := recognition.Options{Language: "pt-BR", Continuous: true, MaxAlternatives: 1, InterimResults: true}
	if opts != want {
		t.Errorf("options = %+v, want %+v", opts, want)
	}
	if !c.Active() {
		t.Error("controller should be active")
	}
}

func TestTranscriptReplacesInsteadOfAppending(t *testing.T) {
	c, platform, updates := newTestController(t)

	if err := c.Start(context.Background(), "pt-BR"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	src := platform.Last()

	for _, text := range []string{"ol", "olá", "olá mundo"} {
		src.PushText(text)
		if got := nextUpdate(t, updates); got != text {
			t.Errorf("update = %q, want %q", got, text)
		}
	}
}

func TestTranscriptConcatenatesCurrentSegments(t *testing.T) {
	c, platform, updates := newTestController(t)

	if err := c.Start(context.Background(), "pt-BR"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	platform.Last().Push(recognition.ResultSet{
		{Alternatives: []recognition.Alternative{{Transcript: "olá"}}, IsFinal: true},
		{Alternatives: []recognition.Alternative{{Transcript: " mundo"}}},
	})

	if got := nextUpdate(t, updates); got != "olá mundo" {
		t.Errorf("update = %q, want %q", got, "olá mundo")
	}
}

func TestStartReplacesActiveSession(t *testing.T) {
	c, platform, _ := newTestController(t)

	if err := c.Start(context.Background(), "pt-BR"); err != nil {
		t.Fatal(err)
	}
	first := platform.Last()

	if err := c.Start(context.Background(), "pt-BR"); err != nil {
		t.Fatal(err)
	}
	second := platform.Last()

	if first == second {
		t.Fatal("second Start should create a new source")
	}
	if !first.Stopped() {
		t.Error("first source should have been stopped")
	}
	if n := platform.ActiveCount(); n != 1 {
		t.Errorf("active sources = %d, want 1", n)
	}
}

func TestNoUpdatesAfterStop(t *testing.T) {
	c, platform, updates := newTestController(t)

	if err := c.Start(context.Background(), "pt-BR"); err != nil {
		t.Fatal(err)
	}
	src := platform.Last()

	c.Stop()

	if src.PushText("late") {
		t.Error("source should refuse results after Stop")
	}
	select {
	case u := <-updates:
		t.Errorf("unexpected update after Stop: %q", u)
	case <-time.After(50 * time.Millisecond):
	}
	if c.Active() {
		t.Error("controller should not be active after Stop")
	}
	if n := platform.ActiveCount(); n != 0 {
		t.Errorf("active sources = %d, want 0", n)
	}
}

func TestSourceFailureEndsSession(t *testing.T) {
	c, platform, _ := newTestController(t)

	ended := make(chan error, 1)
	c.OnEnded(func(err error) { ended <- err })

	if err := c.Start(context.Background(), "pt-BR"); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("microphone permission revoked")
	platform.Last().Fail(boom)

	select {
	case err := <-ended:
		if !errors.Is(err, boom) {
			t.Errorf("OnEnded err = %v, want %v", err, boom)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnEnded was not called")
	}

	if c.Active() {
		t.Error("controller should not be active after failure")
	}
	c.Stop() // still safe
}

func TestStopDoesNotReportEnded(t *testing.T) {
	c, _, _ := newTestController(t)

	ended := make(chan error, 1)
	c.OnEnded(func(err error) { ended <- err })

	if err := c.Start(context.Background(), "pt-BR"); err != nil {
		t.Fatal(err)
	}
	c.Stop()

	select {
	case err := <-ended:
		t.Errorf("OnEnded called for an explicit stop: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSourceStartFailure(t *testing.T) {
	c, platform, _ := newTestController(t)
	platform.FailNextStart(errors.New("device busy"))

	if err := c.Start(context.Background(), "pt-BR"); err == nil {
		t.Fatal("Start() should fail")
	}
	if c.Active() {
		t.Error("controller should not be active")
	}

	// next attempt works
	if err := c.Start(context.Background(), "pt-BR"); err != nil {
		t.Fatalf("retry Start() error = %v", err)
	}
}

func TestParentContextCancelEndsSession(t *testing.T) {
	c, platform, updates := newTestController(t)
	ended := make(chan error, 1)
	c.OnEnded(func(err error) { ended <- err })

	ctx, cancel := context.WithCancel(context.Background())
	if err := c.Start(ctx, "pt-BR"); err != nil {
		t.Fatal(err)
	}
	src := platform.Last()
	cancel()

	select {
	case err := <-ended:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("OnEnded error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnEnded not called after context cancel")
	}

	if c.Active() {
		t.Error("controller should release the session")
	}
	if src.Active() {
		t.Error("source should be stopped")
	}
	c.Stop()

	select {
	case u := <-updates:
		t.Errorf("unexpected update: %q", u)
	default:
	}

	if err := c.Start(context.Background(), "pt-BR"); err != nil {
		t.Fatalf("Start() after cancel error = %v", err)
	}
	if n := platform.ActiveCount(); n != 1 {
		t.Errorf("active sources = %d, want 1", n)
	}
}

func TestConcurrentStartStopKeepsSingleOwner(t *testing.T) {
	c, platform, _ := newTestController(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = c.Start(context.Background(), "pt-BR")
		}()
		go func() {
			defer wg.Done()
			c.Stop()
		}()
	}
	wg.Wait()

	if n := platform.ActiveCount(); n > 1 {
		t.Errorf("active sources = %d, want at most 1", n)
	}
	c.Stop()
	if n := platform.ActiveCount(); n != 0 {
		t.Errorf("active sources after Stop = %d, want 0", n)
	}
}
