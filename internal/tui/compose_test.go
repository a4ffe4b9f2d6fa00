package tui

import (
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/leonardotrapani/hyprnote/internal/bus"
)

type fakeClient struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (c *fakeClient) Send(verb, arg string) (bus.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, verb)
	if c.err != nil {
		return bus.Response{}, c.err
	}
	if verb == bus.VerbStatus {
		return bus.Response{Kind: "STATUS", Body: `mode=onboarding draft=""`}, nil
	}
	return bus.Response{Kind: "OK"}, nil
}

func (c *fakeClient) verbs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func update(t *testing.T, m ComposeModel, msg tea.Msg) (ComposeModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	cm, ok := next.(ComposeModel)
	if !ok {
		t.Fatalf("expected ComposeModel, got %T", next)
	}
	return cm, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestComposeOnboardingView(t *testing.T) {
	m := NewComposeModel(&fakeClient{})
	view := m.View()
	if !strings.Contains(view, "Comece gravando uma") || !strings.Contains(view, "utilize apenas texto") {
		t.Errorf("expected onboarding prompt, got:\n%s", view)
	}
}

func TestComposeRecordKey(t *testing.T) {
	client := &fakeClient{}
	m := NewComposeModel(client)

	m, cmd := update(t, m, runes("r"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	action, ok := msg.(actionMsg)
	if !ok || action.verb != bus.VerbRecord {
		t.Fatalf("expected record action, got %#v", msg)
	}
	if got := client.verbs(); len(got) != 1 || got[0] != bus.VerbRecord {
		t.Errorf("expected record to be sent, got %v", got)
	}

	m, _ = update(t, m, statusMsg{status: bus.Status{Mode: "recording", Draft: "olá mundo"}})
	view := m.View()
	if !strings.Contains(view, "Gravando!") {
		t.Errorf("expected recording indicator, got:\n%s", view)
	}
	if m.editor.Value() != "olá mundo" {
		t.Errorf("expected draft in editor, got %q", m.editor.Value())
	}
}

func TestComposeRecordingStopKey(t *testing.T) {
	client := &fakeClient{}
	m := NewComposeModel(client)
	m, _ = update(t, m, statusMsg{status: bus.Status{Mode: "recording"}})

	// plain letters are ignored while recording
	_, cmd := update(t, m, runes("t"))
	if cmd != nil {
		t.Errorf("expected no command for t while recording")
	}

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if action := cmd().(actionMsg); action.verb != bus.VerbStop {
		t.Errorf("expected stop, got %s", action.verb)
	}
}

func TestComposeTextEntryTyping(t *testing.T) {
	m := NewComposeModel(&fakeClient{})
	m, _ = update(t, m, statusMsg{status: bus.Status{Mode: "text_entry", Draft: "oi"}})
	if m.editor.Value() != "oi" {
		t.Fatalf("expected editor to hold the draft, got %q", m.editor.Value())
	}

	m, cmd := update(t, m, runes("!"))
	if cmd == nil {
		t.Fatal("expected the draft to be sent")
	}
	if m.editor.Value() != "oi!" {
		t.Errorf("expected typed text, got %q", m.editor.Value())
	}

	// a stale poll does not overwrite what was typed
	m, _ = update(t, m, statusMsg{status: bus.Status{Mode: "text_entry", Draft: "oi"}})
	if m.editor.Value() != "oi!" {
		t.Errorf("expected local text to win, got %q", m.editor.Value())
	}

	if !strings.Contains(m.View(), "Salvar nota") {
		t.Errorf("expected save hint in view")
	}
}

func TestComposeSubmit(t *testing.T) {
	client := &fakeClient{}
	m := NewComposeModel(client)
	m, _ = update(t, m, statusMsg{status: bus.Status{Mode: "text_entry", Draft: "nota"}})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	m, _ = update(t, m, cmd())
	if m.flash != "Nota criada com sucesso!" {
		t.Errorf("expected success flash, got %q", m.flash)
	}
}

func TestComposeErrors(t *testing.T) {
	m := NewComposeModel(&fakeClient{})

	m, _ = update(t, m, actionMsg{verb: bus.VerbRecord, err: &bus.ResponseError{Code: bus.CodeFeatureUnavailable, Message: "no"}})
	if !strings.Contains(m.View(), "O sistema não suporta essa funcionalidade!") {
		t.Errorf("expected feature unavailable message, got:\n%s", m.View())
	}

	m, _ = update(t, m, statusMsg{err: errors.New("connection refused")})
	if !strings.Contains(m.errText, "Daemon indisponível") {
		t.Errorf("expected daemon error, got %q", m.errText)
	}

	m, _ = update(t, m, statusMsg{status: bus.Status{Mode: "onboarding"}})
	if m.errText != "" {
		t.Errorf("expected error to clear after a good poll, got %q", m.errText)
	}
}

func TestComposeQuit(t *testing.T) {
	m := NewComposeModel(&fakeClient{})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg")
	}
	if m.View() != "" {
		t.Errorf("expected empty view after quit")
	}

	// polling stops once done
	_, cmd = update(t, m, tickMsg{})
	if cmd != nil {
		t.Errorf("expected no more polling after quit")
	}
}

func TestComposeEmptyDraftReturnsToOnboarding(t *testing.T) {
	m := NewComposeModel(&fakeClient{})
	m, _ = update(t, m, statusMsg{status: bus.Status{Mode: "text_entry", Draft: "a"}})

	m, _ = update(t, m, actionMsg{verb: bus.VerbDraft, resp: bus.Response{Kind: "STATUS", Body: `mode=onboarding draft=""`}})
	if m.status.Mode != "onboarding" {
		t.Errorf("expected onboarding, got %s", m.status.Mode)
	}
}

// daemonClient keeps a draft the way the daemon does, so tests can check
// what a submit would save.
type daemonClient struct {
	mu    sync.Mutex
	mode  string
	draft string
	verbs []string
	saved []string
}

func (c *daemonClient) Send(verb, arg string) (bus.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verbs = append(c.verbs, verb)

	switch verb {
	case bus.VerbText:
		c.mode = "text_entry"
	case bus.VerbDraft:
		if c.mode != "text_entry" {
			return bus.Response{}, &bus.ResponseError{Code: bus.CodeUnavailable, Message: "not typing"}
		}
		c.draft = arg
		if arg == "" {
			c.mode = "onboarding"
		}
	case bus.VerbSubmit:
		c.saved = append(c.saved, c.draft)
		c.mode, c.draft = "onboarding", ""
		return bus.Response{Kind: "OK", Body: "id"}, nil
	}
	line := bus.FormatStatus(bus.Status{Mode: c.mode, Draft: c.draft})
	return bus.ParseResponse(line)
}

func (c *daemonClient) state() (string, []string, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft, append([]string(nil), c.verbs...), append([]string(nil), c.saved...)
}

func typingModel(t *testing.T, client Client) ComposeModel {
	t.Helper()
	m := NewComposeModel(client)
	m, _ = update(t, m, statusMsg{status: bus.Status{Mode: "text_entry"}})
	return m
}

func TestComposeDraftsSentInOrder(t *testing.T) {
	client := &daemonClient{mode: "text_entry"}
	m := typingModel(t, client)

	m, first := update(t, m, runes("a"))
	if first == nil || !m.draftInFlight {
		t.Fatal("expected the first edit to be sent")
	}
	// typed while "a" is still on its way
	m, _ = update(t, m, runes("b"))
	m, _ = update(t, m, runes("c"))
	if !m.draftDirty {
		t.Fatal("expected later edits to wait for the request in flight")
	}

	m, next := update(t, m, m.sendDraft("a")())
	if next == nil {
		t.Fatal("expected the latest text to be sent once the first draft landed")
	}
	m, after := update(t, m, next())
	if after != nil {
		t.Errorf("expected nothing more to send")
	}

	draft, verbs, _ := client.state()
	if draft != "abc" || m.editor.Value() != "abc" {
		t.Errorf("editor=%q daemon draft=%q, want both abc", m.editor.Value(), draft)
	}
	if len(verbs) != 2 {
		t.Errorf("expected 2 draft requests, got %v", verbs)
	}
	if m.syncing() {
		t.Errorf("expected no pending edits")
	}
}

func TestComposeSubmitWaitsForDraft(t *testing.T) {
	client := &daemonClient{mode: "text_entry"}
	m := typingModel(t, client)

	m, _ = update(t, m, runes("a"))
	m, _ = update(t, m, runes("b"))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Fatal("submit should wait for the pending draft")
	}

	// a stale poll arriving meanwhile must not touch the editor
	m, _ = update(t, m, statusMsg{status: bus.Status{Mode: "text_entry", Draft: "a"}})
	if m.editor.Value() != "ab" {
		t.Fatalf("editor = %q, want ab", m.editor.Value())
	}

	m, cmd = update(t, m, m.sendDraft("a")())
	m, cmd = update(t, m, cmd()) // draft "ab" lands, submit goes out
	if cmd == nil {
		t.Fatal("expected the queued submit")
	}
	m, _ = update(t, m, cmd())

	_, _, saved := client.state()
	if len(saved) != 1 || saved[0] != "ab" {
		t.Errorf("saved notes = %v, want [ab]", saved)
	}
	if m.flash != "Nota criada com sucesso!" {
		t.Errorf("flash = %q", m.flash)
	}
}

func TestComposeDraftReopensTextEntry(t *testing.T) {
	// the daemon went back to onboarding after the buffer was emptied
	client := &daemonClient{mode: "onboarding"}
	m := typingModel(t, client)

	m, _ = update(t, m, m.sendDraft("x")())

	draft, verbs, _ := client.state()
	if draft != "x" {
		t.Errorf("daemon draft = %q, want x", draft)
	}
	want := []string{bus.VerbDraft, bus.VerbText, bus.VerbDraft}
	if strings.Join(verbs, ",") != strings.Join(want, ",") {
		t.Errorf("verbs = %v, want %v", verbs, want)
	}
	if m.errText != "" {
		t.Errorf("unexpected error %q", m.errText)
	}
}
