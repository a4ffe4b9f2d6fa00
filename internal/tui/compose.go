package tui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/leonardotrapani/hyprnote/internal/bus"
)

const pollInterval = 200 * time.Millisecond

// Client sends one request to the daemon.
type Client interface {
	Send(verb, arg string) (bus.Response, error)
}

// BusClient talks to the daemon over its unix socket.
type BusClient struct{}

func (BusClient) Send(verb, arg string) (bus.Response, error) {
	return bus.SendCommand(verb, arg)
}

type statusMsg struct {
	status bus.Status
	err    error
}

type actionMsg struct {
	verb string
	resp bus.Response
	err  error
}

type tickMsg struct{}

// ComposeModel is the "Adicionar nota" dialog. The daemon owns the state;
// the model mirrors it by polling and forwards the user's intents.
type ComposeModel struct {
	client  Client
	status  bus.Status
	editor  textarea.Model
	flash   string
	errText string
	width   int
	done    bool
	synced  bool // editor holds the daemon's draft for the current text entry

	// At most one draft request is in flight so the daemon sees edits in
	// order. Edits made meanwhile are sent as one once it lands, and a
	// submit waits for them.
	draftInFlight bool
	draftDirty    bool
	submitQueued  bool
}

func NewComposeModel(client Client) ComposeModel {
	ta := textarea.New()
	ta.Placeholder = "Escreva sua nota..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(60)
	ta.SetHeight(8)
	return ComposeModel{
		client: client,
		status: bus.Status{Mode: "onboarding"},
		editor: ta,
	}
}

func (m ComposeModel) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m ComposeModel) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		resp, err := m.client.Send(bus.VerbStatus, "")
		if err != nil {
			return statusMsg{err: err}
		}
		s, err := bus.ParseStatus(resp.Body)
		return statusMsg{status: s, err: err}
	}
}

func (m ComposeModel) send(verb, arg string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.client.Send(verb, arg)
		return actionMsg{verb: verb, resp: resp, err: err}
	}
}

// sendDraft replaces the daemon's draft. A draft emptied earlier may have
// moved the daemon back to onboarding, so text entry is reopened first.
func (m ComposeModel) sendDraft(text string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.client.Send(bus.VerbDraft, text)
		if bus.IsCode(err, bus.CodeUnavailable) && text != "" {
			if _, err = m.client.Send(bus.VerbText, ""); err == nil {
				resp, err = m.client.Send(bus.VerbDraft, text)
			}
		}
		return actionMsg{verb: bus.VerbDraft, resp: resp, err: err}
	}
}

// syncing reports whether local edits have not reached the daemon yet.
func (m ComposeModel) syncing() bool {
	return m.draftInFlight || m.draftDirty || m.submitQueued
}

func (m ComposeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 8; w > 20 {
			m.editor.SetWidth(w)
		}
		return m, nil

	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, tea.Batch(m.fetchStatus(), tick())

	case statusMsg:
		if msg.err != nil {
			m.errText = describeError(msg.err)
			return m, nil
		}
		m.errText = ""
		if !m.syncing() {
			m.applyStatus(msg.status)
		}
		return m, nil

	case actionMsg:
		return m.handleAction(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// applyStatus mirrors the daemon's state. While typing, the local editor is
// the source of truth and polled drafts are ignored.
func (m *ComposeModel) applyStatus(s bus.Status) {
	prevMode := m.status.Mode
	m.status = s

	switch s.Mode {
	case "recording":
		m.synced = false
		m.editor.Blur()
		m.editor.SetValue(s.Draft)
	case "text_entry":
		if prevMode != "text_entry" || !m.synced {
			m.editor.SetValue(s.Draft)
			m.editor.CursorEnd()
			m.synced = true
		}
		m.editor.Focus()
	default:
		m.synced = false
		m.editor.Blur()
		m.editor.Reset()
	}
}

func (m ComposeModel) handleAction(msg actionMsg) (tea.Model, tea.Cmd) {
	if msg.verb == bus.VerbDraft {
		return m.handleDraftDone(msg)
	}
	if msg.err != nil {
		m.errText = describeError(msg.err)
		return m, m.fetchStatus()
	}
	m.errText = ""

	switch msg.verb {
	case bus.VerbSubmit:
		m.flash = "Nota criada com sucesso!"
	case bus.VerbRecord:
		m.flash = ""
	}
	return m, m.fetchStatus()
}

func (m ComposeModel) handleDraftDone(msg actionMsg) (tea.Model, tea.Cmd) {
	m.draftInFlight = false

	if msg.err != nil {
		m.draftDirty, m.submitQueued = false, false
		m.errText = describeError(msg.err)
		return m, m.fetchStatus()
	}
	m.errText = ""

	if m.draftDirty {
		m.draftDirty = false
		m.draftInFlight = true
		return m, m.sendDraft(m.editor.Value())
	}
	if m.submitQueued {
		m.submitQueued = false
		return m, m.send(bus.VerbSubmit, "")
	}
	if s, err := bus.ParseStatus(msg.resp.Body); err == nil && s.Mode != "text_entry" {
		// empty draft went back to onboarding
		m.applyStatus(s)
	}
	return m, nil
}

func (m ComposeModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.done = true
		return m, tea.Quit
	case "ctrl+s":
		if m.draftInFlight {
			m.submitQueued = true
			return m, nil
		}
		return m, m.send(bus.VerbSubmit, "")
	}

	switch m.status.Mode {
	case "onboarding":
		switch msg.String() {
		case "r", "ctrl+r":
			return m, m.send(bus.VerbRecord, "")
		case "t", "ctrl+t":
			return m, m.send(bus.VerbText, "")
		case "q":
			m.done = true
			return m, tea.Quit
		}
		return m, nil

	case "recording":
		switch msg.String() {
		case "ctrl+r", "enter", " ":
			return m, m.send(bus.VerbStop, "")
		}
		return m, nil

	case "text_entry":
		before := m.editor.Value()
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		if after := m.editor.Value(); after != before {
			m.flash = ""
			if m.draftInFlight {
				m.draftDirty = true
				return m, cmd
			}
			m.draftInFlight = true
			return m, tea.Batch(cmd, m.sendDraft(after))
		}
		return m, cmd
	}
	return m, nil
}

func (m ComposeModel) View() string {
	if m.done {
		return ""
	}

	body := StyleLabel.Render(newNoteTitle) + "\n\n"
	switch m.status.Mode {
	case "recording":
		body += m.editor.View() + "\n\n"
		body += StyleRecording.Render("● Gravando!") + StyleMuted.Render(" (ctrl+r p/ interromper • ctrl+s salvar)")
	case "text_entry":
		body += m.editor.View() + "\n\n"
		save := "Salvar nota (ctrl+s)"
		if m.editor.Value() == "" {
			body += StyleSubtle.Render(save)
		} else {
			body += StyleHighlight.Render(save)
		}
	default:
		body += StyleMuted.Render("Comece gravando uma ") +
			StyleHighlight.Render("nota em áudio (r)") +
			StyleMuted.Render(" ou se preferir ") +
			StyleHighlight.Render("utilize apenas texto (t)") +
			StyleMuted.Render(".")
	}

	if m.flash != "" {
		body += "\n\n" + StyleSuccess.Render(m.flash)
	}
	if m.errText != "" {
		body += "\n\n" + StyleError.Render(m.errText)
	}
	body += "\n\n" + StyleSubtle.Render("esc sair")

	return StyleFocusedBox.Render(body)
}

// describeError turns daemon errors into the messages the user sees.
func describeError(err error) string {
	var re *bus.ResponseError
	if errors.As(err, &re) {
		switch re.Code {
		case bus.CodeFeatureUnavailable:
			return "O sistema não suporta essa funcionalidade!"
		case bus.CodeUnavailable:
			return "Ação indisponível agora."
		}
		return re.Error()
	}
	return "Daemon indisponível: " + err.Error() + " (rode `hyprnote serve`)"
}
