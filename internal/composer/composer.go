// Package composer drives the note being drafted: whether the user is
// choosing how to start, typing, or dictating, and what the draft holds.
package composer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/leonardotrapani/hyprnote/internal/capture"
	"github.com/leonardotrapani/hyprnote/internal/language"
	"github.com/leonardotrapani/hyprnote/internal/notes"
	"github.com/leonardotrapani/hyprnote/internal/notify"
)

// ErrActionUnavailable is returned for an intent the current mode does not offer.
var ErrActionUnavailable = errors.New("action not available in the current mode")

type Mode int

const (
	Onboarding Mode = iota
	TextEntry
	Recording
)

func (m Mode) String() string {
	switch m {
	case Onboarding:
		return "onboarding"
	case TextEntry:
		return "text_entry"
	case Recording:
		return "recording"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "onboarding":
		return Onboarding, nil
	case "text_entry":
		return TextEntry, nil
	case "recording":
		return Recording, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

type State struct {
	Mode  Mode
	Draft string
}

// Capturer is the part of capture.Controller the composer drives.
type Capturer interface {
	OnTranscriptUpdate(fn func(text string))
	OnEnded(fn func(err error))
	Start(ctx context.Context, languageTag string) error
	Stop()
}

// NoteSink receives submitted notes and deletions.
type NoteSink interface {
	Create(content string) notes.Note
	Delete(id string) bool
}

type Options struct {
	Controller Capturer
	Notes      NoteSink
	Notifier   notify.Notifier
	Language   string
	// OnChange is called after every state change, outside the composer's lock.
	OnChange func(State)
}

type Composer struct {
	controller Capturer
	notes      NoteSink
	notifier   notify.Notifier
	onChange   func(State)

	opMu sync.Mutex // serializes user intents

	mu       sync.Mutex // guards the fields below; the only lock taken by capture callbacks
	state    State
	language string

	// starting is set while controller.Start runs; results and endings that
	// arrive before it returns are held here.
	starting      bool
	pending       string
	endedEarly    bool
	endedEarlyErr error
}

func New(opts Options) *Composer {
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	lang, err := language.Normalize(opts.Language)
	if err != nil {
		lang = language.Default
	}

	c := &Composer{
		controller: opts.Controller,
		notes:      opts.Notes,
		notifier:   opts.Notifier,
		onChange:   opts.OnChange,
		language:   lang,
	}
	c.controller.OnTranscriptUpdate(c.handleTranscript)
	c.controller.OnEnded(c.handleEnded)
	return c
}

func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetLanguage changes the language used by the next recording.
func (c *Composer) SetLanguage(tag string) error {
	tag, err := language.Normalize(tag)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.language = tag
	c.mu.Unlock()
	return nil
}

func (c *Composer) Language() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.language
}

// StartRecording starts dictation from Onboarding and clears the draft.
func (c *Composer) StartRecording(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.state.Mode != Onboarding {
		c.mu.Unlock()
		return ErrActionUnavailable
	}
	lang := c.language
	c.starting = true
	c.pending, c.endedEarly, c.endedEarlyErr = "", false, nil
	c.mu.Unlock()

	err := c.controller.Start(ctx, lang)

	c.mu.Lock()
	c.starting = false
	if err != nil {
		c.mu.Unlock()
		if errors.Is(err, capture.ErrFeatureUnavailable) {
			c.notifier.Send(notify.MsgFeatureUnavailable)
		} else {
			c.notifier.Error(fmt.Sprintf("Não foi possível iniciar a gravação: %v", err))
		}
		log.Printf("Composer: start recording failed: %v", err)
		return err
	}
	c.state = State{Mode: Recording, Draft: c.pending}
	ended, endErr := c.endedEarly, c.endedEarlyErr
	if ended {
		c.state.Mode = TextEntry
	}
	c.mu.Unlock()

	log.Printf("Composer: recording started (language=%s)", lang)
	c.notifier.Send(notify.MsgRecordingStarted)
	if ended {
		c.reportEnded(endErr)
	}
	c.changed()
	return nil
}

// UseText switches from Onboarding to an empty text buffer.
func (c *Composer) UseText() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	switch c.state.Mode {
	case TextEntry:
		c.mu.Unlock()
		return nil
	case Recording:
		c.mu.Unlock()
		return ErrActionUnavailable
	}
	c.state = State{Mode: TextEntry}
	c.mu.Unlock()

	c.changed()
	return nil
}

// UpdateDraft replaces the draft while typing. An empty draft returns to
// Onboarding.
func (c *Composer) UpdateDraft(text string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.state.Mode != TextEntry {
		c.mu.Unlock()
		return ErrActionUnavailable
	}
	if text == "" {
		c.state = State{Mode: Onboarding}
	} else {
		c.state.Draft = text
	}
	c.mu.Unlock()

	c.changed()
	return nil
}

// StopRecording stops dictation and keeps the transcript as an editable draft.
func (c *Composer) StopRecording() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.state.Mode != Recording {
		c.mu.Unlock()
		return ErrActionUnavailable
	}
	// transcripts still in flight are dropped once the mode leaves Recording
	c.state.Mode = TextEntry
	c.mu.Unlock()

	c.controller.Stop()
	c.notifier.Send(notify.MsgRecordingStopped)
	c.changed()
	return nil
}

// Submit turns the trimmed draft into a note and resets to Onboarding.
// ok is false when there is nothing to submit.
func (c *Composer) Submit() (n notes.Note, ok bool, err error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	mode := c.state.Mode
	content := strings.TrimSpace(c.state.Draft)
	if mode == Onboarding || content == "" {
		c.mu.Unlock()
		return notes.Note{}, false, nil
	}
	c.state = State{Mode: Onboarding}
	c.mu.Unlock()

	if mode == Recording {
		c.controller.Stop()
	}

	n = c.notes.Create(content)
	c.notifier.Send(notify.MsgNoteCreated)
	c.changed()
	return n, true, nil
}

// Delete removes a note by id. Unknown ids are a no-op.
func (c *Composer) Delete(id string) bool {
	if !c.notes.Delete(id) {
		return false
	}
	c.notifier.Send(notify.MsgNoteDeleted)
	return true
}

func (c *Composer) handleTranscript(text string) {
	c.mu.Lock()
	if c.starting {
		c.pending = text
		c.mu.Unlock()
		return
	}
	if c.state.Mode != Recording {
		c.mu.Unlock()
		return
	}
	c.state.Draft = text
	c.mu.Unlock()

	c.changed()
}

// handleEnded turns a session the recognizer ended on its own into an
// editable draft.
func (c *Composer) handleEnded(err error) {
	c.mu.Lock()
	if c.starting {
		c.endedEarly, c.endedEarlyErr = true, err
		c.mu.Unlock()
		return
	}
	if c.state.Mode != Recording {
		c.mu.Unlock()
		return
	}
	c.state.Mode = TextEntry
	c.mu.Unlock()

	c.reportEnded(err)
	c.changed()
}

func (c *Composer) reportEnded(err error) {
	if errors.Is(err, context.Canceled) {
		log.Printf("Composer: recording cancelled")
		c.notifier.Send(notify.MsgRecordingStopped)
		return
	}
	if err != nil {
		log.Printf("Composer: recording ended with error: %v", err)
		c.notifier.Send(notify.MsgCaptureFailed)
		return
	}
	log.Printf("Composer: recording ended by the recognizer")
	c.notifier.Send(notify.MsgRecordingStopped)
}

func (c *Composer) changed() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.State())
}
