package notify

import (
	"log"
	"os/exec"
)

const appName = "Hyprnote"

type MessageType int

const (
	MsgNoteCreated MessageType = iota
	MsgNoteDeleted
	MsgRecordingStarted
	MsgRecordingStopped
	MsgFeatureUnavailable
	MsgCaptureFailed
	MsgConfigReloaded
)

// MessageDef describes a notification and its default wording. ConfigKey is
// the key under [notifications.messages] that overrides it.
type MessageDef struct {
	Type         MessageType
	ConfigKey    string
	DefaultTitle string
	DefaultBody  string
	IsError      bool
}

var MessageDefs = []MessageDef{
	{MsgNoteCreated, "note_created", appName, "Nota criada com sucesso!", false},
	{MsgNoteDeleted, "note_deleted", appName, "Nota apagada.", false},
	{MsgRecordingStarted, "recording_started", appName, "Gravando! (use stop p/ interromper)", false},
	{MsgRecordingStopped, "recording_stopped", appName, "Gravação interrompida.", false},
	{MsgFeatureUnavailable, "feature_unavailable", appName, "O sistema não suporta essa funcionalidade!", true},
	{MsgCaptureFailed, "capture_failed", appName, "A gravação foi interrompida por um erro.", true},
	{MsgConfigReloaded, "config_reloaded", appName, "Configuração recarregada.", false},
}

type Message struct {
	Title   string
	Body    string
	IsError bool
}

// DefaultMessages returns every message with its default wording.
func DefaultMessages() map[MessageType]Message {
	out := make(map[MessageType]Message, len(MessageDefs))
	for _, def := range MessageDefs {
		out[def.Type] = Message{Title: def.DefaultTitle, Body: def.DefaultBody, IsError: def.IsError}
	}
	return out
}

type Notifier interface {
	Send(t MessageType)
	Error(msg string)
}

// New builds the notifier named by typ ("desktop", "log" or "none").
// A nil messages map falls back to DefaultMessages.
func New(typ string, messages map[MessageType]Message) Notifier {
	if messages == nil {
		messages = DefaultMessages()
	}
	switch typ {
	case "desktop":
		return &Desktop{messages: messages}
	case "log":
		return &Log{messages: messages}
	default:
		return Nop{}
	}
}

var execCommand = exec.Command

// Desktop sends notifications through notify-send.
type Desktop struct {
	messages map[MessageType]Message
}

func (d *Desktop) Send(t MessageType) {
	msg, ok := d.messages[t]
	if !ok {
		return
	}
	args := []string{"-a", appName}
	if msg.IsError {
		args = append(args, "-u", "critical")
	}
	args = append(args, msg.Title, msg.Body)
	if err := execCommand("notify-send", args...).Run(); err != nil {
		log.Printf("Failed to send notification: %v", err)
	}
}

func (d *Desktop) Error(msg string) {
	if err := execCommand("notify-send", "-a", appName, "-u", "critical", appName+" Error", msg).Run(); err != nil {
		log.Printf("Failed to send error notification: %v", err)
	}
}

// Log writes notifications to the standard logger.
type Log struct {
	messages map[MessageType]Message
}

func (l *Log) Send(t MessageType) {
	msg, ok := l.messages[t]
	if !ok {
		return
	}
	if msg.IsError {
		log.Printf("Notify: [error] %s: %s", msg.Title, msg.Body)
		return
	}
	log.Printf("Notify: %s: %s", msg.Title, msg.Body)
}

func (l *Log) Error(msg string) {
	log.Printf("Notify: %s Error: %s", appName, msg)
}

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) Send(MessageType) {}
func (Nop) Error(string)     {}
