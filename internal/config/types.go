package config

import (
	"reflect"
	"time"

	"github.com/leonardotrapani/hyprnote/internal/notify"
)

type Config struct {
	Recording     RecordingConfig           `toml:"recording"`
	Recognition   RecognitionConfig         `toml:"recognition"`
	Providers     map[string]ProviderConfig `toml:"providers"`
	Notes         NotesConfig               `toml:"notes"`
	Notifications NotificationsConfig       `toml:"notifications"`
}

// ProviderConfig holds API key for a provider
type ProviderConfig struct {
	APIKey string `toml:"api_key"`
}

type RecordingConfig struct {
	SampleRate        int    `toml:"sample_rate"`
	Channels          int    `toml:"channels"`
	Format            string `toml:"format"`
	BufferSize        int    `toml:"buffer_size"`
	Device            string `toml:"device"`
	ChannelBufferSize int    `toml:"channel_buffer_size"`
}

type RecognitionConfig struct {
	Provider      string        `toml:"provider"` // "deepgram" or "openai"
	Language      string        `toml:"language"` // BCP 47 tag, e.g. "pt-BR"
	Model         string        `toml:"model"`
	Endpoint      string        `toml:"endpoint"`       // empty = provider default
	ChunkInterval time.Duration `toml:"chunk_interval"` // openai only
}

type NotesConfig struct {
	DateLocale string `toml:"date_locale"`
}

type NotificationsConfig struct {
	Enabled  bool           `toml:"enabled"`
	Type     string         `toml:"type"` // "desktop", "log", "none"
	Messages MessagesConfig `toml:"messages"`
}

type MessageConfig struct {
	Title string `toml:"title"`
	Body  string `toml:"body"`
}

type MessagesConfig struct {
	NoteCreated        MessageConfig `toml:"note_created"`
	NoteDeleted        MessageConfig `toml:"note_deleted"`
	RecordingStarted   MessageConfig `toml:"recording_started"`
	RecordingStopped   MessageConfig `toml:"recording_stopped"`
	FeatureUnavailable MessageConfig `toml:"feature_unavailable"`
	CaptureFailed      MessageConfig `toml:"capture_failed"`
	ConfigReloaded     MessageConfig `toml:"config_reloaded"`
}

// Resolve merges user config with defaults from MessageDefs
func (m *MessagesConfig) Resolve() map[notify.MessageType]notify.Message {
	result := make(map[notify.MessageType]notify.Message)

	v := reflect.ValueOf(m).Elem()
	t := v.Type()
	tagToField := make(map[string]int)
	for i := 0; i < t.NumField(); i++ {
		tagToField[t.Field(i).Tag.Get("toml")] = i
	}

	for _, def := range notify.MessageDefs {
		msg := notify.Message{
			Title:   def.DefaultTitle,
			Body:    def.DefaultBody,
			IsError: def.IsError,
		}
		if idx, ok := tagToField[def.ConfigKey]; ok {
			userMsg := v.Field(idx).Interface().(MessageConfig)
			if userMsg.Title != "" {
				msg.Title = userMsg.Title
			}
			if userMsg.Body != "" {
				msg.Body = userMsg.Body
			}
		}
		result[def.Type] = msg
	}
	return result
}
