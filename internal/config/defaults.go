package config

import (
	"time"

	"github.com/leonardotrapani/hyprnote/internal/language"
	"github.com/leonardotrapani/hyprnote/internal/reldate"
)

const (
	defaultProvider      = "deepgram"
	defaultChunkInterval = 4 * time.Second
)

// defaultModels is the model used when recognition.model is empty.
var defaultModels = map[string]string{
	"deepgram": "nova-2",
	"openai":   "whisper-1",
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		Recording: RecordingConfig{
			SampleRate:        16000,
			Channels:          1,
			Format:            "s16",
			BufferSize:        8192,
			Device:            "",
			ChannelBufferSize: 30,
		},
		Recognition: RecognitionConfig{
			Provider:      defaultProvider,
			Language:      language.Default,
			Model:         defaultModels[defaultProvider],
			ChunkInterval: defaultChunkInterval,
		},
		Providers: make(map[string]ProviderConfig),
		Notes: NotesConfig{
			DateLocale: reldate.DefaultLocale,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "desktop",
		},
	}
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	return defaultModels[provider]
}
