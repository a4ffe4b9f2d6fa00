package config

import (
	"os"

	"github.com/leonardotrapani/hyprnote/internal/notify"
	"github.com/leonardotrapani/hyprnote/internal/recognition"
	"github.com/leonardotrapani/hyprnote/internal/recording"
)

// envVars maps providers to the environment variable holding their API key.
var envVars = map[string]string{
	"deepgram": "DEEPGRAM_API_KEY",
	"openai":   "OPENAI_API_KEY",
}

func EnvVarForProvider(provider string) string {
	return envVars[provider]
}

func (c *Config) ToRecordingConfig() recording.Config {
	return recording.Config{
		SampleRate:        c.Recording.SampleRate,
		Channels:          c.Recording.Channels,
		Format:            c.Recording.Format,
		BufferSize:        c.Recording.BufferSize,
		Device:            c.Recording.Device,
		ChannelBufferSize: c.Recording.ChannelBufferSize,
	}
}

func (c *Config) ToRecognitionConfig() recognition.Config {
	return recognition.Config{
		Provider:      c.Recognition.Provider,
		APIKey:        c.ResolveAPIKey(c.Recognition.Provider),
		Model:         c.Recognition.Model,
		Endpoint:      c.Recognition.Endpoint,
		ChunkInterval: c.Recognition.ChunkInterval,
		Recording:     c.ToRecordingConfig(),
	}
}

// ResolveAPIKey returns the API key for a provider from the config file or,
// failing that, its environment variable.
func (c *Config) ResolveAPIKey(provider string) string {
	if c.Providers != nil {
		if pc, ok := c.Providers[provider]; ok && pc.APIKey != "" {
			return pc.APIKey
		}
	}
	if envVar := EnvVarForProvider(provider); envVar != "" {
		return os.Getenv(envVar)
	}
	return ""
}

// NotifierType returns the notifier to build, honoring notifications.enabled.
func (c *Config) NotifierType() string {
	if !c.Notifications.Enabled {
		return "none"
	}
	return c.Notifications.Type
}

func (c *Config) NewNotifier() notify.Notifier {
	return notify.New(c.NotifierType(), c.Notifications.Messages.Resolve())
}
