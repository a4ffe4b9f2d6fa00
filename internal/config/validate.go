package config

import (
	"fmt"
	"net/url"

	"github.com/leonardotrapani/hyprnote/internal/language"
	"github.com/leonardotrapani/hyprnote/internal/reldate"
)

// Validate checks the config for values the daemon cannot use. A missing API
// key is not an error: recording is then reported as unavailable and notes
// can still be typed.
func (c *Config) Validate() error {
	if c.Recording.SampleRate <= 0 {
		return fmt.Errorf("invalid recording.sample_rate: %d", c.Recording.SampleRate)
	}
	if c.Recording.Channels <= 0 {
		return fmt.Errorf("invalid recording.channels: %d", c.Recording.Channels)
	}
	if c.Recording.BufferSize <= 0 {
		return fmt.Errorf("invalid recording.buffer_size: %d", c.Recording.BufferSize)
	}
	if c.Recording.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid recording.channel_buffer_size: %d", c.Recording.ChannelBufferSize)
	}
	if c.Recording.Format == "" {
		return fmt.Errorf("invalid recording.format: empty")
	}

	if err := c.validateRecognition(); err != nil {
		return err
	}

	if !reldate.Supported(c.Notes.DateLocale) {
		return fmt.Errorf("invalid notes.date_locale: %q (must be one of %v)", c.Notes.DateLocale, reldate.Locales())
	}

	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	return nil
}

func (c *Config) validateRecognition() error {
	r := c.Recognition

	var schemes map[string]bool
	switch r.Provider {
	case "deepgram":
		schemes = map[string]bool{"ws": true, "wss": true}
	case "openai":
		schemes = map[string]bool{"http": true, "https": true}
		if r.ChunkInterval <= 0 {
			return fmt.Errorf("invalid recognition.chunk_interval: %v", r.ChunkInterval)
		}
	case "":
		return fmt.Errorf("invalid recognition.provider: empty")
	default:
		return fmt.Errorf("unsupported recognition.provider: %s (must be deepgram or openai)", r.Provider)
	}

	if !language.IsValid(r.Language) {
		return fmt.Errorf("invalid recognition.language: %q (use a BCP 47 tag like 'pt-BR' or 'en-US')", r.Language)
	}

	if r.Model == "" {
		return fmt.Errorf("invalid recognition.model: empty")
	}

	if r.Endpoint != "" {
		u, err := url.Parse(r.Endpoint)
		if err != nil {
			return fmt.Errorf("invalid recognition.endpoint: %w", err)
		}
		if !schemes[u.Scheme] || u.Host == "" {
			return fmt.Errorf("invalid recognition.endpoint for %s: %s", r.Provider, r.Endpoint)
		}
	}

	return nil
}
