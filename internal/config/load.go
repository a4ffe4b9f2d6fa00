package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

var ErrConfigNotFound = errors.New("config not found")

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	hyprnoteDir := filepath.Join(configDir, "hyprnote")
	if err := os.MkdirAll(hyprnoteDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(hyprnoteDir, "config.toml"), nil
}

// Load reads the user's config file, writing the defaults first if it does
// not exist yet.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Printf("Config: no config file found at %s, creating with defaults", configPath)
		if err := SaveDefaultConfig(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
	}

	return LoadFile(configPath)
}

// LoadFile reads the config at path. Keys missing from the file keep their
// default values.
func LoadFile(path string) (*Config, error) {
	log.Printf("Config: loading configuration from %s", path)

	config := DefaultConfig()
	meta, err := toml.DecodeFile(path, config)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if config.Providers == nil {
		config.Providers = make(map[string]ProviderConfig)
	}
	// the default model belongs to the default provider
	if !meta.IsDefined("recognition", "model") || config.Recognition.Model == "" {
		config.Recognition.Model = DefaultModel(config.Recognition.Provider)
	}

	log.Printf("Config: configuration loaded successfully")
	return config, nil
}

// Save writes config to the user's config file, replacing it atomically.
func Save(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(configPath, config)
}

func SaveFile(path string, config *Config) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString("# Hyprnote Configuration\n\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := toml.NewEncoder(tmp).Encode(config); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace config file: %w", err)
	}

	log.Printf("Config: saved configuration to %s", path)
	return nil
}

func SaveDefaultConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config content: %w", err)
	}
	return nil
}

const defaultConfigContent = `# Hyprnote Configuration
# This file is automatically generated with defaults.
# Edit values as needed - changes are applied without restarting the daemon.

# Audio Recording Configuration
[recording]
  sample_rate = 16000          # Audio sample rate in Hz (16000 recommended for speech)
  channels = 1                 # Number of audio channels (1 = mono, 2 = stereo)
  format = "s16"               # Audio format (s16 = 16-bit signed integers)
  buffer_size = 8192           # Internal buffer size in bytes
  device = ""                  # PipeWire audio device (empty = use default microphone)
  channel_buffer_size = 30     # Audio frame buffer size (frames to buffer)

# Speech Recognition Configuration
[recognition]
  provider = "deepgram"        # "deepgram" (live, interim results) or "openai" (chunked whisper)
  language = "pt-BR"           # BCP 47 language tag ("pt-BR", "en-US", "es-ES", ...)
  model = "nova-2"             # "nova-2" for deepgram, "whisper-1" for openai
  endpoint = ""                # Override the provider URL (empty = provider default)
  chunk_interval = "4s"        # openai only: how often buffered audio is transcribed

# API keys (or set DEEPGRAM_API_KEY / OPENAI_API_KEY)
[providers.deepgram]
  api_key = ""

[providers.openai]
  api_key = ""

# Note list
[notes]
  date_locale = "pt-BR"        # Relative dates: "pt-BR" ("há 5 minutos") or "en-US" ("5 minutes ago")

# Desktop Notification Configuration
[notifications]
  enabled = true               # Enable notifications
  type = "desktop"             # Notification type ("desktop", "log", "none")

# Override any notification text:
# [notifications.messages.note_created]
#   title = "Hyprnote"
#   body = "Nota criada com sucesso!"
`
