package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestManager_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "[recognition]\nlanguage = \"pt-BR\"\n")

	m, err := NewManagerFromFile(path)
	if err != nil {
		t.Fatalf("NewManagerFromFile() error = %v", err)
	}

	var got []string
	m.OnReload(func(c *Config) { got = append(got, c.Recognition.Language) })

	writeConfig(t, path, "[recognition]\nlanguage = \"en-US\"\n")
	if !m.Reload() {
		t.Fatal("Reload() = false")
	}
	if lang := m.GetConfig().Recognition.Language; lang != "en-US" {
		t.Errorf("language after reload = %q", lang)
	}
	if strings.Join(got, ",") != "en-US" {
		t.Errorf("OnReload calls = %v", got)
	}
}

func TestManager_ReloadKeepsConfigOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "[recognition]\nlanguage = \"pt-BR\"\n")

	m, err := NewManagerFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	called := false
	m.OnReload(func(*Config) { called = true })

	tests := []string{
		"[recognition\n",                       // unparseable
		"[recognition]\nprovider = \"groq\"\n", // invalid
	}
	for _, content := range tests {
		writeConfig(t, path, content)
		if m.Reload() {
			t.Errorf("Reload() accepted %q", content)
		}
	}

	if lang := m.GetConfig().Recognition.Language; lang != "pt-BR" {
		t.Errorf("config changed after failed reload: %q", lang)
	}
	if called {
		t.Error("OnReload called for a rejected config")
	}
}

func TestManager_GetConfigReturnsCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "[providers.deepgram]\napi_key = \"original\"\n")

	m, err := NewManagerFromFile(path)
	if err != nil {
		t.Fatal(err)
	}

	c := m.GetConfig()
	c.Recognition.Language = "en-US"
	c.Providers["deepgram"] = ProviderConfig{APIKey: "mutated"}

	fresh := m.GetConfig()
	if fresh.Recognition.Language != "pt-BR" {
		t.Errorf("language leaked: %q", fresh.Recognition.Language)
	}
	if fresh.Providers["deepgram"].APIKey != "original" {
		t.Errorf("providers leaked: %+v", fresh.Providers)
	}
}

func TestManager_WatchesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "[notes]\ndate_locale = \"pt-BR\"\n")

	m, err := NewManagerFromFile(path)
	if err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan string, 4)
	m.OnReload(func(c *Config) {
		select {
		case reloaded <- c.Notes.DateLocale:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.StartWatching(ctx); err != nil {
		t.Fatalf("StartWatching() error = %v", err)
	}
	defer m.Stop()

	writeConfig(t, path, "[notes]\ndate_locale = \"en-US\"\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case locale := <-reloaded:
			if locale == "en-US" {
				return
			}
		case <-deadline:
			t.Fatal("config change was not picked up")
		}
	}
}

func TestNewManagerFromFile_Missing(t *testing.T) {
	_, err := NewManagerFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
