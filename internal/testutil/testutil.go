package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leonardotrapani/hyprnote/internal/config"
)

// TestConfig returns a valid configuration for testing
func TestConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Providers = map[string]config.ProviderConfig{
		"deepgram": {APIKey: "test-api-key"},
	}
	cfg.Notifications.Type = "log"
	return cfg
}

// CreateTempConfigFile writes configContent to a config.toml in a fresh
// temp directory and returns its path.
func CreateTempConfigFile(t *testing.T, configContent string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write temp config file: %v", err)
	}
	return path
}

// UseTempCacheDir points the daemon's socket and PID file at a temp dir.
func UseTempCacheDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	return dir
}

// WaitForCondition polls condition until it holds or timeout passes.
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatalf("Condition not met within timeout %v", timeout)
		}
		time.Sleep(2 * time.Millisecond)
	}
}
