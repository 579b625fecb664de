package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/clip-extract-go/internal/domain"
)

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 6001
download:
  dir: `+dir+`
relay:
  server_url: http://127.0.0.1:6001
  health_timeout: 500ms
observer:
  detect_delay: 250ms
`), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 6001, config.Server.Port)
	assert.Equal(t, dir, config.Download.Dir)
	assert.Equal(t, "http://127.0.0.1:6001", config.Relay.ServerURL)
	assert.Equal(t, 500*time.Millisecond, config.Relay.HealthTimeout)
	assert.Equal(t, 250*time.Millisecond, config.Observer.DetectDelay)
	// untouched keys keep their defaults
	assert.Equal(t, 2*time.Second, config.Observer.ResetDelay)
	assert.Equal(t, domain.DefaultFormat, config.Download.Format)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("download:\n  dir: "+dir+"\n"), 0644))

	t.Setenv("CLIPEXTRACT_RELAY_SERVER_URL", "http://localhost:7000")
	t.Setenv("CLIPEXTRACT_OBSERVER_RESET_DELAY", "5s")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:7000", config.Relay.ServerURL)
	assert.Equal(t, 5*time.Second, config.Observer.ResetDelay)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad port", "server:\n  port: 70000\n"},
		{"negative delay", "observer:\n  detect_delay: -1s\n"},
		{"zero check interval", "monitor:\n  check_interval: 0s\n"},
		{"empty server url", "relay:\n  server_url: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	config := domain.DefaultConfig()
	config.Download.Dir = dir
	config.Relay.ServerURL = "http://localhost:5999"
	config.Observer.DetectDelay = 1500 * time.Millisecond
	config.Monitor.SettleDelay = time.Minute

	require.NoError(t, SaveConfig(config, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5999", loaded.Relay.ServerURL)
	assert.Equal(t, 1500*time.Millisecond, loaded.Observer.DetectDelay)
	assert.Equal(t, time.Minute, loaded.Monitor.SettleDelay)
	assert.Equal(t, dir, loaded.Download.Dir)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "clips"), expandPath("~/clips"))
	assert.Equal(t, home+"/.clip-extract/logs", expandPath("$HOME/.clip-extract/logs"))
	assert.Equal(t, "/tmp/x", expandPath("/tmp/x"))
}
