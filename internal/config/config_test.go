package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Listen)
	require.Equal(t, "dooropener.json", cfg.StatePath)
	require.Equal(t, 10*time.Second, cfg.HTTPTimeout.Duration())
	require.True(t, cfg.GPIO.Enabled)
	require.Equal(t, "gpiochip0", cfg.GPIO.Chip)
	require.Equal(t, 20, cfg.GPIO.Relay1In)
	require.Equal(t, 30, cfg.Ledger.RetentionDays)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
listen: ":9090"
state_path: /var/lib/dooropener/state.json
http_timeout: 2s
gpio:
  enabled: false
mqtt:
  broker: tcp://broker:1883
  client_id: panel-1
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Listen)
	require.Equal(t, "/var/lib/dooropener/state.json", cfg.StatePath)
	require.Equal(t, 2*time.Second, cfg.HTTPTimeout.Duration())
	require.False(t, cfg.GPIO.Enabled)
	require.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	require.Equal(t, "panel-1", cfg.MQTT.ClientID)
	require.Equal(t, "debug", cfg.Log.GetLevel())

	// Untouched sections keep their defaults.
	require.Equal(t, "./dooropener.sqlite", cfg.Database.Path)
	require.Equal(t, 24*time.Hour, cfg.Ledger.CleanupInterval.Duration())
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("DOOROPENER_LISTEN", ":7070")

	path := writeConfig(t, `
listen: "${DOOROPENER_LISTEN}"
database:
  path: "${DOOROPENER_DB:/tmp/events.db}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, ":7070", cfg.Listen)
	require.Equal(t, "/tmp/events.db", cfg.Database.Path)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := writeConfig(t, "listen: [unclosed")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "http_timeout: soon")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLogLevelDefault(t *testing.T) {
	var lc LogConfig
	require.Equal(t, "info", lc.GetLevel())
}
