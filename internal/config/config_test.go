package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Tracking.IdleThreshold)
	assert.Equal(t, time.Second, cfg.Tracking.PollInterval)
	assert.Equal(t, time.Second, cfg.Tracking.TickInterval)
	assert.Equal(t, 5, cfg.Tracking.RecentAppsLimit)
	assert.True(t, cfg.Tracking.ReconcileOrphans)
	assert.Equal(t, SourceX11, cfg.Source.Kind)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "auto", cfg.Logging.Format)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Equal(t, 256, cfg.Store.QueueSize)
	assert.Equal(t, filepath.Join(home, ".focustrack", "focustrack.db"), cfg.Storage.Path)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
storage:
  path: /tmp/ft.db
tracking:
  idle_threshold: 90s
  recent_apps_limit: 8
  reconcile_orphans: false
source:
  kind: feed
  feed_path: /tmp/focus.jsonl
logging:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/ft.db", cfg.Storage.Path)
	assert.Equal(t, 90*time.Second, cfg.Tracking.IdleThreshold)
	assert.Equal(t, 8, cfg.Tracking.RecentAppsLimit)
	assert.False(t, cfg.Tracking.ReconcileOrphans)
	assert.Equal(t, SourceFeed, cfg.Source.Kind)
	assert.Equal(t, "/tmp/focus.jsonl", cfg.Source.FeedPath)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "tracking:\n  idle_threshold: 90s\n")
	t.Setenv("FOCUSTRACK_TRACKING_IDLE_THRESHOLD", "2m")
	t.Setenv("FOCUSTRACK_METRICS_ADDR", "127.0.0.1:9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.Tracking.IdleThreshold)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Addr)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"feed without path", "source:\n  kind: feed\n"},
		{"unknown source", "source:\n  kind: wayland\n"},
		{"zero idle threshold", "tracking:\n  idle_threshold: 0s\n"},
		{"bad level", "logging:\n  level: loud\n"},
		{"bad format", "logging:\n  format: xml\n"},
		{"zero queue", "store:\n  queue_size: 0\n"},
		{"zero recent limit", "tracking:\n  recent_apps_limit: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
