package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.VAD.Enabled)
	assert.Equal(t, 0.8, cfg.VAD.SilenceDelay)
	assert.Equal(t, "observations.db", cfg.Store.Path)
	assert.Equal(t, "male", cfg.Feedback.Voice)
	assert.Equal(t, 200, cfg.Recording.DebounceMs)
	assert.Equal(t, 50051, cfg.Server.Port)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model:
  default: vosk-model-small-es-0.42
store:
  path: /data/obs.db
feedback:
  voice: female
recording:
  timezone: America/Guayaquil
  debounce_ms: 300
fincas:
  tres: rosaleda
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "vosk-model-small-es-0.42", cfg.Model.Default)
	assert.Equal(t, "/data/obs.db", cfg.Store.Path)
	assert.Equal(t, "female", cfg.Feedback.Voice)
	assert.Equal(t, "America/Guayaquil", cfg.Recording.Timezone)
	assert.Equal(t, 300, cfg.Recording.DebounceMs)
	assert.Equal(t, map[string]string{"tres": "rosaleda"}, cfg.Fincas)
	// Untouched keys keep their defaults.
	assert.True(t, cfg.VAD.Enabled)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadWithFallbackUsesExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 6000\n"), 0o644))

	cfg, err := LoadWithFallback(path)
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.Server.Port)

	_, err = LoadWithFallback(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
