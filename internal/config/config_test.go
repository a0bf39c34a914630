package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "playground.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/", cfg.URL)
	assert.Equal(t, 10*time.Second, cfg.DialTimeout)
	assert.Equal(t, IDFormatBase36, cfg.IDFormat)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"stderr"}, cfg.Log.Outputs)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
url: wss://play.example.com/socket
dial_timeout: 3s
id_format: uuid
log:
  level: debug
  format: json
  outputs: [stdout]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "wss://play.example.com/socket", cfg.URL)
	assert.Equal(t, 3*time.Second, cfg.DialTimeout)
	assert.Equal(t, IDFormatUUID, cfg.IDFormat)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"stdout"}, cfg.Log.Outputs)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeFile(t, "url: ws://from-file/\n")
	t.Setenv("PLAYGROUND_URL", "ws://from-env/")
	t.Setenv("PLAYGROUND_LOG_LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ws://from-env/", cfg.URL)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadConfigEnvPath(t *testing.T) {
	path := writeFile(t, "url: ws://via-env-path/\n")
	t.Setenv("PLAYGROUND_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ws://via-env-path/", cfg.URL)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"level":     "log:\n  level: loud\n",
		"id_format": "id_format: sequential\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
