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

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 10*time.Second, cfg.Timeout.Duration)
	assert.Equal(t, 25, cfg.Concurrency)
	assert.Equal(t, 50, cfg.ConnLimit)
	assert.Equal(t, 3, cfg.Retries)
	assert.EqualValues(t, 120000, cfg.MaxBodyBytes)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
timeout: 5s
concurrency: 8
rate_limit_per_host:
  requests: 4
  window: 2s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Timeout.Duration)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 50, cfg.ConnLimit, "untouched keys keep defaults")
	assert.Equal(t, 4, cfg.RateLimitPerHost.Requests)
	assert.Equal(t, 2*time.Second, cfg.RateLimitPerHost.Window.Duration)
}

func TestDurationAcceptsNumericSeconds(t *testing.T) {
	cfg, err := Load(writeFile(t, "timeout: 15\n"))
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.Timeout.Duration)
}

func TestLoadRejectsBadInput(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "timeout: [nope]\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "concurrency: -3\n"))
	assert.Error(t, err)
}
