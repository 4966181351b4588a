package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanq16/resumer/internal/utils"
)

func TestLoadMissingOptionalFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingRequiredFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"), true)
	assert.Error(t, err)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
staging: /data/.staging
completed: /data/done
max_attempts: 5
retry_delay: 500ms
max_concurrent: 4
timeout: 10m
headers:
  X-Team: storage
urls:
  - https://example.com/a.bin
`), 0644))

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, "/data/.staging", cfg.Staging)
	assert.Equal(t, "/data/done", cfg.Completed)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, 4, cfg.MaxConcurrent)
	assert.Equal(t, 10*time.Minute, cfg.Timeout)
	assert.Equal(t, map[string]string{"X-Team": "storage"}, cfg.Headers)
	assert.Equal(t, []string{"https://example.com/a.bin"}, cfg.URLs)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_attempts: 0\n"), 0644))
	_, err := Load(path, true)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("staging: [oops\n"), 0644))
	_, err = Load(path, true)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, utils.DefaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, utils.DefaultRetryDelay, cfg.RetryDelay)

	bad := Default()
	bad.RetryDelay = -time.Second
	assert.Error(t, bad.Validate())

	bad = Default()
	bad.MaxConcurrent = -1
	assert.Error(t, bad.Validate())

	bad = Default()
	bad.Completed = ""
	assert.Error(t, bad.Validate())
}
