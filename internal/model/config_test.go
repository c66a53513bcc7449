package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigReturnsDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", cfg.Backend.BaseURL)
	assert.Equal(t, 30, cfg.Backend.RequestTimeoutSec)
	assert.Equal(t, 15, cfg.Backend.ConfirmPollTimeoutSec)
	assert.Equal(t, DefaultPageSize, cfg.Display.PageSize)
	assert.Equal(t, 10, cfg.Display.TestResultDisplaySec)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotEmpty(t, cfg.CachePath)
}

func TestConfigSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	cfg.Backend.BaseURL = "https://mail.internal:9443/api"
	cfg.Backend.ConfirmPollTimeoutSec = 30
	cfg.Display.Theme = "solarized"
	cfg.Log.Level = "debug"

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://mail.internal:9443/api", loaded.Backend.BaseURL)
	assert.Equal(t, 30, loaded.Backend.ConfirmPollTimeoutSec)
	assert.Equal(t, "solarized", loaded.Display.Theme)
	assert.Equal(t, "debug", loaded.Log.Level)

	// Untouched keys keep their defaults through the round trip.
	assert.Equal(t, 30, loaded.Backend.RequestTimeoutSec)
	assert.Equal(t, DefaultPageSize, loaded.Display.PageSize)
}

func TestSaveConfigCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "config.yaml")

	require.NoError(t, SaveConfig(path, defaultAppConfig()))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", cfg.Backend.BaseURL)
}
