package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "")
	t.Setenv("POLL_CEILING", "")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg := Load()

	assert.Equal(t, 3*time.Second, cfg.Polling.Interval)
	assert.Equal(t, 60*time.Second, cfg.Polling.Ceiling)
	assert.False(t, cfg.Polling.SilentTimeout)
	assert.Equal(t, "/upload-documento", cfg.Gateway.UploadPath)
	assert.Equal(t, "memory", cfg.Storage.Driver)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "500ms")
	t.Setenv("POLL_CEILING", "90")
	t.Setenv("POLL_SILENT_TIMEOUT", "true")
	t.Setenv("GATEWAY_RATE_LIMIT", "2.5")
	t.Setenv("GATEWAY_RATE_BURST", "not-a-number")

	cfg := Load()

	assert.Equal(t, 500*time.Millisecond, cfg.Polling.Interval)
	assert.Equal(t, 90*time.Second, cfg.Polling.Ceiling)
	assert.True(t, cfg.Polling.SilentTimeout)
	assert.Equal(t, 2.5, cfg.Gateway.RateLimit)
	assert.Equal(t, 5, cfg.Gateway.RateBurst)
}
