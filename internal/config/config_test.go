package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ENV", "LOG_LEVEL", "HTTP_ADDR", "DB_DSN", "MIGRATIONS_DIR", "FLUSH_INTERVAL", "TELEGRAM_TOKEN", "RATE_LIMIT_PER_MINUTE", "RATE_LIMIT_BURST"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.MigrationsDir, "embedded schema")
	assert.Equal(t, 2*time.Second, cfg.FlushInterval)
	assert.False(t, cfg.HasDatabase())
	assert.False(t, cfg.HasTelegram())
	assert.Equal(t, 300, cfg.RateLimitPerMinute)
	assert.Equal(t, 30, cfg.RateLimitBurst)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("DB_DSN", "postgres://localhost/lessons")
	t.Setenv("FLUSH_INTERVAL", "500ms")
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, 500*time.Millisecond, cfg.FlushInterval)
	assert.True(t, cfg.HasDatabase())
	assert.True(t, cfg.HasTelegram())
	assert.Equal(t, 0, cfg.RateLimitPerMinute)
}

func TestLoadInvalidInterval(t *testing.T) {
	t.Setenv("FLUSH_INTERVAL", "soon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("FLUSH_INTERVAL", "-1s")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadInvalidRateLimit(t *testing.T) {
	t.Setenv("FLUSH_INTERVAL", "")
	t.Setenv("RATE_LIMIT_BURST", "many")
	_, err := Load()
	assert.Error(t, err)
}
