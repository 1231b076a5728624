package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)

	assert.Equal(t, "https://brapi.dev/api", cfg.Brapi.BaseURL)
	assert.Empty(t, cfg.Brapi.Token)
	assert.Equal(t, 30*time.Second, cfg.Brapi.Timeout)
	assert.Equal(t, 10, cfg.Brapi.RateLimitRPS)

	assert.Equal(t, 300, cfg.Screener.UniverseLimit)
	assert.Equal(t, 10, cfg.Screener.BatchSize)
	assert.Equal(t, 4, cfg.Screener.Workers)
	assert.Equal(t, 15, cfg.Screener.DefaultLimit)
	assert.Equal(t, 100, cfg.Screener.MaxLimit)
	assert.Equal(t, 40, cfg.Screener.TopFloor)

	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("BRAPI_BASE_URL", "https://example.test/api")
	t.Setenv("BRAPI_TOKEN", "abc123")
	t.Setenv("BRAPI_TIMEOUT", "5s")
	t.Setenv("SCREENER_BATCH_SIZE", "20")
	t.Setenv("SCREENER_WORKERS", "8")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("SCHEDULER_ENABLED", "true")
	t.Setenv("SCHEDULER_SCHEDULE", "0 0 * * * *")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "https://example.test/api", cfg.Brapi.BaseURL)
	assert.Equal(t, "abc123", cfg.Brapi.Token)
	assert.Equal(t, 5*time.Second, cfg.Brapi.Timeout)
	assert.Equal(t, 20, cfg.Screener.BatchSize)
	assert.Equal(t, 8, cfg.Screener.Workers)
	assert.True(t, cfg.Redis.Enabled)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "0 0 * * * *", cfg.Scheduler.Schedule)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SCREENER_WORKERS", "many")
	t.Setenv("REDIS_ENABLED", "yep")
	t.Setenv("BRAPI_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Screener.Workers)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Brapi.Timeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"unknown env", "ENV", "testing", "ENV must be one of"},
		{"batch size too small", "SCREENER_BATCH_SIZE", "0", "SCREENER_BATCH_SIZE"},
		{"batch size above provider cap", "SCREENER_BATCH_SIZE", "21", "SCREENER_BATCH_SIZE"},
		{"workers below one", "SCREENER_WORKERS", "-1", "SCREENER_WORKERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
