package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 15*time.Minute, cfg.SnapshotTTL)
	assert.Equal(t, 15*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "https://api.openai.com/v1", cfg.AIBaseURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("SNAPSHOT_TTL", "5m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://dash.example.org, https://staging.example.org")
	t.Setenv("WAQI_TOKEN", "token-123")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.SnapshotTTL)
	assert.Equal(t, []string{"https://dash.example.org", "https://staging.example.org"}, cfg.AllowedOrigins)

	flags := cfg.ConfiguredProviders()
	assert.True(t, flags["waqi"])
	assert.True(t, flags["redis"])
	assert.False(t, flags["openaq"])
	assert.False(t, flags["ai"])
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("SNAPSHOT_TTL", "not-a-duration")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "two")

	_, err := config.Load()
	require.Error(t, err)
}
