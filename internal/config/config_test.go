package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-pricing/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"APP_ENV":               "",
		"PORT":                  "",
		"REDIS_URL":             "",
		"OBS_LOG_FORMAT":        "",
		"OBS_LOG_LEVEL":         "",
		"QUOTE_CACHE_TTL":       "",
		"RATE_LIMIT_MAX":        "",
		"AUTH_JWT_SECRET":       "",
		"OBS_ENABLE_PROMETHEUS": "",
	})
	require.NoError(t, err)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, 5*time.Minute, cfg.QuoteCacheTTL)
	require.Equal(t, 120, cfg.RateLimitMax)
	require.True(t, cfg.MetricsEnabled)
	require.False(t, cfg.AuthEnabled())
	require.Empty(t, cfg.RedisURL)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"PORT":                 ":9090",
		"REDIS_URL":            "redis://localhost:6379/0",
		"CORS_ALLOWED_ORIGINS": "https://a.example, ,https://b.example",
		"OBS_LOG_LEVEL":        "DEBUG",
		"QUOTE_CACHE_TTL":      "30s",
		"RATE_LIMIT_WINDOW":    "bogus",
		"AUTH_JWT_SECRET":      "s3cret",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 30*time.Second, cfg.QuoteCacheTTL)
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
	require.True(t, cfg.AuthEnabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{"OBS_LOG_FORMAT": "xml"})
	require.Error(t, err)

	_, err = config.LoadForTests(map[string]string{"OBS_TRACING_SAMPLING_RATIO": "1.5"})
	require.Error(t, err)

	_, err = config.LoadForTests(map[string]string{"RATE_LIMIT_MAX": "-1"})
	require.Error(t, err)
}
