package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string `validate:"required"`
	Port               string `validate:"required"`
	RedisURL           string
	CORSAllowedOrigins []string

	LogFormat string `validate:"oneof=json console text"`
	LogLevel  string `validate:"oneof=trace debug info warn error fatal panic disabled"`

	MetricsEnabled   bool
	MetricsNamespace string `validate:"required"`
	MetricsBuckets   string

	TracingEnabled       bool
	OTLPEndpoint         string
	TracingSamplingRatio float64 `validate:"gte=0,lte=1"`

	QuoteCacheTTL      time.Duration `validate:"gte=0"`
	RateLimitWindow    time.Duration `validate:"gte=0"`
	RateLimitMax       int           `validate:"gte=0"`
	BodyLimitBytes     int64         `validate:"gte=0"`
	SecurityHeaders    bool
	ShutdownTimeout    time.Duration `validate:"gt=0"`
	ReadyRedisTimeout  time.Duration `validate:"gt=0"`
	JWTSecret          string
	JWTIssuer          string
	JWTAudience        string
	JWTClockSkew       time.Duration `validate:"gte=0"`
	PprofEnabled       bool
	PprofBasicAuthUser string
	PprofBasicAuthPass string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:               valueOrDefault(k.String("APP_ENV"), "development"),
		Port:                 valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:             strings.TrimSpace(k.String("REDIS_URL")),
		CORSAllowedOrigins:   splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		LogFormat:            strings.ToLower(valueOrDefault(k.String("OBS_LOG_FORMAT"), "json")),
		LogLevel:             strings.ToLower(valueOrDefault(k.String("OBS_LOG_LEVEL"), "info")),
		MetricsEnabled:       parseBool(k.String("OBS_ENABLE_PROMETHEUS"), true),
		MetricsNamespace:     valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "toko_pricing"),
		MetricsBuckets:       k.String("OBS_METRICS_BUCKETS_MS"),
		TracingEnabled:       parseBool(k.String("OBS_ENABLE_TRACING"), false),
		OTLPEndpoint:         strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
		TracingSamplingRatio: parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
		QuoteCacheTTL:        parseDuration(k.String("QUOTE_CACHE_TTL"), "5m"),
		RateLimitWindow:      parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		RateLimitMax:         parseInt(k.String("RATE_LIMIT_MAX"), 120),
		BodyLimitBytes:       int64(parseInt(k.String("HTTP_BODY_LIMIT_BYTES"), 1<<20)),
		SecurityHeaders:      parseBool(k.String("SECURITY_HEADERS_ENABLED"), true),
		ShutdownTimeout:      parseDuration(k.String("HTTP_SHUTDOWN_TIMEOUT"), "15s"),
		ReadyRedisTimeout:    time.Duration(parseInt(k.String("HEALTH_READY_REDIS_TIMEOUT_MS"), 300)) * time.Millisecond,
		JWTSecret:            k.String("AUTH_JWT_SECRET"),
		JWTIssuer:            strings.TrimSpace(k.String("AUTH_JWT_ISSUER")),
		JWTAudience:          strings.TrimSpace(k.String("AUTH_JWT_AUDIENCE")),
		JWTClockSkew:         parseDuration(k.String("AUTH_JWT_CLOCK_SKEW"), "30s"),
		PprofEnabled:         parseBool(k.String("OBS_ENABLE_PPROF"), false),
		PprofBasicAuthUser:   k.String("SECURE_PPROF_BASIC_AUTH_USER"),
		PprofBasicAuthPass:   k.String("SECURE_PPROF_BASIC_AUTH_PASS"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// AuthEnabled reports whether quote requests must carry a bearer token.
func (c *Config) AuthEnabled() bool {
	return strings.TrimSpace(c.JWTSecret) != ""
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func parseFloat(value string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
