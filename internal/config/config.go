// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// HTTP server
	Port        string
	Environment string

	// CORS allow-list for the dashboard frontend.
	AllowedOrigins []string

	// Provider API keys. A provider with an empty key is not configured
	// and is skipped during aggregation.
	OpenAQAPIKey  string
	WAQIToken     string
	IQAirAPIKey   string
	WeatherAPIKey string

	// AI analysis (OpenAI-compatible chat completions endpoint).
	AIAPIKey  string
	AIBaseURL string
	AIModel   string

	// Cache
	SnapshotTTL   time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Refresh loop
	RefreshInterval time.Duration

	// Auth
	JWTSigningKey string

	// Telemetry
	OTLPEndpoint string
	OTelEnabled  bool

	// Worker (Pub/Sub)
	PubSubProjectID    string
	PubSubSubscription string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	snapshotTTL, err := parseDuration("SNAPSHOT_TTL", "15m")
	if err != nil {
		return nil, err
	}

	refreshInterval, err := parseDuration("REFRESH_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}

	redisDB, err := parseInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        envOrDefault("APP_PORT", "8080"),
		Environment: envOrDefault("APP_ENV", "development"),

		AllowedOrigins: parseOrigins(envOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		OpenAQAPIKey:  os.Getenv("OPENAQ_API_KEY"),
		WAQIToken:     os.Getenv("WAQI_TOKEN"),
		IQAirAPIKey:   os.Getenv("IQAIR_API_KEY"),
		WeatherAPIKey: os.Getenv("WEATHERAPI_KEY"),

		AIAPIKey:  os.Getenv("AI_API_KEY"),
		AIBaseURL: envOrDefault("AI_BASE_URL", "https://api.openai.com/v1"),
		AIModel:   envOrDefault("AI_MODEL", "gpt-4o-mini"),

		SnapshotTTL:   snapshotTTL,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		RefreshInterval: refreshInterval,

		JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),

		OTLPEndpoint: envOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelEnabled:  os.Getenv("OTEL_ENABLED") == "true",

		PubSubProjectID:    os.Getenv("PUBSUB_PROJECT_ID"),
		PubSubSubscription: envOrDefault("PUBSUB_SUBSCRIPTION", "airsight-refresh-jobs"),
	}

	return cfg, nil
}

// ConfiguredProviders returns the names of providers that have credentials.
func (c *Config) ConfiguredProviders() map[string]bool {
	return map[string]bool{
		"openaq":     c.OpenAQAPIKey != "",
		"waqi":       c.WAQIToken != "",
		"iqair":      c.IQAirAPIKey != "",
		"weatherapi": c.WeatherAPIKey != "",
		"ai":         c.AIAPIKey != "",
		"redis":      c.RedisAddr != "",
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	raw := envOrDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return n, nil
}

func parseOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
