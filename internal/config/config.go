package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// RetryConfig bounds sink write retries.
type RetryConfig struct {
	Attempts   int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL string
	DBTrace     string
	JWTSecret   string
	Port        string
	TokenTTL    time.Duration

	AdminEmail        string
	AdminPasswordHash string
	RateLimitImport   RateLimitConfig
	RateLimitLogin    RateLimitConfig

	SupabaseURL string
	SupabaseKey string
	HTTPTimeout time.Duration
	Retry       RetryConfig

	RedisURL string
	LockTTL  time.Duration
	CacheTTL time.Duration

	NatsURL     string
	NatsSubject string

	GCSBucket          string
	GCSCredentialsFile string
	ArtifactDir        string

	// ImportMode is "insert" or "upsert".
	ImportMode     string
	DefaultCountry string
	PoolsFile      string
	LogLevel       string
	LogFormat      string
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBTrace:     getEnv("DB_TRACE", "warn"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret"),
		Port:        getEnv("PORT", "8080"),
		TokenTTL:    parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),

		AdminEmail:        getEnv("ADMIN_EMAIL", "admin@bara.local"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		SupabaseURL: strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseKey: getEnv("SUPABASE_SERVICE_KEY", os.Getenv("SUPABASE_ANON_KEY")),
		HTTPTimeout: parseDuration(getEnv("HTTP_TIMEOUT", "15s"), 15*time.Second),
		Retry: RetryConfig{
			Attempts:   parseInt(getEnv("SINK_MAX_RETRIES", "3"), 3),
			Backoff:    parseDuration(getEnv("SINK_BACKOFF", "500ms"), 500*time.Millisecond),
			MaxBackoff: parseDuration(getEnv("SINK_MAX_BACKOFF", "5s"), 5*time.Second),
		},

		RedisURL: os.Getenv("REDIS_URL"),
		LockTTL:  parseDuration(getEnv("LOCK_TTL", "30m"), 30*time.Minute),
		CacheTTL: parseDuration(getEnv("LOOKUP_CACHE_TTL", "24h"), 24*time.Hour),

		NatsURL:     os.Getenv("NATS_URL"),
		NatsSubject: getEnv("NATS_SUBJECT", "seeder.runs"),

		GCSBucket:          os.Getenv("GCS_BUCKET"),
		GCSCredentialsFile: os.Getenv("GCS_CREDENTIALS_FILE"),
		ArtifactDir:        getEnv("ARTIFACT_DIR", "artifacts"),

		ImportMode:     strings.ToLower(getEnv("IMPORT_MODE", "insert")),
		DefaultCountry: os.Getenv("DEFAULT_COUNTRY"),
		PoolsFile:      os.Getenv("POOLS_FILE"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}
	if cfg.ImportMode != "insert" && cfg.ImportMode != "upsert" {
		return nil, fmt.Errorf("invalid IMPORT_MODE %q: use insert or upsert", cfg.ImportMode)
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_IMPORT", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_IMPORT value: %w", err)
	}
	cfg.RateLimitImport = rl

	if cfg.RateLimitLogin, err = parseRateLimit(getEnv("RATE_LIMIT_LOGIN", "10/min")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_LOGIN value: %w", err)
	}

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(input string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
