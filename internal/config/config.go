package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Session
	IdleLimitSeconds int           // countdown start; logout when it reaches zero
	TickInterval     time.Duration // countdown tick length
	LoanDelay        time.Duration // processing delay before a loan is credited

	// JWT / Auth
	JWTSecret    string
	JWTAccessTTL time.Duration

	// Lockout
	LockoutMaxFailures uint32
	LockoutDuration    time.Duration

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string
	EnableTraces bool
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		IdleLimitSeconds: getEnvInt("IDLE_LIMIT_SECONDS", 300),
		TickInterval:     getEnvDuration("TICK_INTERVAL", time.Second),
		LoanDelay:        getEnvDuration("LOAN_DELAY", 2500*time.Millisecond),

		JWTSecret:    getEnv("JWT_SECRET", "bankist-default-dev-secret-change-me"),
		JWTAccessTTL: getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),

		LockoutMaxFailures: uint32(getEnvInt("LOCKOUT_MAX_FAILURES", 3)),
		LockoutDuration:    getEnvDuration("LOCKOUT_DURATION", time.Minute),

		CacheTTL: getEnvDuration("CACHE_TTL", time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		EnableTraces: getEnv("ENABLE_TRACES", "false") == "true",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
