// Package config loads process-level configuration for the scheduler.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every process-level setting the scheduler and its admin
// surface read at startup.
type Config struct {
	// Application
	AppEnv  string
	AppPort string
	AppHost string

	// Store
	DatabaseURL       string
	DBMaxConnections  int
	DBIdleConnections int
	DBConnLifetime    time.Duration

	// Scheduler
	SchedulerTimezone string
	MaxConcurrentJobs int
	MisfireGrace      time.Duration

	// HTTP Executor
	DefaultTimeout time.Duration
	ConnectTimeout time.Duration
	MaxRetries     int

	// Logging
	LogLevel string

	// Admin API rate limiting
	RateLimit struct {
		Enabled           bool
		RequestsPerSecond float64
		Burst             int
	}

	// CORS
	CORS struct {
		AllowedOrigins   []string
		AllowedMethods   []string
		AllowedHeaders   []string
		AllowCredentials bool
		MaxAge           int
	}
}

// Load reads a .env file (if present) and then the process environment,
// falling back to defaults for anything unset.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppEnv:  getEnv("APP_ENV", "development"),
		AppPort: getEnv("APP_PORT", "8080"),
		AppHost: getEnv("APP_HOST", "0.0.0.0"),

		DatabaseURL:       getEnv("DATABASE_URL", "sqlite+local:///./scheduler.db"),
		DBMaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
		DBIdleConnections: getEnvAsInt("DB_IDLE_CONNECTIONS", 5),
		DBConnLifetime:    time.Duration(getEnvAsInt("DB_CONNECTION_LIFETIME", 300)) * time.Second,

		SchedulerTimezone: getEnv("SCHEDULER_TIMEZONE", "UTC"),
		MaxConcurrentJobs: getEnvAsInt("MAX_CONCURRENT_JOBS", 100),
		MisfireGrace:      parseDuration(getEnv("MISFIRE_GRACE", "60s"), 60*time.Second),

		DefaultTimeout: parseDuration(getEnv("DEFAULT_TIMEOUT", "30s"), 30*time.Second),
		ConnectTimeout: parseDuration(getEnv("CONNECT_TIMEOUT", "10s"), 10*time.Second),
		MaxRetries:     getEnvAsInt("MAX_RETRIES", 0),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	cfg.RateLimit.Enabled = getEnvAsBool("RATE_LIMIT_ENABLED", true)
	cfg.RateLimit.RequestsPerSecond = getEnvAsFloat("RATE_LIMIT_RPS", 10)
	cfg.RateLimit.Burst = getEnvAsInt("RATE_LIMIT_BURST", 20)

	cfg.CORS.AllowedOrigins = strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "*"), ",")
	cfg.CORS.AllowedMethods = strings.Split(getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS,PATCH"), ",")
	cfg.CORS.AllowedHeaders = strings.Split(getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization,X-Request-ID"), ",")
	cfg.CORS.AllowCredentials = getEnvAsBool("CORS_ALLOW_CREDENTIALS", false)
	cfg.CORS.MaxAge = getEnvAsInt("CORS_MAX_AGE", 86400)

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
