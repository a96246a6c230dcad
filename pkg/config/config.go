package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// Ranking
	StrictStrategy bool
	SuggestLimit   int

	// HTTP API
	APIAddr string

	// Redis result cache; empty disables caching.
	RedisURL string
	CacheTTL time.Duration

	// RabbitMQ event publishing; empty uses a no-op publisher.
	RabbitMQURL string

	// Remote analysis client
	RemoteURL     string
	RemoteTimeout time.Duration

	// Circuit breakers
	BreakerFailures int
	BreakerTimeout  time.Duration

	// MCP
	MCPAddr      string
	MCPAuthToken string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StrictStrategy: getBoolEnv("TASKRANK_STRICT_STRATEGY", false),
		SuggestLimit:   getIntEnv("TASKRANK_SUGGEST_LIMIT", 3),

		APIAddr: getEnv("TASKRANK_API_ADDR", "0.0.0.0:8080"),

		RedisURL: getEnv("REDIS_URL", ""),
		CacheTTL: getDurationEnv("TASKRANK_CACHE_TTL", 10*time.Minute),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		RemoteURL:     strings.TrimRight(getEnv("TASKRANK_REMOTE_URL", ""), "/"),
		RemoteTimeout: getDurationEnv("TASKRANK_REMOTE_TIMEOUT", 5*time.Second),

		BreakerFailures: getIntEnv("TASKRANK_BREAKER_FAILURES", 5),
		BreakerTimeout:  getDurationEnv("TASKRANK_BREAKER_TIMEOUT", 30*time.Second),

		MCPAddr:      getEnv("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values that would make a component unusable.
func (c *Config) Validate() error {
	if c.SuggestLimit < 1 {
		return fmt.Errorf("TASKRANK_SUGGEST_LIMIT must be at least 1, got %d", c.SuggestLimit)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("TASKRANK_CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	if c.BreakerFailures < 1 {
		return fmt.Errorf("TASKRANK_BREAKER_FAILURES must be at least 1, got %d", c.BreakerFailures)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// CacheEnabled reports whether a Redis URL is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}

// EventsEnabled reports whether a RabbitMQ URL is configured.
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
