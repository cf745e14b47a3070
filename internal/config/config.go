package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"finboard/internal/log"
)

// Backend names accepted by DATA_BACKEND.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int
	ShutdownTimeout    time.Duration

	// Logging
	LogLevel string

	// Selection store
	DataBackend  string
	SQLiteDBPath string

	// AMQP, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Board
	BoardSeed     uint64
	InitialPeriod string
	CacheSize     int
	CacheTTL      time.Duration
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataBackend:  getEnv("DATA_BACKEND", BackendMemory),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finboard.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finboard"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "period_selected"),

		BoardSeed:     getEnvUint64("BOARD_SEED", 0),
		InitialPeriod: getEnv("BOARD_PERIOD", ""),
		CacheSize:     getEnvInt("CACHE_SIZE", 64),
		CacheTTL:      getEnvDuration("CACHE_TTL", 10*time.Minute),
	}
}

// AMQPEnabled reports whether period events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Validate collects every problem into a single error.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	validBackends := []string{BackendMemory, BackendSQLite}
	switch c.DataBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.InitialPeriod != "" {
		if _, err := parsePeriod(c.InitialPeriod); err != nil {
			errors = append(errors, fmt.Sprintf("invalid board period '%s': %v", c.InitialPeriod, err))
		}
	}

	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	} else if c.CacheSize > 10000 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at most 10000", c.CacheSize))
	}
	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}
	if c.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseUint(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
