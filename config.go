package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/example/todo-list/modules/cache"
	taskmod "github.com/example/todo-list/modules/task"
)

// Config is the process configuration, read from the environment.
type Config struct {
	HTTPPort int

	DBDriver string
	DBDSN    string

	// RedisAddr enables caching and rate limiting when set.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	CachePrefix   string

	RateLimit  int
	RateWindow time.Duration

	ShutdownTimeout time.Duration
	AccessLog       bool
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() Config {
	return Config{
		HTTPPort:        getEnvInt("HTTP_PORT", 3000),
		DBDriver:        getEnv("DB_DRIVER", taskmod.DriverSQLite),
		DBDSN:           getEnv("DB_DSN", "./tasks.db"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		CacheTTL:        getEnvDuration("CACHE_TTL", 5*time.Minute),
		CachePrefix:     getEnv("CACHE_PREFIX", "task:"),
		RateLimit:       getEnvInt("RATE_LIMIT", 120),
		RateWindow:      getEnvDuration("RATE_WINDOW", time.Minute),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		AccessLog:       getEnvBool("ACCESS_LOG", true),
	}
}

// Validate rejects configurations the app cannot start with.
func (c Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT out of range: %d", c.HTTPPort)
	}
	switch c.DBDriver {
	case taskmod.DriverSQLite, taskmod.DriverMySQL, taskmod.DriverPostgres:
	default:
		return fmt.Errorf("DB_DRIVER must be one of sqlite, mysql, postgres: %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT must be positive: %d", c.RateLimit)
	}
	if c.RateWindow <= 0 {
		return fmt.Errorf("RATE_WINDOW must be positive: %s", c.RateWindow)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive: %s", c.CacheTTL)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive: %s", c.ShutdownTimeout)
	}
	return nil
}

// CacheEnabled reports whether Redis is configured.
func (c Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.HTTPPort)
}

func (c Config) storeConfig() taskmod.StoreConfig {
	return taskmod.StoreConfig{Driver: c.DBDriver, DSN: c.DBDSN}
}

func (c Config) cacheConfig() cache.Config {
	return cache.Config{
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		Prefix:        c.CachePrefix,
		TTL:           c.CacheTTL,
	}
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Warning: invalid bool value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}
