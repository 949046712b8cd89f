// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath    string
	StoreBackend    string
	RedisAddr       string
	RedisPassword   string
	WatchDir        string
	LogPath         string
	LogLevel        string
	RedisDB         int
	SettleInterval  time.Duration
	SettlePeriod    time.Duration
	PersistInterval time.Duration
	IdleTimeout     time.Duration
	StreakReminder  time.Duration
}

// Default values
const (
	defaultRedisAddr       = "localhost:6379"
	defaultSettleInterval  = time.Second
	defaultSettlePeriod    = 10 * time.Second
	defaultPersistInterval = 5 * time.Minute
	defaultIdleTimeout     = 5 * time.Minute
	defaultStreakReminder  = time.Hour
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		DatabasePath:    getEnvString("DATABASE_PATH", getDefaultDatabasePath()),
		StoreBackend:    getEnvString("STORE_BACKEND", BackendSQLite),
		RedisAddr:       getEnvString("REDIS_ADDR", defaultRedisAddr),
		RedisPassword:   getEnvString("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		WatchDir:        getEnvString("WATCH_DIR", ""),
		LogPath:         getEnvString("LOG_PATH", getDefaultLogPath()),
		LogLevel:        getEnvString("LOG_LEVEL", "info"),
		SettleInterval:  getEnvDuration("SETTLE_INTERVAL", defaultSettleInterval),
		SettlePeriod:    getEnvDuration("SETTLE_PERIOD", defaultSettlePeriod),
		PersistInterval: getEnvDuration("PERSIST_INTERVAL", defaultPersistInterval),
		IdleTimeout:     getEnvDuration("FOCUS_IDLE_TIMEOUT", defaultIdleTimeout),
		StreakReminder:  getEnvDuration("STREAK_REMINDER", defaultStreakReminder),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and creates the database directory
// for the SQLite backend. It is called again after flags override values.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required for the %s backend", BackendSQLite)
		}
		if err := ensureDir(filepath.Dir(c.DatabasePath)); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the %s backend", BackendRedis)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q (want %s, %s or %s)",
			c.StoreBackend, BackendSQLite, BackendRedis, BackendMemory)
	}

	if c.SettleInterval <= 0 || c.SettlePeriod <= 0 || c.PersistInterval <= 0 || c.IdleTimeout <= 0 {
		return fmt.Errorf("settle, persist and idle intervals must be positive")
	}
	if c.StreakReminder < 0 {
		return fmt.Errorf("STREAK_REMINDER must not be negative")
	}
	return nil
}

// StoreLocation describes where stats are stored, for display.
func (c *Config) StoreLocation() string {
	switch c.StoreBackend {
	case BackendRedis:
		return fmt.Sprintf("redis://%s/%d", c.RedisAddr, c.RedisDB)
	case BackendMemory:
		return "memory (not persisted)"
	default:
		return c.DatabasePath
	}
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "codetime", ".env"))
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// getDefaultDatabasePath returns the default path for the SQLite database.
func getDefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "codetime.db"
	}
	return filepath.Join(home, ".config", "codetime", "codetime.db")
}

// getDefaultLogPath returns the default log file path.
func getDefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ctd.log"
	}
	return filepath.Join(home, ".config", "codetime", "ctd.log")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
