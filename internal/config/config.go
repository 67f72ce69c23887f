package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/coderedlink/coderedlink/internal/logger"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	App       AppConfig
	Codes     CodeConfig
	Analytics AnalyticsConfig
	RateLimit RateLimitConfig
	Log       logger.Config
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database settings. Driver is either "sqlite3" or
// "postgres"; DSN is passed to the driver unchanged.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	BaseURL      string
	Environment  string // "development", "production", "testing"
	NotFoundPath string // where broken/missing redirects land
	ListLimit    int    // cap for GET /api/links, 0 disables
}

// CodeConfig controls short-code allocation.
type CodeConfig struct {
	Length       int  // length of generated codes
	CustomMin    int  // minimum length for user-supplied codes
	CustomMax    int  // maximum length for user-supplied codes
	MaxAttempts  int  // generation retries before giving up
	ReuseDeleted bool // when true, soft-deleted codes may be claimed again
}

// AnalyticsConfig controls the fire-and-forget click recorder.
type AnalyticsConfig struct {
	BufferSize int // click event channel buffer
	Workers    int // number of recording goroutines
}

// RateLimitConfig holds rate limiter settings
type RateLimitConfig struct {
	Enabled  bool
	Rate     int
	Burst    int
	Interval time.Duration
	Cleanup  time.Duration
}

// Load reads configuration from the environment, after loading an optional
// .env file.
func Load() (*Config, error) {
	_ = godotenv.Load() // missing .env is fine

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "sqlite3"),
			DSN:    getEnv("DB_DSN", "./data/links.db"),
		},
		App: AppConfig{
			BaseURL:      getEnv("BASE_URL", ""),
			Environment:  getEnv("ENVIRONMENT", "development"),
			NotFoundPath: getEnv("NOT_FOUND_PATH", "/404"),
			ListLimit:    getIntEnv("LIST_LIMIT", 0),
		},
		Codes: CodeConfig{
			Length:       getIntEnv("CODE_LENGTH", 6),
			CustomMin:    getIntEnv("CODE_CUSTOM_MIN", 4),
			CustomMax:    getIntEnv("CODE_CUSTOM_MAX", 8),
			MaxAttempts:  getIntEnv("CODE_MAX_ATTEMPTS", 5),
			ReuseDeleted: getBoolEnv("CODE_REUSE_DELETED", false),
		},
		Analytics: AnalyticsConfig{
			BufferSize: getIntEnv("CLICK_BUFFER_SIZE", 100),
			Workers:    getIntEnv("CLICK_WORKERS", 2),
		},
		RateLimit: RateLimitConfig{
			Enabled:  getBoolEnv("RATE_LIMIT_ENABLED", false),
			Rate:     getIntEnv("RATE_LIMIT_RATE", 10),
			Burst:    getIntEnv("RATE_LIMIT_BURST", 20),
			Interval: getDurationEnv("RATE_LIMIT_INTERVAL", time.Second),
			Cleanup:  getDurationEnv("RATE_LIMIT_CLEANUP", 5*time.Minute),
		},
		Log: logger.Config{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
	cfg.Log.Environment = cfg.App.Environment

	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = fmt.Sprintf("http://localhost:%s", cfg.Server.Port)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %s (must be 1-65535)", c.Server.Port)
	}

	if c.Database.Driver != "sqlite3" && c.Database.Driver != "postgres" {
		return fmt.Errorf("invalid database driver: %s (must be sqlite3 or postgres)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database DSN cannot be empty")
	}

	validEnvs := map[string]bool{
		"development": true,
		"production":  true,
		"testing":     true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, production, or testing)", c.App.Environment)
	}

	if c.Codes.Length < 1 {
		return fmt.Errorf("invalid code length: %d", c.Codes.Length)
	}
	if c.Codes.CustomMin < 1 || c.Codes.CustomMax < c.Codes.CustomMin {
		return fmt.Errorf("invalid custom code bounds: %d-%d", c.Codes.CustomMin, c.Codes.CustomMax)
	}
	if c.Codes.MaxAttempts < 1 {
		return fmt.Errorf("invalid code max attempts: %d", c.Codes.MaxAttempts)
	}

	if c.Analytics.BufferSize < 1 {
		return fmt.Errorf("invalid click buffer size: %d", c.Analytics.BufferSize)
	}
	if c.Analytics.Workers < 1 {
		return fmt.Errorf("invalid click worker count: %d", c.Analytics.Workers)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// ============================================================
// HELPER FUNCTIONS
// ============================================================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}
