package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// Database. A postgres:// URL selects the postgres driver; anything
	// else is treated as a SQLite file path (":memory:" allowed).
	DatabaseURL string `env:"DATABASE_URL" default:"./data/versehub.db"`

	// Redis count cache. Empty REDIS_ADDR disables caching entirely.
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CountCacheTTL time.Duration `env:"COUNT_CACHE_TTL" default:"1h"`

	// Cursor engine
	BatchSize         int `env:"CURSOR_BATCH_SIZE" default:"100"`
	PredecessorWindow int `env:"PREDECESSOR_WINDOW" default:"100"`

	// Progress calculator
	StreakWindow int `env:"STREAK_WINDOW" default:"30"`

	// Importer
	CorpusDataPath string  `env:"CORPUS_DATA_PATH" default:"./data/corpora"`
	ImportRate     float64 `env:"IMPORT_RATE" default:"10"`

	// Development
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// A missing .env file is fine — system env vars still apply.
	if err := godotenv.Load(".env"); err != nil {
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	config := &Config{}

	if err := loadEnvString(&config.GoEnv, "GO_ENV", "development"); err != nil {
		return nil, err
	}

	// Database
	if err := loadEnvString(&config.DatabaseURL, "DATABASE_URL", "./data/versehub.db"); err != nil {
		return nil, err
	}

	// Redis
	if err := loadEnvString(&config.RedisAddr, "REDIS_ADDR", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.RedisPassword, "REDIS_PASSWORD", ""); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.CountCacheTTL, "COUNT_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}

	// Cursor engine
	if err := loadEnvInt(&config.BatchSize, "CURSOR_BATCH_SIZE", 100); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.PredecessorWindow, "PREDECESSOR_WINDOW", 100); err != nil {
		return nil, err
	}

	// Progress
	if err := loadEnvInt(&config.StreakWindow, "STREAK_WINDOW", 30); err != nil {
		return nil, err
	}

	// Importer
	if err := loadEnvString(&config.CorpusDataPath, "CORPUS_DATA_PATH", "./data/corpora"); err != nil {
		return nil, err
	}
	if err := loadEnvFloat(&config.ImportRate, "IMPORT_RATE", 10); err != nil {
		return nil, err
	}

	// Development
	if err := loadEnvString(&config.LogLevel, "LOG_LEVEL", "info"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.LogFormat, "LOG_FORMAT", "text"); err != nil {
		return nil, err
	}
	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvFloat(target *float64, key string, defaultValue float64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if c.BatchSize < 1 {
		errors = append(errors, "CURSOR_BATCH_SIZE must be at least 1")
	}
	if c.PredecessorWindow < 1 {
		errors = append(errors, "PREDECESSOR_WINDOW must be at least 1")
	}
	if c.StreakWindow < 1 {
		errors = append(errors, "STREAK_WINDOW must be at least 1")
	}
	if c.ImportRate <= 0 {
		errors = append(errors, "IMPORT_RATE must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// Helper function to check if slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
