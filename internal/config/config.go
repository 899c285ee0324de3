package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig
	API      APIConfig
	Worker   WorkerConfig
	CRMAPI   CRMAPIConfig
	Retry    RetryConfig
	Auth     AuthConfig
	Logging  LoggingConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// APIConfig holds API server settings
type APIConfig struct {
	Port string
	Host string
}

// WorkerConfig holds worker settings
type WorkerConfig struct {
	PollInterval time.Duration
	Concurrency  int
	JobRetention time.Duration
}

// CRMAPIConfig holds CRM backend client settings. LegacyURL is the older
// endpoint tier used as a fallback while mixed backend versions are still
// deployed; leave it empty to disable the fallback.
type CRMAPIConfig struct {
	URL       string
	LegacyURL string
	Token     string
	Timeout   time.Duration
}

// RetryConfig holds retry logic settings for activity delivery
type RetryConfig struct {
	MaxAttempts int
	BackoffBase time.Duration
}

// AuthConfig holds authentication settings
type AuthConfig struct {
	Enabled      bool
	SharedSecret string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5433"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "reassignment_gateway"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		API: APIConfig{
			Port: getEnv("API_PORT", "8080"),
			Host: getEnv("API_HOST", "0.0.0.0"),
		},
		Worker: WorkerConfig{
			PollInterval: parseDuration(getEnv("WORKER_POLL_INTERVAL", "5s"), 5*time.Second),
			Concurrency:  parseInt(getEnv("WORKER_CONCURRENCY", "5"), 5),
			JobRetention: parseDuration(getEnv("JOB_RETENTION", "168h"), 7*24*time.Hour),
		},
		CRMAPI: CRMAPIConfig{
			URL:       getEnv("CRM_API_URL", ""),
			LegacyURL: getEnv("CRM_API_LEGACY_URL", ""),
			Token:     getEnv("CRM_API_TOKEN", ""),
			Timeout:   parseDuration(getEnv("CRM_API_TIMEOUT", "30s"), 30*time.Second),
		},
		Retry: RetryConfig{
			MaxAttempts: parseInt(getEnv("MAX_RETRY_ATTEMPTS", "5"), 5),
			BackoffBase: parseDuration(getEnv("RETRY_BACKOFF_BASE", "30s"), 30*time.Second),
		},
		Auth: AuthConfig{
			Enabled:      parseBool(getEnv("ENABLE_AUTH", "false")),
			SharedSecret: getEnv("SHARED_SECRET", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration fields are set
func (c *Config) Validate() error {
	if c.CRMAPI.URL == "" {
		return fmt.Errorf("CRM_API_URL is required")
	}
	if c.CRMAPI.Token == "" {
		return fmt.Errorf("CRM_API_TOKEN is required")
	}
	if c.Auth.Enabled && c.Auth.SharedSecret == "" {
		return fmt.Errorf("SHARED_SECRET is required when ENABLE_AUTH is true")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func parseInt(value string, defaultValue int) int {
	var result int
	_, err := fmt.Sscanf(value, "%d", &result)
	if err != nil {
		return defaultValue
	}
	return result
}

func parseBool(value string) bool {
	return value == "true" || value == "1" || value == "yes"
}
