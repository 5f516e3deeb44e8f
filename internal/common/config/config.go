package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

type Config struct {
	CKAN     CKANConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Discord  DiscordConfig
}

// CKANConfig points at the CKAN instance being published to
type CKANConfig struct {
	BaseURL     string
	APIKey      string
	HTTPTimeout time.Duration
}

// DatabaseConfig is the optional publication journal
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type LoggingConfig struct {
	Level    string
	FilePath string
}

type DiscordConfig struct {
	WebhookURL string
}

func Load() (*Config, error) {
	cfg := &Config{
		CKAN: CKANConfig{
			BaseURL:     getEnv("CKAN_BASE_URL", ""),
			APIKey:      getEnv("CKAN_API_KEY", ""),
			HTTPTimeout: getDurationEnv("CKAN_HTTP_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Enabled:  getBoolEnv("JOURNAL_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "ckanpublisher"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Logging: LoggingConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			FilePath: getEnv("LOG_FILE", "ckanpublisher.log"),
		},
		Discord: DiscordConfig{
			WebhookURL: getEnv("DISCORD_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Validate checks that CKAN calls can be made.
func (c *CKANConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("CKAN base URL is required (CKAN_BASE_URL or --base-url)")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid CKAN base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid CKAN base URL %q: scheme must be http or https", c.BaseURL)
	}
	if c.APIKey == "" {
		return errors.New("CKAN API key is required (CKAN_API_KEY or --api-key)")
	}
	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
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
