// Package common provides shared utilities for StockVerse
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for StockVerse
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Quotes      QuotesConfig    `toml:"quotes"`
	Alerts      AlertsConfig    `toml:"alerts"`
	Portfolio   PortfolioConfig `toml:"portfolio"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Address returns host:port for the listener.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend string `toml:"backend"` // "badger", "sqlite" or "memory"
	Path    string `toml:"path"`
}

// QuotesConfig holds quote source configuration
type QuotesConfig struct {
	Provider     string        `toml:"provider"` // "finnhub" or "synthetic"
	Fallback     string        `toml:"fallback"` // "" or "synthetic"
	FetchTimeout string        `toml:"fetch_timeout"`
	Concurrency  int           `toml:"concurrency"`
	Finnhub      FinnhubConfig `toml:"finnhub"`
}

// GetFetchTimeout parses and returns the per-symbol fetch timeout
func (c *QuotesConfig) GetFetchTimeout() time.Duration {
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// FinnhubConfig holds Finnhub API configuration
type FinnhubConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the HTTP timeout
func (c *FinnhubConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// AlertsConfig holds the alert evaluation schedule
type AlertsConfig struct {
	Schedule string `toml:"schedule"`
}

// PortfolioConfig holds the price refresh schedule
type PortfolioConfig struct {
	RefreshSchedule string `toml:"refresh_schedule"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Format   string   `toml:"format"`
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Backend: "badger",
			Path:    "data/stockverse",
		},
		Quotes: QuotesConfig{
			Provider:     "finnhub",
			FetchTimeout: "10s",
			Concurrency:  8,
			Finnhub: FinnhubConfig{
				BaseURL:   "https://finnhub.io/api/v1",
				RateLimit: 30,
				Timeout:   "15s",
			},
		},
		Alerts: AlertsConfig{
			Schedule: "@every 30s",
		},
		Portfolio: PortfolioConfig{
			RefreshSchedule: "@every 1m",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "console",
			Outputs:  []string{"console"},
			FilePath: "./logs/stockverse.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// A .env file in the working directory is loaded first if present.
func LoadConfig(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if config.Quotes.Finnhub.APIKey == "" && config.Quotes.Provider == "finnhub" {
		config.Quotes.Provider = "synthetic"
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("STOCKVERSE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("STOCKVERSE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("STOCKVERSE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("STOCKVERSE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if backend := os.Getenv("STOCKVERSE_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = strings.ToLower(backend)
	}

	if path := os.Getenv("STOCKVERSE_DATA_PATH"); path != "" {
		config.Storage.Path = filepath.Clean(path)
	}

	if provider := os.Getenv("STOCKVERSE_QUOTE_PROVIDER"); provider != "" {
		config.Quotes.Provider = strings.ToLower(provider)
	}

	// FINNHUB_API_KEY matches the variable name used by the web client
	for _, name := range []string{"STOCKVERSE_FINNHUB_API_KEY", "FINNHUB_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Quotes.Finnhub.APIKey = v
			break
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
