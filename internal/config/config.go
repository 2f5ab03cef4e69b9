// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default endpoints of the rate authority. The XML document serves
// historical per-date quotes, the JSON document serves the latest ones.
const (
	DefaultRatesXMLBaseURL  = "https://www.cbr.ru"
	DefaultRatesJSONBaseURL = "https://www.cbr-xml-daily.ru"
	DefaultCacheFile        = "rates.json"
	DefaultHTTPTimeout      = 10 * time.Second
)

// Config holds all configuration for the application.
type Config struct {
	TelegramBotToken string
	RatesXMLBaseURL  string
	RatesJSONBaseURL string
	CacheFile        string
	HTTPTimeout      time.Duration
	LogLevel         string
	LogFormat        string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		RatesXMLBaseURL:  os.Getenv("RATES_XML_BASE_URL"),
		RatesJSONBaseURL: os.Getenv("RATES_JSON_BASE_URL"),
		CacheFile:        os.Getenv("RATES_CACHE_FILE"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		LogFormat:        os.Getenv("LOG_FORMAT"),
	}

	if cfg.RatesXMLBaseURL == "" {
		cfg.RatesXMLBaseURL = DefaultRatesXMLBaseURL
	}
	if cfg.RatesJSONBaseURL == "" {
		cfg.RatesJSONBaseURL = DefaultRatesJSONBaseURL
	}
	if cfg.CacheFile == "" {
		cfg.CacheFile = DefaultCacheFile
	}

	cfg.HTTPTimeout = DefaultHTTPTimeout
	if timeoutStr := os.Getenv("HTTP_TIMEOUT_SECONDS"); timeoutStr != "" {
		if seconds, err := strconv.Atoi(timeoutStr); err == nil && seconds > 0 {
			cfg.HTTPTimeout = time.Duration(seconds) * time.Second
		}
	}

	// Validate required configuration.
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	if c.TelegramBotToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
