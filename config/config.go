package config

import (
	"fmt"
	"time"
)

// Config holds scraper configuration.
type Config struct {
	UserAgent      string
	FastTimeout    time.Duration
	BrowserTimeout time.Duration
	Headless       bool
	CacheSize      int
	MetricsAddr    string
	Verbose        bool
}

// DefaultConfig returns conservative defaults for the marketplace target.
func DefaultConfig() *Config {
	return &Config{
		UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		FastTimeout:    15 * time.Second,
		BrowserTimeout: 60 * time.Second,
		Headless:       true,
		CacheSize:      128,
		MetricsAddr:    "",
		Verbose:        false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.FastTimeout <= 0 {
		return fmt.Errorf("fast timeout must be positive")
	}
	if c.BrowserTimeout <= 0 {
		return fmt.Errorf("browser timeout must be positive")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative")
	}
	return nil
}
