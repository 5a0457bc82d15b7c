package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty user agent",
			mutate: func(cfg *Config) {
				cfg.UserAgent = ""
			},
			wantErr: "user agent",
		},
		{
			name: "zero fast timeout",
			mutate: func(cfg *Config) {
				cfg.FastTimeout = 0
			},
			wantErr: "fast timeout",
		},
		{
			name: "negative browser timeout",
			mutate: func(cfg *Config) {
				cfg.BrowserTimeout = -1 * time.Second
			},
			wantErr: "browser timeout",
		},
		{
			name: "negative cache size",
			mutate: func(cfg *Config) {
				cfg.CacheSize = -1
			},
			wantErr: "cache size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("SCRAPER_TEST_INT", "42")
	if value, ok, err := EnvInt("SCRAPER_TEST_INT"); err != nil || !ok || value != 42 {
		t.Fatalf("EnvInt = (%d, %v, %v), want (42, true, nil)", value, ok, err)
	}

	t.Setenv("SCRAPER_TEST_INT", "forty-two")
	if _, _, err := EnvInt("SCRAPER_TEST_INT"); err == nil {
		t.Fatalf("expected error for non-integer value")
	}

	t.Setenv("SCRAPER_TEST_DURATION", "90s")
	if value, ok, err := EnvDuration("SCRAPER_TEST_DURATION"); err != nil || !ok || value != 90*time.Second {
		t.Fatalf("EnvDuration = (%v, %v, %v), want (90s, true, nil)", value, ok, err)
	}

	if _, ok, err := EnvDuration("SCRAPER_TEST_UNSET"); ok || err != nil {
		t.Fatalf("unset variable should report not present")
	}
}
