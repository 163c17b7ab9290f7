package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	var cfg Config
	cfg.SetDefaults()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() with defaults = %v, want nil", err)
	}
}

func TestValidate_BadHTTPAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Server.HTTPAddr = "not a listen address"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want host:port error")
	}
	if !strings.Contains(err.Error(), "host:port") {
		t.Errorf("error = %q, want mention of host:port", err)
	}
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Server.LogLevel = "verbose"

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil, want oneof error for log level")
	}
}

func TestValidate_BadDuration(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"ttl not a duration", func(c *Config) { c.Session.TTL = "tomorrow" }},
		{"negative refresh", func(c *Config) { c.Session.RefreshInterval = "-5m" }},
		{"window not a duration", func(c *Config) { c.RateLimit.Window = "60" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want duration error")
			}
		})
	}
}

func TestValidate_RefreshMustFitInsideTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Session.TTL = "30m"
	cfg.Session.RefreshInterval = "30m"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want refresh/ttl error")
	}
	if !strings.Contains(err.Error(), "refresh_interval") {
		t.Errorf("error = %q, want mention of refresh_interval", err)
	}
}

func TestDurationAccessors(t *testing.T) {
	cfg := validConfig()

	ttl, err := cfg.SessionTTL()
	if err != nil || ttl != 24*time.Hour {
		t.Errorf("SessionTTL() = %v, %v; want 24h, nil", ttl, err)
	}
	refresh, err := cfg.SessionRefreshInterval()
	if err != nil || refresh != 30*time.Minute {
		t.Errorf("SessionRefreshInterval() = %v, %v; want 30m, nil", refresh, err)
	}
	window, err := cfg.RateLimitWindow()
	if err != nil || window != time.Minute {
		t.Errorf("RateLimitWindow() = %v, %v; want 1m, nil", window, err)
	}
	sweep, err := cfg.RateLimitCleanupInterval()
	if err != nil || sweep != 5*time.Minute {
		t.Errorf("RateLimitCleanupInterval() = %v, %v; want 5m, nil", sweep, err)
	}
}
