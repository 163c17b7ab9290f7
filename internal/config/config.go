// Package config provides configuration types and loading for wellauth.
//
// Configuration is file-based (wellauth.yaml) with environment variable
// overrides under the WELLAUTH_ prefix.
package config

import (
	"github.com/spf13/viper"
)

// Config is the top-level configuration for the wellauth service.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Storage configures the persisted state directory.
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// Session configures session lifetime and refresh.
	Session SessionConfig `yaml:"session" mapstructure:"session"`

	// RateLimit configures login attempt limiting.
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`

	// Security configures the environment the security audit inspects.
	Security SecurityConfig `yaml:"security" mapstructure:"security"`

	// DevMode enables development features (verbose logging, relaxed audit).
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// HTTPAddr is the address to listen on (e.g., "127.0.0.1:8080").
	// Defaults to "127.0.0.1:8080" (localhost only) if empty.
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr" validate:"omitempty,hostname_port"`

	// LogLevel sets the minimum log level.
	// Valid values: "debug", "info", "warn", "error".
	// Defaults to "info" if empty. DevMode=true overrides to "debug".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

// StorageConfig configures where persisted state lives.
type StorageConfig struct {
	// Dir is the directory holding the JSON state files.
	// Defaults to "~/.wellauth" if empty.
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// SessionConfig configures session lifetime and refresh behavior.
type SessionConfig struct {
	// TTL is how long a session lives after login or refresh (e.g., "24h").
	// Defaults to "24h" if empty.
	TTL string `yaml:"ttl" mapstructure:"ttl" validate:"omitempty,go_duration"`

	// RefreshInterval is how often the auto-refresh timer fires (e.g., "30m").
	// Defaults to "30m" if empty. Must be shorter than TTL.
	RefreshInterval string `yaml:"refresh_interval" mapstructure:"refresh_interval" validate:"omitempty,go_duration"`
}

// RateLimitConfig configures login attempt limiting.
type RateLimitConfig struct {
	// MaxAttempts is the number of attempts allowed per window.
	// Defaults to 5.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts" validate:"omitempty,min=1"`

	// Window is the fixed counting window (e.g., "1m").
	// Defaults to "1m".
	Window string `yaml:"window" mapstructure:"window" validate:"omitempty,go_duration"`

	// CleanupInterval is how often stale counters are swept (e.g., "5m").
	// Defaults to "5m".
	CleanupInterval string `yaml:"cleanup_interval" mapstructure:"cleanup_interval" validate:"omitempty,go_duration"`
}

// SecurityConfig describes the deployment environment for the audit.
type SecurityConfig struct {
	// Protocol is the public scheme the service is reached over.
	// Valid values: "http", "https". Defaults to "https".
	Protocol string `yaml:"protocol" mapstructure:"protocol" validate:"omitempty,oneof=http https"`

	// SecureCookies reports whether cookies carry the Secure attribute.
	SecureCookies bool `yaml:"secure_cookies" mapstructure:"secure_cookies"`

	// ContentSecurityPolicy reports whether a CSP header is served.
	ContentSecurityPolicy bool `yaml:"content_security_policy" mapstructure:"content_security_policy"`
}

// SetDefaults applies sensible default values to the configuration.
func (c *Config) SetDefaults() {
	// Bind to localhost only unless the operator opts into network access.
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "127.0.0.1:8080"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.Session.TTL == "" {
		c.Session.TTL = "24h"
	}
	if c.Session.RefreshInterval == "" {
		c.Session.RefreshInterval = "30m"
	}

	if c.RateLimit.MaxAttempts == 0 {
		c.RateLimit.MaxAttempts = 5
	}
	if c.RateLimit.Window == "" {
		c.RateLimit.Window = "1m"
	}
	if c.RateLimit.CleanupInterval == "" {
		c.RateLimit.CleanupInterval = "5m"
	}

	if c.Security.Protocol == "" {
		c.Security.Protocol = "https"
	}
	// Secure cookies and CSP default on unless explicitly disabled.
	if !viper.IsSet("security.secure_cookies") {
		c.Security.SecureCookies = true
	}
	if !viper.IsSet("security.content_security_policy") {
		c.Security.ContentSecurityPolicy = true
	}
}

// SetDevDefaults applies permissive defaults for development mode.
// Applied AFTER SetDefaults and before validation.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		return
	}

	c.Server.LogLevel = "debug"

	// Local development runs over plain HTTP; only relax the audit
	// environment when the operator has not configured it explicitly.
	if !viper.IsSet("security.protocol") {
		c.Security.Protocol = "http"
	}
	if !viper.IsSet("security.secure_cookies") {
		c.Security.SecureCookies = false
	}
}
