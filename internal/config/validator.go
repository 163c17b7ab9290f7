package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators registers wellauth-specific validation rules.
// Must be called before validating Config.
func RegisterCustomValidators(v *validator.Validate) error {
	// go_duration: validates a time.ParseDuration-compatible string.
	if err := v.RegisterValidation("go_duration", validateGoDuration); err != nil {
		return fmt.Errorf("failed to register go_duration validator: %w", err)
	}
	return nil
}

// validateGoDuration accepts any positive time.ParseDuration string.
func validateGoDuration(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())
	return err == nil && d > 0
}

// Validate validates the Config using struct tags and cross-field rules.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	return c.validateRefreshShorterThanTTL()
}

// validateRefreshShorterThanTTL ensures the auto-refresh period fits inside
// the session lifetime, so a refreshed session can never expire between
// ticks of a healthy timer.
func (c *Config) validateRefreshShorterThanTTL() error {
	ttl, err := c.SessionTTL()
	if err != nil {
		return err
	}
	refresh, err := c.SessionRefreshInterval()
	if err != nil {
		return err
	}
	if refresh >= ttl {
		return fmt.Errorf("session: refresh_interval (%s) must be shorter than ttl (%s)", refresh, ttl)
	}
	return nil
}

// SessionTTL returns the parsed session lifetime.
func (c *Config) SessionTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Session.TTL)
	if err != nil {
		return 0, fmt.Errorf("session.ttl: %w", err)
	}
	return d, nil
}

// SessionRefreshInterval returns the parsed auto-refresh period.
func (c *Config) SessionRefreshInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Session.RefreshInterval)
	if err != nil {
		return 0, fmt.Errorf("session.refresh_interval: %w", err)
	}
	return d, nil
}

// RateLimitWindow returns the parsed rate limit window.
func (c *Config) RateLimitWindow() (time.Duration, error) {
	d, err := time.ParseDuration(c.RateLimit.Window)
	if err != nil {
		return 0, fmt.Errorf("rate_limit.window: %w", err)
	}
	return d, nil
}

// RateLimitCleanupInterval returns the parsed cleanup sweep period.
func (c *Config) RateLimitCleanupInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.RateLimit.CleanupInterval)
	if err != nil {
		return 0, fmt.Errorf("rate_limit.cleanup_interval: %w", err)
	}
	return d, nil
}

// formatValidationErrors converts validator.ValidationErrors to
// user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a single
// validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be a valid host:port", field)
	case "go_duration":
		return fmt.Sprintf("%s must be a positive duration (e.g. \"30m\", \"24h\")", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}
