// Package validation provides input sanitization and the form validation
// pipeline used by login and profile screens.
package validation

import (
	"net/url"
	"regexp"
	"strings"
)

// Sanitization patterns. Regexes are package-level so they compile once.
var (
	// angleBrackets strips raw tag delimiters from display text.
	angleBrackets = regexp.MustCompile(`[<>]`)

	// jsProtocol strips javascript: protocol prefixes, case-insensitive.
	jsProtocol = regexp.MustCompile(`(?i)javascript:`)

	// eventHandler strips inline event handler patterns like onclick=.
	eventHandler = regexp.MustCompile(`(?i)on\w+=`)

	// emailPattern accepts a basic local@domain.tld shape.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// phonePattern accepts an optional + followed by 1-16 digits, first
	// digit non-zero.
	phonePattern = regexp.MustCompile(`^\+?[1-9][0-9]{0,15}$`)

	phoneNoise    = regexp.MustCompile(`[\s\-()]`)
	hasLowercase  = regexp.MustCompile(`[a-z]`)
	hasUppercase  = regexp.MustCompile(`[A-Z]`)
	hasDigit      = regexp.MustCompile(`[0-9]`)
)

// htmlEscaper replaces characters that carry meaning in HTML with their
// entities. Single-pass, so the & in an inserted entity is not re-escaped.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// SanitizeInput prepares free-text user input for safe display: angle
// brackets, javascript: prefixes, and inline event handler patterns are
// removed, and surrounding whitespace is trimmed.
func SanitizeInput(input string) string {
	out := angleBrackets.ReplaceAllString(input, "")
	out = jsProtocol.ReplaceAllString(out, "")
	out = eventHandler.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// SanitizeEmail lowercases and trims the address. ok is false unless the
// result matches a basic local@domain.tld shape.
func SanitizeEmail(email string) (string, bool) {
	sanitized := strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(sanitized) {
		return "", false
	}
	return sanitized, true
}

// SanitizePhone strips spaces, dashes, and parentheses. ok is false unless
// the remaining digits (optionally +-prefixed) form a plausible number.
func SanitizePhone(phone string) (string, bool) {
	sanitized := phoneNoise.ReplaceAllString(phone, "")
	if !phonePattern.MatchString(sanitized) {
		return "", false
	}
	return sanitized, true
}

// SanitizePassword trims the password and checks baseline strength:
// at least 8 characters with one lowercase, one uppercase, and one digit.
// ok is false when any requirement is missed.
func SanitizePassword(password string) (string, bool) {
	sanitized := strings.TrimSpace(password)
	if len(sanitized) < 8 {
		return "", false
	}
	if !hasLowercase.MatchString(sanitized) {
		return "", false
	}
	if !hasUppercase.MatchString(sanitized) {
		return "", false
	}
	if !hasDigit.MatchString(sanitized) {
		return "", false
	}
	return sanitized, true
}

// EscapeHTML escapes & < > " ' / as HTML entities.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

// ValidateURL returns the URL unchanged when it parses as an absolute
// http or https URL. ok is false for anything else, including scheme-less
// and javascript: URLs.
func ValidateURL(raw string) (string, bool) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", false
	}
	if parsed.Host == "" {
		return "", false
	}
	return raw, true
}
