package security

import (
	"log/slog"
	"time"
)

// Environment describes the client environment as supplied by the embedding
// layer: page protocol, cookie flags, CSP presence, and the user-agent used
// for token fingerprinting. Consumed only by the advisory audit, never by
// authorization decisions.
type Environment struct {
	// Protocol is the active page protocol, "https" or "http".
	Protocol string
	// UserAgent is the client user-agent string.
	UserAgent string
	// SecureCookies is true when cookies carry the Secure attribute.
	SecureCookies bool
	// ContentSecurityPolicy is true when a CSP is in effect.
	ContentSecurityPolicy bool
}

// AuditReport is the result of a security audit. Advisory only: it feeds
// logs and diagnostics and has no effect on control flow.
type AuditReport struct {
	Timestamp       time.Time       `json:"timestamp"`
	Checks          map[string]bool `json:"checks"`
	Recommendations []string        `json:"recommendations"`
}

// SecurityHeaders returns the recommended response header set. Setting these
// is the embedding server's job; the core only reports them.
func SecurityHeaders() map[string]string {
	return map[string]string{
		"Content-Security-Policy": "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self' data:",
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"X-XSS-Protection":        "1; mode=block",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Permissions-Policy":      "geolocation=(), microphone=(), camera=()",
	}
}

// Audit checks the environment for baseline hardening and returns a report
// with a recommendation per failed check.
func Audit(env Environment, csrf *CSRFManager, now time.Time, logger *slog.Logger) AuditReport {
	report := AuditReport{
		Timestamp: now.UTC(),
		Checks:    make(map[string]bool),
	}

	report.Checks["https"] = env.Protocol == "https"
	if !report.Checks["https"] {
		report.Recommendations = append(report.Recommendations, "Use HTTPS in production")
	}

	report.Checks["secure_cookies"] = env.SecureCookies
	if !env.SecureCookies {
		report.Recommendations = append(report.Recommendations, "Use secure cookies in production")
	}

	report.Checks["csp"] = env.ContentSecurityPolicy
	if !env.ContentSecurityPolicy {
		report.Recommendations = append(report.Recommendations, "Implement Content Security Policy")
	}

	report.Checks["csrf_token"] = csrf != nil && csrf.Token() != ""
	if !report.Checks["csrf_token"] {
		report.Recommendations = append(report.Recommendations, "Generate CSRF token for forms")
	}

	logger.Info("security audit completed",
		"https", report.Checks["https"],
		"secure_cookies", report.Checks["secure_cookies"],
		"csp", report.Checks["csp"],
		"csrf_token", report.Checks["csrf_token"],
		"recommendations", len(report.Recommendations))

	return report
}
