package security

import (
	"testing"
	"time"

	"github.com/wellman-connect/wellauth/internal/adapter/outbound/state"
)

func TestAudit_HardenedEnvironmentPasses(t *testing.T) {
	csrf := NewCSRFManager(state.NewMemoryStorage(), testLogger())
	if _, err := csrf.Generate(); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	env := Environment{
		Protocol:              "https",
		SecureCookies:         true,
		ContentSecurityPolicy: true,
	}
	report := Audit(env, csrf, time.Now(), testLogger())

	for check, passed := range report.Checks {
		if !passed {
			t.Errorf("check %q = false in hardened environment", check)
		}
	}
	if len(report.Recommendations) != 0 {
		t.Errorf("Recommendations = %v, want none", report.Recommendations)
	}
}

func TestAudit_BareEnvironmentRecommendsEverything(t *testing.T) {
	csrf := NewCSRFManager(state.NewMemoryStorage(), testLogger())

	report := Audit(Environment{Protocol: "http"}, csrf, time.Now(), testLogger())

	for _, check := range []string{"https", "secure_cookies", "csp", "csrf_token"} {
		if report.Checks[check] {
			t.Errorf("check %q = true in bare environment", check)
		}
	}
	if len(report.Recommendations) != 4 {
		t.Errorf("len(Recommendations) = %d, want 4: %v", len(report.Recommendations), report.Recommendations)
	}
}

func TestSecurityHeaders_ContainsBaselineSet(t *testing.T) {
	headers := SecurityHeaders()

	for _, name := range []string{
		"Content-Security-Policy",
		"X-Content-Type-Options",
		"X-Frame-Options",
		"Referrer-Policy",
	} {
		if headers[name] == "" {
			t.Errorf("SecurityHeaders() missing %q", name)
		}
	}
	if headers["X-Frame-Options"] != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", headers["X-Frame-Options"])
	}
}
