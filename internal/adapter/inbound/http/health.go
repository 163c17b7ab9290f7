package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"

	"github.com/wellman-connect/wellauth/internal/domain/auth"
	"github.com/wellman-connect/wellauth/internal/domain/ratelimit"
)

// HealthResponse is the JSON response from the /healthz endpoint.
type HealthResponse struct {
	Status  string            `json:"status"` // "healthy" or "unhealthy"
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version,omitempty"`
}

// HealthChecker verifies component health.
type HealthChecker struct {
	accounts *auth.Accounts
	limiter  *ratelimit.Limiter
	version  string
}

// NewHealthChecker creates a HealthChecker with optional components.
// Pass nil for components that aren't available.
func NewHealthChecker(accounts *auth.Accounts, limiter *ratelimit.Limiter, version string) *HealthChecker {
	return &HealthChecker{accounts: accounts, limiter: limiter, version: version}
}

// Check performs health checks on all components.
func (h *HealthChecker) Check() HealthResponse {
	checks := make(map[string]string)
	healthy := true

	// An account count exercises the full storage read path.
	if h.accounts != nil {
		if n, err := h.accounts.Count(); err != nil {
			checks["storage"] = fmt.Sprintf("error: %v", err)
			healthy = false
		} else {
			checks["storage"] = fmt.Sprintf("ok: %d accounts", n)
		}
	} else {
		checks["storage"] = "not configured"
	}

	if h.limiter != nil {
		checks["rate_limiter"] = fmt.Sprintf("ok: %d keys", h.limiter.Size())
	} else {
		checks["rate_limiter"] = "not configured"
	}

	checks["goroutines"] = fmt.Sprintf("%d", runtime.NumGoroutine())

	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	return HealthResponse{
		Status:  status,
		Checks:  checks,
		Version: h.version,
	}
}

// Handler returns an HTTP handler for the health endpoint.
func (h *HealthChecker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		health := h.Check()

		w.Header().Set("Content-Type", "application/json")
		if health.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(health)
	})
}
