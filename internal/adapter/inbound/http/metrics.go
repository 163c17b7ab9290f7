// Package http provides the HTTP transport adapter for wellauth.
package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for wellauth.
// Pass to components that need to record metrics.
type Metrics struct {
	GuardDecisions   *prometheus.CounterVec
	LoginsTotal      *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
	RateLimitedTotal prometheus.Counter
	RateLimitKeys    prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		GuardDecisions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wellauth",
				Name:      "guard_decisions_total",
				Help:      "Total route guard decisions",
			},
			[]string{"outcome"}, // outcome=allow/redirect
		),
		LoginsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wellauth",
				Name:      "logins_total",
				Help:      "Total login attempts",
			},
			[]string{"result"}, // result=success/failure
		),
		ActiveSessions: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "wellauth",
				Name:      "active_sessions",
				Help:      "Number of active sessions (0 or 1 in single-session mode)",
			},
		),
		RateLimitedTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "wellauth",
				Name:      "rate_limited_total",
				Help:      "Total requests rejected by the rate limiter",
			},
		),
		RateLimitKeys: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "wellauth",
				Name:      "rate_limit_keys",
				Help:      "Number of active rate limit counters",
			},
		),
	}
}

// MetricsHandler returns the /metrics scrape handler for the registry.
func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
