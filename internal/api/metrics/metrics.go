// Package metrics defines and registers all custom Prometheus metrics for the
// admin console. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "console"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts committed session state changes.
// Labels:
//   - from: previous status (e.g. "authenticating")
//   - to: new status (e.g. "authenticated")
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions.",
	},
	[]string{"from", "to"},
)

// SessionAuthenticated is 1 while the console holds an authenticated session.
var SessionAuthenticated = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_authenticated",
		Help:      "Whether the console currently holds an authenticated session.",
	},
)

// ── Gate metrics ──────────────────────────────────────────────────────────────

// GateDecisionsTotal counts access gate outcomes.
// Labels:
//   - screen: registered screen name (e.g. "products")
//   - decision: "loading", "render", "redirect_login" or "redirect_unauthorized"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of access gate decisions, by screen and outcome.",
	},
	[]string{"screen", "decision"},
)

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestsTotal counts calls to the auth backend.
// Labels:
//   - endpoint: auth route (e.g. "login", "refresh-token")
//   - outcome: "ok", "rejected" (non-2xx) or "network"
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of auth backend requests, by endpoint and outcome.",
	},
	[]string{"endpoint", "outcome"},
)

// BackendRequestDuration measures auth backend round trips including retries.
// Label:
//   - endpoint: auth route
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of auth backend requests including retries.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)
