// Package metrics exposes Prometheus metrics for the send and
// authorization paths on a dedicated listener.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultSuccess          = "success"
	ResultError            = "error"
	ResultNotAuthenticated = "not_authenticated"
)

var (
	// AuthAttempts counts completed authorization callbacks by result.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sendgate_auth_attempts_total",
		Help: "Total number of authorization callback completions.",
	}, []string{"result"})

	// SendRequests counts send dispatches by result.
	SendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sendgate_send_requests_total",
		Help: "Total number of send requests.",
	}, []string{"result"})

	// HTTPRequestDuration observes request latency per route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sendgate_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
	}, []string{"method", "path", "status"})
)
