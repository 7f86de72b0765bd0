package server

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

// Health status constants for health check responses.
const (
	healthStatusOK       = "ok"
	healthStatusNotReady = "not ready"
)

// HealthChecker provides health check endpoints for Kubernetes probes.
type HealthChecker struct {
	ready     atomic.Bool
	startTime time.Time
}

// NewHealthChecker creates a new HealthChecker. The server starts ready.
func NewHealthChecker() *HealthChecker {
	h := &HealthChecker{startTime: time.Now()}
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state of the server.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// HealthResponse represents the JSON response for health endpoints.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime,omitempty"`
}

// Register registers the health endpoints on the given router.
func (h *HealthChecker) Register(r chi.Router) {
	// Liveness: the process is running
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{
			Status: healthStatusOK,
			Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
		})
	})

	// Readiness: the server is accepting traffic
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !h.ready.Load() {
			respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: healthStatusNotReady,
			})
			return
		}
		respondJSON(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}
