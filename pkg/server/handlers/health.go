package handlers

import (
	"net/http"
	"time"

	"atlashq/meridian/pkg/policy/store"
)

// HealthHandler handles health check requests for liveness probes.
type HealthHandler struct{}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP implements http.Handler for liveness checks.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// ReadyHandler handles readiness check requests. The service is ready
// when the version store answers queries.
type ReadyHandler struct {
	Store store.Store
}

// NewReadyHandler creates a new readiness check handler.
func NewReadyHandler(st store.Store) *ReadyHandler {
	return &ReadyHandler{Store: st}
}

// ServeHTTP implements http.Handler for readiness checks.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	statusCode := http.StatusOK

	if _, err := h.Store.ListVersions(r.Context()); err != nil {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, map[string]any{
		"status":    status,
		"timestamp": time.Now().Unix(),
	})
}
