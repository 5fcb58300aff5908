package handlers

import (
	"log/slog"
	"net/http"

	"atlashq/meridian/pkg/policy/store"
)

// AuditHandler serves the audit trail endpoint.
type AuditHandler struct {
	store  store.Store
	logger *slog.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(st store.Store, logger *slog.Logger) *AuditHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditHandler{
		store:  st,
		logger: logger.With("component", "server.audit"),
	}
}

// ServeHTTP handles GET /v1/policy/audit, returning the full trail newest
// first.
func (h *AuditHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.ListAuditEvents(r.Context())
	if err != nil {
		h.logger.Error("failed to list audit events", "error", err)
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}
