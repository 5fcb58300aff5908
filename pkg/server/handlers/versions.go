package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"atlashq/meridian/pkg/audit"
	"atlashq/meridian/pkg/policy"
	"atlashq/meridian/pkg/policy/store"
	"atlashq/meridian/pkg/telemetry/metrics"
)

// VersionsHandler serves the policy version management endpoints.
type VersionsHandler struct {
	store     store.Store
	collector *metrics.Collector
	logger    *slog.Logger
	now       func() time.Time
}

// NewVersionsHandler creates a new versions handler.
func NewVersionsHandler(st store.Store, collector *metrics.Collector, logger *slog.Logger) *VersionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &VersionsHandler{
		store:     st,
		collector: collector,
		logger:    logger.With("component", "server.versions"),
		now:       time.Now,
	}
}

// List handles GET /v1/policy/versions.
func (h *VersionsHandler) List(w http.ResponseWriter, r *http.Request) {
	versions, err := h.store.ListVersions(r.Context())
	if err != nil {
		h.logger.Error("failed to list versions", "error", err)
		writeStoreError(w, err)
		return
	}

	h.updateVersionGauges(versions)
	writeJSON(w, http.StatusOK, map[string]any{"versions": versions})
}

// Get handles GET /v1/policy/versions/{id}.
func (h *VersionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	versionID := r.PathValue("id")

	rec, found, err := h.store.GetVersion(r.Context(), versionID)
	if err != nil {
		h.logger.Error("failed to get version", "version_id", versionID, "error", err)
		writeStoreError(w, err)
		return
	}
	if !found {
		writeStoreError(w, &store.NotFoundError{VersionID: versionID})
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// Active handles GET /v1/policy/versions/active. The optional "at" query
// parameter (RFC 3339) selects the instant to resolve; default is now.
func (h *VersionsHandler) Active(w http.ResponseWriter, r *http.Request) {
	at := h.now()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_query",
				"query parameter \"at\" must be an RFC 3339 timestamp", "at")
			return
		}
		at = parsed
	}

	rec, err := h.store.GetActiveVersionAt(r.Context(), at)
	if err != nil {
		h.logger.Error("failed to resolve active version", "at", at, "error", err)
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// createDraftRequest is the body for POST /v1/policy/versions.
type createDraftRequest struct {
	ActorName string        `json:"actorName"`
	Config    policy.Config `json:"config"`
	Note      string        `json:"note"`
}

// Create handles POST /v1/policy/versions.
func (h *VersionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDraftRequest
	if !decodeBody(w, r, &req) {
		return
	}

	start := h.now()
	rec, err := h.store.CreateDraft(r.Context(), req.ActorName, req.Config, req.Note)
	h.recordStoreOp("create_draft", start, err)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

// activateRequest is the body for POST /v1/policy/versions/{id}/activate.
// EffectiveFrom stays a string so a malformed instant surfaces as a
// validation failure, not a body-decode error.
type activateRequest struct {
	ActorName     string `json:"actorName"`
	EffectiveFrom string `json:"effectiveFrom"`
	Note          string `json:"note"`
}

// Activate handles POST /v1/policy/versions/{id}/activate.
func (h *VersionsHandler) Activate(w http.ResponseWriter, r *http.Request) {
	versionID := r.PathValue("id")

	var req activateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var effectiveFrom *time.Time
	if req.EffectiveFrom != "" {
		parsed, err := time.Parse(time.RFC3339, req.EffectiveFrom)
		if err != nil {
			writeStoreError(w, &store.ValidationError{
				Field:   "effectiveFrom",
				Message: "must be an RFC 3339 timestamp",
			})
			return
		}
		effectiveFrom = &parsed
	}

	start := h.now()
	rec, err := h.store.ActivateVersion(r.Context(), versionID, req.ActorName, effectiveFrom, req.Note)
	h.recordStoreOp("activate_version", start, err)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// recordStoreOp records a store write in the metrics collector. Every
// successful write appends exactly one audit event, so the audit counter
// advances with it.
func (h *VersionsHandler) recordStoreOp(operation string, start time.Time, err error) {
	if h.collector == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	h.collector.RecordStoreOperation(operation, outcome, time.Since(start))
	if err == nil {
		action := string(audit.ActionCreateDraft)
		if operation == "activate_version" {
			action = string(audit.ActionActivatePolicy)
		}
		h.collector.RecordAuditEvent(action)
	}
}

// updateVersionGauges refreshes the per-status version gauges.
func (h *VersionsHandler) updateVersionGauges(versions []*store.VersionRecord) {
	if h.collector == nil {
		return
	}
	counts := make(map[string]int)
	for _, rec := range versions {
		counts[string(rec.Status)]++
	}
	h.collector.UpdateVersionCounts(counts)
}
