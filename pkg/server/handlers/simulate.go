package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"atlashq/meridian/pkg/policy/engine"
	"atlashq/meridian/pkg/policy/store"
	"atlashq/meridian/pkg/telemetry/metrics"
)

// SimulateHandler evaluates a trip request against a policy version
// without recording anything: a dry run for travelers and booking tools.
type SimulateHandler struct {
	store     store.Store
	evaluator *engine.Evaluator
	collector *metrics.Collector
	logger    *slog.Logger
	now       func() time.Time
}

// NewSimulateHandler creates a new simulation handler.
func NewSimulateHandler(st store.Store, evaluator *engine.Evaluator, collector *metrics.Collector, logger *slog.Logger) *SimulateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SimulateHandler{
		store:     st,
		evaluator: evaluator,
		collector: collector,
		logger:    logger.With("component", "server.simulate"),
		now:       time.Now,
	}
}

// simulateRequest is the body for POST /v1/simulate: the trip fields
// inline plus the optional evaluation controls.
type simulateRequest struct {
	engine.TripRequest

	// PolicyVersionID pins the evaluation to a specific version. When
	// empty, the version active at the evaluation instant is used.
	PolicyVersionID string `json:"policyVersionId"`

	// At overrides the evaluation instant (RFC 3339). Default is now.
	At *time.Time `json:"at"`
}

// ServeHTTP handles POST /v1/simulate.
func (h *SimulateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	now := h.now()
	at := now
	if req.At != nil {
		at = *req.At
	}

	var rec *store.VersionRecord
	if req.PolicyVersionID != "" {
		found := false
		var err error
		rec, found, err = h.store.GetVersion(r.Context(), req.PolicyVersionID)
		if err != nil {
			h.logger.Error("failed to get version", "version_id", req.PolicyVersionID, "error", err)
			writeStoreError(w, err)
			return
		}
		if !found {
			writeStoreError(w, &store.NotFoundError{VersionID: req.PolicyVersionID})
			return
		}
	} else {
		var err error
		rec, err = h.store.GetActiveVersionAt(r.Context(), at)
		if err != nil {
			h.logger.Error("failed to resolve active version", "at", at, "error", err)
			writeStoreError(w, err)
			return
		}
	}

	start := time.Now()
	result := h.evaluator.Evaluate(req.TripRequest, rec.VersionID, rec.Config, at)
	h.recordEvaluation(result, time.Since(start))

	writeJSON(w, http.StatusOK, result)
}

// recordEvaluation records the verdict in the metrics collector.
func (h *SimulateHandler) recordEvaluation(result *engine.Result, duration time.Duration) {
	if h.collector == nil {
		return
	}
	h.collector.RecordEvaluation(result.PolicyVersion, string(result.Level), duration)
	for _, f := range result.Findings {
		h.collector.RecordFinding(string(f.Code))
	}
}
