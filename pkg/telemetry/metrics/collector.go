package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "meridian"
)

// Collector is the orchestrator for all Prometheus metrics in Meridian.
// It owns the registry and provides a unified interface for recording
// metrics across components.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	// Evaluation metrics
	evaluationMetrics *EvaluationMetrics

	// Version store metrics
	storeMetrics *StoreMetrics

	// HTTP request metrics
	requestMetrics *RequestMetrics
}

// NewCollector creates a new metrics collector with the given registry.
// If registry is nil, a fresh registry is created. When enabled is false
// all Record methods are no-ops, but the registry and handler still work
// so the endpoint serves an empty exposition.
func NewCollector(enabled bool, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		enabled:  enabled,
		registry: registry,
	}

	c.evaluationMetrics = NewEvaluationMetrics(registry)
	c.storeMetrics = NewStoreMetrics(registry)
	c.requestMetrics = NewRequestMetrics(registry)

	return c
}

// RecordEvaluation records a completed compliance evaluation.
//
// Parameters:
//   - policyVersion: the policy version the trip was evaluated against
//   - level: the overall verdict level ("info", "warning", "blocked")
//   - duration: evaluation duration
func (c *Collector) RecordEvaluation(policyVersion, level string, duration time.Duration) {
	if !c.enabled {
		return
	}

	c.evaluationMetrics.RecordEvaluation(policyVersion, level, duration)
}

// RecordFinding records one finding emitted during an evaluation.
func (c *Collector) RecordFinding(code string) {
	if !c.enabled {
		return
	}

	c.evaluationMetrics.RecordFinding(code)
}

// RecordStoreOperation records a version store operation.
//
// Parameters:
//   - operation: store operation name ("create_draft", "activate_version", ...)
//   - outcome: "success" or "error"
//   - duration: operation duration
func (c *Collector) RecordStoreOperation(operation, outcome string, duration time.Duration) {
	if !c.enabled {
		return
	}

	c.storeMetrics.RecordOperation(operation, outcome, duration)
}

// UpdateVersionCounts sets the per-status version gauges.
func (c *Collector) UpdateVersionCounts(counts map[string]int) {
	if !c.enabled {
		return
	}

	c.storeMetrics.UpdateVersionCounts(counts)
}

// RecordAuditEvent records one appended audit event.
func (c *Collector) RecordAuditEvent(action string) {
	if !c.enabled {
		return
	}

	c.storeMetrics.RecordAuditEvent(action)
}

// RecordHTTPRequest records a completed HTTP request.
//
// Parameters:
//   - method: HTTP method
//   - route: route pattern (not the raw path, to bound cardinality)
//   - status: HTTP status code
//   - duration: request duration
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if !c.enabled {
		return
	}

	c.requestMetrics.RecordRequest(method, route, status, duration)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
