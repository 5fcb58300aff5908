package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics tracks metrics for the policy version store.
//
// Metrics:
//   - meridian_store_operations_total: Store operations by name and outcome
//   - meridian_store_operation_duration_seconds: Store operation duration
//   - meridian_policy_versions: Current number of versions per status
//   - meridian_audit_events_total: Audit events appended, by action
type StoreMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	versionsByStatus  *prometheus.GaugeVec
	auditEventsTotal  *prometheus.CounterVec
}

// NewStoreMetrics creates and registers store metrics with the provided
// registry.
func NewStoreMetrics(registry *prometheus.Registry) *StoreMetrics {
	sm := &StoreMetrics{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of version store operations",
			},
			[]string{"operation", "outcome"},
		),

		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Duration of version store operations in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12), // 100µs to ~400ms
			},
			[]string{"operation"},
		),

		versionsByStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "policy_versions",
				Help:      "Current number of policy versions per status",
			},
			[]string{"status"},
		),

		auditEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audit_events_total",
				Help:      "Total number of audit events appended",
			},
			[]string{"action"},
		),
	}

	registry.MustRegister(
		sm.operationsTotal,
		sm.operationDuration,
		sm.versionsByStatus,
		sm.auditEventsTotal,
	)

	return sm
}

// RecordOperation records a store operation and its outcome.
func (sm *StoreMetrics) RecordOperation(operation, outcome string, duration time.Duration) {
	sm.operationsTotal.WithLabelValues(operation, outcome).Inc()
	sm.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateVersionCounts sets the per-status version gauges. Statuses absent
// from the map are reset to zero so retired-out statuses do not linger.
func (sm *StoreMetrics) UpdateVersionCounts(counts map[string]int) {
	for _, status := range []string{"draft", "scheduled", "active", "retired"} {
		sm.versionsByStatus.WithLabelValues(status).Set(float64(counts[status]))
	}
}

// RecordAuditEvent records one appended audit event.
func (sm *StoreMetrics) RecordAuditEvent(action string) {
	sm.auditEventsTotal.WithLabelValues(action).Inc()
}
