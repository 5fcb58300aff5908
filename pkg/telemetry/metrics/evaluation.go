package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EvaluationMetrics tracks metrics for compliance evaluations.
//
// Metrics:
//   - meridian_evaluations_total: Total evaluations by policy version and level
//   - meridian_evaluation_duration_seconds: Evaluation duration
//   - meridian_findings_total: Findings emitted by code
type EvaluationMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	findingsTotal      *prometheus.CounterVec
}

// NewEvaluationMetrics creates and registers evaluation metrics with the
// provided registry.
func NewEvaluationMetrics(registry *prometheus.Registry) *EvaluationMetrics {
	em := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Total number of compliance evaluations",
			},
			[]string{"policy_version", "level"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of compliance evaluation in seconds",
				// Evaluations are pure in-memory checks (< 10ms)
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
		),

		findingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "findings_total",
				Help:      "Total number of findings emitted, by code",
			},
			[]string{"code"},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.evaluationDuration,
		em.findingsTotal,
	)

	return em
}

// RecordEvaluation records a completed evaluation.
func (em *EvaluationMetrics) RecordEvaluation(policyVersion, level string, duration time.Duration) {
	em.evaluationsTotal.WithLabelValues(policyVersion, level).Inc()
	em.evaluationDuration.Observe(duration.Seconds())
}

// RecordFinding records one emitted finding.
func (em *EvaluationMetrics) RecordFinding(code string) {
	em.findingsTotal.WithLabelValues(code).Inc()
}
