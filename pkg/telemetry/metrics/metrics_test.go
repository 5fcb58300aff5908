package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_RecordEvaluation(t *testing.T) {
	c := NewCollector(true, prometheus.NewRegistry())

	c.RecordEvaluation("policy-v1.0.0", "blocked", 50*time.Microsecond)
	c.RecordEvaluation("policy-v1.0.0", "blocked", 80*time.Microsecond)
	c.RecordEvaluation("policy-v1.0.0", "info", 30*time.Microsecond)

	blocked := testutil.ToFloat64(c.evaluationMetrics.evaluationsTotal.WithLabelValues("policy-v1.0.0", "blocked"))
	if blocked != 2 {
		t.Errorf("blocked evaluations = %f, want 2", blocked)
	}
	info := testutil.ToFloat64(c.evaluationMetrics.evaluationsTotal.WithLabelValues("policy-v1.0.0", "info"))
	if info != 1 {
		t.Errorf("info evaluations = %f, want 1", info)
	}
}

func TestCollector_RecordFinding(t *testing.T) {
	c := NewCollector(true, prometheus.NewRegistry())

	c.RecordFinding("budget_cap_exceeded")
	c.RecordFinding("budget_cap_exceeded")
	c.RecordFinding("policy_compliant")

	got := testutil.ToFloat64(c.evaluationMetrics.findingsTotal.WithLabelValues("budget_cap_exceeded"))
	if got != 2 {
		t.Errorf("budget_cap_exceeded findings = %f, want 2", got)
	}
}

func TestCollector_StoreMetrics(t *testing.T) {
	c := NewCollector(true, prometheus.NewRegistry())

	c.RecordStoreOperation("create_draft", "success", time.Millisecond)
	c.RecordStoreOperation("activate_version", "error", time.Millisecond)
	c.RecordAuditEvent("create_draft")

	success := testutil.ToFloat64(c.storeMetrics.operationsTotal.WithLabelValues("create_draft", "success"))
	if success != 1 {
		t.Errorf("create_draft success = %f, want 1", success)
	}
	failure := testutil.ToFloat64(c.storeMetrics.operationsTotal.WithLabelValues("activate_version", "error"))
	if failure != 1 {
		t.Errorf("activate_version error = %f, want 1", failure)
	}
	events := testutil.ToFloat64(c.storeMetrics.auditEventsTotal.WithLabelValues("create_draft"))
	if events != 1 {
		t.Errorf("audit events = %f, want 1", events)
	}
}

func TestCollector_UpdateVersionCounts(t *testing.T) {
	c := NewCollector(true, prometheus.NewRegistry())

	c.UpdateVersionCounts(map[string]int{"active": 1, "retired": 3})

	if got := testutil.ToFloat64(c.storeMetrics.versionsByStatus.WithLabelValues("active")); got != 1 {
		t.Errorf("active gauge = %f, want 1", got)
	}
	if got := testutil.ToFloat64(c.storeMetrics.versionsByStatus.WithLabelValues("retired")); got != 3 {
		t.Errorf("retired gauge = %f, want 3", got)
	}
	// Statuses absent from the map reset to zero.
	if got := testutil.ToFloat64(c.storeMetrics.versionsByStatus.WithLabelValues("draft")); got != 0 {
		t.Errorf("draft gauge = %f, want 0", got)
	}
}

func TestCollector_DisabledIsNoop(t *testing.T) {
	c := NewCollector(false, prometheus.NewRegistry())

	c.RecordEvaluation("policy-v1.0.0", "blocked", time.Millisecond)
	c.RecordFinding("policy_compliant")
	c.RecordStoreOperation("create_draft", "success", time.Millisecond)
	c.RecordHTTPRequest("GET", "/health", 200, time.Millisecond)

	got := testutil.ToFloat64(c.evaluationMetrics.evaluationsTotal.WithLabelValues("policy-v1.0.0", "blocked"))
	if got != 0 {
		t.Errorf("disabled collector recorded %f evaluations, want 0", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(true, prometheus.NewRegistry())
	c.RecordHTTPRequest("GET", "/v1/policy/versions", 200, 5*time.Millisecond)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("metrics scrape failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := make([]byte, 1<<16)
	n, _ := resp.Body.Read(body)
	if !strings.Contains(string(body[:n]), "meridian_http_requests_total") {
		t.Error("exposition does not contain meridian_http_requests_total")
	}
}
