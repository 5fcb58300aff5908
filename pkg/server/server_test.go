package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"atlashq/meridian/pkg/config"
	"atlashq/meridian/pkg/policy"
	"atlashq/meridian/pkg/policy/engine"
	"atlashq/meridian/pkg/policy/store"
	"atlashq/meridian/pkg/telemetry/metrics"
)

func newTestServer() *Server {
	cfg := config.DefaultConfig()
	cfg.Telemetry.Metrics.Enabled = true
	collector := metrics.NewCollector(true, nil)
	st := store.NewMemoryStore(nil)
	return NewServer(&cfg.Server, &cfg.Telemetry.Metrics, st, engine.NewEvaluator(nil), collector)
}

func TestServer_Routes(t *testing.T) {
	handler := newTestServer().Handler()

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
	}{
		{"health", http.MethodGet, "/health", nil, http.StatusOK},
		{"ready", http.MethodGet, "/ready", nil, http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", nil, http.StatusOK},
		{"list versions", http.MethodGet, "/v1/policy/versions", nil, http.StatusOK},
		{"active version", http.MethodGet, "/v1/policy/versions/active", nil, http.StatusOK},
		{"get unknown version", http.MethodGet, "/v1/policy/versions/policy-v9.9.9", nil, http.StatusNotFound},
		{"audit", http.MethodGet, "/v1/policy/audit", nil, http.StatusOK},
		{"unknown route", http.MethodGet, "/v1/unknown", nil, http.StatusNotFound},
		{"wrong method", http.MethodDelete, "/v1/policy/versions", nil, http.StatusMethodNotAllowed},
		{
			"create draft",
			http.MethodPost, "/v1/policy/versions",
			map[string]any{"actorName": "alice", "config": policy.Baseline()},
			http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != nil {
				raw, err := json.Marshal(tt.body)
				if err != nil {
					t.Fatalf("failed to marshal body: %v", err)
				}
				req = httptest.NewRequest(tt.method, tt.path, bytes.NewReader(raw))
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d\nbody: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
		})
	}
}

func TestServer_RequestIDOnEveryResponse(t *testing.T) {
	handler := newTestServer().Handler()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID header")
	}
}

func TestServer_FullLifecycleOverHTTP(t *testing.T) {
	handler := newTestServer().Handler()

	// Create a draft.
	raw, _ := json.Marshal(map[string]any{"actorName": "alice", "config": policy.Baseline()})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/policy/versions", bytes.NewReader(raw)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201\nbody: %s", rr.Code, rr.Body.String())
	}
	var draft store.VersionRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &draft); err != nil {
		t.Fatalf("create response: %v", err)
	}

	// Activate it.
	raw, _ = json.Marshal(map[string]any{"actorName": "bob"})
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost,
		"/v1/policy/versions/"+draft.VersionID+"/activate", bytes.NewReader(raw)))
	if rr.Code != http.StatusOK {
		t.Fatalf("activate status = %d, want 200\nbody: %s", rr.Code, rr.Body.String())
	}

	// The active version now resolves to it.
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/policy/versions/active", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("active status = %d, want 200", rr.Code)
	}
	var active store.VersionRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &active); err != nil {
		t.Fatalf("active response: %v", err)
	}
	if active.VersionID != draft.VersionID {
		t.Errorf("active version = %q, want %q", active.VersionID, draft.VersionID)
	}

	// Audit trail has both events.
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/policy/audit", nil))
	var auditBody struct {
		Events []json.RawMessage `json:"events"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &auditBody); err != nil {
		t.Fatalf("audit response: %v", err)
	}
	if len(auditBody.Events) != 2 {
		t.Errorf("audit trail has %d events, want 2", len(auditBody.Events))
	}
}
