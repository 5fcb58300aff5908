package export

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"atlashq/meridian/pkg/audit"
)

var exportNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleEvents() []*audit.Event {
	return []*audit.Event{
		{
			ID:        "11111111-1111-1111-1111-111111111111",
			At:        exportNow.Add(time.Minute),
			ActorName: "bob",
			Action:    audit.ActionActivatePolicy,
			VersionID: "policy-v1.0.0",
			Note:      "effective from 2026-06-01T12:01:00Z",
		},
		{
			ID:        "22222222-2222-2222-2222-222222222222",
			At:        exportNow,
			ActorName: "alice",
			Action:    audit.ActionCreateDraft,
			VersionID: "policy-v1.0.0",
			Note:      "first cut",
		},
	}
}

func TestJSONLExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONLExporter().Export(context.Background(), sampleEvents(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var lines []audit.Event
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var ev audit.Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		lines = append(lines, ev)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan error: %v", err)
	}

	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	// Oldest first regardless of input order.
	if lines[0].ActorName != "alice" || lines[1].ActorName != "bob" {
		t.Errorf("order = [%s, %s], want [alice, bob]", lines[0].ActorName, lines[1].ActorName)
	}
	if lines[0].Action != audit.ActionCreateDraft {
		t.Errorf("first Action = %q, want %q", lines[0].Action, audit.ActionCreateDraft)
	}
}

func TestJSONLExporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONLExporter().Export(context.Background(), nil, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Export() wrote %q for no events, want empty output", buf.String())
	}
}

func TestSQLiteArchiver_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	a, err := NewSQLiteArchiver(path, nil)
	if err != nil {
		t.Fatalf("NewSQLiteArchiver() error = %v", err)
	}
	defer a.Close()
	ctx := context.Background()

	inserted, err := a.Archive(ctx, sampleEvents())
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if inserted != 2 {
		t.Errorf("Archive() inserted = %d, want 2", inserted)
	}

	// Second run over the same trail must insert nothing.
	inserted, err = a.Archive(ctx, sampleEvents())
	if err != nil {
		t.Fatalf("Archive() second run error = %v", err)
	}
	if inserted != 0 {
		t.Errorf("Archive() second run inserted = %d, want 0", inserted)
	}

	n, err := a.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}

func TestSQLiteArchiver_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteArchiver("", nil); err == nil {
		t.Fatal("NewSQLiteArchiver() error = nil, want error for empty path")
	}
}

type staticSource struct {
	events []*audit.Event
}

func (s *staticSource) ListAuditEvents(ctx context.Context) ([]*audit.Event, error) {
	return s.events, nil
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	a, err := NewSQLiteArchiver(path, nil)
	if err != nil {
		t.Fatalf("NewSQLiteArchiver() error = %v", err)
	}
	defer a.Close()

	s := NewScheduler(&staticSource{}, a, "not a cron expression")
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("Start() error = nil, want error for invalid schedule")
	}
}

func TestScheduler_EmptyScheduleIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	a, err := NewSQLiteArchiver(path, nil)
	if err != nil {
		t.Fatalf("NewSQLiteArchiver() error = %v", err)
	}
	defer a.Close()

	s := NewScheduler(&staticSource{}, a, "")
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true, want false for empty schedule")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	a, err := NewSQLiteArchiver(path, nil)
	if err != nil {
		t.Fatalf("NewSQLiteArchiver() error = %v", err)
	}
	defer a.Close()

	s := NewScheduler(&staticSource{events: sampleEvents()}, a, "0 3 * * *")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}
	if s.NextRun() == nil {
		t.Error("NextRun() = nil, want next scheduled time")
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}

// runArchival is exercised directly; waiting for a cron tick is not
// practical in tests.
func TestScheduler_RunArchival(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	a, err := NewSQLiteArchiver(path, nil)
	if err != nil {
		t.Fatalf("NewSQLiteArchiver() error = %v", err)
	}
	defer a.Close()

	s := NewScheduler(&staticSource{events: sampleEvents()}, a, "0 3 * * *")
	s.runArchival(context.Background())

	n, err := a.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}
