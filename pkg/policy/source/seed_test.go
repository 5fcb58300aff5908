package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"atlashq/meridian/pkg/policy/store"
)

const validSeed = `
actor: travel-ops
note: quarterly refresh
config:
  min_advance_days_by_trip_type:
    domestic: 3
    international: 14
  max_budget_by_grade:
    staff: 3500
    manager: 6000
    director: 9500
    executive: 15000
  max_travel_class_by_grade:
    staff: economy
    manager: premium_economy
    director: business
    executive: first
  budget_warning_threshold: 0.85
  max_trip_length_days: 14
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	seed, err := Load(writeSeed(t, validSeed))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if seed.Actor != "travel-ops" {
		t.Errorf("Actor = %q, want %q", seed.Actor, "travel-ops")
	}
	if seed.Note != "quarterly refresh" {
		t.Errorf("Note = %q, want %q", seed.Note, "quarterly refresh")
	}
	if got := seed.Config.BudgetWarningThreshold; got != 0.85 {
		t.Errorf("BudgetWarningThreshold = %v, want 0.85", got)
	}
	if got := seed.Config.MaxTripLengthDays; got != 14 {
		t.Errorf("MaxTripLengthDays = %d, want 14", got)
	}
}

func TestLoad_DefaultActor(t *testing.T) {
	content := `
config:
  min_advance_days_by_trip_type: {domestic: 3, international: 14}
  max_budget_by_grade: {staff: 3500, manager: 6000, director: 9500, executive: 15000}
  max_travel_class_by_grade: {staff: economy, manager: premium_economy, director: business, executive: first}
  budget_warning_threshold: 0.85
  max_trip_length_days: 14
`
	seed, err := Load(writeSeed(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if seed.Actor != DefaultActor {
		t.Errorf("Actor = %q, want %q", seed.Actor, DefaultActor)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "config: [not a mapping"},
		{"invalid config", "config:\n  budget_warning_threshold: 2.0\n"},
		{"empty file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeSeed(t, tt.content)); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() error = nil, want error")
	}
}

func TestSeedIfEmpty(t *testing.T) {
	st := store.NewMemoryStore(nil)
	ctx := context.Background()
	path := writeSeed(t, validSeed)

	active, err := SeedIfEmpty(ctx, st, path)
	if err != nil {
		t.Fatalf("SeedIfEmpty() error = %v", err)
	}
	if active == nil {
		t.Fatal("SeedIfEmpty() returned nil record on empty store")
	}
	if active.Status != store.StatusActive {
		t.Errorf("Status = %q, want %q", active.Status, store.StatusActive)
	}
	if active.CreatedBy != "travel-ops" {
		t.Errorf("CreatedBy = %q, want %q", active.CreatedBy, "travel-ops")
	}

	// Seeding again must not touch a populated store.
	again, err := SeedIfEmpty(ctx, st, path)
	if err != nil {
		t.Fatalf("SeedIfEmpty() second run error = %v", err)
	}
	if again != nil {
		t.Errorf("SeedIfEmpty() on populated store = %+v, want nil", again)
	}

	versions, err := st.ListVersions(ctx)
	if err != nil {
		t.Fatalf("ListVersions() error = %v", err)
	}
	if len(versions) != 1 {
		t.Errorf("store holds %d versions, want 1", len(versions))
	}
}

func TestImportDraft(t *testing.T) {
	st := store.NewMemoryStore(nil)
	ctx := context.Background()
	path := writeSeed(t, validSeed)

	if _, err := SeedIfEmpty(ctx, st, path); err != nil {
		t.Fatalf("SeedIfEmpty() error = %v", err)
	}

	draft, err := ImportDraft(ctx, st, path)
	if err != nil {
		t.Fatalf("ImportDraft() error = %v", err)
	}
	if draft.Status != store.StatusDraft {
		t.Errorf("Status = %q, want %q", draft.Status, store.StatusDraft)
	}

	// The active version must be unaffected by the import.
	active, err := st.GetActiveVersionAt(ctx, draft.CreatedAt)
	if err != nil {
		t.Fatalf("GetActiveVersionAt() error = %v", err)
	}
	if active.VersionID == draft.VersionID {
		t.Errorf("imported draft %s became active", draft.VersionID)
	}
}
