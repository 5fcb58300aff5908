package store

import (
	"context"
	"strings"
	"time"

	"atlashq/meridian/pkg/audit"
	"atlashq/meridian/pkg/policy"
)

// Status is the lifecycle state of a policy version record.
type Status string

const (
	// StatusDraft is the state of a freshly created version.
	StatusDraft Status = "draft"

	// StatusScheduled marks a version activated with a future effective
	// instant. It becomes authoritative lazily, once that instant arrives.
	StatusScheduled Status = "scheduled"

	// StatusActive marks the version flagged as currently in force.
	StatusActive Status = "active"

	// StatusRetired marks a superseded version. Retired is terminal: a
	// retired version is never reactivated.
	StatusRetired Status = "retired"
)

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusActive, StatusRetired:
		return true
	}
	return false
}

// VersionRecord is one policy configuration version. The store exclusively
// owns and mutates these records; every accessor hands out copies.
type VersionRecord struct {
	VersionID     string        `json:"versionId"`
	Status        Status        `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	CreatedBy     string        `json:"createdBy"`
	EffectiveFrom time.Time     `json:"effectiveFrom"`
	ActivatedAt   *time.Time    `json:"activatedAt,omitempty"`
	ActivatedBy   string        `json:"activatedBy,omitempty"`
	Note          string        `json:"note,omitempty"`
	Config        policy.Config `json:"config"`
}

// Clone returns a deep copy of the record.
func (r *VersionRecord) Clone() *VersionRecord {
	out := *r
	out.Config = r.Config.Clone()
	if r.ActivatedAt != nil {
		at := *r.ActivatedAt
		out.ActivatedAt = &at
	}
	return &out
}

// Store is the authoritative source of policy configurations over time.
//
// ListVersions, GetVersion, and GetActiveVersionAt are read-only and may run
// concurrently; CreateDraft and ActivateVersion are read-modify-write
// sequences that implementations must serialize against each other.
type Store interface {
	// ListVersions returns all version records, newest CreatedAt first.
	ListVersions(ctx context.Context) ([]*VersionRecord, error)

	// ListAuditEvents returns all audit events, newest At first.
	ListAuditEvents(ctx context.Context) ([]*audit.Event, error)

	// GetVersion returns the record with the given id. Absence is reported
	// through the bool, not an error: an unknown id is an expected lookup
	// outcome.
	GetVersion(ctx context.Context, versionID string) (*VersionRecord, bool, error)

	// GetActiveVersionAt resolves the configuration in force at the instant.
	// It never returns an empty result: if nothing matches it falls back to
	// the record flagged active, then to the oldest record, then to a
	// fabricated built-in baseline.
	GetActiveVersionAt(ctx context.Context, at time.Time) (*VersionRecord, error)

	// CreateDraft validates the config, allocates the next version id, and
	// inserts a new draft record. One create_draft audit event is appended.
	CreateDraft(ctx context.Context, actorName string, cfg policy.Config, note string) (*VersionRecord, error)

	// ActivateVersion activates a version immediately or at a future
	// effective instant (nil effectiveFrom means now). Immediate activation
	// eagerly retires the records it supersedes; scheduled activation
	// leaves other records untouched. One activate_policy audit event is
	// appended.
	ActivateVersion(ctx context.Context, versionID, actorName string, effectiveFrom *time.Time, note string) (*VersionRecord, error)

	// Close releases backend resources.
	Close() error
}

// baselineVersionID labels the fabricated record returned for an empty store.
const baselineVersionID = "policy-v1.0.0"

// baselineRecord fabricates the built-in configuration record so that
// GetActiveVersionAt always yields a usable result. The record is a
// read-time fabrication and is never inserted into the store.
func baselineRecord() *VersionRecord {
	return &VersionRecord{
		VersionID: baselineVersionID,
		Status:    StatusActive,
		CreatedBy: "system",
		Note:      "built-in baseline configuration",
		Config:    policy.Baseline(),
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
