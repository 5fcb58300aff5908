package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"atlashq/meridian/pkg/audit"
	"atlashq/meridian/pkg/policy"
)

// MemoryStore is the in-memory Store implementation. A single
// reader-writer lock guards the version list and the audit log: write
// operations hold the write lock for their entire read-modify-write
// sequence, readers share the read lock and receive copies.
type MemoryStore struct {
	mu       sync.RWMutex
	versions []*VersionRecord
	events   []*audit.Event
	logger   *slog.Logger

	// now is the clock; overridable in tests.
	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStore{
		logger: logger.With("component", "policy.store.memory"),
		now:    time.Now,
	}
}

// ListVersions returns all version records, newest CreatedAt first.
func (s *MemoryStore) ListVersions(ctx context.Context) ([]*VersionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*VersionRecord, 0, len(s.versions))
	for _, rec := range s.versions {
		out = append(out, rec.Clone())
	}
	sortVersionsNewestFirst(out)
	return out, nil
}

// ListAuditEvents returns all audit events, newest At first.
func (s *MemoryStore) ListAuditEvents(ctx context.Context) ([]*audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*audit.Event, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].At.After(out[j].At)
	})
	return out, nil
}

// GetVersion returns the record with the given id, or found=false.
func (s *MemoryStore) GetVersion(ctx context.Context, versionID string) (*VersionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := s.find(versionID)
	if rec == nil {
		return nil, false, nil
	}
	return rec.Clone(), true, nil
}

// GetActiveVersionAt resolves the configuration in force at the instant.
func (s *MemoryStore) GetActiveVersionAt(ctx context.Context, at time.Time) (*VersionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := resolveActiveAt(s.versions, at)
	if rec == nil {
		return baselineRecord(), nil
	}
	return rec.Clone(), nil
}

// CreateDraft validates the config, allocates the next version id, inserts
// a draft record, and appends a create_draft audit event.
func (s *MemoryStore) CreateDraft(ctx context.Context, actorName string, cfg policy.Config, note string) (*VersionRecord, error) {
	if err := validateActor(actorName); err != nil {
		return nil, err
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.versions))
	for _, rec := range s.versions {
		ids = append(ids, rec.VersionID)
	}

	now := s.now()
	rec := &VersionRecord{
		VersionID: nextVersionID(ids),
		Status:    StatusDraft,
		CreatedAt: now,
		CreatedBy: actorName,
		// Placeholder until activation stamps the real effective instant.
		EffectiveFrom: now,
		Note:          note,
		Config:        cfg.Clone(),
	}
	s.versions = append(s.versions, rec)
	s.appendEvent(now, actorName, audit.ActionCreateDraft, rec.VersionID, note)

	s.logger.Info("policy draft created",
		"version_id", rec.VersionID,
		"actor", actorName,
	)

	return rec.Clone(), nil
}

// ActivateVersion transitions a version to active or scheduled. Immediate
// activation retires the versions it supersedes in the same critical
// section; scheduled activation defers supersession to read-time
// resolution.
func (s *MemoryStore) ActivateVersion(ctx context.Context, versionID, actorName string, effectiveFrom *time.Time, note string) (*VersionRecord, error) {
	if err := validateActor(actorName); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.find(versionID)
	if target == nil {
		return nil, &NotFoundError{VersionID: versionID}
	}
	if target.Status == StatusRetired {
		return nil, &ValidationError{
			Field:   "versionId",
			Message: fmt.Sprintf("version %s is retired; create a new draft instead", versionID),
		}
	}

	now := s.now()
	effective := now
	if effectiveFrom != nil {
		effective = *effectiveFrom
	}

	if effective.After(now) {
		target.Status = StatusScheduled
	} else {
		retireSuperseded(s.versions, target, effective)
		target.Status = StatusActive
	}

	target.EffectiveFrom = effective
	activatedAt := now
	target.ActivatedAt = &activatedAt
	target.ActivatedBy = actorName
	if note != "" {
		target.Note = note
	}

	s.appendEvent(now, actorName, audit.ActionActivatePolicy, target.VersionID,
		activationNote(note, effective))

	s.logger.Info("policy version activated",
		"version_id", target.VersionID,
		"status", string(target.Status),
		"effective_from", effective,
		"actor", actorName,
	)

	return target.Clone(), nil
}

// Close implements Store. The memory store holds no external resources.
func (s *MemoryStore) Close() error {
	return nil
}

// find returns the record with the id, or nil. Callers hold the lock.
func (s *MemoryStore) find(versionID string) *VersionRecord {
	for _, rec := range s.versions {
		if rec.VersionID == versionID {
			return rec
		}
	}
	return nil
}

// appendEvent appends one audit event. Callers hold the write lock.
func (s *MemoryStore) appendEvent(at time.Time, actor string, action audit.Action, versionID, note string) {
	s.events = append(s.events, &audit.Event{
		ID:        uuid.NewString(),
		At:        at,
		ActorName: actor,
		Action:    action,
		VersionID: versionID,
		Note:      note,
	})
}

// retireSuperseded applies eager supersession for an immediate activation:
// every other active record retires, as does every other scheduled record
// whose own effective instant does not postdate the new one (it would have
// been superseded at that instant anyway).
func retireSuperseded(records []*VersionRecord, target *VersionRecord, effective time.Time) {
	for _, rec := range records {
		if rec == target {
			continue
		}
		switch rec.Status {
		case StatusActive:
			rec.Status = StatusRetired
		case StatusScheduled:
			if !rec.EffectiveFrom.After(effective) {
				rec.Status = StatusRetired
			}
		}
	}
}

// activationNote embeds the resolved effective instant into the audit note.
func activationNote(note string, effective time.Time) string {
	stamped := fmt.Sprintf("effective from %s", effective.UTC().Format(time.RFC3339))
	if note == "" {
		return stamped
	}
	return note + " (" + stamped + ")"
}
