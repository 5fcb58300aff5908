package store

import (
	"sort"
	"time"
)

// resolveActiveAt applies the temporal resolution rule shared by both
// backends: among records with status active or scheduled whose
// effectiveFrom has arrived by the given instant, the latest effectiveFrom
// wins. A later-dated activation supersedes an older active-flagged record
// even while the older record still carries status active in storage.
//
// Fallbacks, in order: the record literally flagged active, then the oldest
// record in the set. Returns nil only for an empty set; callers fabricate
// the baseline in that case.
//
// Records sharing the exact same effectiveFrom are tie-broken by the higher
// version id.
func resolveActiveAt(records []*VersionRecord, at time.Time) *VersionRecord {
	if len(records) == 0 {
		return nil
	}

	var winner *VersionRecord
	for _, rec := range records {
		if rec.Status != StatusActive && rec.Status != StatusScheduled {
			continue
		}
		if rec.EffectiveFrom.After(at) {
			continue
		}
		if winner == nil || supersedes(rec, winner) {
			winner = rec
		}
	}
	if winner != nil {
		return winner
	}

	// Nothing effective yet: fall back to whatever is flagged active.
	var active *VersionRecord
	for _, rec := range records {
		if rec.Status != StatusActive {
			continue
		}
		if active == nil || supersedes(rec, active) {
			active = rec
		}
	}
	if active != nil {
		return active
	}

	// Last resort: the oldest record in the store.
	oldest := records[0]
	for _, rec := range records[1:] {
		if rec.CreatedAt.Before(oldest.CreatedAt) {
			oldest = rec
		}
	}
	return oldest
}

// supersedes reports whether a wins over b under the latest-effectiveFrom
// rule with the version id tie-break.
func supersedes(a, b *VersionRecord) bool {
	if !a.EffectiveFrom.Equal(b.EffectiveFrom) {
		return a.EffectiveFrom.After(b.EffectiveFrom)
	}
	return compareVersionIDs(a.VersionID, b.VersionID) > 0
}

// sortVersionsNewestFirst orders records newest CreatedAt first, breaking
// ties by descending version id so listings are deterministic.
func sortVersionsNewestFirst(records []*VersionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return compareVersionIDs(records[i].VersionID, records[j].VersionID) > 0
	})
}
