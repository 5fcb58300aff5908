// Package store implements the temporally versioned policy configuration
// store: the single source of truth for all travel policy configurations
// over time, their lifecycle transitions, and the append-only audit trail.
//
// Two backends implement the Store interface. MemoryStore keeps everything
// behind one reader-writer lock and is the default. SQLiteStore persists
// versions and audit events for single-instance deployments that must
// survive restarts. Both serialize the read-modify-write operations
// (CreateDraft, ActivateVersion) so that concurrent activations can never
// leave two records active at once and concurrent drafts can never allocate
// the same version id.
//
// Supersession is asymmetric on purpose: an immediate activation eagerly
// retires the records it replaces, while a scheduled activation touches
// nothing and is resolved lazily by GetActiveVersionAt once its effective
// instant arrives. This avoids a background job that would have to flip
// statuses at exactly the boundary instant.
package store
