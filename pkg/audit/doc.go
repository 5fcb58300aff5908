// Package audit defines the append-only audit trail model for policy
// lifecycle transitions. Events are written by the version store, one per
// successful transition, and are never mutated or deleted. The export
// subpackage copies events to archival sinks; the trail itself only grows.
package audit
