package audit

import "time"

// Action identifies the lifecycle transition an event records.
type Action string

const (
	// ActionCreateDraft records the creation of a new draft version.
	ActionCreateDraft Action = "create_draft"

	// ActionActivatePolicy records the activation (immediate or scheduled)
	// of a version.
	ActionActivatePolicy Action = "activate_policy"
)

// Event is one append-only audit trail entry.
type Event struct {
	ID        string    `json:"id"`
	At        time.Time `json:"at"`
	ActorName string    `json:"actorName"`
	Action    Action    `json:"action"`
	VersionID string    `json:"versionId"`
	Note      string    `json:"note,omitempty"`
}

// Clone returns a copy of the event.
func (e *Event) Clone() *Event {
	out := *e
	return &out
}
