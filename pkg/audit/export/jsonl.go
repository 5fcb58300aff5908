package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"atlashq/meridian/pkg/audit"
)

// JSONLExporter writes audit events as JSON Lines: one event object per
// line, oldest first, so appends from successive runs stay in order.
type JSONLExporter struct{}

// NewJSONLExporter creates a new JSON Lines exporter.
func NewJSONLExporter() *JSONLExporter {
	return &JSONLExporter{}
}

// Export writes the events to the provided writer, one JSON object per
// line. Events are written oldest first regardless of input order.
func (e *JSONLExporter) Export(ctx context.Context, events []*audit.Event, w io.Writer) error {
	ordered := make([]*audit.Event, len(events))
	copy(ordered, events)
	sortOldestFirst(ordered)

	enc := json.NewEncoder(w)
	for i, ev := range ordered {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("failed to encode audit event %d of %d: %w", i+1, len(ordered), err)
		}
	}
	return nil
}

// sortOldestFirst orders events by timestamp ascending, id as tie-break so
// output is deterministic.
func sortOldestFirst(events []*audit.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].At.Equal(events[j].At) {
			return events[i].At.Before(events[j].At)
		}
		return events[i].ID < events[j].ID
	})
}
