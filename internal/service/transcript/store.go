// Package transcript holds the live transcript accumulator: an append-only log of
// transcript lines per bot call, fed by provider webhooks and read by the live endpoint.
package transcript

import (
	"context"
	"strings"
	"time"
)

// Entry is the accumulated transcript of one call.
//
// Invariants:
//   - an Entry exists only after at least one non-empty line was accepted
//   - Lines only grows; existing lines are never reordered or rewritten
//   - Text is always Lines joined by "\n"
type Entry struct {
	Lines     []string
	Text      string
	UpdatedAt time.Time
}

// HasData reports whether the entry carries any non-blank text.
func (e Entry) HasData() bool {
	return strings.TrimSpace(e.Text) != ""
}

// UpdatedMillis returns UpdatedAt as unix milliseconds, or 0 for the zero time.
func (e Entry) UpdatedMillis() int64 {
	if e.UpdatedAt.IsZero() {
		return 0
	}
	return e.UpdatedAt.UnixMilli()
}

// AppendResult describes the effect of one Append call.
type AppendResult struct {
	Appended bool // false when the fragment was blank
	Created  bool // true when this append created the entry
	Lines    int  // line count after the append
}

// Store is the accumulator boundary. Callers never touch a backend directly,
// so the in-process map can be swapped for an external store.
type Store interface {
	// Append trims fragment and appends it to the call's transcript.
	// Blank fragments are a no-op and leave the entry untouched.
	Append(ctx context.Context, botID, fragment string) (AppendResult, error)

	// Get returns the call's entry. A missing entry is reported with ok=false and a nil error.
	Get(ctx context.Context, botID string) (entry Entry, ok bool, err error)
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
