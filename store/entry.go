package store

import (
	"github.com/google/uuid"
	"github.com/on-the-ground/memo_ive_go/params"
	"github.com/rickb777/date/v2/timespan"
)

// Entry is one stored (receiver, arguments, result) triple. Entries are
// appended once and never mutated or removed.
type Entry struct {
	id          uuid.UUID
	receiver    any
	args        params.Args
	result      any
	fingerprint uint64
	span        timespan.TimeSpan
}

// EntrySnapshot describes an entry for inspection.
type EntrySnapshot struct {
	ID   uuid.UUID
	Args params.Args
	// Span is the wall-clock interval the underlying computation took.
	Span timespan.TimeSpan
}

func (e *Entry) snapshot() EntrySnapshot {
	return EntrySnapshot{
		ID:   e.id,
		Args: e.args.Clone(),
		Span: e.span,
	}
}
