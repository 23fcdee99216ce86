package store

import (
	"errors"

	"github.com/google/uuid"
	"github.com/on-the-ground/memo_ive_go/params"
	"github.com/on-the-ground/memo_ive_go/shared/log"
	"github.com/rickb777/date/v2/timespan"
)

// Event describes one lookup outcome passed to hooks.
type Event struct {
	Store    string
	EntryID  uuid.UUID
	Receiver any
	Args     params.Args
	// Span is set for OnStore and for OnError raised by a computation.
	Span timespan.TimeSpan
	Err  error
}

// HookFunc observes an Event. A returned error is logged, never propagated.
type HookFunc func(Event) error

// Hooks are lifecycle callbacks. Each is optional; a panicking or failing
// hook is logged and the call proceeds.
type Hooks struct {
	OnHit   HookFunc // a stored entry answered the call
	OnMiss  HookFunc // no entry matched; the computation is about to run
	OnStore HookFunc // a new entry was appended
	OnError HookFunc // the computation or the hit copy failed
}

// Then returns hooks that run h's callbacks followed by next's.
func (h Hooks) Then(next Hooks) Hooks {
	return Hooks{
		OnHit:   chain(h.OnHit, next.OnHit),
		OnMiss:  chain(h.OnMiss, next.OnMiss),
		OnStore: chain(h.OnStore, next.OnStore),
		OnError: chain(h.OnError, next.OnError),
	}
}

func chain(a, b HookFunc) HookFunc {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ev Event) error {
		return errors.Join(a(ev), b(ev))
	}
}

func (s *Store) run(name string, fn HookFunc, ev Event) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Emit(s.logger, log.LogWarn, "memo hook panicked", map[string]any{
				"store": s.name,
				"hook":  name,
				"panic": r,
			})
		}
	}()
	if err := fn(ev); err != nil {
		log.Emit(s.logger, log.LogWarn, "memo hook failed", map[string]any{
			"store": s.name,
			"hook":  name,
			"error": err,
		})
	}
}
