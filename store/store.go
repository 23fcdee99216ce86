// Package store keeps the results of one operation and answers later calls
// whose receiver and arguments are equal enough to a stored call.
//
// Entries are kept in insertion order and scanned front to back; the first
// equal entry wins. Nothing is ever evicted, so a store grows with every
// distinct call for the lifetime of the process.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/on-the-ground/memo_ive_go/equality"
	"github.com/on-the-ground/memo_ive_go/materialize"
	"github.com/on-the-ground/memo_ive_go/params"
	"github.com/rickb777/date/v2/timespan"
	"go.uber.org/zap"
)

// Config configures a Store.
type Config struct {
	// Name identifies the operation in logs and hook events.
	Name string
	// Ignored lists parameter names excluded from argument comparison.
	Ignored []string
	// Serialize makes scan, computation and append one critical section, so
	// equal concurrent calls compute at most once. A serialized operation
	// must not call itself.
	Serialize bool
	// Materializer prepares results for storage and for hits.
	Materializer materialize.Materializer
	Hooks        Hooks
	Logger       *zap.Logger
}

// Store is the append-only result table of a single operation.
type Store struct {
	id           uuid.UUID
	name         string
	ignored      equality.Set
	serialize    bool
	materializer materialize.Materializer
	hooks        Hooks
	logger       *zap.Logger

	// serial is held across a whole call when serialize is set.
	serial sync.Mutex

	entries *table
}

// New returns an empty store.
func New(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New()
	return &Store{
		id:           id,
		name:         cfg.Name,
		ignored:      equality.NewSet(cfg.Ignored...),
		serialize:    cfg.Serialize,
		materializer: cfg.Materializer,
		hooks:        cfg.Hooks,
		entries:      newTable(),
		logger:       logger.With(zap.String("store", cfg.Name), zap.Stringer("store_id", id)),
	}
}

// ID returns the store's unique id.
func (s *Store) ID() uuid.UUID { return s.id }

// Name returns the configured operation name.
func (s *Store) Name() string { return s.name }

// Len returns the number of stored entries.
func (s *Store) Len() int { return s.entries.count() }

// Entries returns snapshots of the stored entries in insertion order.
func (s *Store) Entries() []EntrySnapshot {
	entries, err := s.entries.all()
	if err != nil {
		s.logger.Error("failed to list entries", zap.Error(err))
		return nil
	}
	out := make([]EntrySnapshot, len(entries))
	for i, e := range entries {
		out[i] = e.snapshot()
	}
	return out
}

// LookupOrCompute returns the result stored for the first entry whose
// receiver and arguments equal the given ones. On a miss it runs compute
// exactly once; a failure is returned unchanged and nothing is stored,
// otherwise the materialized result is appended and returned.
//
// Without Serialize, concurrent equal misses may each compute and append;
// later lookups still resolve to the first of them.
func (s *Store) LookupOrCompute(receiver any, args params.Args, compute func() (any, error)) (any, error) {
	if s.serialize {
		s.serial.Lock()
		defer s.serial.Unlock()
	}

	fp := fingerprint(args, s.ignored)
	e, err := s.entries.first(fp, func(e *Entry) bool {
		return equality.SameValue(e.receiver, receiver) && equality.SameArgs(e.args, args, s.ignored)
	})
	if err != nil {
		return nil, err
	}
	if e != nil {
		return s.hit(e, receiver, args)
	}

	s.logger.Debug("memo miss")
	s.run("OnMiss", s.hooks.OnMiss, Event{Store: s.name, Receiver: receiver, Args: args})

	start := time.Now()
	res, err := compute()
	span := timespan.BetweenTimes(start, time.Now())
	if err != nil {
		s.run("OnError", s.hooks.OnError, Event{Store: s.name, Receiver: receiver, Args: args, Span: span, Err: err})
		return nil, err
	}

	e = &Entry{
		id:          uuid.New(),
		receiver:    receiver,
		args:        args,
		result:      s.materializer.Store(res),
		fingerprint: fp,
		span:        span,
	}
	n, err := s.entries.append(e)
	if err != nil {
		s.run("OnError", s.hooks.OnError, Event{Store: s.name, EntryID: e.id, Receiver: receiver, Args: args, Span: span, Err: err})
		return nil, err
	}

	s.logger.Debug("memo store",
		zap.Stringer("entry_id", e.id),
		zap.Duration("compute", span.Duration()),
		zap.Int("entries", n),
	)
	s.run("OnStore", s.hooks.OnStore, Event{Store: s.name, EntryID: e.id, Receiver: receiver, Args: args, Span: span})
	return e.result, nil
}

func (s *Store) hit(e *Entry, receiver any, args params.Args) (any, error) {
	ev := Event{Store: s.name, EntryID: e.id, Receiver: receiver, Args: args}
	out, err := s.materializer.Retrieve(e.result)
	if err != nil {
		ev.Err = err
		s.run("OnError", s.hooks.OnError, ev)
		return nil, err
	}
	s.logger.Debug("memo hit", zap.Stringer("entry_id", e.id))
	s.run("OnHit", s.hooks.OnHit, ev)
	return out, nil
}
