package store

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	memdb "github.com/hashicorp/go-memdb"
)

const (
	entriesTable     = "entries"
	seqIndex         = "id"
	fingerprintIndex = "fingerprint"
)

// row is the indexed form of an Entry. Seq is assigned inside the write
// transaction, so seq order is commit order.
type row struct {
	Seq         uint64
	Fingerprint uint64
	Entry       *Entry
}

// uint64Index encodes a row field big-endian so that index order is numeric
// order. memdb appends the primary key to non-unique index values, which
// keeps rows sharing a fingerprint in insertion order.
type uint64Index func(*row) uint64

func (f uint64Index) FromObject(obj any) (bool, []byte, error) {
	r, ok := obj.(*row)
	if !ok {
		return false, nil, fmt.Errorf("store: unexpected %T in entry table", obj)
	}
	return true, binary.BigEndian.AppendUint64(nil, f(r)), nil
}

func (f uint64Index) FromArgs(args ...any) ([]byte, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("store: want one index argument, got %d", len(args))
	}
	v, ok := args[0].(uint64)
	if !ok {
		return nil, fmt.Errorf("store: index argument %T is not a uint64", args[0])
	}
	return binary.BigEndian.AppendUint64(nil, v), nil
}

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		entriesTable: {
			Name: entriesTable,
			Indexes: map[string]*memdb.IndexSchema{
				seqIndex: {
					Name:    seqIndex,
					Unique:  true,
					Indexer: uint64Index(func(r *row) uint64 { return r.Seq }),
				},
				fingerprintIndex: {
					Name:    fingerprintIndex,
					Indexer: uint64Index(func(r *row) uint64 { return r.Fingerprint }),
				},
			},
		},
	},
}

// table is the append-only entry log of a Store. Reads run on immutable
// snapshots and never block appends.
type table struct {
	db  *memdb.MemDB
	seq uint64 // guarded by the memdb writer lock
	n   atomic.Int64
}

func newTable() *table {
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		panic(fmt.Sprintf("store: invalid entry schema: %v", err))
	}
	return &table{db: db}
}

// append commits e and returns the new entry count.
func (t *table) append(e *Entry) (int, error) {
	txn := t.db.Txn(true)
	defer txn.Abort()

	t.seq++
	if err := txn.Insert(entriesTable, &row{Seq: t.seq, Fingerprint: e.fingerprint, Entry: e}); err != nil {
		return 0, fmt.Errorf("store: append entry: %w", err)
	}
	txn.Commit()
	return int(t.n.Add(1)), nil
}

func (t *table) count() int { return int(t.n.Load()) }

// first returns the earliest entry with fingerprint fp that match accepts.
func (t *table) first(fp uint64, match func(*Entry) bool) (*Entry, error) {
	txn := t.db.Txn(false)
	it, err := txn.Get(entriesTable, fingerprintIndex, fp)
	if err != nil {
		return nil, err
	}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		if e := obj.(*row).Entry; match(e) {
			return e, nil
		}
	}
	return nil, nil
}

// all returns every entry in insertion order.
func (t *table) all() ([]*Entry, error) {
	txn := t.db.Txn(false)
	it, err := txn.Get(entriesTable, seqIndex)
	if err != nil {
		return nil, err
	}
	var out []*Entry
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, obj.(*row).Entry)
	}
	return out, nil
}
