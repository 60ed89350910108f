// Package database defines the storage-backend contract the consensus
// stores are built against, matching the teacher's infrastructure/db
// layering: a narrow Database interface any key/value engine can
// satisfy, and a Transaction type for atomic multi-key writes.
package database

import "github.com/pkg/errors"

// ErrNotFound is returned by Get when a key doesn't exist.
var ErrNotFound = errors.New("key not found")

// Database is the contract a storage backend must satisfy.
// domain/consensus code never imports a concrete backend directly; it
// only ever sees this interface, so the backend can be swapped (as it
// is for tests, which use an in-memory implementation) without
// touching consensus code.
type Database interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Put(key []byte, value []byte) error
	Delete(key []byte) error
	Cursor(prefix []byte) (Cursor, error)
	Begin() (Transaction, error)
	Close() error
}

// Cursor iterates over every key carrying a given prefix, in key order.
type Cursor interface {
	Next() bool
	Key() ([]byte, error)
	Value() ([]byte, error)
	Close() error
}

// Transaction batches a set of puts/deletes for atomic commit. All of
// a single AddBlock's mutations are staged into one Transaction and
// committed together, so a crash mid-processing never leaves partial
// state on disk (spec.md §5 "no partial state persisted on failure").
type Transaction interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Put(key []byte, value []byte) error
	Delete(key []byte) error
	Commit() error
	Rollback() error
}
