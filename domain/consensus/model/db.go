package model

import "github.com/ghostdag-network/consensus/infrastructure/db/database"

// DBReader is the read-only view of storage a store's Get methods use.
type DBReader interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Cursor(prefix []byte) (database.Cursor, error)
}

// DBTransaction is the read/write handle a staging area commits its
// shards into.
type DBTransaction interface {
	DBReader
	Put(key []byte, value []byte) error
	Delete(key []byte) error
}
