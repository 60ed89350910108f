// Package dbaccess provides the DatabaseContext every consensus store
// is constructed with: a thin handle over a database.Database that
// stores use directly for reads and indirectly (via a goleveldb
// Transaction) for the atomic commit at the end of block processing.
package dbaccess

import (
	"github.com/ghostdag-network/consensus/infrastructure/db/database"
	"github.com/ghostdag-network/consensus/infrastructure/db/database/ldb"
)

// DatabaseContext represents the context in which all store queries
// and the eventual commit transaction for one block run.
type DatabaseContext struct {
	DB database.Database
}

// New opens a LevelDB-backed DatabaseContext rooted at path.
func New(path string) (*DatabaseContext, error) {
	db, err := ldb.NewLevelDB(path)
	if err != nil {
		return nil, err
	}
	return &DatabaseContext{DB: db}, nil
}

// Close releases the underlying database handle.
func (ctx *DatabaseContext) Close() error {
	return ctx.DB.Close()
}

// Get reads key directly from the database, bypassing any in-flight
// staging area. Stores call this only after checking their own staged
// mutations and cache first.
func (ctx *DatabaseContext) Get(key []byte) ([]byte, error) {
	return ctx.DB.Get(key)
}

// Has reports whether key exists in the committed database.
func (ctx *DatabaseContext) Has(key []byte) (bool, error) {
	return ctx.DB.Has(key)
}

// Cursor iterates every committed key carrying prefix.
func (ctx *DatabaseContext) Cursor(prefix []byte) (database.Cursor, error) {
	return ctx.DB.Cursor(prefix)
}

// Begin starts a new atomic transaction used to commit a staging area.
func (ctx *DatabaseContext) Begin() (database.Transaction, error) {
	return ctx.DB.Begin()
}
