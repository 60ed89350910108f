// Package ldb adapts github.com/btcsuite/goleveldb to the
// database.Database contract, the same backend and wrapping pattern
// the teacher uses (infrastructure/db/database/ldb).
package ldb

import (
	"github.com/btcsuite/goleveldb/leveldb"
	"github.com/btcsuite/goleveldb/leveldb/iterator"
	"github.com/btcsuite/goleveldb/leveldb/util"
	"github.com/ghostdag-network/consensus/infrastructure/db/database"
	"github.com/pkg/errors"
)

// LevelDB wraps a goleveldb instance opened at a directory path.
type LevelDB struct {
	db *leveldb.DB
}

// NewLevelDB opens (creating if necessary) a LevelDB store at path.
func NewLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", path)
	}
	return &LevelDB{db: db}, nil
}

// Get implements database.Database.
func (l *LevelDB) Get(key []byte) ([]byte, error) {
	value, err := l.db.Get(key, nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

// Has implements database.Database.
func (l *LevelDB) Has(key []byte) (bool, error) {
	return l.db.Has(key, nil)
}

// Put implements database.Database.
func (l *LevelDB) Put(key, value []byte) error {
	return l.db.Put(key, value, nil)
}

// Delete implements database.Database.
func (l *LevelDB) Delete(key []byte) error {
	return l.db.Delete(key, nil)
}

// Cursor implements database.Database.
func (l *LevelDB) Cursor(prefix []byte) (database.Cursor, error) {
	iter := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	return &levelDBCursor{iter: iter, started: false}, nil
}

// Begin implements database.Database.
func (l *LevelDB) Begin() (database.Transaction, error) {
	tx, err := l.db.OpenTransaction()
	if err != nil {
		return nil, err
	}
	return &levelDBTransaction{tx: tx}, nil
}

// Close implements database.Database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

type levelDBCursor struct {
	iter    iterator.Iterator
	started bool
}

func (c *levelDBCursor) Next() bool {
	if !c.started {
		c.started = true
		return c.iter.First()
	}
	return c.iter.Next()
}

func (c *levelDBCursor) Key() ([]byte, error) {
	key := c.iter.Key()
	keyCopy := make([]byte, len(key))
	copy(keyCopy, key)
	return keyCopy, nil
}

func (c *levelDBCursor) Value() ([]byte, error) {
	value := c.iter.Value()
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	return valueCopy, nil
}

func (c *levelDBCursor) Close() error {
	c.iter.Release()
	return c.iter.Error()
}

type levelDBTransaction struct {
	tx *leveldb.Transaction
}

func (t *levelDBTransaction) Get(key []byte) ([]byte, error) {
	value, err := t.tx.Get(key, nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (t *levelDBTransaction) Has(key []byte) (bool, error) {
	return t.tx.Has(key, nil)
}

func (t *levelDBTransaction) Put(key, value []byte) error {
	return t.tx.Put(key, value, nil)
}

func (t *levelDBTransaction) Delete(key []byte) error {
	return t.tx.Delete(key, nil)
}

func (t *levelDBTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *levelDBTransaction) Rollback() error {
	t.tx.Discard()
	return nil
}
