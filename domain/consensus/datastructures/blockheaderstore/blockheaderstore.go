// Package blockheaderstore stores block headers, the single table
// spec.md §6.2 names "HeaderStore: id -> serialized header fields".
// On-disk encoding reuses consensusserialization's C1 codec rather than
// introducing a protobuf dependency solely for storage, since protobuf
// was already dropped from this module's dependency set (no P2P/RPC
// transport in scope to justify it).
package blockheaderstore

import (
	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/consensusserialization"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/lrucache"
)

var bucketPrefix = []byte("block-headers/")
var countKey = []byte("block-headers-count")

type stagingShard struct {
	store    *blockHeaderStore
	staging  map[externalapi.DomainHash]*externalapi.DomainBlockHeader
	toDelete map[externalapi.DomainHash]struct{}
}

func (s *stagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, header := range s.staging {
		headerBytes, err := consensusserialization.SerializeHeader(header)
		if err != nil {
			return err
		}
		if err := dbTx.Put(keyFor(&hash), headerBytes); err != nil {
			return err
		}
		s.store.cache.Add(&hash, header)
	}
	for hash := range s.toDelete {
		if err := dbTx.Delete(keyFor(&hash)); err != nil {
			return err
		}
		s.store.cache.Remove(&hash)
	}

	newCount := s.store.count + uint64(len(s.staging)) - uint64(len(s.toDelete))
	countBytes := make([]byte, 8)
	for i := 0; i < 8; i++ {
		countBytes[i] = byte(newCount >> (8 * i))
	}
	if err := dbTx.Put(countKey, countBytes); err != nil {
		return err
	}
	s.store.count = newCount

	return nil
}

func keyFor(hash *externalapi.DomainHash) []byte {
	key := make([]byte, 0, len(bucketPrefix)+externalapi.DomainHashSize)
	key = append(key, bucketPrefix...)
	key = append(key, hash[:]...)
	return key
}

// blockHeaderStore is a model.BlockHeaderStore backed by the database
// behind dbContext, with an LRU cache of recently touched headers.
type blockHeaderStore struct {
	cache *lrucache.LRUCache
	count uint64
}

// New returns a blockHeaderStore with the given cache size, restoring
// its persisted header count from dbContext.
func New(dbContext model.DBReader, cacheSize int) (model.BlockHeaderStore, error) {
	store := &blockHeaderStore{cache: lrucache.New(cacheSize)}

	has, err := dbContext.Has(countKey)
	if err != nil {
		return nil, err
	}
	if has {
		countBytes, err := dbContext.Get(countKey)
		if err != nil {
			return nil, err
		}
		var count uint64
		for i := 0; i < 8 && i < len(countBytes); i++ {
			count |= uint64(countBytes[i]) << (8 * i)
		}
		store.count = count
	}

	return store, nil
}

func (bhs *blockHeaderStore) shard(stagingArea *model.StagingArea) *stagingShard {
	return stagingArea.GetOrCreateShard(model.StagingShardIDBlockHeader, func() model.StagingShard {
		return &stagingShard{
			store:    bhs,
			staging:  make(map[externalapi.DomainHash]*externalapi.DomainBlockHeader),
			toDelete: make(map[externalapi.DomainHash]struct{}),
		}
	}).(*stagingShard)
}

// Stage records header for blockHash in the staging area, to be written
// by the next Commit.
func (bhs *blockHeaderStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, header *externalapi.DomainBlockHeader) {
	shard := bhs.shard(stagingArea)
	shard.staging[*blockHash] = header
	delete(shard.toDelete, *blockHash)
}

// BlockHeader returns the header stored for blockHash, checking the
// staging area and cache before falling back to the database.
func (bhs *blockHeaderStore) BlockHeader(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {
	shard := bhs.shard(stagingArea)
	if header, ok := shard.staging[*blockHash]; ok {
		return header, nil
	}
	if cached, ok := bhs.cache.Get(blockHash); ok {
		return cached.(*externalapi.DomainBlockHeader), nil
	}

	headerBytes, err := dbContext.Get(keyFor(blockHash))
	if err != nil {
		return nil, err
	}
	header, err := consensusserialization.DeserializeHeader(headerBytes)
	if err != nil {
		return nil, err
	}
	bhs.cache.Add(blockHash, header)
	return header, nil
}

// HasBlockHeader reports whether a header is stored for blockHash.
func (bhs *blockHeaderStore) HasBlockHeader(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (bool, error) {
	shard := bhs.shard(stagingArea)
	if _, ok := shard.staging[*blockHash]; ok {
		return true, nil
	}
	if bhs.cache.Has(blockHash) {
		return true, nil
	}
	return dbContext.Has(keyFor(blockHash))
}

// Delete marks blockHash's header for removal on the next Commit.
func (bhs *blockHeaderStore) Delete(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) {
	shard := bhs.shard(stagingArea)
	delete(shard.staging, *blockHash)
	shard.toDelete[*blockHash] = struct{}{}
}

// Count returns the number of committed headers; staged writes are not
// counted until their staging area is committed.
func (bhs *blockHeaderStore) Count() uint64 {
	return bhs.count
}
