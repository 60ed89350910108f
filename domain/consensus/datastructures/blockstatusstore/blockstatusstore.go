// Package blockstatusstore stores each block's validation-lifecycle
// status (spec.md §4.10/[FULL-DATA] BlockStatus: header-only, valid,
// invalid).
package blockstatusstore

import (
	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/lrucache"
)

var bucketPrefix = []byte("block-statuses/")

func keyFor(hash *externalapi.DomainHash) []byte {
	key := make([]byte, 0, len(bucketPrefix)+externalapi.DomainHashSize)
	key = append(key, bucketPrefix...)
	key = append(key, hash[:]...)
	return key
}

type stagingShard struct {
	store   *blockStatusStore
	staging map[externalapi.DomainHash]externalapi.BlockStatus
}

func (s *stagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, status := range s.staging {
		if err := dbTx.Put(keyFor(&hash), []byte{byte(status)}); err != nil {
			return err
		}
		s.store.cache.Add(&hash, status)
	}
	return nil
}

type blockStatusStore struct {
	cache *lrucache.LRUCache
}

// New returns a model.BlockStatusStore with the given cache size.
func New(cacheSize int) model.BlockStatusStore {
	return &blockStatusStore{cache: lrucache.New(cacheSize)}
}

func (bss *blockStatusStore) shard(stagingArea *model.StagingArea) *stagingShard {
	return stagingArea.GetOrCreateShard(model.StagingShardIDBlockStatus, func() model.StagingShard {
		return &stagingShard{store: bss, staging: make(map[externalapi.DomainHash]externalapi.BlockStatus)}
	}).(*stagingShard)
}

// Stage records status for blockHash in the staging area.
func (bss *blockStatusStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, status externalapi.BlockStatus) {
	bss.shard(stagingArea).staging[*blockHash] = status
}

// Get returns the status stored for blockHash.
func (bss *blockStatusStore) Get(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (externalapi.BlockStatus, error) {
	shard := bss.shard(stagingArea)
	if status, ok := shard.staging[*blockHash]; ok {
		return status, nil
	}
	if cached, ok := bss.cache.Get(blockHash); ok {
		return cached.(externalapi.BlockStatus), nil
	}

	statusBytes, err := dbContext.Get(keyFor(blockHash))
	if err != nil {
		return 0, err
	}
	status := externalapi.BlockStatus(statusBytes[0])
	bss.cache.Add(blockHash, status)
	return status, nil
}

// Exists reports whether a status is recorded for blockHash.
func (bss *blockStatusStore) Exists(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (bool, error) {
	shard := bss.shard(stagingArea)
	if _, ok := shard.staging[*blockHash]; ok {
		return true, nil
	}
	if bss.cache.Has(blockHash) {
		return true, nil
	}
	return dbContext.Has(keyFor(blockHash))
}
