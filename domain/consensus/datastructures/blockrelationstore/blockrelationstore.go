// Package blockrelationstore stores each block's recorded parents and
// children, independent of the reachability tree built over them
// (spec.md §3.1 DAG-relations).
package blockrelationstore

import (
	"encoding/binary"

	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/ruleerrors"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/lrucache"
)

var bucketPrefix = []byte("block-relations/")

func keyFor(hash *externalapi.DomainHash) []byte {
	key := make([]byte, 0, len(bucketPrefix)+externalapi.DomainHashSize)
	key = append(key, bucketPrefix...)
	key = append(key, hash[:]...)
	return key
}

type stagingShard struct {
	store   *blockRelationStore
	staging map[externalapi.DomainHash]*model.BlockRelations
}

func (s *stagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, relations := range s.staging {
		relationsBytes := serialize(relations)
		if err := dbTx.Put(keyFor(&hash), relationsBytes); err != nil {
			return err
		}
		s.store.cache.Add(&hash, relations)
	}
	return nil
}

type blockRelationStore struct {
	cache *lrucache.LRUCache
}

// New returns a model.BlockRelationStore with the given cache size.
func New(cacheSize int) model.BlockRelationStore {
	return &blockRelationStore{cache: lrucache.New(cacheSize)}
}

func (brs *blockRelationStore) shard(stagingArea *model.StagingArea) *stagingShard {
	return stagingArea.GetOrCreateShard(model.StagingShardIDBlockRelation, func() model.StagingShard {
		return &stagingShard{store: brs, staging: make(map[externalapi.DomainHash]*model.BlockRelations)}
	}).(*stagingShard)
}

// StageRelation records relations for blockHash in the staging area.
func (brs *blockRelationStore) StageRelation(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, relations *model.BlockRelations) {
	brs.shard(stagingArea).staging[*blockHash] = relations
}

// BlockRelation returns the relations recorded for blockHash.
func (brs *blockRelationStore) BlockRelation(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (*model.BlockRelations, error) {
	shard := brs.shard(stagingArea)
	if relations, ok := shard.staging[*blockHash]; ok {
		return relations, nil
	}
	if cached, ok := brs.cache.Get(blockHash); ok {
		return cached.(*model.BlockRelations), nil
	}

	relationsBytes, err := dbContext.Get(keyFor(blockHash))
	if err != nil {
		return nil, err
	}
	relations, err := deserialize(relationsBytes)
	if err != nil {
		return nil, err
	}
	brs.cache.Add(blockHash, relations)
	return relations, nil
}

func serialize(relations *model.BlockRelations) []byte {
	buf := make([]byte, 0, 64)
	buf = appendHashList(buf, relations.Parents)
	buf = appendHashList(buf, relations.Children)
	return buf
}

func appendHashList(buf []byte, hashes []*externalapi.DomainHash) []byte {
	var countBytes [4]byte
	binary.LittleEndian.PutUint32(countBytes[:], uint32(len(hashes)))
	buf = append(buf, countBytes[:]...)
	for _, hash := range hashes {
		buf = append(buf, hash[:]...)
	}
	return buf
}

func deserialize(data []byte) (*model.BlockRelations, error) {
	offset := 0
	readHashList := func() ([]*externalapi.DomainHash, error) {
		if offset+4 > len(data) {
			return nil, ruleerrors.New(ruleerrors.ErrInvalidEncoding, "unexpected end of block relations bytes")
		}
		count := binary.LittleEndian.Uint32(data[offset:])
		offset += 4
		hashes := make([]*externalapi.DomainHash, count)
		for i := uint32(0); i < count; i++ {
			if offset+externalapi.DomainHashSize > len(data) {
				return nil, ruleerrors.New(ruleerrors.ErrInvalidEncoding, "unexpected end of block relations bytes")
			}
			hash, err := externalapi.NewDomainHashFromByteSlice(data[offset : offset+externalapi.DomainHashSize])
			if err != nil {
				return nil, err
			}
			hashes[i] = hash
			offset += externalapi.DomainHashSize
		}
		return hashes, nil
	}

	parents, err := readHashList()
	if err != nil {
		return nil, err
	}
	children, err := readHashList()
	if err != nil {
		return nil, err
	}

	return &model.BlockRelations{Parents: parents, Children: children}, nil
}
