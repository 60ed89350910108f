// Package tipsstore stores the current DAG tip set consumed by fork
// choice (spec.md §4.8).
package tipsstore

import (
	"encoding/binary"

	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
)

var tipsKey = []byte("tips")

type stagingShard struct {
	store    *tipsStore
	newTips  []*externalapi.DomainHash
	isStaged bool
}

func (s *stagingShard) Commit(dbTx model.DBTransaction) error {
	if !s.isStaged {
		return nil
	}
	if err := dbTx.Put(tipsKey, serialize(s.newTips)); err != nil {
		return err
	}
	s.store.cache = s.newTips
	return nil
}

type tipsStore struct {
	cache []*externalapi.DomainHash
}

// New returns a model.TipsStore.
func New() model.TipsStore {
	return &tipsStore{}
}

func (ts *tipsStore) shard(stagingArea *model.StagingArea) *stagingShard {
	return stagingArea.GetOrCreateShard(model.StagingShardIDTips, func() model.StagingShard {
		return &stagingShard{store: ts}
	}).(*stagingShard)
}

// StageTips records tips as the new tip set.
func (ts *tipsStore) StageTips(stagingArea *model.StagingArea, tips []*externalapi.DomainHash) {
	shard := ts.shard(stagingArea)
	shard.newTips = tips
	shard.isStaged = true
}

// Tips returns the current tip set.
func (ts *tipsStore) Tips(dbContext model.DBReader, stagingArea *model.StagingArea) ([]*externalapi.DomainHash, error) {
	shard := ts.shard(stagingArea)
	if shard.isStaged {
		return shard.newTips, nil
	}
	if ts.cache != nil {
		return ts.cache, nil
	}

	has, err := dbContext.Has(tipsKey)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}

	tipsBytes, err := dbContext.Get(tipsKey)
	if err != nil {
		return nil, err
	}
	tips, err := deserialize(tipsBytes)
	if err != nil {
		return nil, err
	}
	ts.cache = tips
	return tips, nil
}

func serialize(tips []*externalapi.DomainHash) []byte {
	buf := make([]byte, 0, 4+len(tips)*externalapi.DomainHashSize)
	var countBytes [4]byte
	binary.LittleEndian.PutUint32(countBytes[:], uint32(len(tips)))
	buf = append(buf, countBytes[:]...)
	for _, tip := range tips {
		buf = append(buf, tip[:]...)
	}
	return buf
}

func deserialize(data []byte) ([]*externalapi.DomainHash, error) {
	if len(data) < 4 {
		return nil, nil
	}
	count := binary.LittleEndian.Uint32(data)
	tips := make([]*externalapi.DomainHash, count)
	offset := 4
	for i := uint32(0); i < count; i++ {
		hash, err := externalapi.NewDomainHashFromByteSlice(data[offset : offset+externalapi.DomainHashSize])
		if err != nil {
			return nil, err
		}
		tips[i] = hash
		offset += externalapi.DomainHashSize
	}
	return tips, nil
}
