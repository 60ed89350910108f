// Package pruningstore stores the current pruning point (spec.md §4.9,
// §6.2's PruningStore).
package pruningstore

import (
	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
)

var pruningPointKey = []byte("pruning-point")

type stagingShard struct {
	store           *pruningStore
	newPruningPoint *externalapi.DomainHash
}

func (s *stagingShard) Commit(dbTx model.DBTransaction) error {
	if s.newPruningPoint == nil {
		return nil
	}
	if err := dbTx.Put(pruningPointKey, s.newPruningPoint[:]); err != nil {
		return err
	}
	s.store.cache = s.newPruningPoint
	return nil
}

type pruningStore struct {
	cache *externalapi.DomainHash
}

// New returns a model.PruningStore.
func New() model.PruningStore {
	return &pruningStore{}
}

func (ps *pruningStore) shard(stagingArea *model.StagingArea) *stagingShard {
	return stagingArea.GetOrCreateShard(model.StagingShardIDPruning, func() model.StagingShard {
		return &stagingShard{store: ps}
	}).(*stagingShard)
}

// StagePruningPoint records pruningPointHash as the new pruning point.
func (ps *pruningStore) StagePruningPoint(stagingArea *model.StagingArea, pruningPointHash *externalapi.DomainHash) {
	ps.shard(stagingArea).newPruningPoint = pruningPointHash
}

// PruningPoint returns the current pruning point.
func (ps *pruningStore) PruningPoint(dbContext model.DBReader, stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {
	if staged := ps.shard(stagingArea).newPruningPoint; staged != nil {
		return staged, nil
	}
	if ps.cache != nil {
		return ps.cache, nil
	}

	pointBytes, err := dbContext.Get(pruningPointKey)
	if err != nil {
		return nil, err
	}
	point, err := externalapi.NewDomainHashFromByteSlice(pointBytes)
	if err != nil {
		return nil, err
	}
	ps.cache = point
	return point, nil
}

// HasPruningPoint reports whether a pruning point has been recorded.
func (ps *pruningStore) HasPruningPoint(dbContext model.DBReader, stagingArea *model.StagingArea) (bool, error) {
	if ps.shard(stagingArea).newPruningPoint != nil || ps.cache != nil {
		return true, nil
	}
	return dbContext.Has(pruningPointKey)
}
