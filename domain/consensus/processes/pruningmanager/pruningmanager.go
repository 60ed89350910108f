// Package pruningmanager computes the deterministic pruning point for a
// block (spec.md §4.9): the selected-parent-chain ancestor at least
// pruningDepth blue score behind the block itself. Unlike the teacher's
// pruningmanager, which incrementally advances a persisted pruning
// point as new virtual-block state arrives, this package has no virtual
// block or UTXO set to track (spec.md §1 Non-goals) and so recomputes
// the answer directly from GHOSTDAG ancestry on every call — grounded
// on the chain-walk shape of consensusstatemanager/finality.go's
// virtualFinalityPoint, generalized from a fixed virtual anchor to an
// arbitrary selected parent.
package pruningmanager

import (
	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/ruleerrors"
)

type pruningManager struct {
	databaseContext   model.DBReader
	ghostdagDataStore model.GHOSTDAGDataStore
	genesisHash       *externalapi.DomainHash
	pruningDepth      uint64
	maxTraversal      uint64
}

// New returns a model.PruningManager. maxTraversal bounds the number of
// selected-parent-chain blocks walked per call, the same DoS concern
// spec.md §5 raises for the DAA window.
func New(databaseContext model.DBReader, ghostdagDataStore model.GHOSTDAGDataStore,
	genesisHash *externalapi.DomainHash, pruningDepth, maxTraversal uint64) model.PruningManager {
	return &pruningManager{
		databaseContext:   databaseContext,
		ghostdagDataStore: ghostdagDataStore,
		genesisHash:       genesisHash,
		pruningDepth:      pruningDepth,
		maxTraversal:      maxTraversal,
	}
}

// PruningPoint returns the selected-parent-chain ancestor of
// selectedParent whose blue score is the highest one still at least
// pruningDepth behind selectedParent's own blue score, or genesis if
// selectedParent's ancestry is shallower than pruningDepth.
func (pm *pruningManager) PruningPoint(stagingArea *model.StagingArea, selectedParent *externalapi.DomainHash) (*externalapi.DomainHash, error) {
	selectedParentData, err := pm.ghostdagDataStore.Get(pm.databaseContext, stagingArea, selectedParent)
	if err != nil {
		return nil, err
	}

	var targetBlueScore uint64
	if selectedParentData.BlueScore() > pm.pruningDepth {
		targetBlueScore = selectedParentData.BlueScore() - pm.pruningDepth
	}

	current := selectedParent
	currentData := selectedParentData
	var visited uint64
	for currentData.BlueScore() > targetBlueScore {
		visited++
		if visited > pm.maxTraversal {
			return nil, ruleerrors.New(ruleerrors.ErrInvalidValue, "pruning point traversal exceeded %d blocks", pm.maxTraversal)
		}
		if currentData.SelectedParent == nil {
			break
		}
		current = currentData.SelectedParent
		currentData, err = pm.ghostdagDataStore.Get(pm.databaseContext, stagingArea, current)
		if err != nil {
			return nil, err
		}
	}

	return current, nil
}
