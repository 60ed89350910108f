// Package forkchoice implements C8 (spec.md §4.8): selecting the
// canonical tip among the current tip set (max blue_work, ascending
// block-id tie-break) and reporting whether a block has reached
// finality. Grounded on the teacher's ghostdagmanager comparator for
// the tip-selection rule, and consensusstatemanager/finality.go's
// blue-score-distance threshold for stability, trimmed of the
// virtual-block/UTXO machinery that doesn't apply once tx execution is
// out of scope (spec.md §1).
package forkchoice

import (
	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
)

type forkChoiceManager struct {
	databaseContext    model.DBReader
	dagTopologyManager model.DAGTopologyManager
	ghostdagDataStore  model.GHOSTDAGDataStore
	stableLimit        uint64
}

// New returns a model.ForkChoiceManager.
func New(databaseContext model.DBReader, dagTopologyManager model.DAGTopologyManager,
	ghostdagDataStore model.GHOSTDAGDataStore, stableLimit uint64) model.ForkChoiceManager {
	return &forkChoiceManager{
		databaseContext:    databaseContext,
		dagTopologyManager: dagTopologyManager,
		ghostdagDataStore:  ghostdagDataStore,
		stableLimit:        stableLimit,
	}
}

// CanonicalTip returns the tip with the greatest blue_work, breaking
// ties by ascending block id (spec.md §4.8, §9 Open Question 1).
func (fcm *forkChoiceManager) CanonicalTip(stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {
	tips, err := fcm.dagTopologyManager.Tips(stagingArea)
	if err != nil {
		return nil, err
	}

	var best *externalapi.DomainHash
	var bestData *externalapi.BlockGHOSTDAGData
	for _, tip := range tips {
		data, err := fcm.ghostdagDataStore.Get(fcm.databaseContext, stagingArea, tip)
		if err != nil {
			return nil, err
		}
		if best == nil || isBetterTip(tip, data, best, bestData) {
			best, bestData = tip, data
		}
	}

	return best, nil
}

// isBetterTip returns true if (candidate, candidateData) should replace
// (current, currentData) as the canonical tip.
func isBetterTip(candidate *externalapi.DomainHash, candidateData *externalapi.BlockGHOSTDAGData,
	current *externalapi.DomainHash, currentData *externalapi.BlockGHOSTDAGData) bool {
	switch candidateData.BlueWork().Cmp(currentData.BlueWork()) {
	case 1:
		return true
	case -1:
		return false
	default:
		return externalapi.Less(candidate, current)
	}
}

// IsStable reports whether blockHash has fallen at least stableLimit
// blue score behind the canonical tip, meaning a reorg can no longer
// uproot it (spec.md §4.8 STABLE_LIMIT).
func (fcm *forkChoiceManager) IsStable(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (bool, error) {
	tip, err := fcm.CanonicalTip(stagingArea)
	if err != nil {
		return false, err
	}
	if tip == nil {
		return false, nil
	}

	tipData, err := fcm.ghostdagDataStore.Get(fcm.databaseContext, stagingArea, tip)
	if err != nil {
		return false, err
	}
	blockData, err := fcm.ghostdagDataStore.Get(fcm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return false, err
	}

	if tipData.BlueScore() < blockData.BlueScore() {
		return false, nil
	}
	return tipData.BlueScore()-blockData.BlueScore() >= fcm.stableLimit, nil
}
