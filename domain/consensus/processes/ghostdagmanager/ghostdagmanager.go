// Package ghostdagmanager implements C3, the GHOSTDAG classifier
// (spec.md §4.3): selected-parent choice, blue/red partitioning of the
// mergeset under a bounded blue-anticone size K, and the resulting
// blue_score/blue_work/daa_score. ChooseSelectedParent/Less are
// adapted from the teacher's ghostdagmanager/compare.go; the mergeset
// walk is adapted from mergeset.go; the blue/red classification walk
// (selectedParentAnticone + the per-candidate anticone-size check) is
// adapted from the older, complete algorithm in blockdag/ghostdag.go,
// since the newer package only carried compare.go and mergeset.go in
// the retrieved pack.
package ghostdagmanager

import (
	"sort"

	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/ruleerrors"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/constants"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/difficulty"
	"github.com/holiman/uint256"
)

type ghostdagManager struct {
	databaseContext    model.DBReader
	k                  uint32
	dagTopologyManager model.DAGTopologyManager
	ghostdagDataStore  model.GHOSTDAGDataStore
	headerStore        model.BlockHeaderStore
}

// New returns a model.GHOSTDAGManager with the given K (blue-anticone
// bound).
func New(databaseContext model.DBReader, k uint32, dagTopologyManager model.DAGTopologyManager,
	ghostdagDataStore model.GHOSTDAGDataStore, headerStore model.BlockHeaderStore) model.GHOSTDAGManager {
	return &ghostdagManager{
		databaseContext:    databaseContext,
		k:                  k,
		dagTopologyManager: dagTopologyManager,
		ghostdagDataStore:  ghostdagDataStore,
		headerStore:        headerStore,
	}
}

// ChooseSelectedParent returns whichever of blockHashA/blockHashB has
// higher blue work, breaking ties by ascending block id (spec.md §4.3:
// "the parent with the highest blue_work; ties broken by the smaller
// block id").
func (gm *ghostdagManager) ChooseSelectedParent(stagingArea *model.StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (*externalapi.DomainHash, error) {
	dataA, err := gm.ghostdagDataStore.Get(gm.databaseContext, stagingArea, blockHashA)
	if err != nil {
		return nil, err
	}
	dataB, err := gm.ghostdagDataStore.Get(gm.databaseContext, stagingArea, blockHashB)
	if err != nil {
		return nil, err
	}
	if less(blockHashA, dataA, blockHashB, dataB) {
		return blockHashB, nil
	}
	return blockHashA, nil
}

// less reports whether A sorts before B: A has lower blue work, or
// equal blue work and a numerically smaller block id.
func less(blockHashA *externalapi.DomainHash, dataA *externalapi.BlockGHOSTDAGData,
	blockHashB *externalapi.DomainHash, dataB *externalapi.BlockGHOSTDAGData) bool {
	switch dataA.BlueWork().Cmp(dataB.BlueWork()) {
	case -1:
		return true
	case 1:
		return false
	default:
		return externalapi.Less(blockHashA, blockHashB)
	}
}

func (gm *ghostdagManager) findSelectedParent(stagingArea *model.StagingArea, parentHashes []*externalapi.DomainHash) (*externalapi.DomainHash, error) {
	selectedParent := parentHashes[0]
	for _, hash := range parentHashes[1:] {
		chosen, err := gm.ChooseSelectedParent(stagingArea, selectedParent, hash)
		if err != nil {
			return nil, err
		}
		selectedParent = chosen
	}
	return selectedParent, nil
}

// GHOSTDAG computes and stores blockHash's classifier output, reading
// its header (for parents) and every parent's already-computed
// GHOSTDAG data.
func (gm *ghostdagManager) GHOSTDAG(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) error {
	header, err := gm.headerStore.BlockHeader(gm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}
	parents := header.ParentHashes()

	if len(parents) == 0 {
		// Genesis: no selected parent, blue score/work/daa score 0.
		gm.ghostdagDataStore.Stage(stagingArea, blockHash, &externalapi.BlockGHOSTDAGData{
			SelectedParent:     nil,
			MergeSetBlues:      []*externalapi.DomainHash{},
			MergeSetReds:       []*externalapi.DomainHash{},
			BluesAnticoneSizes: map[externalapi.DomainHash]uint32{},
			BlueScoreValue:     0,
			BlueWorkValue:      new(uint256.Int),
			DAAScoreValue:      0,
		})
		return nil
	}

	selectedParent, err := gm.findSelectedParent(stagingArea, parents)
	if err != nil {
		return err
	}
	selectedParentData, err := gm.ghostdagDataStore.Get(gm.databaseContext, stagingArea, selectedParent)
	if err != nil {
		return err
	}

	mergeSetBlues := []*externalapi.DomainHash{selectedParent}
	bluesAnticoneSizes := map[externalapi.DomainHash]uint32{*selectedParent: 0}

	candidates, err := gm.mergeSet(stagingArea, selectedParent, parents)
	if err != nil {
		return err
	}
	if len(candidates) > constants.MergeSetSizeLimit {
		return ruleerrors.New(ruleerrors.ErrViolatingMergeLimit,
			"mergeset candidate size %d exceeds the limit of %d", len(candidates), constants.MergeSetSizeLimit)
	}

	mergeSetReds := []*externalapi.DomainHash{}

	for _, candidate := range candidates {
		candidateAnticoneSizes := make(map[externalapi.DomainHash]uint32)
		var candidateAnticoneSize uint32
		possiblyBlue := true

		for chain := blockHash; possiblyBlue; {
			var chainSelectedParent *externalapi.DomainHash
			chainBlues := mergeSetBlues
			if *chain != *blockHash {
				data, err := gm.ghostdagDataStore.Get(gm.databaseContext, stagingArea, chain)
				if err != nil {
					return err
				}
				chainSelectedParent = data.SelectedParent
				chainBlues = data.MergeSetBlues

				// If candidate is already in chain's past, every
				// remaining blue ancestor walking further down the
				// selected-parent chain is also in candidate's past, so
				// the anticone bound can no longer be violated.
				isAncestor, err := gm.dagTopologyManager.IsAncestorOf(stagingArea, chain, candidate)
				if err != nil {
					return err
				}
				if isAncestor {
					break
				}
			} else {
				chainSelectedParent = selectedParent
			}

			for _, blue := range chainBlues {
				if *blue != *chain {
					isAncestor, err := gm.dagTopologyManager.IsAncestorOf(stagingArea, blue, candidate)
					if err != nil {
						return err
					}
					if isAncestor {
						continue
					}
				}

				blueAnticoneSize, err := gm.blueAnticoneSizeOf(stagingArea, blue, blockHash, selectedParent, bluesAnticoneSizes)
				if err != nil {
					return err
				}
				candidateAnticoneSizes[*blue] = blueAnticoneSize
				candidateAnticoneSize++
				if candidateAnticoneSize > gm.k || blueAnticoneSize == gm.k {
					possiblyBlue = false
					break
				}
			}

			if chainSelectedParent == nil {
				break
			}
			chain = chainSelectedParent
		}

		if possiblyBlue {
			mergeSetBlues = append(mergeSetBlues, candidate)
			bluesAnticoneSizes[*candidate] = candidateAnticoneSize
			for blue, size := range candidateAnticoneSizes {
				bluesAnticoneSizes[blue] = size + 1
			}
			if uint32(len(mergeSetBlues)) == gm.k+1 {
				continue
			}
		} else {
			mergeSetReds = append(mergeSetReds, candidate)
		}
	}

	blueScore := selectedParentData.BlueScore() + uint64(len(mergeSetBlues))
	blockWork, err := gm.headerWork(stagingArea, blockHash)
	if err != nil {
		return err
	}
	blueWork := new(uint256.Int).Add(selectedParentData.BlueWork(), blockWork)
	for _, blue := range mergeSetBlues[1:] {
		work, err := gm.headerWork(stagingArea, blue)
		if err != nil {
			return err
		}
		blueWork.Add(blueWork, work)
	}

	daaScore := selectedParentData.DAAScore() + 1

	gm.ghostdagDataStore.Stage(stagingArea, blockHash, &externalapi.BlockGHOSTDAGData{
		SelectedParent:     selectedParent,
		MergeSetBlues:      mergeSetBlues,
		MergeSetReds:       mergeSetReds,
		BluesAnticoneSizes: bluesAnticoneSizes,
		BlueScoreValue:     blueScore,
		BlueWorkValue:      blueWork,
		DAAScoreValue:      daaScore,
	})

	return nil
}

// blueAnticoneSizeOf returns the blue-anticone size blue carries in the
// worldview of blockHash: blockHash's own in-progress record if blue
// was already classified blue during this same call (inProgress stands
// in for blockHash's not-yet-committed BluesAnticoneSizes), otherwise
// the recorded size at the nearest ancestor along blockHash's
// selected-parent chain that already carries an entry for blue.
func (gm *ghostdagManager) blueAnticoneSizeOf(stagingArea *model.StagingArea, blue, blockHash, selectedParent *externalapi.DomainHash, inProgress map[externalapi.DomainHash]uint32) (uint32, error) {
	if size, ok := inProgress[*blue]; ok {
		return size, nil
	}

	for current := selectedParent; current != nil; {
		data, err := gm.ghostdagDataStore.Get(gm.databaseContext, stagingArea, current)
		if err != nil {
			return 0, err
		}
		if size, ok := data.BluesAnticoneSizes[*blue]; ok {
			return size, nil
		}
		current = data.SelectedParent
	}
	return 0, ruleerrors.New(ruleerrors.ErrKViolation, "block %s is not in the blue set of %s", blue, blockHash)
}

func (gm *ghostdagManager) headerWork(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (*uint256.Int, error) {
	header, err := gm.headerStore.BlockHeader(gm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	target, err := difficulty.CompactToTarget(header.Bits)
	if err != nil {
		return nil, err
	}
	if target.IsZero() {
		return nil, ruleerrors.New(ruleerrors.ErrZeroDifficulty, "block %s has a zero-difficulty bits field", blockHash)
	}
	return difficulty.WorkFromTarget(target), nil
}

// mergeSet returns selectedParent's co-parents and their ancestors up
// to (but excluding) selectedParent's own past, ordered for
// deterministic classification (spec.md §4.3 "Determinism").
func (gm *ghostdagManager) mergeSet(stagingArea *model.StagingArea, selectedParent *externalapi.DomainHash, blockParents []*externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	mergeSetMap := make(map[externalapi.DomainHash]struct{}, gm.k)
	var mergeSetSlice []*externalapi.DomainHash
	selectedParentPast := make(map[externalapi.DomainHash]struct{})
	var queue []*externalapi.DomainHash

	for _, parent := range blockParents {
		if *parent == *selectedParent {
			continue
		}
		mergeSetMap[*parent] = struct{}{}
		mergeSetSlice = append(mergeSetSlice, parent)
		queue = append(queue, parent)
	}

	for len(queue) > 0 {
		var current *externalapi.DomainHash
		current, queue = queue[0], queue[1:]

		currentParents, err := gm.dagTopologyManager.Parents(stagingArea, current)
		if err != nil {
			return nil, err
		}
		for _, parent := range currentParents {
			if _, ok := mergeSetMap[*parent]; ok {
				continue
			}
			if _, ok := selectedParentPast[*parent]; ok {
				continue
			}

			isAncestor, err := gm.dagTopologyManager.IsAncestorOf(stagingArea, parent, selectedParent)
			if err != nil {
				return nil, err
			}
			if isAncestor {
				selectedParentPast[*parent] = struct{}{}
				continue
			}

			mergeSetMap[*parent] = struct{}{}
			mergeSetSlice = append(mergeSetSlice, parent)
			queue = append(queue, parent)
		}
	}

	if err := gm.sortMergeSet(stagingArea, mergeSetSlice); err != nil {
		return nil, err
	}
	return mergeSetSlice, nil
}

func (gm *ghostdagManager) sortMergeSet(stagingArea *model.StagingArea, mergeSetSlice []*externalapi.DomainHash) error {
	var sortErr error
	sort.Slice(mergeSetSlice, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		dataI, err := gm.ghostdagDataStore.Get(gm.databaseContext, stagingArea, mergeSetSlice[i])
		if err != nil {
			sortErr = err
			return false
		}
		dataJ, err := gm.ghostdagDataStore.Get(gm.databaseContext, stagingArea, mergeSetSlice[j])
		if err != nil {
			sortErr = err
			return false
		}
		return less(mergeSetSlice[i], dataI, mergeSetSlice[j], dataJ)
	})
	return sortErr
}
