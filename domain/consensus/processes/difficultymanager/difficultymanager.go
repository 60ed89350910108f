// Package difficultymanager implements C4, the DAA window and
// difficulty retarget (spec.md §4.4): a bounded walk of selectedParent's
// blue ancestors in descending daa_score order, an IQR-based retarget
// ratio, and re-encoding to compact form. This is a deliberate REDESIGN
// over the teacher's blockdag/blockwindow.go simple moving-average
// (averageTarget); the window-walk shape (bounded traversal along the
// selected-parent chain) is still adapted from blockwindow.go's
// blueBlockWindow.
package difficultymanager

import (
	"sort"

	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/ruleerrors"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/difficulty"
)

type difficultyManager struct {
	databaseContext                model.DBReader
	headerStore                    model.BlockHeaderStore
	ghostdagDataStore               model.GHOSTDAGDataStore
	genesisHash                     *externalapi.DomainHash
	windowSize                      uint64
	maxWindowTraversal              uint64
	targetTimePerBlockMilliseconds  int64
}

// MinDifficultyRatioNumerator/Denominator and Max bound the retarget
// ratio to [0.25, 4.0] (spec.md §4.4 MIN/MAX_DIFFICULTY_RATIO).
const (
	MinDifficultyRatioNumerator   = 1
	MinDifficultyRatioDenominator = 4
	MaxDifficultyRatioNumerator   = 4
	MaxDifficultyRatioDenominator = 1
)

// New returns a model.DifficultyManager. maxWindowTraversal bounds the
// number of blocks the window walk may visit before failing with
// DAAWindowOverflow (spec.md §4.4 MAX_DAA_WINDOW_BLOCKS).
func New(databaseContext model.DBReader, headerStore model.BlockHeaderStore, ghostdagDataStore model.GHOSTDAGDataStore,
	genesisHash *externalapi.DomainHash, windowSize, maxWindowTraversal uint64, targetTimePerBlockMilliseconds int64) model.DifficultyManager {
	return &difficultyManager{
		databaseContext:                databaseContext,
		headerStore:                    headerStore,
		ghostdagDataStore:               ghostdagDataStore,
		genesisHash:                    genesisHash,
		windowSize:                     windowSize,
		maxWindowTraversal:             maxWindowTraversal,
		targetTimePerBlockMilliseconds: targetTimePerBlockMilliseconds,
	}
}

// RequiredDifficulty returns the compact target a child of
// selectedParent must carry.
func (dm *difficultyManager) RequiredDifficulty(stagingArea *model.StagingArea, selectedParent *externalapi.DomainHash) (uint32, error) {
	parentHeader, err := dm.headerStore.BlockHeader(dm.databaseContext, stagingArea, selectedParent)
	if err != nil {
		return 0, err
	}

	window, err := dm.daaWindow(stagingArea, selectedParent)
	if err != nil {
		return 0, err
	}

	if uint64(len(window)) < dm.windowSize {
		// Early network: not enough ancestry yet to retarget, so the
		// child inherits the parent's bits unchanged.
		return parentHeader.Bits, nil
	}

	timestamps := make([]int64, len(window))
	for i, entry := range window {
		timestamps[i] = entry.timestamp
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	q1 := percentile(timestamps, 25)
	q3 := percentile(timestamps, 75)

	actualWindowTimeMs := (q3 - q1) * 2
	if actualWindowTimeMs <= 0 {
		actualWindowTimeMs = 1
	}
	expectedWindowTimeMs := int64(dm.windowSize) * dm.targetTimePerBlockMilliseconds
	if expectedWindowTimeMs <= 0 {
		return 0, ruleerrors.New(ruleerrors.ErrInvalidValue, "target time per block must be positive")
	}

	numerator, denominator := clampRatio(uint64(actualWindowTimeMs), uint64(expectedWindowTimeMs))

	parentTarget, err := difficulty.CompactToTarget(parentHeader.Bits)
	if err != nil {
		return 0, err
	}

	newTarget, err := difficulty.ScaleTargetByRatio(parentTarget, numerator, denominator)
	if err != nil {
		return 0, err
	}

	return difficulty.TargetToCompact(newTarget), nil
}

// clampRatio reduces actual/expected to the bound [1/4, 4/1], leaving
// it unreduced (but still exact) otherwise: the ratio is only ever
// consumed by a 512-bit-intermediate multiply-divide, so an unreduced
// fraction costs nothing and avoids a gcd computation.
func clampRatio(actual, expected uint64) (numerator, denominator uint64) {
	// actual/expected < 1/4  <=>  actual*4 < expected
	if actual*4 < expected {
		return MinDifficultyRatioNumerator, MinDifficultyRatioDenominator
	}
	// actual/expected > 4/1  <=>  actual > expected*4
	if actual > expected*4 {
		return MaxDifficultyRatioNumerator, MaxDifficultyRatioDenominator
	}
	return actual, expected
}

// percentile returns the value at the given percentile (0-100) of an
// already-sorted slice, using linear interpolation between the two
// bracketing samples, in integer arithmetic (rounded toward the lower
// sample).
func percentile(sorted []int64, p int) int64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rankTimes100 := int64(p) * int64(len(sorted)-1)
	lowerIndex := int(rankTimes100 / 100)
	upperIndex := lowerIndex + 1
	if upperIndex >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	fractionTimes100 := rankTimes100 % 100
	lower, upper := sorted[lowerIndex], sorted[upperIndex]
	return lower + (upper-lower)*fractionTimes100/100
}

type windowEntry struct {
	hash      *externalapi.DomainHash
	timestamp int64
}

// daaWindow collects up to windowSize blocks from selectedParent's blue
// ancestry in descending daa_score order: at each step along the
// selected-parent chain, every blue in that block's mergeset
// contributes a window entry, until the window fills or the chain runs
// out (adapted from the teacher's blueBlockWindow). If ancestry is
// exhausted before the window fills, the shorter window is returned as
// is, with no padding, which RequiredDifficulty treats as the early
// network. Traversal is bounded by maxWindowTraversal; exceeding it fails with
// DAAWindowOverflow (spec.md §4.4 step 1).
func (dm *difficultyManager) daaWindow(stagingArea *model.StagingArea, selectedParent *externalapi.DomainHash) ([]windowEntry, error) {
	window := make([]windowEntry, 0, dm.windowSize)

	var visited uint64
	current := selectedParent
	for uint64(len(window)) < dm.windowSize {
		visited++
		if visited > dm.maxWindowTraversal {
			return nil, ruleerrors.New(ruleerrors.ErrDAAWindowOverflow,
				"DAA window traversal exceeded %d blocks", dm.maxWindowTraversal)
		}

		data, err := dm.ghostdagDataStore.Get(dm.databaseContext, stagingArea, current)
		if err != nil {
			return nil, err
		}

		for _, blue := range data.MergeSetBlues {
			header, err := dm.headerStore.BlockHeader(dm.databaseContext, stagingArea, blue)
			if err != nil {
				return nil, err
			}
			window = append(window, windowEntry{hash: blue, timestamp: header.TimeInMilliseconds})
			if uint64(len(window)) == dm.windowSize {
				break
			}
		}

		if data.SelectedParent == nil {
			break
		}
		current = data.SelectedParent
	}

	return window, nil
}
