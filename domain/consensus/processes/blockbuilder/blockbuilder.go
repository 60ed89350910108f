// Package blockbuilder implements C9, the block template builder
// (spec.md §4.9): it fills every consensus field of a candidate header
// from authoritative computation (C3 selected_parent/blue_score/
// blue_work/daa_score, C4 bits, pruningmanager's pruning point) and
// leaves only nonce/extra_nonce for the miner to search. Grounded on
// the teacher's blockbuilder package, which runs the same "compute
// everything via the real managers against a not-yet-committed
// candidate block" pattern through a throwaway UTXO diff; here there is
// no UTXO diff to build, only a GHOSTDAG record, so the scratch state
// is a single discarded model.StagingArea.
package blockbuilder

import (
	"sort"
	"time"

	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/ruleerrors"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/constants"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/merkle"
	"github.com/holiman/uint256"
)

type blockBuilder struct {
	databaseContext   model.DBReader
	headerStore       model.BlockHeaderStore
	ghostdagDataStore model.GHOSTDAGDataStore
	forkChoiceManager model.ForkChoiceManager
	ghostdagManager   model.GHOSTDAGManager
	difficultyManager model.DifficultyManager
	pruningManager    model.PruningManager
}

// New returns a model.BlockBuilder.
func New(databaseContext model.DBReader, headerStore model.BlockHeaderStore, ghostdagDataStore model.GHOSTDAGDataStore,
	forkChoiceManager model.ForkChoiceManager, ghostdagManager model.GHOSTDAGManager,
	difficultyManager model.DifficultyManager, pruningManager model.PruningManager) model.BlockBuilder {
	return &blockBuilder{
		databaseContext:   databaseContext,
		headerStore:       headerStore,
		ghostdagDataStore: ghostdagDataStore,
		forkChoiceManager: forkChoiceManager,
		ghostdagManager:   ghostdagManager,
		difficultyManager: difficultyManager,
		pruningManager:    pruningManager,
	}
}

// candidateBlockHash keys the not-yet-mined header this package stages
// in order to run C3/C4 against it. The model.StagingArea it is staged
// under is discarded at the end of every call, so this value is never
// observed outside this package and never collides with a real block.
var candidateBlockHash = externalapi.DomainHash{
	0xfc, 0xfc, 0xfc, 0xfc, 0xfc, 0xfc, 0xfc, 0xfc,
	0xfc, 0xfc, 0xfc, 0xfc, 0xfc, 0xfc, 0xfc, 0xfc,
	0xfc, 0xfc, 0xfc, 0xfc, 0xfc, 0xfc, 0xfc, 0xfc,
	0xfc, 0xfc, 0xfc, 0xfc, 0xfc, 0xfc, 0xfc, 0xfc,
}

// BuildBlock builds on the current canonical tip (spec.md §4.9 step 1:
// "in the present protocol, this means building on the single canonical
// tip").
func (bb *blockBuilder) BuildBlock(coinbaseData *externalapi.DomainCoinbaseData,
	transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {

	stagingArea := model.NewStagingArea()
	tip, err := bb.forkChoiceManager.CanonicalTip(stagingArea)
	if err != nil {
		return nil, err
	}
	if tip == nil {
		return nil, ruleerrors.New(ruleerrors.ErrInvalidValue, "no canonical tip to build on")
	}
	return bb.build(stagingArea, []*externalapi.DomainHash{tip}, coinbaseData, transactions)
}

// BuildBlockWithParents builds on an explicit parent set, bypassing tip
// selection. The current protocol version only ever uses a single
// parent in practice, but the codec and C3 both support an arbitrary
// parent set, and tests exercise this path directly.
func (bb *blockBuilder) BuildBlockWithParents(parentHashes []*externalapi.DomainHash, coinbaseData *externalapi.DomainCoinbaseData,
	transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {

	return bb.build(model.NewStagingArea(), parentHashes, coinbaseData, transactions)
}

func (bb *blockBuilder) build(stagingArea *model.StagingArea, parentHashes []*externalapi.DomainHash,
	coinbaseData *externalapi.DomainCoinbaseData, transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {

	if len(parentHashes) == 0 {
		return nil, ruleerrors.New(ruleerrors.ErrNoParents, "a template needs at least one parent")
	}
	if len(parentHashes) > constants.MaxBlockParents {
		return nil, ruleerrors.New(ruleerrors.ErrTooManyParents,
			"requested %d parents, the maximum allowed is %d", len(parentHashes), constants.MaxBlockParents)
	}

	parents := externalapi.CloneHashes(parentHashes)
	sort.Slice(parents, func(i, j int) bool { return externalapi.Less(parents[i], parents[j]) })

	selectedParent, err := bb.chooseSelectedParent(stagingArea, parents)
	if err != nil {
		return nil, err
	}

	bits, err := bb.difficultyManager.RequiredDifficulty(stagingArea, selectedParent)
	if err != nil {
		return nil, err
	}

	pruningPoint, err := bb.pruningManager.PruningPoint(stagingArea, selectedParent)
	if err != nil {
		return nil, err
	}

	timestamp, err := bb.nextTimestamp(stagingArea, parents)
	if err != nil {
		return nil, err
	}

	header := &externalapi.DomainBlockHeader{
		Version:            constants.BlockVersion,
		ParentsByLevel:     [][]*externalapi.DomainHash{parents},
		HashMerkleRoot:     merkle.CalculateHashMerkleRoot(transactions),
		TimeInMilliseconds: timestamp,
		Bits:               bits,
		PruningPoint:       *pruningPoint,
	}
	if coinbaseData != nil {
		header.Miner = append([]byte(nil), coinbaseData.ScriptPublicKey...)
	}

	// Fill blue_score/blue_work/daa_score by staging the header under
	// the sentinel candidate hash and running C3 against it, exactly as
	// a real block's header-in-context validation would (spec.md §4.9
	// step 2). stagingArea is never committed, so nothing durable is
	// written.
	bb.headerStore.Stage(stagingArea, &candidateBlockHash, header)
	if err := bb.ghostdagManager.GHOSTDAG(stagingArea, &candidateBlockHash); err != nil {
		return nil, err
	}
	computed, err := bb.ghostdagDataStore.Get(bb.databaseContext, stagingArea, &candidateBlockHash)
	if err != nil {
		return nil, err
	}
	header.BlueScore = computed.BlueScore()
	header.BlueWork = new(uint256.Int).Set(computed.BlueWork())
	header.DAAScore = computed.DAAScore()

	return &externalapi.DomainBlock{Header: header, Transactions: transactions}, nil
}

// chooseSelectedParent folds GHOSTDAGManager.ChooseSelectedParent over
// the parent set, the same pairwise reduction C3 itself uses internally
// to find a block's selected parent from its header.
func (bb *blockBuilder) chooseSelectedParent(stagingArea *model.StagingArea, parents []*externalapi.DomainHash) (*externalapi.DomainHash, error) {
	selectedParent := parents[0]
	for _, parent := range parents[1:] {
		chosen, err := bb.ghostdagManager.ChooseSelectedParent(stagingArea, selectedParent, parent)
		if err != nil {
			return nil, err
		}
		selectedParent = chosen
	}
	return selectedParent, nil
}

// nextTimestamp returns a node-local time strictly after every parent's
// timestamp (spec.md §4.9 step 6), satisfying blockvalidator's
// checkTimestamp by construction: a parent set's median is never greater
// than its maximum, so clearing the max clears the median too.
func (bb *blockBuilder) nextTimestamp(stagingArea *model.StagingArea, parents []*externalapi.DomainHash) (int64, error) {
	var maxParentTimestamp int64
	for _, parent := range parents {
		parentHeader, err := bb.headerStore.BlockHeader(bb.databaseContext, stagingArea, parent)
		if err != nil {
			return 0, err
		}
		if parentHeader.TimeInMilliseconds > maxParentTimestamp {
			maxParentTimestamp = parentHeader.TimeInMilliseconds
		}
	}

	now := time.Now().UnixMilli()
	if now > maxParentTimestamp {
		return now, nil
	}
	return maxParentTimestamp + 1, nil
}
