// Package blockvalidator implements C6, the header-validation pipeline
// (spec.md §4.6): seven ordered steps, any of which short-circuits the
// rest on failure. Grounded on the teacher's blockvalidator package
// (block_header_in_isolation.go, block_header_in_context.go,
// proof_of_work.go), adapted to this protocol's trimmed field set (no
// merge-depth manager, no UTXO/subnetwork checks) and its seven-step
// ordering (spec.md names an explicit order the teacher's split across
// ValidateHeaderInIsolation/InContext/ProofOfWork does not).
package blockvalidator

import (
	"fmt"
	"sort"

	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/ruleerrors"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/consensushashing"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/consensusserialization"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/constants"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/difficulty"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/merkle"
)

type blockValidator struct {
	databaseContext    model.DBReader
	genesisHash        *externalapi.DomainHash
	powMax             uint32
	skipPoW            bool
	headerStore        model.BlockHeaderStore
	ghostdagDataStore  model.GHOSTDAGDataStore
	dagTopologyManager model.DAGTopologyManager
	ghostdagManager    model.GHOSTDAGManager
	difficultyManager  model.DifficultyManager
	pruningManager     model.PruningManager
}

// New returns a model.BlockValidator.
func New(databaseContext model.DBReader, genesisHash *externalapi.DomainHash, powMax uint32, skipPoW bool,
	headerStore model.BlockHeaderStore, ghostdagDataStore model.GHOSTDAGDataStore,
	dagTopologyManager model.DAGTopologyManager, ghostdagManager model.GHOSTDAGManager,
	difficultyManager model.DifficultyManager, pruningManager model.PruningManager) model.BlockValidator {
	return &blockValidator{
		databaseContext:    databaseContext,
		genesisHash:        genesisHash,
		powMax:             powMax,
		skipPoW:            skipPoW,
		headerStore:        headerStore,
		ghostdagDataStore:  ghostdagDataStore,
		dagTopologyManager: dagTopologyManager,
		ghostdagManager:    ghostdagManager,
		difficultyManager:  difficultyManager,
		pruningManager:     pruningManager,
	}
}

// ValidateHeaderInIsolation runs steps 1–4 of the C6 pipeline: the
// checks that need only the candidate block's own header plus whatever
// of its parents are already stored, not yet-to-be-computed classifier
// output.
func (v *blockValidator) ValidateHeaderInIsolation(block *externalapi.DomainBlock) error {
	header := block.Header

	if err := v.checkVersion(header); err != nil {
		return err
	}
	if err := v.checkBlockSize(block); err != nil {
		return err
	}
	if err := v.checkBlockHashMatches(header); err != nil {
		return err
	}
	if err := v.checkParentsStructure(header); err != nil {
		return err
	}
	if err := v.checkReservedFieldsZero(header); err != nil {
		return err
	}
	if err := v.checkTimestamp(header); err != nil {
		return err
	}
	if err := v.checkProofOfWork(header); err != nil {
		return err
	}
	return nil
}

// checkVersion enforces spec.md step 1's version-gating rule. The
// current protocol has exactly one version, so the gate is a flat
// equality check; a future activation score would branch here.
func (v *blockValidator) checkVersion(header *externalapi.DomainBlockHeader) error {
	if header.Version != constants.BlockVersion {
		return ruleerrors.New(ruleerrors.ErrInvalidVersion,
			"block has version %d, expected %d", header.Version, constants.BlockVersion)
	}
	return nil
}

// checkBlockSize bounds the header plus one DomainHashSize-sized entry
// per transaction, a stand-in for full transaction bytes since
// transaction structure itself is out of scope here (§1); a block with
// a transaction count alone large enough to blow this budget is
// malformed regardless of what's inside each transaction.
func (v *blockValidator) checkBlockSize(block *externalapi.DomainBlock) error {
	serializedHeader, err := consensusserialization.SerializeHeader(block.Header)
	if err != nil {
		return err
	}
	size := len(serializedHeader) + len(block.Transactions)*externalapi.DomainHashSize
	if size > constants.MaxBlockSize {
		return ruleerrors.New(ruleerrors.ErrInvalidValue,
			"block size %d exceeds the %d byte maximum", size, constants.MaxBlockSize)
	}
	return nil
}

func (v *blockValidator) checkBlockHashMatches(header *externalapi.DomainBlockHeader) error {
	// Hashing never fails on a header already accepted into isolation
	// validation; this call only exists so a future codec change that
	// makes hashing fallible is still routed through error handling
	// rather than a panic.
	_, err := consensushashing.HeaderHash(header)
	return err
}

func (v *blockValidator) checkParentsStructure(header *externalapi.DomainBlockHeader) error {
	if len(header.ParentsByLevel) != 1 {
		return ruleerrors.New(ruleerrors.ErrInvalidParentsLevelCount,
			"header carries %d parent levels, the current protocol only populates level 0", len(header.ParentsByLevel))
	}

	parents := header.ParentsByLevel[0]
	isGenesis := len(parents) == 0
	if isGenesis {
		hash, err := consensushashing.HeaderHash(header)
		if err != nil {
			return err
		}
		if !hash.Equal(v.genesisHash) {
			return ruleerrors.New(ruleerrors.ErrNoParents, "only the genesis block may have no parents")
		}
		return nil
	}

	if len(parents) > constants.MaxBlockParents {
		return ruleerrors.New(ruleerrors.ErrTooManyParents,
			"block has %d parents, the maximum allowed is %d", len(parents), constants.MaxBlockParents)
	}

	if !sort.SliceIsSorted(parents, func(i, j int) bool { return externalapi.Less(parents[i], parents[j]) }) {
		return ruleerrors.New(ruleerrors.ErrWrongParentsOrder, "block parents are not ordered ascending by id")
	}

	var missing []fmt.Stringer
	for _, parent := range parents {
		has, err := v.headerStore.HasBlockHeader(v.databaseContext, nil, parent)
		if err != nil {
			return err
		}
		if !has {
			missing = append(missing, parent)
		}
	}
	if len(missing) > 0 {
		return ruleerrors.NewErrMissingParents(missing)
	}

	return nil
}

func (v *blockValidator) checkReservedFieldsZero(header *externalapi.DomainBlockHeader) error {
	var zero externalapi.DomainHash
	if header.AcceptedIDMerkleRoot != zero {
		return ruleerrors.New(ruleerrors.ErrReservedFieldNonZero, "accepted_id_merkle_root must be zero")
	}
	if header.UTXOCommitment != zero {
		return ruleerrors.New(ruleerrors.ErrReservedFieldNonZero, "utxo_commitment must be zero")
	}
	return nil
}

// checkTimestamp enforces spec.md step 3: strictly after the latest
// parent timestamp, and strictly after the median if there are 2+
// parents.
func (v *blockValidator) checkTimestamp(header *externalapi.DomainBlockHeader) error {
	parents := header.ParentHashes()
	if len(parents) == 0 {
		return nil
	}

	timestamps := make([]int64, len(parents))
	for i, parent := range parents {
		parentHeader, err := v.headerStore.BlockHeader(v.databaseContext, nil, parent)
		if err != nil {
			return err
		}
		timestamps[i] = parentHeader.TimeInMilliseconds
	}

	maxParentTimestamp := timestamps[0]
	for _, ts := range timestamps[1:] {
		if ts > maxParentTimestamp {
			maxParentTimestamp = ts
		}
	}
	if header.TimeInMilliseconds <= maxParentTimestamp {
		return ruleerrors.New(ruleerrors.ErrInvalidTimestamp,
			"block timestamp %d is not after the latest parent timestamp %d", header.TimeInMilliseconds, maxParentTimestamp)
	}

	if len(timestamps) >= 2 {
		median := medianOf(timestamps)
		if header.TimeInMilliseconds <= median {
			return ruleerrors.New(ruleerrors.ErrInvalidTimestamp,
				"block timestamp %d is not after the parents' median timestamp %d", header.TimeInMilliseconds, median)
		}
	}

	return nil
}

func medianOf(values []int64) int64 {
	sorted := append([]int64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[len(sorted)/2]
}

// checkProofOfWork implements C5 (spec.md §4.5): target range, then
// pow_hash < target, unless skipPoW is set (devnet only; the network
// gate that enforces that restriction lives in the caller that
// constructs this validator, per spec.md §9).
func (v *blockValidator) checkProofOfWork(header *externalapi.DomainBlockHeader) error {
	return difficulty.CheckProofOfWork(header, v.powMax, v.skipPoW)
}

// ValidateHeaderInContext runs steps 5–6 of the C6 pipeline: GHOSTDAG
// recomputation and cross-check, then the pruning-point commitment
// check. Parent linkage (dagTopologyManager.SetParents) must already
// have been established by the caller before this runs, since GHOSTDAG
// classification reads it.
func (v *blockValidator) ValidateHeaderInContext(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) error {
	header, err := v.headerStore.BlockHeader(v.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}

	if err := v.checkParentsNotAncestorsOfEachOther(stagingArea, header); err != nil {
		return err
	}

	if err := v.ghostdagManager.GHOSTDAG(stagingArea, blockHash); err != nil {
		return err
	}

	computed, err := v.ghostdagDataStore.Get(v.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}

	if err := v.checkGHOSTDAGFieldsMatch(stagingArea, computed, header); err != nil {
		return err
	}

	if err := v.checkPruningPointCommitment(stagingArea, computed, header); err != nil {
		return err
	}

	return nil
}

func (v *blockValidator) checkParentsNotAncestorsOfEachOther(stagingArea *model.StagingArea, header *externalapi.DomainBlockHeader) error {
	parents := header.ParentHashes()
	for i, parentA := range parents {
		for _, parentB := range parents[i+1:] {
			isAncestor, err := v.dagTopologyManager.IsAncestorOf(stagingArea, parentA, parentB)
			if err != nil {
				return err
			}
			if isAncestor {
				return ruleerrors.New(ruleerrors.ErrParentIsAncestorOfOtherParent,
					"parent %s is an ancestor of parent %s", parentA, parentB)
			}
			isAncestor, err = v.dagTopologyManager.IsAncestorOf(stagingArea, parentB, parentA)
			if err != nil {
				return err
			}
			if isAncestor {
				return ruleerrors.New(ruleerrors.ErrParentIsAncestorOfOtherParent,
					"parent %s is an ancestor of parent %s", parentB, parentA)
			}
		}
	}
	return nil
}

func (v *blockValidator) checkGHOSTDAGFieldsMatch(stagingArea *model.StagingArea, computed *externalapi.BlockGHOSTDAGData, header *externalapi.DomainBlockHeader) error {
	if computed.BlueScore() != header.BlueScore {
		return ruleerrors.New(ruleerrors.ErrInvalidBlueScore,
			"header claims blue_score %d, classifier computed %d", header.BlueScore, computed.BlueScore())
	}
	if computed.BlueWork().Cmp(header.BlueWork) != 0 {
		return ruleerrors.New(ruleerrors.ErrInvalidBlueWork,
			"header claims blue_work %s, classifier computed %s", header.BlueWork, computed.BlueWork())
	}
	if computed.DAAScore() != header.DAAScore {
		return ruleerrors.New(ruleerrors.ErrInvalidDaaScore,
			"header claims daa_score %d, classifier computed %d", header.DAAScore, computed.DAAScore())
	}

	if computed.SelectedParent != nil {
		expectedBits, err := v.difficultyManager.RequiredDifficulty(stagingArea, computed.SelectedParent)
		if err != nil {
			return err
		}
		if header.Bits != expectedBits {
			return ruleerrors.New(ruleerrors.ErrInvalidBitsField,
				"header bits 0x%08x does not match the DAA-expected 0x%08x", header.Bits, expectedBits)
		}
	}

	return nil
}

func (v *blockValidator) checkPruningPointCommitment(stagingArea *model.StagingArea, computed *externalapi.BlockGHOSTDAGData, header *externalapi.DomainBlockHeader) error {
	if computed.SelectedParent == nil {
		// Genesis: no ancestry to have pruned yet, so it commits to
		// itself (spec.md §8 Scenario S1: "pruning_point = self").
		if header.PruningPoint != *v.genesisHash {
			return ruleerrors.New(ruleerrors.ErrInvalidPruningPoint, "genesis must commit to itself as the pruning point")
		}
		return nil
	}

	expectedPruningPoint, err := v.pruningManager.PruningPoint(stagingArea, computed.SelectedParent)
	if err != nil {
		return err
	}
	if header.PruningPoint != *expectedPruningPoint {
		return ruleerrors.New(ruleerrors.ErrInvalidPruningPoint,
			"header commits to pruning point %s, expected %s", header.PruningPoint, expectedPruningPoint)
	}
	return nil
}

// ValidateBody runs step 7 of the C6 pipeline: the merkle-root check,
// valid only once transactions are known (spec.md §4.6 step 7). Empty
// blocks commit to the zero digest.
func (v *blockValidator) ValidateBody(stagingArea *model.StagingArea, block *externalapi.DomainBlock) error {
	computedRoot := merkle.CalculateHashMerkleRoot(block.Transactions)
	if computedRoot != block.Header.HashMerkleRoot {
		return ruleerrors.New(ruleerrors.ErrInvalidMerkleRoot,
			"computed hash_merkle_root %s does not match header's %s", computedRoot, block.Header.HashMerkleRoot)
	}
	return nil
}
