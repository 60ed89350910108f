package model

import "github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"

// ReachabilityManager answers ancestry queries over the block DAG in
// sublinear time via the interval-tree + future-covering-set scheme
// (spec.md C2), and maintains that structure as new blocks arrive.
type ReachabilityManager interface {
	AddBlock(stagingArea *StagingArea, blockHash *externalapi.DomainHash, selectedParent *externalapi.DomainHash) error
	IsDAGAncestorOf(stagingArea *StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (bool, error)
	IsAncestorOfAny(stagingArea *StagingArea, blockHash *externalapi.DomainHash, potentialDescendants []*externalapi.DomainHash) (bool, error)

	// IsChainAncestorOf reports whether blockHashA is on blockHashB's
	// selected-parent chain: tree-interval containment only, with no
	// future-covering-set fallback. Narrower than IsDAGAncestorOf, which
	// also counts ancestry reached only through a merge.
	IsChainAncestorOf(stagingArea *StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (bool, error)
}

// DAGTopologyManager exposes parent/child/ancestry queries and tip
// tracking (spec.md §3.1 DAG-relations, §4.7 fork choice's tip set).
type DAGTopologyManager interface {
	Parents(stagingArea *StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	Children(stagingArea *StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	IsParentOf(stagingArea *StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (bool, error)
	IsAncestorOf(stagingArea *StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (bool, error)
	IsAncestorOfAny(stagingArea *StagingArea, blockHash *externalapi.DomainHash, potentialDescendants []*externalapi.DomainHash) (bool, error)
	IsInSelectedParentChainOf(stagingArea *StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (bool, error)
	SetParents(stagingArea *StagingArea, blockHash *externalapi.DomainHash, parentHashes []*externalapi.DomainHash) error
	Tips(stagingArea *StagingArea) ([]*externalapi.DomainHash, error)
	SetTips(stagingArea *StagingArea, tips []*externalapi.DomainHash) error
}

// GHOSTDAGManager computes and stores a block's GHOSTDAG record: its
// selected parent, mergeset blues/reds, blue score, blue work, and DAA
// score (spec.md §4.3, C3).
type GHOSTDAGManager interface {
	GHOSTDAG(stagingArea *StagingArea, blockHash *externalapi.DomainHash) error
	ChooseSelectedParent(stagingArea *StagingArea, blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (*externalapi.DomainHash, error)
}

// DifficultyManager derives the expected compact target for a block
// from its selected parent's DAA window (spec.md §4.4, C4).
type DifficultyManager interface {
	RequiredDifficulty(stagingArea *StagingArea, selectedParent *externalapi.DomainHash) (uint32, error)
}

// BlockValidator runs the full C6 header-validation pipeline.
type BlockValidator interface {
	ValidateHeaderInIsolation(block *externalapi.DomainBlock) error
	ValidateHeaderInContext(stagingArea *StagingArea, blockHash *externalapi.DomainHash) error
	ValidateBody(stagingArea *StagingArea, block *externalapi.DomainBlock) error
}

// SyncValidator runs the subset of C6 valid for a header-only block
// received during initial sync (spec.md §4.7, C7).
type SyncValidator interface {
	ValidateHeaderOnly(stagingArea *StagingArea, blockHash *externalapi.DomainHash, header *externalapi.DomainBlockHeader) error
}

// ForkChoiceManager resolves the canonical tip among the current tip
// set and reports finality (spec.md §4.8).
type ForkChoiceManager interface {
	CanonicalTip(stagingArea *StagingArea) (*externalapi.DomainHash, error)
	IsStable(stagingArea *StagingArea, blockHash *externalapi.DomainHash) (bool, error)
}

// PruningManager computes the deterministic pruning point for a block
// (spec.md §4.9).
type PruningManager interface {
	PruningPoint(stagingArea *StagingArea, selectedParent *externalapi.DomainHash) (*externalapi.DomainHash, error)
}

// BlockBuilder assembles a new candidate block on top of the current
// tip set (spec.md §4.10, C9).
type BlockBuilder interface {
	BuildBlock(coinbaseData *externalapi.DomainCoinbaseData, transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error)
	BuildBlockWithParents(parentHashes []*externalapi.DomainHash, coinbaseData *externalapi.DomainCoinbaseData, transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error)
}

// BlockProcessor is the single ingress funnel for new blocks (spec.md
// §4.11, C10): no code path reaches the header store except through
// ValidateAndInsertBlock.
type BlockProcessor interface {
	ValidateAndInsertBlock(block *externalapi.DomainBlock) (*externalapi.BlockInsertionResult, error)
	ValidateAndInsertHeader(header *externalapi.DomainBlockHeader) (*externalapi.BlockInsertionResult, error)
}
