package model

import "github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"

// BlockHeaderStore stores headers by block id.
type BlockHeaderStore interface {
	Stage(stagingArea *StagingArea, blockHash *externalapi.DomainHash, header *externalapi.DomainBlockHeader)
	BlockHeader(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error)
	HasBlockHeader(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (bool, error)
	Delete(stagingArea *StagingArea, blockHash *externalapi.DomainHash)
	Count() uint64
}

// GHOSTDAGDataStore stores the classifier's output per block.
type GHOSTDAGDataStore interface {
	Stage(stagingArea *StagingArea, blockHash *externalapi.DomainHash, data *externalapi.BlockGHOSTDAGData)
	Get(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error)
	IsStaged(stagingArea *StagingArea) bool
}

// BlockRelations is the set of parents and children recorded for one
// block, independent of the reachability tree built over them.
type BlockRelations struct {
	Parents  []*externalapi.DomainHash
	Children []*externalapi.DomainHash
}

// BlockRelationStore stores each block's parents and children.
type BlockRelationStore interface {
	StageRelation(stagingArea *StagingArea, blockHash *externalapi.DomainHash, relations *BlockRelations)
	BlockRelation(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (*BlockRelations, error)
}

// BlockStatusStore stores each block's validation-lifecycle status.
type BlockStatusStore interface {
	Stage(stagingArea *StagingArea, blockHash *externalapi.DomainHash, status externalapi.BlockStatus)
	Get(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (externalapi.BlockStatus, error)
	Exists(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (bool, error)
}

// ReachabilityDataStore stores each block's interval-tree and
// future-covering-set reachability records (spec.md C2).
type ReachabilityDataStore interface {
	StageReachabilityData(stagingArea *StagingArea, blockHash *externalapi.DomainHash, data *ReachabilityData)
	ReachabilityData(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (*ReachabilityData, error)
	HasReachabilityData(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (bool, error)
	StageReachabilityReindexRoot(stagingArea *StagingArea, reindexRoot *externalapi.DomainHash)
	ReachabilityReindexRoot(dbContext DBReader, stagingArea *StagingArea) (*externalapi.DomainHash, error)
}

// ReachabilityInterval is a half-open interval [Start, End) assigned to
// a block in the reachability tree.
type ReachabilityInterval struct {
	Start uint64
	End   uint64
}

// Size returns the interval's width.
func (ri *ReachabilityInterval) Size() uint64 { return ri.End - ri.Start }

// ReachabilityData is one block's reachability-tree record.
type ReachabilityData struct {
	TreeInterval *ReachabilityInterval
	TreeParent   *externalapi.DomainHash
	TreeChildren []*externalapi.DomainHash

	// ChildAllocationCursor marks the start of the not-yet-handed-out
	// portion of TreeInterval; each new tree child consumes a slice
	// starting here, advancing the cursor past it.
	ChildAllocationCursor uint64

	FutureCoveringSet []*externalapi.DomainHash
}

// PruningStore stores the current pruning point.
type PruningStore interface {
	StagePruningPoint(stagingArea *StagingArea, pruningPointHash *externalapi.DomainHash)
	PruningPoint(dbContext DBReader, stagingArea *StagingArea) (*externalapi.DomainHash, error)
	HasPruningPoint(dbContext DBReader, stagingArea *StagingArea) (bool, error)
}

// TipsStore stores the current DAG tip set.
type TipsStore interface {
	StageTips(stagingArea *StagingArea, tips []*externalapi.DomainHash)
	Tips(dbContext DBReader, stagingArea *StagingArea) ([]*externalapi.DomainHash, error)
}
