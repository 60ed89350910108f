package model

// StagingShard holds one store's uncommitted mutations for the
// lifetime of a single StagingArea, and knows how to write them into a
// DBTransaction.
type StagingShard interface {
	Commit(dbTx DBTransaction) error
}

// StagingArea accumulates every store's mutations while a single block
// is being validated and classified, so they commit together as one
// atomic transaction on acceptance (spec.md §5: "no partial state
// persisted on failure"). Each store lazily creates its own shard on
// first use via GetOrCreateShard, keyed by a store-chosen id.
type StagingArea struct {
	shards map[string]StagingShard
}

// NewStagingArea returns an empty StagingArea.
func NewStagingArea() *StagingArea {
	return &StagingArea{shards: make(map[string]StagingShard)}
}

// GetOrCreateShard returns the shard registered under shardID, creating
// it via create if this is the first access this staging area has seen
// for that store.
func (sa *StagingArea) GetOrCreateShard(shardID string, create func() StagingShard) StagingShard {
	if shard, ok := sa.shards[shardID]; ok {
		return shard
	}
	shard := create()
	sa.shards[shardID] = shard
	return shard
}

// Commit writes every registered shard's staged mutations into dbTx, in
// an unspecified order that may differ between calls. Callers commit dbTx only after every
// shard has written successfully.
func (sa *StagingArea) Commit(dbTx DBTransaction) error {
	for _, shard := range sa.shards {
		if err := shard.Commit(dbTx); err != nil {
			return err
		}
	}
	return nil
}

// Well-known shard ids, one per store package, so store packages don't
// need to agree on string literals out of band.
const (
	StagingShardIDBlockHeader   = "BlockHeader"
	StagingShardIDGHOSTDAG      = "GHOSTDAGData"
	StagingShardIDBlockRelation = "BlockRelation"
	StagingShardIDBlockStatus   = "BlockStatus"
	StagingShardIDReachability  = "Reachability"
	StagingShardIDPruning       = "Pruning"
	StagingShardIDTips          = "Tips"
)
