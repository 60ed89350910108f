// Package reachabilitymanager implements C2, the reachability index
// (spec.md §4.2): an interval-labeled tree over the selected-parent
// structure, augmented with a per-node future covering set, answering
// is_dag_ancestor and is_chain_ancestor queries in time independent of
// DAG width. Grounded on the interval/tree-parent/future-covering-set
// data shape in the teacher's domain/blockdag/reachabilitystore.go;
// the traversal algorithm itself wasn't present in the retrieved pack,
// so insertion and reindexing are rebuilt here from that data
// contract and from reachabilitymanager.IsDAGAncestorOf's call-site
// usage elsewhere in the teacher.
package reachabilitymanager

import (
	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/ruleerrors"
)

// initialIntervalSize is the span granted to a newly reindexed
// subtree's root; genesis receives the full space.
const initialIntervalSize = uint64(1) << 62

type reachabilityManager struct {
	databaseContext model.DBReader
	dataStore       model.ReachabilityDataStore
}

// New returns a model.ReachabilityManager.
func New(databaseContext model.DBReader, dataStore model.ReachabilityDataStore) model.ReachabilityManager {
	return &reachabilityManager{databaseContext: databaseContext, dataStore: dataStore}
}

// Init seeds genesis's reachability record with the full interval
// space, and sets it as the initial reindex root. Called once, before
// any block is added.
func (rm *reachabilityManager) Init(stagingArea *model.StagingArea, genesisHash *externalapi.DomainHash) error {
	rm.dataStore.StageReachabilityData(stagingArea, genesisHash, &model.ReachabilityData{
		TreeInterval:          &model.ReachabilityInterval{Start: 0, End: initialIntervalSize},
		ChildAllocationCursor: 1, // slot 0 is reserved for genesis's own identity
	})
	rm.dataStore.StageReachabilityReindexRoot(stagingArea, genesisHash)
	return nil
}

// AddBlock attaches blockHash under selectedParent in the reachability
// tree, allocating it an interval. It does not touch any future
// covering set: the caller registers blockHash with each merged block
// through RegisterFutureCoveringAncestor (blockprocessor.acceptIntoDAG
// does so for every mergeset block other than the selected parent).
func (rm *reachabilityManager) AddBlock(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, selectedParent *externalapi.DomainHash) error {
	parentData, err := rm.dataStore.ReachabilityData(rm.databaseContext, stagingArea, selectedParent)
	if err != nil {
		return err
	}

	interval, err := rm.allocateInterval(stagingArea, selectedParent, parentData)
	if err != nil {
		return err
	}

	rm.dataStore.StageReachabilityData(stagingArea, blockHash, &model.ReachabilityData{
		TreeInterval:          interval,
		TreeParent:            selectedParent,
		ChildAllocationCursor: interval.Start + 1, // slot Start is blockHash's own identity
	})

	parentData.TreeChildren = append(parentData.TreeChildren, blockHash)
	rm.dataStore.StageReachabilityData(stagingArea, selectedParent, parentData)

	return nil
}

// RegisterFutureCoveringAncestor records blockHash in ancestor's future
// covering set. Callers pass every mergeset block of blockHash other
// than its selected parent, since the selected-parent relationship is already
// captured by the tree itself (spec.md §4.2's is_dag_ancestor note:
// "true iff A is in B's past via any path").
func (rm *reachabilityManager) RegisterFutureCoveringAncestor(stagingArea *model.StagingArea, ancestor *externalapi.DomainHash, blockHash *externalapi.DomainHash) error {
	data, err := rm.dataStore.ReachabilityData(rm.databaseContext, stagingArea, ancestor)
	if err != nil {
		return err
	}
	data.FutureCoveringSet = insertIntoFutureCoveringSet(data.FutureCoveringSet, blockHash)
	rm.dataStore.StageReachabilityData(stagingArea, ancestor, data)
	return nil
}

// insertIntoFutureCoveringSet appends blockHash; the set is kept as an
// unordered membership list since, unlike the tree interval, a block's
// future covering set has no natural total order across branches.
func insertIntoFutureCoveringSet(set []*externalapi.DomainHash, blockHash *externalapi.DomainHash) []*externalapi.DomainHash {
	for _, existing := range set {
		if *existing == *blockHash {
			return set
		}
	}
	return append(set, blockHash)
}

// allocateInterval gives blockHash a slice of selectedParent's
// remaining interval space, reindexing selectedParent's subtree first
// if no space remains (spec.md §4.2 "amortization is permitted"). The
// cursor is tracked explicitly in ChildAllocationCursor rather than
// re-derived from already-allocated children, since children's
// intervals are assigned geometrically decreasing sizes and so carry
// no fixed width to sum over.
func (rm *reachabilityManager) allocateInterval(stagingArea *model.StagingArea, selectedParent *externalapi.DomainHash, parentData *model.ReachabilityData) (*model.ReachabilityInterval, error) {
	remaining := parentData.TreeInterval.End - parentData.ChildAllocationCursor
	if remaining < 2 {
		if err := rm.reindexSubtree(stagingArea, selectedParent); err != nil {
			return nil, err
		}
		refreshed, err := rm.dataStore.ReachabilityData(rm.databaseContext, stagingArea, selectedParent)
		if err != nil {
			return nil, err
		}
		*parentData = *refreshed
		remaining = parentData.TreeInterval.End - parentData.ChildAllocationCursor
	}

	// Grant half of what's left: this is the exponential allocation
	// scheme, so a long selected-parent chain consumes its ancestor's
	// space geometrically rather than linearly, keeping later siblings
	// from starving out.
	size := remaining / 2
	if size == 0 {
		size = 1
	}
	start := parentData.ChildAllocationCursor
	parentData.ChildAllocationCursor = start + size
	return &model.ReachabilityInterval{Start: start, End: start + size}, nil
}

// reindexSubtree reallocates fresh, evenly spaced intervals across
// blockHash's entire tree subtree, restoring room for further
// insertion. A full recursive reindex keeps the implementation simple;
// spec.md only requires insertion cost to amortize, not every
// individual reindex to be cheap.
func (rm *reachabilityManager) reindexSubtree(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) error {
	data, err := rm.dataStore.ReachabilityData(rm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}

	return rm.reallocate(stagingArea, blockHash, data.TreeInterval.Start, data.TreeInterval.End)
}

// reallocate assigns blockHash the interval [start, end) and recurses
// into its tree children, splitting the remaining space evenly.
func (rm *reachabilityManager) reallocate(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, start, end uint64) error {
	data, err := rm.dataStore.ReachabilityData(rm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}

	data.TreeInterval = &model.ReachabilityInterval{Start: start, End: end}

	children := data.TreeChildren
	if len(children) == 0 {
		data.ChildAllocationCursor = start + 1
		rm.dataStore.StageReachabilityData(stagingArea, blockHash, data)
		return nil
	}

	// Reserve one slot for blockHash's own identity, then split the
	// rest evenly across children.
	available := end - start - 1
	if available < uint64(len(children)) {
		return ruleerrors.New(ruleerrors.ErrInvalidValue, "reachability subtree at depth exhausted interval space")
	}
	childSpan := available / uint64(len(children))
	cursor := start + 1
	for _, child := range children {
		childEnd := cursor + childSpan
		if err := rm.reallocate(stagingArea, child, cursor, childEnd); err != nil {
			return err
		}
		cursor = childEnd
	}
	data.ChildAllocationCursor = cursor
	rm.dataStore.StageReachabilityData(stagingArea, blockHash, data)
	return nil
}

// IsDAGAncestorOf reports whether blockHashA is an ancestor of
// blockHashB along any path: either it dominates B in the tree
// (interval containment), or B is in A's future covering set.
func (rm *reachabilityManager) IsDAGAncestorOf(stagingArea *model.StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (bool, error) {
	if *blockHashA == *blockHashB {
		return true, nil
	}

	isChainAncestor, err := rm.IsChainAncestorOf(stagingArea, blockHashA, blockHashB)
	if err != nil {
		return false, err
	}
	if isChainAncestor {
		return true, nil
	}

	dataA, err := rm.dataStore.ReachabilityData(rm.databaseContext, stagingArea, blockHashA)
	if err != nil {
		return false, err
	}
	for _, covered := range dataA.FutureCoveringSet {
		if *covered == *blockHashB {
			return true, nil
		}
		isAncestor, err := rm.IsChainAncestorOf(stagingArea, covered, blockHashB)
		if err != nil {
			return false, err
		}
		if isAncestor {
			return true, nil
		}
	}
	return false, nil
}

// IsChainAncestorOf reports whether blockHashA's tree interval contains
// blockHashB's tree interval, with no future-covering-set fallback:
// the selected-parent-chain-only predicate spec.md's glossary calls
// is_chain_ancestor, distinct from the general is_dag_ancestor.
func (rm *reachabilityManager) IsChainAncestorOf(stagingArea *model.StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (bool, error) {
	dataA, err := rm.dataStore.ReachabilityData(rm.databaseContext, stagingArea, blockHashA)
	if err != nil {
		return false, err
	}
	dataB, err := rm.dataStore.ReachabilityData(rm.databaseContext, stagingArea, blockHashB)
	if err != nil {
		return false, err
	}
	return dataA.TreeInterval.Start <= dataB.TreeInterval.Start && dataB.TreeInterval.End <= dataA.TreeInterval.End, nil
}

// IsAncestorOfAny reports whether blockHash is an ancestor of any of
// potentialDescendants.
func (rm *reachabilityManager) IsAncestorOfAny(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, potentialDescendants []*externalapi.DomainHash) (bool, error) {
	for _, descendant := range potentialDescendants {
		isAncestor, err := rm.IsDAGAncestorOf(stagingArea, blockHash, descendant)
		if err != nil {
			return false, err
		}
		if isAncestor {
			return true, nil
		}
	}
	return false, nil
}
