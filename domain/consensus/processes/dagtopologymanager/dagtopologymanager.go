// Package dagtopologymanager exposes parent/child/ancestry queries and
// tip-set maintenance over the block DAG, composing the relation store
// (direct parents/children) with the reachability manager (general
// ancestry), matching the teacher's
// domain/consensus/model.DAGTopologyManager split of concerns.
package dagtopologymanager

import (
	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
)

type dagTopologyManager struct {
	databaseContext     model.DBReader
	relationStore       model.BlockRelationStore
	reachabilityManager model.ReachabilityManager
	tipsStore           model.TipsStore
}

// New returns a model.DAGTopologyManager.
func New(databaseContext model.DBReader, relationStore model.BlockRelationStore, reachabilityManager model.ReachabilityManager, tipsStore model.TipsStore) model.DAGTopologyManager {
	return &dagTopologyManager{
		databaseContext:     databaseContext,
		relationStore:       relationStore,
		reachabilityManager: reachabilityManager,
		tipsStore:           tipsStore,
	}
}

// Parents returns blockHash's direct parents.
func (dtm *dagTopologyManager) Parents(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	relations, err := dtm.relationStore.BlockRelation(dtm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return relations.Parents, nil
}

// Children returns blockHash's direct children.
func (dtm *dagTopologyManager) Children(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	relations, err := dtm.relationStore.BlockRelation(dtm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return relations.Children, nil
}

// IsParentOf reports whether blockHashA is a direct parent of
// blockHashB.
func (dtm *dagTopologyManager) IsParentOf(stagingArea *model.StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (bool, error) {
	parents, err := dtm.Parents(stagingArea, blockHashB)
	if err != nil {
		return false, err
	}
	for _, parent := range parents {
		if *parent == *blockHashA {
			return true, nil
		}
	}
	return false, nil
}

// IsAncestorOf reports whether blockHashA is an ancestor of
// blockHashB along any path.
func (dtm *dagTopologyManager) IsAncestorOf(stagingArea *model.StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (bool, error) {
	return dtm.reachabilityManager.IsDAGAncestorOf(stagingArea, blockHashA, blockHashB)
}

// IsAncestorOfAny reports whether blockHash is an ancestor of any of
// potentialDescendants.
func (dtm *dagTopologyManager) IsAncestorOfAny(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, potentialDescendants []*externalapi.DomainHash) (bool, error) {
	return dtm.reachabilityManager.IsAncestorOfAny(stagingArea, blockHash, potentialDescendants)
}

// IsInSelectedParentChainOf reports whether blockHashA is on
// blockHashB's selected-parent chain: tree ancestry only, narrower than
// IsAncestorOf, which also counts ancestry reached only through a
// merge (spec.md glossary's is_chain_ancestor vs is_dag_ancestor).
func (dtm *dagTopologyManager) IsInSelectedParentChainOf(stagingArea *model.StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (bool, error) {
	return dtm.reachabilityManager.IsChainAncestorOf(stagingArea, blockHashA, blockHashB)
}

// SetParents records blockHash's parents: it appends blockHash to every
// parent's Children list and stages blockHash's own Parents record.
// Reachability-tree placement is left to the reachability manager.
func (dtm *dagTopologyManager) SetParents(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, parentHashes []*externalapi.DomainHash) error {
	for _, parentHash := range parentHashes {
		relations, err := dtm.relationStore.BlockRelation(dtm.databaseContext, stagingArea, parentHash)
		if err != nil {
			return err
		}
		relations.Children = append(relations.Children, blockHash)
		dtm.relationStore.StageRelation(stagingArea, parentHash, relations)
	}

	dtm.relationStore.StageRelation(stagingArea, blockHash, &model.BlockRelations{
		Parents:  parentHashes,
		Children: nil,
	})

	return nil
}

// Tips returns the current DAG tip set.
func (dtm *dagTopologyManager) Tips(stagingArea *model.StagingArea) ([]*externalapi.DomainHash, error) {
	return dtm.tipsStore.Tips(dtm.databaseContext, stagingArea)
}

// SetTips overwrites the current tip set.
func (dtm *dagTopologyManager) SetTips(stagingArea *model.StagingArea, tips []*externalapi.DomainHash) error {
	dtm.tipsStore.StageTips(stagingArea, tips)
	return nil
}
