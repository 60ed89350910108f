// Package blockprocessor implements C10, the ingress orchestrator
// (spec.md §4.10): the single funnel every candidate block or header
// passes through, whether locally mined, RPC-submitted, or received
// over the network. It runs C6, and on success inserts reachability and
// GHOSTDAG records and updates the tip set; on failure nothing but an
// (optional) known-invalid marker is persisted. Grounded on the
// teacher's validateandinsertblock.go: checkBlockStatus →
// validateBlock → stage records → commitAllChanges/discardAllChanges,
// trimmed of the UTXO/virtual-block/headers-first sync-state machine
// that doesn't apply once tx execution and P2P sync policy are out of
// scope (spec.md §1). Header-only acceptance (C7) and full-body
// acceptance share the same accept path, since spec.md §4.6 step 7
// only ever defers the merkle-root check, never the rest of C6.
package blockprocessor

import (
	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/ruleerrors"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/consensushashing"
	"github.com/ghostdag-network/consensus/infrastructure/db/database"
	"github.com/ghostdag-network/consensus/infrastructure/logger"
	"github.com/pkg/errors"
)

var log, _ = logger.Get(logger.SubsystemTags.BLPR)

type blockProcessor struct {
	db database.Database

	headerStore         model.BlockHeaderStore
	ghostdagDataStore   model.GHOSTDAGDataStore
	statusStore         model.BlockStatusStore
	dagTopologyManager  model.DAGTopologyManager
	reachabilityManager model.ReachabilityManager
	blockValidator      model.BlockValidator
	syncValidator       model.SyncValidator
	forkChoiceManager   model.ForkChoiceManager
}

// New returns a model.BlockProcessor.
func New(db database.Database, headerStore model.BlockHeaderStore, ghostdagDataStore model.GHOSTDAGDataStore,
	statusStore model.BlockStatusStore, dagTopologyManager model.DAGTopologyManager,
	reachabilityManager model.ReachabilityManager, blockValidator model.BlockValidator,
	syncValidator model.SyncValidator, forkChoiceManager model.ForkChoiceManager) model.BlockProcessor {
	return &blockProcessor{
		db:                  db,
		headerStore:         headerStore,
		ghostdagDataStore:   ghostdagDataStore,
		statusStore:         statusStore,
		dagTopologyManager:  dagTopologyManager,
		reachabilityManager: reachabilityManager,
		blockValidator:      blockValidator,
		syncValidator:       syncValidator,
		forkChoiceManager:   forkChoiceManager,
	}
}

// ValidateAndInsertBlock runs C6 against block and, on success, inserts
// it into the DAG. A block already known header-only is promoted to
// fully valid by running just the deferred merkle-root check (spec.md
// §4.6 step 7); a block already fully valid or known-invalid is
// rejected outright.
func (bp *blockProcessor) ValidateAndInsertBlock(block *externalapi.DomainBlock) (*externalapi.BlockInsertionResult, error) {
	hash, err := consensushashing.BlockHash(block)
	if err != nil {
		return nil, err
	}

	probeArea := model.NewStagingArea()
	status, exists, err := bp.existingStatus(probeArea, hash)
	if err != nil {
		return nil, err
	}
	if exists {
		switch status {
		case externalapi.StatusInvalid:
			return nil, errors.Wrapf(ruleerrors.New(ruleerrors.ErrKnownInvalid, "block %s is a known invalid block", hash),
				"rejecting previously invalidated block")
		case externalapi.StatusHeaderOnly:
			return bp.insertBody(hash, block)
		default:
			return nil, ruleerrors.New(ruleerrors.ErrDuplicateBlock, "block %s already exists", hash)
		}
	}

	stagingArea := model.NewStagingArea()
	oldTip, err := bp.forkChoiceManager.CanonicalTip(stagingArea)
	if err != nil {
		return nil, err
	}
	return bp.insertNewBlock(stagingArea, hash, block, oldTip)
}

// ValidateAndInsertHeader runs steps 1–6 of C6 (C7) against header and,
// on success, inserts it into the DAG as header-only. It MUST NOT skip
// any check beyond the merkle root spec.md §4.6 step 7 permits (spec.md
// §4.7).
func (bp *blockProcessor) ValidateAndInsertHeader(header *externalapi.DomainBlockHeader) (*externalapi.BlockInsertionResult, error) {
	hash, err := consensushashing.HeaderHash(header)
	if err != nil {
		return nil, err
	}

	probeArea := model.NewStagingArea()
	status, exists, err := bp.existingStatus(probeArea, hash)
	if err != nil {
		return nil, err
	}
	if exists {
		switch status {
		case externalapi.StatusInvalid:
			return nil, errors.Wrapf(ruleerrors.New(ruleerrors.ErrKnownInvalid, "block %s is a known invalid block", hash),
				"rejecting previously invalidated header")
		default:
			return nil, ruleerrors.New(ruleerrors.ErrDuplicateBlock, "header %s already exists", hash)
		}
	}

	stagingArea := model.NewStagingArea()
	oldTip, err := bp.forkChoiceManager.CanonicalTip(stagingArea)
	if err != nil {
		return nil, err
	}

	bp.headerStore.Stage(stagingArea, hash, header)
	if err := bp.dagTopologyManager.SetParents(stagingArea, hash, header.ParentHashes()); err != nil {
		return nil, err
	}

	if err := bp.syncValidator.ValidateHeaderOnly(stagingArea, hash, header); err != nil {
		return nil, bp.failValidation(hash, err)
	}

	return bp.acceptIntoDAG(stagingArea, hash, header, oldTip, externalapi.StatusHeaderOnly)
}

func (bp *blockProcessor) existingStatus(stagingArea *model.StagingArea, hash *externalapi.DomainHash) (externalapi.BlockStatus, bool, error) {
	exists, err := bp.statusStore.Exists(bp.db, stagingArea, hash)
	if err != nil {
		return 0, false, err
	}
	if !exists {
		return 0, false, nil
	}
	status, err := bp.statusStore.Get(bp.db, stagingArea, hash)
	if err != nil {
		return 0, false, err
	}
	return status, true, nil
}

func (bp *blockProcessor) insertNewBlock(stagingArea *model.StagingArea, hash *externalapi.DomainHash,
	block *externalapi.DomainBlock, oldTip *externalapi.DomainHash) (*externalapi.BlockInsertionResult, error) {

	if err := bp.blockValidator.ValidateHeaderInIsolation(block); err != nil {
		return nil, bp.failValidation(hash, err)
	}

	bp.headerStore.Stage(stagingArea, hash, block.Header)
	if err := bp.dagTopologyManager.SetParents(stagingArea, hash, block.Header.ParentHashes()); err != nil {
		return nil, err
	}

	if err := bp.blockValidator.ValidateHeaderInContext(stagingArea, hash); err != nil {
		return nil, bp.failValidation(hash, err)
	}

	if err := bp.blockValidator.ValidateBody(stagingArea, block); err != nil {
		return nil, bp.failValidation(hash, err)
	}

	return bp.acceptIntoDAG(stagingArea, hash, block.Header, oldTip, externalapi.StatusValid)
}

// insertBody promotes a header-only block to fully valid once its body
// arrives, re-applying only the merkle-root check C6 deferred (spec.md
// §4.6 step 7). Everything else about the block already joined the DAG
// when its header was first accepted, so no topology or tip-set change
// happens here.
func (bp *blockProcessor) insertBody(hash *externalapi.DomainHash, block *externalapi.DomainBlock) (*externalapi.BlockInsertionResult, error) {
	stagingArea := model.NewStagingArea()

	storedHeader, err := bp.headerStore.BlockHeader(bp.db, stagingArea, hash)
	if err != nil {
		return nil, err
	}
	block.Header = storedHeader

	if err := bp.blockValidator.ValidateBody(stagingArea, block); err != nil {
		return nil, bp.failValidation(hash, err)
	}

	bp.statusStore.Stage(stagingArea, hash, externalapi.StatusValid)
	if err := bp.commit(stagingArea); err != nil {
		return nil, err
	}

	return &externalapi.BlockInsertionResult{SelectedParentChainChanges: &externalapi.SelectedParentChainChanges{}}, nil
}

// acceptIntoDAG runs the shared tail of both insertion paths: the
// reachability record, tip-set update, status write, and
// selected-parent-chain diff, all inside stagingArea and committed as
// one atomic write (spec.md §5 "three records committed as one unit").
func (bp *blockProcessor) acceptIntoDAG(stagingArea *model.StagingArea, hash *externalapi.DomainHash,
	header *externalapi.DomainBlockHeader, oldTip *externalapi.DomainHash, status externalapi.BlockStatus) (*externalapi.BlockInsertionResult, error) {

	data, err := bp.ghostdagDataStore.Get(bp.db, stagingArea, hash)
	if err != nil {
		return nil, err
	}

	if data.SelectedParent != nil {
		if err := bp.reachabilityManager.AddBlock(stagingArea, hash, data.SelectedParent); err != nil {
			return nil, err
		}
		registrar, ok := bp.reachabilityManager.(interface {
			RegisterFutureCoveringAncestor(*model.StagingArea, *externalapi.DomainHash, *externalapi.DomainHash) error
		})
		if ok {
			for _, merged := range append(append([]*externalapi.DomainHash{}, data.MergeSetBlues...), data.MergeSetReds...) {
				if merged.Equal(data.SelectedParent) {
					continue
				}
				if err := registrar.RegisterFutureCoveringAncestor(stagingArea, merged, hash); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := bp.updateTips(stagingArea, hash, header.ParentHashes()); err != nil {
		return nil, err
	}

	bp.statusStore.Stage(stagingArea, hash, status)

	newTip, err := bp.forkChoiceManager.CanonicalTip(stagingArea)
	if err != nil {
		return nil, err
	}

	changes, err := bp.selectedParentChainChanges(stagingArea, oldTip, newTip)
	if err != nil {
		return nil, err
	}

	if err := bp.commit(stagingArea); err != nil {
		return nil, err
	}

	log.Debugf("accepted %s as %s, blue score %d, %d added/%d removed from the selected parent chain",
		hash, status, data.BlueScore(), len(changes.Added), len(changes.Removed))
	return &externalapi.BlockInsertionResult{SelectedParentChainChanges: changes}, nil
}

// updateTips applies spec.md §4.8's tip-set rule: hash enters the tip
// set, and any of its parents leave it (they just gained their first
// child... or another one, but either way they're no longer a tip).
func (bp *blockProcessor) updateTips(stagingArea *model.StagingArea, hash *externalapi.DomainHash, parents []*externalapi.DomainHash) error {
	tips, err := bp.dagTopologyManager.Tips(stagingArea)
	if err != nil {
		return err
	}

	parentSet := make(map[externalapi.DomainHash]struct{}, len(parents))
	for _, parent := range parents {
		parentSet[*parent] = struct{}{}
	}

	newTips := make([]*externalapi.DomainHash, 0, len(tips)+1)
	for _, tip := range tips {
		if _, isParent := parentSet[*tip]; isParent {
			continue
		}
		newTips = append(newTips, tip)
	}
	newTips = append(newTips, hash)

	return bp.dagTopologyManager.SetTips(stagingArea, newTips)
}

// selectedParentChainChanges walks oldTip's and newTip's selected-parent
// chains back to their common ancestor, reporting what left and entered
// canonical order (spec.md §6.1's transaction executor is the consumer).
// A nil oldTip means no block existed yet; a nil newTip can't happen
// once hash itself was just accepted.
func (bp *blockProcessor) selectedParentChainChanges(stagingArea *model.StagingArea,
	oldTip, newTip *externalapi.DomainHash) (*externalapi.SelectedParentChainChanges, error) {

	if oldTip != nil && oldTip.Equal(newTip) {
		return &externalapi.SelectedParentChainChanges{}, nil
	}

	var removed []*externalapi.DomainHash
	current := oldTip
	for current != nil {
		isAncestor, err := bp.dagTopologyManager.IsInSelectedParentChainOf(stagingArea, current, newTip)
		if err != nil {
			return nil, err
		}
		if isAncestor {
			break
		}
		removed = append(removed, current)
		data, err := bp.ghostdagDataStore.Get(bp.db, stagingArea, current)
		if err != nil {
			return nil, err
		}
		current = data.SelectedParent
	}
	commonAncestor := current

	var added []*externalapi.DomainHash
	current = newTip
	for current != nil && (commonAncestor == nil || !current.Equal(commonAncestor)) {
		added = append(added, current)
		data, err := bp.ghostdagDataStore.Get(bp.db, stagingArea, current)
		if err != nil {
			return nil, err
		}
		current = data.SelectedParent
	}
	for i, j := 0, len(added)-1; i < j; i, j = i+1, j-1 {
		added[i], added[j] = added[j], added[i]
	}

	return &externalapi.SelectedParentChainChanges{Added: added, Removed: removed}, nil
}

// failValidation caches hash as known-invalid when validationErr is a
// RuleError (spec.md [FULL-DATA]: "cached so a peer can't force
// re-validation of a block already rejected"), on its own fresh,
// single-write StagingArea so none of the partial header/topology
// writes validation may have staged are ever committed alongside it.
func (bp *blockProcessor) failValidation(hash *externalapi.DomainHash, validationErr error) error {
	var ruleErr ruleerrors.RuleError
	if errors.As(validationErr, &ruleErr) {
		log.Warnf("rejecting %s: %s", hash, ruleErr)
		invalidArea := model.NewStagingArea()
		bp.statusStore.Stage(invalidArea, hash, externalapi.StatusInvalid)
		if commitErr := bp.commit(invalidArea); commitErr != nil {
			return commitErr
		}
	}
	return validationErr
}

func (bp *blockProcessor) commit(stagingArea *model.StagingArea) error {
	dbTx, err := bp.db.Begin()
	if err != nil {
		return err
	}
	if err := stagingArea.Commit(dbTx); err != nil {
		return err
	}
	return dbTx.Commit()
}
