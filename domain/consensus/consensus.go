package consensus

import (
	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/difficulty"
	"github.com/ghostdag-network/consensus/domain/dagconfig"
	"github.com/ghostdag-network/consensus/infrastructure/db/database"
	"github.com/ghostdag-network/consensus/infrastructure/logger"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var log, _ = logger.Get(logger.SubsystemTags.CNSD)

// Consensus is the consensus core's public surface (spec.md §6.2):
// every external collaborator (RPC, mining, wallet, sync) reaches the
// DAG only through these methods.
type Consensus interface {
	// AddBlock runs C6/C10 against block and inserts it into the DAG on
	// success (add_new_block).
	AddBlock(block *externalapi.DomainBlock) (*externalapi.BlockInsertionResult, error)

	// AddHeader runs the header-only path (C7) against header, for
	// blocks received during initial sync before their body arrives.
	AddHeader(header *externalapi.DomainBlockHeader) (*externalapi.BlockInsertionResult, error)

	// Tip returns the current canonical tip (get_tip).
	Tip() (*externalapi.DomainHash, error)

	// BlueScore returns blockHash's blue score (get_blue_score).
	BlueScore(blockHash *externalapi.DomainHash) (uint64, error)

	// BlueWork returns blockHash's cumulative blue work (get_blue_work).
	BlueWork(blockHash *externalapi.DomainHash) (*uint256.Int, error)

	// IsStable reports whether blockHash has reached finality relative
	// to the current canonical tip (is_stable).
	IsStable(blockHash *externalapi.DomainHash) (bool, error)

	// PruningPoint returns the pruning point as of the current
	// canonical tip, refreshed after every AddBlock/AddHeader call that
	// changes the tip.
	PruningPoint() (*externalapi.DomainHash, error)

	// BuildBlockTemplate assembles a new candidate block over the
	// current tip set, every consensus field filled in but nonce/
	// extra_nonce left for the miner to search (build_template).
	BuildBlockTemplate(coinbaseData *externalapi.DomainCoinbaseData,
		transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error)

	// VerifyProofOfWork checks header's proof of work in isolation, for
	// light-client attestation independent of full DAG insertion
	// (verify_pow).
	VerifyProofOfWork(header *externalapi.DomainBlockHeader) error
}

type consensus struct {
	db        database.Database
	dagParams *dagconfig.Params

	headerStore       model.BlockHeaderStore
	ghostdagDataStore model.GHOSTDAGDataStore
	statusStore       model.BlockStatusStore
	pruningPointStore model.PruningStore

	pruningManager    model.PruningManager
	forkChoiceManager model.ForkChoiceManager
	blockBuilder      model.BlockBuilder
	blockProcessor    model.BlockProcessor
}

// AddBlock implements Consensus.
func (c *consensus) AddBlock(block *externalapi.DomainBlock) (*externalapi.BlockInsertionResult, error) {
	result, err := c.blockProcessor.ValidateAndInsertBlock(block)
	if err != nil {
		return nil, err
	}
	if err := c.refreshPruningPoint(); err != nil {
		return nil, err
	}
	return result, nil
}

// AddHeader implements Consensus.
func (c *consensus) AddHeader(header *externalapi.DomainBlockHeader) (*externalapi.BlockInsertionResult, error) {
	result, err := c.blockProcessor.ValidateAndInsertHeader(header)
	if err != nil {
		return nil, err
	}
	if err := c.refreshPruningPoint(); err != nil {
		return nil, err
	}
	return result, nil
}

// Tip implements Consensus.
func (c *consensus) Tip() (*externalapi.DomainHash, error) {
	stagingArea := model.NewStagingArea()
	return c.forkChoiceManager.CanonicalTip(stagingArea)
}

// BlueScore implements Consensus.
func (c *consensus) BlueScore(blockHash *externalapi.DomainHash) (uint64, error) {
	stagingArea := model.NewStagingArea()
	data, err := c.ghostdagDataStore.Get(c.db, stagingArea, blockHash)
	if err != nil {
		return 0, err
	}
	return data.BlueScore(), nil
}

// BlueWork implements Consensus.
func (c *consensus) BlueWork(blockHash *externalapi.DomainHash) (*uint256.Int, error) {
	stagingArea := model.NewStagingArea()
	data, err := c.ghostdagDataStore.Get(c.db, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return data.BlueWork(), nil
}

// IsStable implements Consensus.
func (c *consensus) IsStable(blockHash *externalapi.DomainHash) (bool, error) {
	stagingArea := model.NewStagingArea()
	return c.forkChoiceManager.IsStable(stagingArea, blockHash)
}

// PruningPoint implements Consensus.
func (c *consensus) PruningPoint() (*externalapi.DomainHash, error) {
	stagingArea := model.NewStagingArea()
	has, err := c.pruningPointStore.HasPruningPoint(c.db, stagingArea)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, errors.New("no pruning point has been recorded yet")
	}
	return c.pruningPointStore.PruningPoint(c.db, stagingArea)
}

// BuildBlockTemplate implements Consensus.
func (c *consensus) BuildBlockTemplate(coinbaseData *externalapi.DomainCoinbaseData,
	transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {
	return c.blockBuilder.BuildBlock(coinbaseData, transactions)
}

// VerifyProofOfWork implements Consensus.
func (c *consensus) VerifyProofOfWork(header *externalapi.DomainBlockHeader) error {
	return difficulty.CheckProofOfWork(header, c.dagParams.PowMax, c.dagParams.SkipProofOfWork)
}

// refreshPruningPoint recomputes the pruning point for the current
// canonical tip and persists it, so PruningPoint's queries don't each
// re-walk the selected-parent chain. Run after every successful insert
// that may have moved the tip.
func (c *consensus) refreshPruningPoint() error {
	stagingArea := model.NewStagingArea()
	tip, err := c.forkChoiceManager.CanonicalTip(stagingArea)
	if err != nil {
		return err
	}
	pruningPoint, err := c.pruningManager.PruningPoint(stagingArea, tip)
	if err != nil {
		return err
	}

	c.pruningPointStore.StagePruningPoint(stagingArea, pruningPoint)

	dbTx, err := c.db.Begin()
	if err != nil {
		return err
	}
	if err := stagingArea.Commit(dbTx); err != nil {
		return err
	}
	return dbTx.Commit()
}

// ensureGenesis seeds genesis's header, GHOSTDAG record, status,
// reachability record, and initial tip set the first time a database
// is used, matching the way blockprocessor_test.go's testHarness seeds
// it; a database that already carries genesis's header is left alone.
func (c *consensus) ensureGenesis(reachabilityManager model.ReachabilityManager,
	dagTopologyManager model.DAGTopologyManager, pruningPointStore model.PruningStore) error {

	stagingArea := model.NewStagingArea()
	has, err := c.headerStore.HasBlockHeader(c.db, stagingArea, c.dagParams.GenesisHash)
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	genesisHash := c.dagParams.GenesisHash
	genesisHeader := c.dagParams.GenesisBlock.Header

	c.headerStore.Stage(stagingArea, genesisHash, genesisHeader)
	c.ghostdagDataStore.Stage(stagingArea, genesisHash, &externalapi.BlockGHOSTDAGData{
		BlueScoreValue: 0,
		BlueWorkValue:  new(uint256.Int),
		DAAScoreValue:  0,
	})
	c.statusStore.Stage(stagingArea, genesisHash, externalapi.StatusValid)
	if err := dagTopologyManager.SetParents(stagingArea, genesisHash, []*externalapi.DomainHash{}); err != nil {
		return err
	}
	if err := dagTopologyManager.SetTips(stagingArea, []*externalapi.DomainHash{genesisHash}); err != nil {
		return err
	}

	initer, ok := reachabilityManager.(reachabilityIniter)
	if !ok {
		return errors.New("reachability manager does not support genesis initialization")
	}
	if err := initer.Init(stagingArea, genesisHash); err != nil {
		return err
	}

	pruningPointStore.StagePruningPoint(stagingArea, genesisHash)

	dbTx, err := c.db.Begin()
	if err != nil {
		return err
	}
	if err := stagingArea.Commit(dbTx); err != nil {
		return err
	}
	if err := dbTx.Commit(); err != nil {
		return err
	}

	log.Infof("seeded genesis %s for network %q", genesisHash, c.dagParams.Name)
	return nil
}
