package consensus

import (
	"github.com/ghostdag-network/consensus/domain/consensus/datastructures/blockheaderstore"
	"github.com/ghostdag-network/consensus/domain/consensus/datastructures/blockrelationstore"
	"github.com/ghostdag-network/consensus/domain/consensus/datastructures/blockstatusstore"
	"github.com/ghostdag-network/consensus/domain/consensus/datastructures/ghostdagdatastore"
	"github.com/ghostdag-network/consensus/domain/consensus/datastructures/pruningstore"
	"github.com/ghostdag-network/consensus/domain/consensus/datastructures/reachabilitydatastore"
	"github.com/ghostdag-network/consensus/domain/consensus/datastructures/tipsstore"
	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/processes/blockbuilder"
	"github.com/ghostdag-network/consensus/domain/consensus/processes/blockprocessor"
	"github.com/ghostdag-network/consensus/domain/consensus/processes/blockvalidator"
	"github.com/ghostdag-network/consensus/domain/consensus/processes/dagtopologymanager"
	"github.com/ghostdag-network/consensus/domain/consensus/processes/difficultymanager"
	"github.com/ghostdag-network/consensus/domain/consensus/processes/forkchoice"
	"github.com/ghostdag-network/consensus/domain/consensus/processes/ghostdagmanager"
	"github.com/ghostdag-network/consensus/domain/consensus/processes/pruningmanager"
	"github.com/ghostdag-network/consensus/domain/consensus/processes/reachabilitymanager"
	"github.com/ghostdag-network/consensus/domain/consensus/processes/syncvalidator"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/constants"
	"github.com/ghostdag-network/consensus/domain/dagconfig"
	"github.com/ghostdag-network/consensus/infrastructure/db/database"
	"github.com/pkg/errors"
)

// storeCacheSize bounds the in-process LRU every cached store keeps in
// front of the database.
const storeCacheSize = 10_000

// Factory instantiates a Consensus over a database and a network's
// tunable parameters.
type Factory interface {
	NewConsensus(dagParams *dagconfig.Params, db database.Database) (Consensus, error)
}

type factory struct{}

// NewFactory returns a Factory.
func NewFactory() Factory {
	return &factory{}
}

// reachabilityIniter reaches reachabilityManager's genesis-seeding
// method, which is deliberately not part of model.ReachabilityManager:
// it's a bootstrap-only operation this package's own genesis wiring is
// the sole caller of.
type reachabilityIniter interface {
	Init(stagingArea *model.StagingArea, genesisHash *externalapi.DomainHash) error
}

// NewConsensus wires every store and process manager in the order the
// processes depend on each other, then seeds genesis if the database
// doesn't already carry it.
func (f *factory) NewConsensus(dagParams *dagconfig.Params, db database.Database) (Consensus, error) {
	// Data Structures
	headerStore, err := blockheaderstore.New(db, storeCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "creating header store")
	}
	relationStore := blockrelationstore.New(storeCacheSize)
	statusStore := blockstatusstore.New(storeCacheSize)
	ghostdagDataStore := ghostdagdatastore.New(storeCacheSize)
	reachabilityDataStore := reachabilitydatastore.New(storeCacheSize)
	tipsStore := tipsstore.New()
	pruningPointStore := pruningstore.New()

	// Processes
	reachabilityManager := reachabilitymanager.New(db, reachabilityDataStore)
	dagTopologyManager := dagtopologymanager.New(db, relationStore, reachabilityManager, tipsStore)
	ghostdagManager := ghostdagmanager.New(db, uint32(dagParams.K), dagTopologyManager, ghostdagDataStore, headerStore)
	difficultyManager := difficultymanager.New(db, headerStore, ghostdagDataStore, dagParams.GenesisHash,
		dagParams.DifficultyAdjustmentWindowSize, constants.MaxDAAWindowBlocks, dagParams.TargetTimePerBlockMilliseconds)
	pruningManager := pruningmanager.New(db, ghostdagDataStore, dagParams.GenesisHash,
		dagParams.PruningDepth, constants.MaxDAAWindowBlocks)
	blockValidator := blockvalidator.New(db, dagParams.GenesisHash, dagParams.PowMax, dagParams.SkipProofOfWork,
		headerStore, ghostdagDataStore, dagTopologyManager, ghostdagManager, difficultyManager, pruningManager)
	syncValidator := syncvalidator.New(blockValidator)
	forkChoiceManager := forkchoice.New(db, dagTopologyManager, ghostdagDataStore, dagParams.FinalityDepth)
	blockBuilder := blockbuilder.New(db, headerStore, ghostdagDataStore, forkChoiceManager,
		ghostdagManager, difficultyManager, pruningManager)
	blockProcessor := blockprocessor.New(db, headerStore, ghostdagDataStore, statusStore, dagTopologyManager,
		reachabilityManager, blockValidator, syncValidator, forkChoiceManager)

	c := &consensus{
		db:                db,
		dagParams:         dagParams,
		headerStore:       headerStore,
		ghostdagDataStore: ghostdagDataStore,
		statusStore:       statusStore,
		pruningPointStore: pruningPointStore,
		pruningManager:    pruningManager,
		forkChoiceManager: forkChoiceManager,
		blockBuilder:      blockBuilder,
		blockProcessor:    blockProcessor,
	}

	if err := c.ensureGenesis(reachabilityManager, dagTopologyManager, pruningPointStore); err != nil {
		return nil, errors.Wrap(err, "seeding genesis")
	}
	return c, nil
}
