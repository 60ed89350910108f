// Command consensusd is a minimal standalone daemon over the
// consensus core (spec.md §6.4 / [FULL-EXT]): it wires a Consensus via
// consensus.NewFactory() exactly as the teacher's kaspad.go wires a
// blockdag.BlockDAG, backed by a goleveldb database opened at
// --datadir. It carries no P2P, RPC, or mempool surface (those are out
// of this core's scope); --mine drives a local nonce search against
// BuildBlockTemplate so the wiring can be exercised end to end without
// a network.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghostdag-network/consensus/domain/consensus"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/consensushashing"
	"github.com/ghostdag-network/consensus/infrastructure/db/database/ldb"
	"github.com/ghostdag-network/consensus/infrastructure/logger"
	"github.com/ghostdag-network/consensus/internal/minerkey"
	"github.com/pkg/errors"
)

var log, _ = logger.Get(logger.SubsystemTags.CNFG)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "consensusd: %+v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := parseConfig()
	if err != nil {
		return err
	}

	logger.InitLogRotators(
		filepath.Join(cfg.LogDir, "consensusd.log"),
		filepath.Join(cfg.LogDir, "consensusd_err.log"),
	)
	if err := logger.ParseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return err
	}

	params, err := cfg.netParams()
	if err != nil {
		return err
	}
	log.Infof("starting consensusd on %s", params.Name)
	if cfg.SkipPoWVerification {
		log.Warnf("proof-of-work verification is disabled on %s", params.Name)
	}

	db, err := ldb.NewLevelDB(cfg.DataDir)
	if err != nil {
		return errors.Wrapf(err, "opening database at %s", cfg.DataDir)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Errorf("closing database: %+v", err)
		}
	}()

	c, err := consensus.NewFactory().NewConsensus(params, db)
	if err != nil {
		return errors.Wrap(err, "constructing consensus")
	}

	tip, err := c.Tip()
	if err != nil {
		return errors.Wrap(err, "querying tip")
	}
	log.Infof("current tip is %s", tip)

	if cfg.MineBlocks > 0 {
		if err := mine(c, cfg); err != nil {
			return errors.Wrap(err, "mining")
		}
	}
	return nil
}

// mine repeatedly builds a template over the current tip, searches for
// a satisfying nonce, and inserts the result, matching the teacher's
// cmd/kaspaminer mine loop but driving consensus.Consensus in-process
// instead of going over RPC, since there's no network surface here.
func mine(c consensus.Consensus, cfg *config) error {
	key, err := minerKey(cfg)
	if err != nil {
		return err
	}
	coinbaseData := &externalapi.DomainCoinbaseData{ScriptPublicKey: key.ScriptPublicKey()}

	for i := 0; i < cfg.MineBlocks; i++ {
		template, err := c.BuildBlockTemplate(coinbaseData, nil)
		if err != nil {
			return errors.Wrap(err, "building block template")
		}

		var nonce uint64
		for {
			template.Header.Nonce = nonce
			if err := c.VerifyProofOfWork(template.Header); err == nil {
				break
			}
			nonce++
		}

		blockHash, err := consensushashing.BlockHash(template)
		if err != nil {
			return errors.Wrap(err, "hashing mined block")
		}

		if _, err := c.AddBlock(template); err != nil {
			return errors.Wrapf(err, "adding mined block %s", blockHash)
		}
		log.Infof("mined block %d/%d: %s (blue score %d)",
			i+1, cfg.MineBlocks, blockHash, template.Header.BlueScore)
	}
	return nil
}

func minerKey(cfg *config) (*minerkey.Key, error) {
	if cfg.MinerKey != "" {
		return minerkey.Load(cfg.MinerKey)
	}
	return minerkey.Generate()
}
