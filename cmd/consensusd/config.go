package main

import (
	"github.com/ghostdag-network/consensus/domain/dagconfig"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

const (
	defaultDataDir    = "consensusd_data"
	defaultLogDir     = "consensusd_logs"
	defaultDebugLevel = "info"
)

// config holds cmd/consensusd's parsed flags (spec.md §6.4). Gating of
// the three debug-bypass flags against network identity happens in
// parseConfig, not here, matching spec.md §5 "Admission of debug
// bypasses": a warning log is not sufficient gating, so an invalid
// combination must fail before a Consensus is ever constructed.
type config struct {
	Network string `long:"network" description:"Network to run: mainnet, testnet, or devnet" default:"mainnet"`

	SkipPoWVerification               bool `long:"skip-pow-verification" description:"Devnet only: accept blocks whose proof of work was not checked"`
	SkipBlockTemplateTxsVerification  bool `long:"skip-block-template-txs-verification" description:"Devnet only: accept a block template without verifying its transactions"`
	AllowFastSync                     bool `long:"allow-fast-sync" description:"Trust a remote pruning point instead of validating the DAG back to genesis"`
	IAcknowledgeFastSyncRisk          bool `long:"i-acknowledge-fast-sync-risk" description:"Required alongside --allow-fast-sync on mainnet/testnet"`

	DataDir    string `long:"datadir" description:"Directory to store the block DAG database" default:"consensusd_data"`
	LogDir     string `long:"logdir" description:"Directory to log output" default:"consensusd_logs"`
	DebugLevel string `long:"debuglevel" description:"Logging level for all subsystems: trace, debug, info, warn, error, critical" default:"info"`

	MineBlocks int    `long:"mine" description:"Mine this many blocks on top of the current tip, then exit"`
	MinerKey   string `long:"miner-key" description:"Hex-encoded miner private key; a fresh one is generated if omitted"`
}

func parseConfig() (*config, error) {
	cfg := &config{
		Network:    "mainnet",
		DataDir:    defaultDataDir,
		LogDir:     defaultLogDir,
		DebugLevel: defaultDebugLevel,
	}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// baseParams maps the short --network names this CLI accepts to the
// registered Params, whose own Name field ("ghostdag-mainnet" and so
// on) is what dagconfig.Register/Lookup key off of, not these flag
// values.
func (cfg *config) baseParams() (*dagconfig.Params, error) {
	switch cfg.Network {
	case "mainnet":
		return &dagconfig.MainnetParams, nil
	case "testnet":
		return &dagconfig.TestnetParams, nil
	case "devnet":
		return &dagconfig.DevnetParams, nil
	default:
		return nil, errors.Errorf("unknown network %q: must be mainnet, testnet, or devnet", cfg.Network)
	}
}

// validate enforces spec.md §5's "Admission of debug bypasses": every
// flag that bypasses PoW, body validation, or chain validity refuses
// startup outright on a non-development network. It never just logs a
// warning.
func (cfg *config) validate() error {
	if _, err := cfg.baseParams(); err != nil {
		return err
	}

	isDevnet := cfg.Network == "devnet"
	if cfg.SkipPoWVerification && !isDevnet {
		return errors.New("--skip-pow-verification is only admissible on devnet")
	}
	if cfg.SkipBlockTemplateTxsVerification && !isDevnet {
		return errors.New("--skip-block-template-txs-verification is only admissible on devnet")
	}
	if cfg.AllowFastSync && !isDevnet && !cfg.IAcknowledgeFastSyncRisk {
		return errors.Errorf("--allow-fast-sync on %s requires --i-acknowledge-fast-sync-risk", cfg.Network)
	}
	if cfg.MineBlocks < 0 {
		return errors.New("--mine may not be negative")
	}
	return nil
}

// netParams returns this run's Params, cloned so that applying cfg's
// debug overrides never mutates the package-level
// dagconfig.MainnetParams/TestnetParams/DevnetParams values shared by
// every other caller in the process.
func (cfg *config) netParams() (*dagconfig.Params, error) {
	base, err := cfg.baseParams()
	if err != nil {
		return nil, err
	}
	params := *base
	if cfg.SkipPoWVerification {
		params.SkipProofOfWork = true
	}
	return &params, nil
}
