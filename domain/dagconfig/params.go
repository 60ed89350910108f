// Package dagconfig carries the network-tunable parameters a consensus
// instance is configured with: K, genesis, PoW limit, target block
// time, and the DAA/finality window sizes (spec.md §3.3). Protocol
// parameters that are NOT network-tunable live in
// domain/consensus/utils/constants instead.
//
// Trimmed from the teacher's domain/dagconfig/params.go: network magic
// bytes, RPC port, DNS seeds, address-prefix/WIF fields, and the
// consensus-rule-change voting thresholds are all P2P/RPC/wallet
// concerns out of scope here (§1).
package dagconfig

import (
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// KType is the GHOSTDAG K parameter's type: the maximum permitted
// blue-anticone size of any blue block in a mergeset.
type KType uint32

// Params defines a GHOSTDAG network's tunable parameters.
type Params struct {
	// K is the GHOSTDAG blue-anticone size bound.
	K KType

	// Name is a human-readable network identifier.
	Name string

	// GenesisBlock is the first block of the DAG.
	GenesisBlock *externalapi.DomainBlock

	// GenesisHash is the genesis block's id.
	GenesisHash *externalapi.DomainHash

	// PowMax is the easiest permitted proof-of-work target, encoded in
	// compact ("bits") form (spec.md §4.1).
	PowMax uint32

	// TargetTimePerBlockMilliseconds is the desired time between
	// consecutive blocks on the selected-parent chain.
	TargetTimePerBlockMilliseconds int64

	// DifficultyAdjustmentWindowSize is the number of blocks inspected
	// to compute a block's required difficulty (spec.md §4.4
	// DAA_WINDOW_SIZE).
	DifficultyAdjustmentWindowSize uint64

	// TimestampDeviationToleranceMilliseconds is a per-network
	// future-timestamp tolerance. No validation step in this core reads
	// it: block timestamps are checked only against their parents'
	// timestamps (spec.md §4.6).
	TimestampDeviationToleranceMilliseconds int64

	// FinalityDepth is the blue-score distance behind the canonical tip
	// at which a block is considered stable/final (spec.md §4.8
	// STABLE_LIMIT). Global and identical across every registered
	// network; it is a Params field only so forkchoice.New can be
	// handed one number without reaching into domain/consensus/utils/constants.
	// Named FinalityDepth rather than FinalityDuration, since finality
	// here is defined over blue score, not wall-clock time.
	FinalityDepth uint64

	// PruningDepth is the blue-score distance behind a block's selected
	// parent at which that block's pruning point is chosen (spec.md
	// §4.9).
	PruningDepth uint64

	// SkipProofOfWork disables the pow_hash < target comparison; the
	// bits range checks (nonzero, within PowMax) still run. Only ever true
	// for Simnet/Devnet-style private test networks; gated at startup
	// so it can never apply to Mainnet (spec.md §9 unsafe debug flags).
	SkipProofOfWork bool
}

// ghostdagK mirrors constants.GHOSTDAGK, and finalityDepth/pruningDepth
// mirror constants.StableLimit/constants.PruningDepthMultiplier*StableLimit,
// duplicated rather than imported so dagconfig stays free of the broader
// domain/consensus import tree and usable standalone from cmd/.
//
// finalityDepth is the same 20 on every registered network: spec.md:95
// fixes STABLE_LIMIT as a global, non-tunable parameter, not something
// a network's Params should be free to override.
const (
	ghostdagK                      = 10
	difficultyAdjustmentWindowSize = 2016
	timestampDeviationToleranceMS  = 132_000
	targetTimePerBlockMilliseconds = 1000
	finalityDepth                  = 20
	pruningDepth                   = 10 * finalityDepth
)

// MainnetParams defines the main network.
var MainnetParams = Params{
	K:                                       ghostdagK,
	Name:                                    "ghostdag-mainnet",
	GenesisBlock:                            &genesisBlock,
	GenesisHash:                             &genesisHash,
	PowMax:                                  0x1e7fffff,
	TargetTimePerBlockMilliseconds:          targetTimePerBlockMilliseconds,
	DifficultyAdjustmentWindowSize:          difficultyAdjustmentWindowSize,
	TimestampDeviationToleranceMilliseconds: timestampDeviationToleranceMS,
	FinalityDepth:                           finalityDepth,
	PruningDepth:                            pruningDepth,
	SkipProofOfWork:                         false,
}

// TestnetParams defines the public test network: same rules as
// Mainnet, with an easier PoW limit so test blocks are cheap to mine.
var TestnetParams = Params{
	K:                                       ghostdagK,
	Name:                                    "ghostdag-testnet",
	GenesisBlock:                            &testnetGenesisBlock,
	GenesisHash:                             &testnetGenesisHash,
	PowMax:                                  0x1f00ffff,
	TargetTimePerBlockMilliseconds:          targetTimePerBlockMilliseconds,
	DifficultyAdjustmentWindowSize:          difficultyAdjustmentWindowSize,
	TimestampDeviationToleranceMilliseconds: timestampDeviationToleranceMS,
	FinalityDepth:                           finalityDepth,
	PruningDepth:                            pruningDepth,
	SkipProofOfWork:                         false,
}

// DevnetParams defines the local development network: PoW is
// deterministic (SkipProofOfWork) so a single node can produce blocks
// without hashpower.
var DevnetParams = Params{
	K:                                       ghostdagK,
	Name:                                    "ghostdag-devnet",
	GenesisBlock:                            &devnetGenesisBlock,
	GenesisHash:                             &devnetGenesisHash,
	PowMax:                                  0x207fffff,
	TargetTimePerBlockMilliseconds:          targetTimePerBlockMilliseconds,
	DifficultyAdjustmentWindowSize:          difficultyAdjustmentWindowSize,
	TimestampDeviationToleranceMilliseconds: timestampDeviationToleranceMS,
	FinalityDepth:                           finalityDepth,
	PruningDepth:                            pruningDepth,
	SkipProofOfWork:                         true,
}

// ErrDuplicateNetwork is returned by Register when the given network
// name is already registered.
var ErrDuplicateNetwork = errors.New("duplicate network")

var registeredNetworks = make(map[string]*Params)

// Register adds params to the network registry under its Name so that
// cmd/consensusd can look networks up by a CLI flag. Mainnet, Testnet,
// and Devnet are registered automatically on package init.
func Register(params *Params) error {
	if _, ok := registeredNetworks[params.Name]; ok {
		return ErrDuplicateNetwork
	}
	registeredNetworks[params.Name] = params
	return nil
}

// Lookup returns the registered Params for name, or nil if unregistered.
func Lookup(name string) *Params {
	return registeredNetworks[name]
}

func mustRegister(params *Params) {
	if err := Register(params); err != nil {
		panic("dagconfig: " + err.Error())
	}
}

func init() {
	mustRegister(&MainnetParams)
	mustRegister(&TestnetParams)
	mustRegister(&DevnetParams)
}
