// Package constants holds the protocol-wide parameters of spec.md §3.3
// that are not network-tunable. Network-tunable parameters (genesis,
// PoW limit, target block time) live in domain/dagconfig.
package constants

const (
	// GHOSTDAGK is the maximum permitted blue-anticone size of any blue
	// block in a block's mergeset.
	GHOSTDAGK = 10

	// MaxBlockParents is the maximum number of parents a block may
	// reference at reachability level 0 (spec.md TIPS_LIMIT).
	MaxBlockParents = 32

	// MaxParentLevels is the hard cap on the number of reachability
	// levels a header's ParentsByLevel may carry.
	MaxParentLevels = 64

	// DAAWindowSize is the number of blocks in the difficulty
	// adjustment window.
	DAAWindowSize = 2016

	// MaxDAAWindowBlocks hard-caps the number of blocks visited while
	// constructing a DAA window, bounding the CPU/IO cost of
	// validating a single header (spec.md DoS note, §4.4/§5).
	MaxDAAWindowBlocks = DAAWindowSize * 3

	// MergeSetSizeLimit bounds the number of blocks a single block may
	// merge, protecting GHOSTDAG classification from unbounded work.
	MergeSetSizeLimit = GHOSTDAGK * 10

	// StableLimit is the blue-score distance behind the canonical tip at
	// which a block is considered final (spec.md §4.8 STABLE_LIMIT).
	// Global and non-tunable, unlike the network-specific parameters in
	// domain/dagconfig: every registered network shares one finality
	// threshold.
	StableLimit = 20

	// PruningDepthMultiplier scales StableLimit into PruningDepth, the
	// blue-score distance behind a block's selected parent at which that
	// block's pruning point is chosen (spec.md §4.9). Pruning must
	// stay strictly behind finality, so this must be > 1.
	PruningDepthMultiplier = 10

	// BlockVersion is the only header version accepted by the current
	// protocol. Version gating (spec.md §4.6 step 1) is keyed off
	// blue_score so that a future version can be rolled out at a fixed
	// activation score; today there is exactly one.
	BlockVersion = 1

	// MaxBlockSize is the maximum size, in bytes, of a block counted as
	// its serialized header plus 32 bytes per transaction id.
	MaxBlockSize = 1_000_000
)
