package externalapi

import "github.com/holiman/uint256"

// BlockGHOSTDAGData is the classifier's output for a single block,
// stored alongside its header (spec.md §3.1 "Ghostdag record").
type BlockGHOSTDAGData struct {
	SelectedParent *DomainHash

	// MergeSetBlues is ordered: selected parent first, then the rest of
	// the mergeset blues in the order they were classified.
	MergeSetBlues []*DomainHash
	MergeSetReds  []*DomainHash

	// BluesAnticoneSizes maps every blue block in MergeSetBlues to its
	// blue-anticone size contribution, bounded by GHOSTDAG_K.
	BluesAnticoneSizes map[DomainHash]uint32

	BlueScoreValue uint64
	BlueWorkValue  *uint256.Int
	DAAScoreValue  uint64
}

// BlueScore returns the block's blue score.
func (d *BlockGHOSTDAGData) BlueScore() uint64 { return d.BlueScoreValue }

// BlueWork returns the block's cumulative blue work.
func (d *BlockGHOSTDAGData) BlueWork() *uint256.Int { return d.BlueWorkValue }

// DAAScore returns the block's DAA score.
func (d *BlockGHOSTDAGData) DAAScore() uint64 { return d.DAAScoreValue }

// Clone returns a deep copy.
func (d *BlockGHOSTDAGData) Clone() *BlockGHOSTDAGData {
	clone := &BlockGHOSTDAGData{
		SelectedParent: d.SelectedParent.Clone(),
		MergeSetBlues:  CloneHashes(d.MergeSetBlues),
		MergeSetReds:   CloneHashes(d.MergeSetReds),
		BlueScoreValue: d.BlueScoreValue,
		BlueWorkValue:  new(uint256.Int).Set(d.BlueWorkValue),
		DAAScoreValue:  d.DAAScoreValue,
	}
	clone.BluesAnticoneSizes = make(map[DomainHash]uint32, len(d.BluesAnticoneSizes))
	for hash, size := range d.BluesAnticoneSizes {
		clone.BluesAnticoneSizes[hash] = size
	}
	return clone
}

// BlockStatus describes where a block is in the validation/acceptance
// lifecycle. Trimmed from the teacher's five-state enum down to the
// three states that still apply once mempool/UTXO application is out of
// scope (§1): a header may arrive before its body during chain sync, a
// block may be fully valid, or it may be known-invalid.
type BlockStatus byte

const (
	// StatusHeaderOnly means only the header has been validated and
	// stored (chain-sync, §4.7); the body hasn't arrived yet.
	StatusHeaderOnly BlockStatus = iota
	// StatusValid means the block passed the full C6 pipeline.
	StatusValid
	// StatusInvalid means the block failed validation and is cached so
	// it isn't re-validated if offered again.
	StatusInvalid
)

func (s BlockStatus) String() string {
	switch s {
	case StatusHeaderOnly:
		return "header-only"
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// SelectedParentChainChanges reports the blocks added to and removed
// from the selected-parent chain by a single AddBlock call, so an
// external transaction executor can know which blocks newly entered
// canonical order (§6.1).
type SelectedParentChainChanges struct {
	Added   []*DomainHash
	Removed []*DomainHash
}

// BlockInsertionResult is returned by a successful AddBlock call.
type BlockInsertionResult struct {
	SelectedParentChainChanges *SelectedParentChainChanges
}
