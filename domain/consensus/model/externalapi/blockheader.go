package externalapi

import "github.com/holiman/uint256"

// DomainBlockHeader exposes the header fields that participate in
// consensus. It is immutable once constructed; every field here is
// either supplied by the block's creator (version, parents, merkle root,
// timestamp, bits, nonce, extra nonce, miner) or computed authoritatively
// by the classifier and committed into the header (blue score, blue
// work, DAA score, pruning point).
type DomainBlockHeader struct {
	Version uint8

	// ParentsByLevel holds, for each reachability level (level 0 first),
	// the ordered set of parent block hashes at that level. The current
	// protocol only populates level 0.
	ParentsByLevel [][]*DomainHash

	HashMerkleRoot       DomainHash
	AcceptedIDMerkleRoot DomainHash
	UTXOCommitment       DomainHash

	// TimeInMilliseconds is the block's timestamp, milliseconds since
	// the Unix epoch.
	TimeInMilliseconds int64

	Bits       uint32
	Nonce      uint64
	ExtraNonce [ExtraNonceSize]byte
	Miner      []byte

	BlueScore    uint64
	BlueWork     *uint256.Int
	DAAScore     uint64
	PruningPoint DomainHash
}

// ExtraNonceSize is the number of raw bytes reserved for extra PoW search
// space, matching spec.md's EXTRA_NONCE_SIZE.
const ExtraNonceSize = 32

// ParentHashes returns the level-0 parent hashes, the only level the
// current protocol version populates.
func (h *DomainBlockHeader) ParentHashes() []*DomainHash {
	if len(h.ParentsByLevel) == 0 {
		return nil
	}
	return h.ParentsByLevel[0]
}

// Clone returns a deep copy of the header.
func (h *DomainBlockHeader) Clone() *DomainBlockHeader {
	clone := *h
	clone.ParentsByLevel = make([][]*DomainHash, len(h.ParentsByLevel))
	for i, level := range h.ParentsByLevel {
		clone.ParentsByLevel[i] = CloneHashes(level)
	}
	if h.BlueWork != nil {
		clone.BlueWork = new(uint256.Int).Set(h.BlueWork)
	}
	if h.Miner != nil {
		clone.Miner = append([]byte(nil), h.Miner...)
	}
	return &clone
}

// DomainCoinbaseData is the opaque payload a miner attaches to the
// coinbase transaction of a template. Transaction construction itself is
// outside the consensus core's scope (§1); this type only exists so
// BuildBlockTemplate has something to pass through to the external
// mempool/coinbase collaborator.
type DomainCoinbaseData struct {
	ScriptPublicKey []byte
	ExtraData       []byte
}

// DomainTransaction is an opaque handle on a transaction, used only to
// compute merkle roots; transaction structure and validity are out of
// scope (§1).
type DomainTransaction struct {
	ID DomainHash
}

// DomainBlock is a header plus its transaction set.
type DomainBlock struct {
	Header       *DomainBlockHeader
	Transactions []*DomainTransaction
}
