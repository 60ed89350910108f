// Package consensusserialization implements the canonical, fallible
// binary encoding of a block header (spec.md §4.1, C1, and §6.3's
// bit-exact wire/disk format). Every decode path here returns an error
// instead of panicking: this is ingress-facing code, and spec.md §7
// forbids converting a data error sourced from an ingress point into a
// process abort.
package consensusserialization

import (
	"encoding/binary"

	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/ruleerrors"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/constants"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// validateParentStructure enforces the level-count bound and level 0's
// tips bound that MUST hold before a header's bytes are ever materialized
// (spec.md §4.1 "parent-level validation before serialization"). An
// empty level 0 is structurally legal here: it's how the genesis block
// is represented. Whether a non-genesis block is allowed zero parents
// is a consensus rule, not a codec one, and is enforced by
// blockvalidator instead.
func validateParentStructure(parentsByLevel [][]*externalapi.DomainHash) error {
	if len(parentsByLevel) == 0 || len(parentsByLevel) > constants.MaxParentLevels {
		return ruleerrors.New(ruleerrors.ErrInvalidParentsLevelCount,
			"parents_by_level has %d levels, must be in [1, %d]", len(parentsByLevel), constants.MaxParentLevels)
	}
	level0 := parentsByLevel[0]
	if len(level0) > constants.MaxBlockParents {
		return ruleerrors.New(ruleerrors.ErrInvalidTipsCount,
			"level 0 has %d parents, must be at most %d", len(level0), constants.MaxBlockParents)
	}
	return nil
}

// SerializeHeader produces the canonical encoding of h. Field order and
// widths are normative (spec.md §6.3): a single version byte; the level
// list as [levelCount byte][ [parentCount uint16-LE][hash...] ...]; the
// three 32-byte commitment digests; an 8-byte LE millisecond timestamp;
// a 4-byte LE compact bits; an 8-byte LE nonce; 32 raw extra-nonce
// bytes; a length-prefixed miner public key; and the classifier-computed
// fields (blue score, blue work as 32 big-endian bytes, DAA score,
// pruning point).
func SerializeHeader(h *externalapi.DomainBlockHeader) ([]byte, error) {
	if err := validateParentStructure(h.ParentsByLevel); err != nil {
		return nil, err
	}

	size := 1 + 1
	for _, level := range h.ParentsByLevel {
		size += 2 + len(level)*externalapi.DomainHashSize
	}
	size += 3*externalapi.DomainHashSize + 8 + 4 + 8 + constants.ExtraNonceSize
	size += 2 + len(h.Miner)
	size += 8 + 32 + 8 + externalapi.DomainHashSize

	buf := make([]byte, size)
	offset := 0

	buf[offset] = h.Version
	offset++

	buf[offset] = byte(len(h.ParentsByLevel))
	offset++
	for _, level := range h.ParentsByLevel {
		binary.LittleEndian.PutUint16(buf[offset:], uint16(len(level)))
		offset += 2
		for _, parent := range level {
			copy(buf[offset:], parent[:])
			offset += externalapi.DomainHashSize
		}
	}

	copy(buf[offset:], h.HashMerkleRoot[:])
	offset += externalapi.DomainHashSize
	copy(buf[offset:], h.AcceptedIDMerkleRoot[:])
	offset += externalapi.DomainHashSize
	copy(buf[offset:], h.UTXOCommitment[:])
	offset += externalapi.DomainHashSize

	binary.LittleEndian.PutUint64(buf[offset:], uint64(h.TimeInMilliseconds))
	offset += 8
	binary.LittleEndian.PutUint32(buf[offset:], h.Bits)
	offset += 4
	binary.LittleEndian.PutUint64(buf[offset:], h.Nonce)
	offset += 8
	copy(buf[offset:], h.ExtraNonce[:])
	offset += constants.ExtraNonceSize

	binary.LittleEndian.PutUint16(buf[offset:], uint16(len(h.Miner)))
	offset += 2
	copy(buf[offset:], h.Miner)
	offset += len(h.Miner)

	binary.LittleEndian.PutUint64(buf[offset:], h.BlueScore)
	offset += 8
	blueWork := h.BlueWork
	if blueWork == nil {
		blueWork = new(uint256.Int)
	}
	blueWorkBytes := blueWork.Bytes32()
	copy(buf[offset:], blueWorkBytes[:])
	offset += 32
	binary.LittleEndian.PutUint64(buf[offset:], h.DAAScore)
	offset += 8
	copy(buf[offset:], h.PruningPoint[:])
	offset += externalapi.DomainHashSize

	return buf, nil
}

// DeserializeHeader parses the canonical encoding produced by
// SerializeHeader. It fails fast, and without panicking, on truncated
// input or out-of-range counts.
func DeserializeHeader(data []byte) (*externalapi.DomainBlockHeader, error) {
	r := &reader{data: data}

	version, err := r.readByte()
	if err != nil {
		return nil, err
	}

	levelCount, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if levelCount == 0 || int(levelCount) > constants.MaxParentLevels {
		return nil, ruleerrors.New(ruleerrors.ErrInvalidParentsLevelCount,
			"parents_by_level has %d levels, must be in [1, %d]", levelCount, constants.MaxParentLevels)
	}

	parentsByLevel := make([][]*externalapi.DomainHash, levelCount)
	for i := 0; i < int(levelCount); i++ {
		count, err := r.readUint16()
		if err != nil {
			return nil, err
		}
		level := make([]*externalapi.DomainHash, count)
		for j := 0; j < int(count); j++ {
			hash, err := r.readHash()
			if err != nil {
				return nil, err
			}
			level[j] = hash
		}
		parentsByLevel[i] = level
	}

	hashMerkleRoot, err := r.readHash()
	if err != nil {
		return nil, err
	}
	acceptedIDMerkleRoot, err := r.readHash()
	if err != nil {
		return nil, err
	}
	utxoCommitment, err := r.readHash()
	if err != nil {
		return nil, err
	}

	timestamp, err := r.readUint64()
	if err != nil {
		return nil, err
	}
	bits, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	nonce, err := r.readUint64()
	if err != nil {
		return nil, err
	}
	extraNonceBytes, err := r.readBytes(constants.ExtraNonceSize)
	if err != nil {
		return nil, err
	}

	minerLen, err := r.readUint16()
	if err != nil {
		return nil, err
	}
	miner, err := r.readBytes(int(minerLen))
	if err != nil {
		return nil, err
	}

	blueScore, err := r.readUint64()
	if err != nil {
		return nil, err
	}
	blueWorkBytes, err := r.readBytes(32)
	if err != nil {
		return nil, err
	}
	daaScore, err := r.readUint64()
	if err != nil {
		return nil, err
	}
	pruningPoint, err := r.readHash()
	if err != nil {
		return nil, err
	}

	var extraNonce [constants.ExtraNonceSize]byte
	copy(extraNonce[:], extraNonceBytes)

	blueWork := new(uint256.Int).SetBytes(blueWorkBytes)

	header := &externalapi.DomainBlockHeader{
		Version:              version,
		ParentsByLevel:       parentsByLevel,
		HashMerkleRoot:       *hashMerkleRoot,
		AcceptedIDMerkleRoot: *acceptedIDMerkleRoot,
		UTXOCommitment:       *utxoCommitment,
		TimeInMilliseconds:   int64(timestamp),
		Bits:                 bits,
		Nonce:                nonce,
		ExtraNonce:           extraNonce,
		Miner:                miner,
		BlueScore:            blueScore,
		BlueWork:             blueWork,
		DAAScore:             daaScore,
		PruningPoint:         *pruningPoint,
	}

	if err := validateParentStructure(header.ParentsByLevel); err != nil {
		return nil, err
	}

	return header, nil
}

type reader struct {
	data   []byte
	offset int
}

func (r *reader) need(n int) error {
	if r.offset+n > len(r.data) {
		return ruleerrors.New(ruleerrors.ErrInvalidEncoding, "unexpected end of header bytes")
	}
	return nil
}

func (r *reader) readByte() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.data[r.offset]
	r.offset++
	return b, nil
}

func (r *reader) readBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Errorf("negative read length %d", n)
	}
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, r.data[r.offset:r.offset+n])
	r.offset += n
	return b, nil
}

func (r *reader) readHash() (*externalapi.DomainHash, error) {
	b, err := r.readBytes(externalapi.DomainHashSize)
	if err != nil {
		return nil, err
	}
	return externalapi.NewDomainHashFromByteSlice(b)
}

func (r *reader) readUint16() (uint16, error) {
	b, err := r.readBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) readUint32() (uint32, error) {
	b, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) readUint64() (uint64, error) {
	b, err := r.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}
