// Package consensushashing derives the two hash identities spec.md §3.2
// defines over a header: block_id = H(serialized header) and pow_hash,
// the nonce-sensitive digest the PoW check verifies against the target.
package consensushashing

import (
	"encoding/binary"

	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/consensusserialization"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/hashes"
)

// HeaderHash computes block_id = H(serialize_header(header)). This is
// the block's identity hash: the key every store indexes by, and the
// value every parent reference names (spec.md §3.2).
func HeaderHash(header *externalapi.DomainBlockHeader) (*externalapi.DomainHash, error) {
	serialized, err := consensusserialization.SerializeHeader(header)
	if err != nil {
		return nil, err
	}
	return hashes.DoubleHash(serialized), nil
}

// BlockHash is an alias over a full block's header, for call sites that
// hold a DomainBlock rather than a bare header.
func BlockHash(block *externalapi.DomainBlock) (*externalapi.DomainHash, error) {
	return HeaderHash(block.Header)
}

// PoWHash computes the nonce-sensitive digest the proof-of-work check
// verifies against the block's target: P(header_without_nonce ||
// nonce_le || extra_nonce). It is black-boxed behind this function so a
// future PoW-function swap (spec.md design note #4) never touches a
// call site. The domain-separation prefix keeps this digest from ever
// colliding with a block identity hash computed by HeaderHash.
func PoWHash(header *externalapi.DomainBlockHeader) (*externalapi.DomainHash, error) {
	headerWithoutNonce := header.Clone()
	headerWithoutNonce.Nonce = 0

	serialized, err := consensusserialization.SerializeHeader(headerWithoutNonce)
	if err != nil {
		return nil, err
	}

	w := hashes.NewHashWriter()
	_, _ = w.Write([]byte("POW"))
	_, _ = w.Write(serialized)

	var nonceBytes [8]byte
	binary.LittleEndian.PutUint64(nonceBytes[:], header.Nonce)
	_, _ = w.Write(nonceBytes[:])

	_, _ = w.Write(header.ExtraNonce[:])

	return w.Finalize(), nil
}
