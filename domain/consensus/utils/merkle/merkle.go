// Package merkle computes the hash_merkle_root commitment (spec.md
// §3.1, §4.6 step 7): the root of a binary merkle tree over a block's
// transaction identifiers. Transaction content and selection are out of
// scope (spec.md §1 Non-goals); this package only ever sees the opaque
// DomainTransaction.ID values the mempool layer supplies.
package merkle

import (
	"math"

	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/hashes"
	"github.com/pkg/errors"
)

// nextPowerOfTwo returns the next highest power of two from n, or n
// itself if it already is one.
func nextPowerOfTwo(n int) int {
	if n&(n-1) == 0 {
		return n
	}
	exponent := uint(math.Log2(float64(n))) + 1
	return 1 << exponent
}

// hashMerkleBranches hashes the concatenation of two sibling nodes.
func hashMerkleBranches(left, right *externalapi.DomainHash) *externalapi.DomainHash {
	w := hashes.NewHashWriter()
	if _, err := w.Write(left[:]); err != nil {
		panic(errors.Wrap(err, "this should never happen, HashWriter never returns an error"))
	}
	if _, err := w.Write(right[:]); err != nil {
		panic(errors.Wrap(err, "this should never happen, HashWriter never returns an error"))
	}
	return w.Finalize()
}

// CalculateHashMerkleRoot computes hash_merkle_root over a block's
// transaction ids. An empty transaction set yields the zero digest, per
// spec.md §3.1's table entry for hash_merkle_root.
func CalculateHashMerkleRoot(transactions []*externalapi.DomainTransaction) externalapi.DomainHash {
	if len(transactions) == 0 {
		return externalapi.DomainHash{}
	}
	ids := make([]*externalapi.DomainHash, len(transactions))
	for i, tx := range transactions {
		id := tx.ID
		ids[i] = &id
	}
	return *merkleRoot(ids)
}

// merkleRoot builds the tree as a linear array and returns its root.
func merkleRoot(leaves []*externalapi.DomainHash) *externalapi.DomainHash {
	nextPoT := nextPowerOfTwo(len(leaves))
	arraySize := nextPoT*2 - 1
	merkles := make([]*externalapi.DomainHash, arraySize)

	for i, hash := range leaves {
		merkles[i] = hash
	}

	offset := nextPoT
	for i := 0; i < arraySize-1; i += 2 {
		switch {
		case merkles[i] == nil:
			merkles[offset] = nil
		case merkles[i+1] == nil:
			merkles[offset] = hashMerkleBranches(merkles[i], merkles[i])
		default:
			merkles[offset] = hashMerkleBranches(merkles[i], merkles[i+1])
		}
		offset++
	}

	return merkles[len(merkles)-1]
}
