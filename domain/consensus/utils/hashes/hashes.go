// Package hashes provides the hash primitives consensus uses to derive
// block identities (H) and merkle roots, and the deterministic ordering
// comparator used to break ties on equal blue work.
package hashes

import (
	"crypto/sha256"

	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
)

// HashWriter incrementally hashes bytes with the block-identity hash
// function H (double SHA-256, matching the teacher's daghash.DoubleHashP
// convention), and finalizes to a DomainHash.
type HashWriter struct {
	inner [sha256.Size]byte
	buf   []byte
}

// NewHashWriter returns a HashWriter ready to accept data.
func NewHashWriter() *HashWriter {
	return &HashWriter{}
}

// Write appends data to the writer. It never returns an error.
func (w *HashWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// Finalize computes H over everything written so far.
func (w *HashWriter) Finalize() *externalapi.DomainHash {
	first := sha256.Sum256(w.buf)
	second := sha256.Sum256(first[:])
	hash := externalapi.DomainHash(second)
	return &hash
}

// DoubleHash computes double SHA-256 over data directly.
func DoubleHash(data []byte) *externalapi.DomainHash {
	w := NewHashWriter()
	_, _ = w.Write(data)
	return w.Finalize()
}

// Less reports whether a should be ordered before b. Exposed here (in
// addition to externalapi.Less) because sort call sites in this repo
// import hashes, not externalapi, matching the teacher's layering.
func Less(a, b *externalapi.DomainHash) bool {
	return externalapi.Less(a, b)
}
