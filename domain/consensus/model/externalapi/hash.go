package externalapi

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// DomainHashSize of array used to store hashes.
const DomainHashSize = 32

// DomainHash is the domain representation of a block identity hash.
type DomainHash [DomainHashSize]byte

// String returns the hash as the hexadecimal string of the hash.
func (hash DomainHash) String() string {
	return hex.EncodeToString(hash[:])
}

// Clone clones the hash.
func (hash *DomainHash) Clone() *DomainHash {
	hashClone := *hash
	return &hashClone
}

// Equal returns whether hash equals to other.
func (hash *DomainHash) Equal(other *DomainHash) bool {
	if hash == nil || other == nil {
		return hash == other
	}
	return *hash == *other
}

// Less returns true if hash is lexicographically less than other. Used for
// the ascending-id tie-break in selected-parent choice and fork choice.
func Less(hash, other *DomainHash) bool {
	for i := 0; i < DomainHashSize; i++ {
		if hash[i] != other[i] {
			return hash[i] < other[i]
		}
	}
	return false
}

// HashesEqual returns whether the given hash slices are equal.
func HashesEqual(a, b []*DomainHash) bool {
	if len(a) != len(b) {
		return false
	}
	for i, hash := range a {
		if !hash.Equal(b[i]) {
			return false
		}
	}
	return true
}

// CloneHashes clones a slice of hashes.
func CloneHashes(hashes []*DomainHash) []*DomainHash {
	clone := make([]*DomainHash, len(hashes))
	for i, hash := range hashes {
		clone[i] = hash.Clone()
	}
	return clone
}

// NewDomainHashFromByteSlice constructs a DomainHash from a byte slice. It
// fails with an "invalid hash length" error if the slice isn't exactly
// DomainHashSize bytes long.
func NewDomainHashFromByteSlice(data []byte) (*DomainHash, error) {
	if len(data) != DomainHashSize {
		return nil, errors.Errorf("invalid hash length: expected %d, got %d", DomainHashSize, len(data))
	}
	var hash DomainHash
	copy(hash[:], data)
	return &hash, nil
}
