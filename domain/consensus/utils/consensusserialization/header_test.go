package consensusserialization_test

import (
	"testing"

	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/ruleerrors"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/consensusserialization"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/constants"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

func sampleHeader(parents []*externalapi.DomainHash) *externalapi.DomainBlockHeader {
	return &externalapi.DomainBlockHeader{
		Version:              constants.BlockVersion,
		ParentsByLevel:       [][]*externalapi.DomainHash{parents},
		HashMerkleRoot:       externalapi.DomainHash{0x01},
		AcceptedIDMerkleRoot: externalapi.DomainHash{},
		UTXOCommitment:       externalapi.DomainHash{},
		TimeInMilliseconds:   1_700_000_000_000,
		Bits:                 0x1e7fffff,
		Nonce:                424242,
		Miner:                []byte("miner-pubkey"),
		BlueScore:             7,
		BlueWork:              uint256.NewInt(12345),
		DAAScore:              7,
		PruningPoint:          externalapi.DomainHash{0x02},
	}
}

func TestSerializeHeaderRoundTrips(t *testing.T) {
	parentA := externalapi.DomainHash{0x10}
	parentB := externalapi.DomainHash{0x20}
	header := sampleHeader([]*externalapi.DomainHash{&parentA, &parentB})

	serialized, err := consensusserialization.SerializeHeader(header)
	if err != nil {
		t.Fatalf("SerializeHeader: %+v", err)
	}

	decoded, err := consensusserialization.DeserializeHeader(serialized)
	if err != nil {
		t.Fatalf("DeserializeHeader: %+v", err)
	}

	if decoded.Version != header.Version {
		t.Fatalf("Version: got %d, want %d", decoded.Version, header.Version)
	}
	if !externalapi.HashesEqual(decoded.ParentHashes(), header.ParentHashes()) {
		t.Fatalf("ParentHashes: got %v, want %v", decoded.ParentHashes(), header.ParentHashes())
	}
	if decoded.HashMerkleRoot != header.HashMerkleRoot {
		t.Fatalf("HashMerkleRoot mismatch")
	}
	if decoded.TimeInMilliseconds != header.TimeInMilliseconds {
		t.Fatalf("TimeInMilliseconds: got %d, want %d", decoded.TimeInMilliseconds, header.TimeInMilliseconds)
	}
	if decoded.Bits != header.Bits {
		t.Fatalf("Bits: got 0x%08x, want 0x%08x", decoded.Bits, header.Bits)
	}
	if decoded.Nonce != header.Nonce {
		t.Fatalf("Nonce: got %d, want %d", decoded.Nonce, header.Nonce)
	}
	if string(decoded.Miner) != string(header.Miner) {
		t.Fatalf("Miner: got %q, want %q", decoded.Miner, header.Miner)
	}
	if decoded.BlueScore != header.BlueScore {
		t.Fatalf("BlueScore: got %d, want %d", decoded.BlueScore, header.BlueScore)
	}
	if decoded.BlueWork.Cmp(header.BlueWork) != 0 {
		t.Fatalf("BlueWork: got %s, want %s", decoded.BlueWork, header.BlueWork)
	}
	if decoded.DAAScore != header.DAAScore {
		t.Fatalf("DAAScore: got %d, want %d", decoded.DAAScore, header.DAAScore)
	}
	if decoded.PruningPoint != header.PruningPoint {
		t.Fatalf("PruningPoint mismatch")
	}
}

func TestSerializeHeaderAcceptsGenesisWithNoParents(t *testing.T) {
	header := sampleHeader(nil)
	header.ParentsByLevel = [][]*externalapi.DomainHash{{}}

	serialized, err := consensusserialization.SerializeHeader(header)
	if err != nil {
		t.Fatalf("expected a parentless header (genesis) to serialize, got: %+v", err)
	}

	decoded, err := consensusserialization.DeserializeHeader(serialized)
	if err != nil {
		t.Fatalf("DeserializeHeader: %+v", err)
	}
	if len(decoded.ParentHashes()) != 0 {
		t.Fatalf("expected zero parents, got %d", len(decoded.ParentHashes()))
	}
}

func TestSerializeHeaderRejectsTooManyParentsAtLevel0(t *testing.T) {
	parents := make([]*externalapi.DomainHash, constants.MaxBlockParents+1)
	for i := range parents {
		hash := externalapi.DomainHash{byte(i + 1)}
		parents[i] = &hash
	}
	header := sampleHeader(parents)

	_, err := consensusserialization.SerializeHeader(header)
	var ruleErr ruleerrors.RuleError
	if !errors.As(err, &ruleErr) || ruleErr.Kind != ruleerrors.ErrInvalidTipsCount {
		t.Fatalf("expected ErrInvalidTipsCount, got: %+v", err)
	}
}

func TestDeserializeHeaderRejectsTruncatedInput(t *testing.T) {
	parentA := externalapi.DomainHash{0x10}
	header := sampleHeader([]*externalapi.DomainHash{&parentA})
	serialized, err := consensusserialization.SerializeHeader(header)
	if err != nil {
		t.Fatalf("SerializeHeader: %+v", err)
	}

	_, err = consensusserialization.DeserializeHeader(serialized[:len(serialized)-1])
	var ruleErr ruleerrors.RuleError
	if !errors.As(err, &ruleErr) || ruleErr.Kind != ruleerrors.ErrInvalidEncoding {
		t.Fatalf("expected ErrInvalidEncoding on truncated input, got: %+v", err)
	}
}
