package pruningmanager_test

import (
	"testing"

	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/processes/pruningmanager"
	"github.com/holiman/uint256"
)

type fakeGHOSTDAGDataStore struct {
	data map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData
}

func (s *fakeGHOSTDAGDataStore) Stage(_ *model.StagingArea, blockHash *externalapi.DomainHash, data *externalapi.BlockGHOSTDAGData) {
	s.data[*blockHash] = data
}
func (s *fakeGHOSTDAGDataStore) Get(_ model.DBReader, _ *model.StagingArea, blockHash *externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error) {
	return s.data[*blockHash], nil
}
func (s *fakeGHOSTDAGDataStore) IsStaged(_ *model.StagingArea) bool { return false }

// chain builds a selected-parent chain of the given length rooted at
// genesis, one blue score per block, and returns the store plus the
// ordered chain of hashes (index 0 is genesis).
func chain(genesisHash *externalapi.DomainHash, length int) (*fakeGHOSTDAGDataStore, []*externalapi.DomainHash) {
	store := &fakeGHOSTDAGDataStore{data: make(map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData)}
	hashes := make([]*externalapi.DomainHash, length)
	hashes[0] = genesisHash
	store.data[*genesisHash] = &externalapi.BlockGHOSTDAGData{BlueScoreValue: 0, BlueWorkValue: new(uint256.Int)}

	for i := 1; i < length; i++ {
		hash := externalapi.DomainHash{byte(i)}
		hashes[i] = &hash
		store.data[hash] = &externalapi.BlockGHOSTDAGData{
			SelectedParent: hashes[i-1],
			BlueScoreValue: uint64(i),
			BlueWorkValue:  uint256.NewInt(uint64(i)),
		}
	}
	return store, hashes
}

func TestPruningPointWalksBackByDepth(t *testing.T) {
	genesisHash := externalapi.DomainHash{0xff}
	store, hashes := chain(&genesisHash, 30)

	pm := pruningmanager.New(nil, store, &genesisHash, 10, 1000)
	pruningPoint, err := pm.PruningPoint(model.NewStagingArea(), hashes[29])
	if err != nil {
		t.Fatalf("PruningPoint: %+v", err)
	}

	// Block 29 has blue score 29; the pruning point must be the highest
	// ancestor with blue score <= 19.
	want := hashes[19]
	if !pruningPoint.Equal(want) {
		t.Fatalf("expected pruning point %s (blue score 19), got %s", want, pruningPoint)
	}
}

func TestPruningPointReturnsGenesisWhenAncestryIsShallow(t *testing.T) {
	genesisHash := externalapi.DomainHash{0xff}
	store, hashes := chain(&genesisHash, 5)

	pm := pruningmanager.New(nil, store, &genesisHash, 100, 1000)
	pruningPoint, err := pm.PruningPoint(model.NewStagingArea(), hashes[4])
	if err != nil {
		t.Fatalf("PruningPoint: %+v", err)
	}
	if !pruningPoint.Equal(&genesisHash) {
		t.Fatalf("expected genesis when ancestry is shallower than pruning depth, got %s", pruningPoint)
	}
}

func TestPruningPointOfGenesisIsGenesis(t *testing.T) {
	genesisHash := externalapi.DomainHash{0xff}
	store, _ := chain(&genesisHash, 1)

	pm := pruningmanager.New(nil, store, &genesisHash, 10, 1000)
	pruningPoint, err := pm.PruningPoint(model.NewStagingArea(), &genesisHash)
	if err != nil {
		t.Fatalf("PruningPoint: %+v", err)
	}
	if !pruningPoint.Equal(&genesisHash) {
		t.Fatalf("expected genesis, got %s", pruningPoint)
	}
}
