package blockbuilder_test

import (
	"testing"

	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/processes/blockbuilder"
	"github.com/ghostdag-network/consensus/domain/consensus/ruleerrors"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/merkle"
	"github.com/holiman/uint256"
)

type fakeHeaderStore struct {
	headers map[externalapi.DomainHash]*externalapi.DomainBlockHeader
}

func newFakeHeaderStore() *fakeHeaderStore {
	return &fakeHeaderStore{headers: make(map[externalapi.DomainHash]*externalapi.DomainBlockHeader)}
}
func (s *fakeHeaderStore) Stage(_ *model.StagingArea, blockHash *externalapi.DomainHash, header *externalapi.DomainBlockHeader) {
	s.headers[*blockHash] = header
}
func (s *fakeHeaderStore) BlockHeader(_ model.DBReader, _ *model.StagingArea, blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {
	header, ok := s.headers[*blockHash]
	if !ok {
		return nil, ruleerrors.New(ruleerrors.ErrInvalidValue, "no such header")
	}
	return header, nil
}
func (s *fakeHeaderStore) HasBlockHeader(_ model.DBReader, _ *model.StagingArea, blockHash *externalapi.DomainHash) (bool, error) {
	_, ok := s.headers[*blockHash]
	return ok, nil
}
func (s *fakeHeaderStore) Delete(_ *model.StagingArea, blockHash *externalapi.DomainHash) {
	delete(s.headers, *blockHash)
}
func (s *fakeHeaderStore) Count() uint64 { return uint64(len(s.headers)) }

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

// fakeGHOSTDAGManager always chooses blockHashA as selected parent and
// stages a fixed GHOSTDAG record for whatever candidate hash GHOSTDAG is
// called with, standing in for C3 without running the real classifier.
type fakeGHOSTDAGManager struct {
	store       *fakeGHOSTDAGDataStore
	record      *externalapi.BlockGHOSTDAGData
	ghostdagged []externalapi.DomainHash
}

func (m *fakeGHOSTDAGManager) GHOSTDAG(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) error {
	m.ghostdagged = append(m.ghostdagged, *blockHash)
	m.store.Stage(stagingArea, blockHash, m.record)
	return nil
}
func (m *fakeGHOSTDAGManager) ChooseSelectedParent(_ *model.StagingArea, blockHashA, _ *externalapi.DomainHash) (*externalapi.DomainHash, error) {
	return blockHashA, nil
}

type fakeForkChoiceManager struct {
	tip *externalapi.DomainHash
}

func (f *fakeForkChoiceManager) CanonicalTip(_ *model.StagingArea) (*externalapi.DomainHash, error) {
	return f.tip, nil
}
func (f *fakeForkChoiceManager) IsStable(_ *model.StagingArea, _ *externalapi.DomainHash) (bool, error) {
	return false, nil
}

type fakeDifficultyManager struct {
	bits         uint32
	requestedFor []externalapi.DomainHash
}

func (d *fakeDifficultyManager) RequiredDifficulty(_ *model.StagingArea, selectedParent *externalapi.DomainHash) (uint32, error) {
	d.requestedFor = append(d.requestedFor, *selectedParent)
	return d.bits, nil
}

type fakePruningManager struct {
	pruningPoint externalapi.DomainHash
}

func (p *fakePruningManager) PruningPoint(_ *model.StagingArea, _ *externalapi.DomainHash) (*externalapi.DomainHash, error) {
	return &p.pruningPoint, nil
}

func setup(t *testing.T) (*fakeHeaderStore, *fakeGHOSTDAGDataStore, *fakeGHOSTDAGManager, *fakeDifficultyManager, *fakePruningManager, externalapi.DomainHash) {
	t.Helper()
	parentHash := externalapi.DomainHash{0x01}
	headerStore := newFakeHeaderStore()
	headerStore.Stage(nil, &parentHash, &externalapi.DomainBlockHeader{
		ParentsByLevel:     [][]*externalapi.DomainHash{{}},
		TimeInMilliseconds: 1_000,
	})

	ghostdagStore := &fakeGHOSTDAGDataStore{data: make(map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData)}
	ghostdagManager := &fakeGHOSTDAGManager{
		store: ghostdagStore,
		record: &externalapi.BlockGHOSTDAGData{
			SelectedParent: &parentHash,
			BlueScoreValue: 5,
			BlueWorkValue:  uint256.NewInt(500),
			DAAScoreValue:  5,
		},
	}
	difficultyManager := &fakeDifficultyManager{bits: 0x207fffff}
	pruningManager := &fakePruningManager{pruningPoint: externalapi.DomainHash{0xaa}}

	return headerStore, ghostdagStore, ghostdagManager, difficultyManager, pruningManager, parentHash
}

func TestBuildBlockFillsConsensusFieldsFromCanonicalTip(t *testing.T) {
	headerStore, ghostdagStore, ghostdagManager, difficultyManager, pruningManager, parentHash := setup(t)
	forkChoiceManager := &fakeForkChoiceManager{tip: &parentHash}

	builder := blockbuilder.New(nil, headerStore, ghostdagStore, forkChoiceManager, ghostdagManager, difficultyManager, pruningManager)

	transactions := []*externalapi.DomainTransaction{{ID: externalapi.DomainHash{0x11}}, {ID: externalapi.DomainHash{0x22}}}
	block, err := builder.BuildBlock(&externalapi.DomainCoinbaseData{ScriptPublicKey: []byte{0xca, 0xfe}}, transactions)
	if err != nil {
		t.Fatalf("BuildBlock: %+v", err)
	}

	header := block.Header
	if len(header.ParentHashes()) != 1 || !header.ParentHashes()[0].Equal(&parentHash) {
		t.Fatalf("expected the single canonical tip as parent, got %v", header.ParentHashes())
	}
	if header.Bits != 0x207fffff {
		t.Fatalf("expected the bits from RequiredDifficulty, got 0x%08x", header.Bits)
	}
	if len(difficultyManager.requestedFor) != 1 || !difficultyManager.requestedFor[0].Equal(&parentHash) {
		t.Fatalf("expected RequiredDifficulty to be asked about the selected parent")
	}
	if header.BlueScore != 5 || header.DAAScore != 5 || header.BlueWork.Cmp(uint256.NewInt(500)) != 0 {
		t.Fatalf("expected the fake GHOSTDAG record's fields to be copied onto the header, got %+v", header)
	}
	if header.PruningPoint != (externalapi.DomainHash{0xaa}) {
		t.Fatalf("expected the pruning manager's pruning point to be committed")
	}
	wantMerkleRoot := merkle.CalculateHashMerkleRoot(transactions)
	if header.HashMerkleRoot != wantMerkleRoot {
		t.Fatalf("hash_merkle_root does not match the transaction set")
	}
	var zero externalapi.DomainHash
	if header.AcceptedIDMerkleRoot != zero || header.UTXOCommitment != zero {
		t.Fatalf("accepted_id_merkle_root and utxo_commitment must stay zero")
	}
	if header.TimeInMilliseconds <= 1_000 {
		t.Fatalf("expected a timestamp strictly after the parent's 1000ms, got %d", header.TimeInMilliseconds)
	}
	if len(header.Miner) == 0 {
		t.Fatalf("expected the coinbase script public key to be carried onto Miner")
	}
}

func TestBuildBlockFailsWithoutACanonicalTip(t *testing.T) {
	headerStore, ghostdagStore, ghostdagManager, difficultyManager, pruningManager, _ := setup(t)
	forkChoiceManager := &fakeForkChoiceManager{tip: nil}

	builder := blockbuilder.New(nil, headerStore, ghostdagStore, forkChoiceManager, ghostdagManager, difficultyManager, pruningManager)
	_, err := builder.BuildBlock(nil, nil)
	if err == nil {
		t.Fatalf("expected an error when there is no canonical tip to build on")
	}
}

func TestBuildBlockWithParentsSortsParentsAscending(t *testing.T) {
	headerStore, ghostdagStore, ghostdagManager, difficultyManager, pruningManager, parentHash := setup(t)
	secondParent := externalapi.DomainHash{0x05}
	headerStore.Stage(nil, &secondParent, &externalapi.DomainBlockHeader{
		ParentsByLevel:     [][]*externalapi.DomainHash{{}},
		TimeInMilliseconds: 2_000,
	})

	forkChoiceManager := &fakeForkChoiceManager{}
	builder := blockbuilder.New(nil, headerStore, ghostdagStore, forkChoiceManager, ghostdagManager, difficultyManager, pruningManager)

	block, err := builder.BuildBlockWithParents([]*externalapi.DomainHash{&secondParent, &parentHash}, nil, nil)
	if err != nil {
		t.Fatalf("BuildBlockWithParents: %+v", err)
	}

	parents := block.Header.ParentHashes()
	if len(parents) != 2 || !parents[0].Equal(&parentHash) || !parents[1].Equal(&secondParent) {
		t.Fatalf("expected parents sorted ascending by id, got %v", parents)
	}
	if block.Header.TimeInMilliseconds <= 2_000 {
		t.Fatalf("expected a timestamp strictly after the latest parent's 2000ms, got %d", block.Header.TimeInMilliseconds)
	}
}

var _ model.BlockHeaderStore = newFakeHeaderStore()
var _ model.GHOSTDAGManager = &fakeGHOSTDAGManager{}
var _ model.GHOSTDAGDataStore = &fakeGHOSTDAGDataStore{}
var _ model.ForkChoiceManager = &fakeForkChoiceManager{}
var _ model.DifficultyManager = &fakeDifficultyManager{}
var _ model.PruningManager = &fakePruningManager{}
