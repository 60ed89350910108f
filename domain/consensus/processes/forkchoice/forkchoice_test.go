package forkchoice_test

import (
	"testing"

	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/processes/forkchoice"
	"github.com/holiman/uint256"
)

type fakeTopology struct {
	tips []*externalapi.DomainHash
}

func (f *fakeTopology) Parents(_ *model.StagingArea, _ *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	return nil, nil
}
func (f *fakeTopology) Children(_ *model.StagingArea, _ *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	return nil, nil
}
func (f *fakeTopology) IsParentOf(_ *model.StagingArea, _, _ *externalapi.DomainHash) (bool, error) {
	return false, nil
}
func (f *fakeTopology) IsAncestorOf(_ *model.StagingArea, _, _ *externalapi.DomainHash) (bool, error) {
	return false, nil
}
func (f *fakeTopology) IsAncestorOfAny(_ *model.StagingArea, _ *externalapi.DomainHash, _ []*externalapi.DomainHash) (bool, error) {
	return false, nil
}
func (f *fakeTopology) IsInSelectedParentChainOf(_ *model.StagingArea, _, _ *externalapi.DomainHash) (bool, error) {
	return false, nil
}
func (f *fakeTopology) SetParents(_ *model.StagingArea, _ *externalapi.DomainHash, _ []*externalapi.DomainHash) error {
	return nil
}
func (f *fakeTopology) Tips(_ *model.StagingArea) ([]*externalapi.DomainHash, error) {
	return f.tips, nil
}
func (f *fakeTopology) SetTips(_ *model.StagingArea, tips []*externalapi.DomainHash) error {
	f.tips = tips
	return nil
}

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

func ghostdagData(blueScore uint64, blueWork uint64) *externalapi.BlockGHOSTDAGData {
	return &externalapi.BlockGHOSTDAGData{
		BlueScoreValue: blueScore,
		BlueWorkValue:  uint256.NewInt(blueWork),
	}
}

func TestCanonicalTipPrefersGreaterBlueWork(t *testing.T) {
	lowWork := externalapi.DomainHash{0x01}
	highWork := externalapi.DomainHash{0x02}

	store := &fakeGHOSTDAGDataStore{data: map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData{
		lowWork:  ghostdagData(10, 100),
		highWork: ghostdagData(10, 200),
	}}
	topology := &fakeTopology{tips: []*externalapi.DomainHash{&lowWork, &highWork}}

	fcm := forkchoice.New(nil, topology, store, 20)
	tip, err := fcm.CanonicalTip(model.NewStagingArea())
	if err != nil {
		t.Fatalf("CanonicalTip: %+v", err)
	}
	if !tip.Equal(&highWork) {
		t.Fatalf("expected the higher blue_work tip to win, got %s", tip)
	}
}

func TestCanonicalTipBreaksTiesByAscendingID(t *testing.T) {
	smallID := externalapi.DomainHash{0x01}
	largeID := externalapi.DomainHash{0x02}

	store := &fakeGHOSTDAGDataStore{data: map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData{
		smallID: ghostdagData(10, 100),
		largeID: ghostdagData(10, 100),
	}}
	topology := &fakeTopology{tips: []*externalapi.DomainHash{&largeID, &smallID}}

	fcm := forkchoice.New(nil, topology, store, 20)
	tip, err := fcm.CanonicalTip(model.NewStagingArea())
	if err != nil {
		t.Fatalf("CanonicalTip: %+v", err)
	}
	if !tip.Equal(&smallID) {
		t.Fatalf("expected the ascending-id tie-break to pick the smaller id, got %s", tip)
	}
}

func TestIsStable(t *testing.T) {
	tipHash := externalapi.DomainHash{0x01}
	oldHash := externalapi.DomainHash{0x02}
	recentHash := externalapi.DomainHash{0x03}

	store := &fakeGHOSTDAGDataStore{data: map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData{
		tipHash:    ghostdagData(100, 1000),
		oldHash:    ghostdagData(70, 700),
		recentHash: ghostdagData(95, 950),
	}}
	topology := &fakeTopology{tips: []*externalapi.DomainHash{&tipHash}}

	fcm := forkchoice.New(nil, topology, store, 20)
	stagingArea := model.NewStagingArea()

	stable, err := fcm.IsStable(stagingArea, &oldHash)
	if err != nil {
		t.Fatalf("IsStable: %+v", err)
	}
	if !stable {
		t.Fatalf("expected a block 30 blue score behind the tip to be stable")
	}

	stable, err = fcm.IsStable(stagingArea, &recentHash)
	if err != nil {
		t.Fatalf("IsStable: %+v", err)
	}
	if stable {
		t.Fatalf("expected a block 5 blue score behind the tip to not yet be stable")
	}
}
