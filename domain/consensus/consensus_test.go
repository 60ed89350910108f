package consensus_test

import (
	"testing"

	"github.com/ghostdag-network/consensus/domain/consensus"
	"github.com/ghostdag-network/consensus/domain/dagconfig"
	"github.com/ghostdag-network/consensus/infrastructure/db/database"
	"github.com/pkg/errors"
)

// fakeDB is a trivial in-memory database.Database, the same shape
// blockprocessor_test.go uses: every Transaction writes straight into
// the shared map.
type fakeDB struct {
	data map[string][]byte
}

func newFakeDB() *fakeDB { return &fakeDB{data: make(map[string][]byte)} }

func (d *fakeDB) Get(key []byte) ([]byte, error) {
	v, ok := d.data[string(key)]
	if !ok {
		return nil, database.ErrNotFound
	}
	return v, nil
}
func (d *fakeDB) Has(key []byte) (bool, error) { _, ok := d.data[string(key)]; return ok, nil }
func (d *fakeDB) Put(key, value []byte) error  { d.data[string(key)] = append([]byte(nil), value...); return nil }
func (d *fakeDB) Delete(key []byte) error      { delete(d.data, string(key)); return nil }
func (d *fakeDB) Cursor(_ []byte) (database.Cursor, error) {
	return nil, errors.New("fakeDB: Cursor not implemented")
}
func (d *fakeDB) Begin() (database.Transaction, error) { return &fakeTx{db: d}, nil }
func (d *fakeDB) Close() error                         { return nil }

type fakeTx struct{ db *fakeDB }

func (t *fakeTx) Get(key []byte) ([]byte, error) { return t.db.Get(key) }
func (t *fakeTx) Has(key []byte) (bool, error)   { return t.db.Has(key) }
func (t *fakeTx) Put(key, value []byte) error    { return t.db.Put(key, value) }
func (t *fakeTx) Delete(key []byte) error        { return t.db.Delete(key) }
func (t *fakeTx) Commit() error                  { return nil }
func (t *fakeTx) Rollback() error                { return nil }

func newDevnetConsensus(t *testing.T) consensus.Consensus {
	t.Helper()
	c, err := consensus.NewFactory().NewConsensus(&dagconfig.DevnetParams, newFakeDB())
	if err != nil {
		t.Fatalf("NewConsensus: %+v", err)
	}
	return c
}

func TestNewConsensusSeedsGenesisAsTip(t *testing.T) {
	c := newDevnetConsensus(t)

	tip, err := c.Tip()
	if err != nil {
		t.Fatalf("Tip: %+v", err)
	}
	if !tip.Equal(dagconfig.DevnetParams.GenesisHash) {
		t.Fatalf("expected tip to be genesis %s, got %s", dagconfig.DevnetParams.GenesisHash, tip)
	}

	blueScore, err := c.BlueScore(tip)
	if err != nil {
		t.Fatalf("BlueScore: %+v", err)
	}
	if blueScore != 0 {
		t.Fatalf("expected genesis blue score 0, got %d", blueScore)
	}

	pruningPoint, err := c.PruningPoint()
	if err != nil {
		t.Fatalf("PruningPoint: %+v", err)
	}
	if !pruningPoint.Equal(dagconfig.DevnetParams.GenesisHash) {
		t.Fatalf("expected genesis to be its own pruning point, got %s", pruningPoint)
	}
}

func TestNewConsensusIsIdempotentOverAnExistingDatabase(t *testing.T) {
	db := newFakeDB()

	first, err := consensus.NewFactory().NewConsensus(&dagconfig.DevnetParams, db)
	if err != nil {
		t.Fatalf("first NewConsensus: %+v", err)
	}
	firstTip, err := first.Tip()
	if err != nil {
		t.Fatalf("Tip: %+v", err)
	}

	second, err := consensus.NewFactory().NewConsensus(&dagconfig.DevnetParams, db)
	if err != nil {
		t.Fatalf("second NewConsensus over the same database: %+v", err)
	}
	secondTip, err := second.Tip()
	if err != nil {
		t.Fatalf("Tip: %+v", err)
	}
	if !firstTip.Equal(secondTip) {
		t.Fatalf("expected re-opening the same database to report the same tip")
	}
}

func TestBuildAndAddBlockAdvancesTheTip(t *testing.T) {
	c := newDevnetConsensus(t)

	template, err := c.BuildBlockTemplate(nil, nil)
	if err != nil {
		t.Fatalf("BuildBlockTemplate: %+v", err)
	}
	if template.Header.BlueScore != 1 {
		t.Fatalf("expected a child of genesis to have blue score 1, got %d", template.Header.BlueScore)
	}

	if err := c.VerifyProofOfWork(template.Header); err != nil {
		t.Fatalf("VerifyProofOfWork on a devnet template: %+v", err)
	}

	result, err := c.AddBlock(template)
	if err != nil {
		t.Fatalf("AddBlock: %+v", err)
	}
	if len(result.SelectedParentChainChanges.Added) != 1 {
		t.Fatalf("expected the new block to extend the selected parent chain by one")
	}

	tip, err := c.Tip()
	if err != nil {
		t.Fatalf("Tip: %+v", err)
	}
	blueScore, err := c.BlueScore(tip)
	if err != nil {
		t.Fatalf("BlueScore: %+v", err)
	}
	if blueScore != 1 {
		t.Fatalf("expected the new tip's blue score to be 1, got %d", blueScore)
	}

	blueWork, err := c.BlueWork(tip)
	if err != nil {
		t.Fatalf("BlueWork: %+v", err)
	}
	if blueWork.IsZero() {
		t.Fatalf("expected a mined block to carry nonzero blue work")
	}

	pruningPoint, err := c.PruningPoint()
	if err != nil {
		t.Fatalf("PruningPoint: %+v", err)
	}
	if !pruningPoint.Equal(dagconfig.DevnetParams.GenesisHash) {
		t.Fatalf("expected genesis to remain the pruning point this early, got %s", pruningPoint)
	}

	stable, err := c.IsStable(dagconfig.DevnetParams.GenesisHash)
	if err != nil {
		t.Fatalf("IsStable: %+v", err)
	}
	if stable {
		t.Fatalf("expected genesis not to be stable yet: the tip is only one blue score ahead, " +
			"far short of FinalityDepth")
	}
}

func TestAddBlockRejectsAnAlreadyKnownBlock(t *testing.T) {
	c := newDevnetConsensus(t)

	template, err := c.BuildBlockTemplate(nil, nil)
	if err != nil {
		t.Fatalf("BuildBlockTemplate: %+v", err)
	}
	if _, err := c.AddBlock(template); err != nil {
		t.Fatalf("first AddBlock: %+v", err)
	}
	if _, err := c.AddBlock(template); err == nil {
		t.Fatalf("expected re-submitting the same block to fail")
	}
}
