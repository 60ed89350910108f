// Package ghostdagdatastore stores each block's GHOSTDAG classifier
// output, spec.md §6.2's "GhostdagStore: id -> {selected_parent,
// mergeset_blues, mergeset_reds, blues_anticone_sizes, blue_score,
// blue_work, daa_score}".
package ghostdagdatastore

import (
	"encoding/binary"

	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/ruleerrors"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/lrucache"
	"github.com/holiman/uint256"
)

var bucketPrefix = []byte("ghostdag-data/")

func keyFor(hash *externalapi.DomainHash) []byte {
	key := make([]byte, 0, len(bucketPrefix)+externalapi.DomainHashSize)
	key = append(key, bucketPrefix...)
	key = append(key, hash[:]...)
	return key
}

type stagingShard struct {
	store   *ghostdagDataStore
	staging map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData
}

func (s *stagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, data := range s.staging {
		dataBytes, err := serialize(data)
		if err != nil {
			return err
		}
		if err := dbTx.Put(keyFor(&hash), dataBytes); err != nil {
			return err
		}
		s.store.cache.Add(&hash, data)
	}
	return nil
}

type ghostdagDataStore struct {
	cache *lrucache.LRUCache
}

// New returns a model.GHOSTDAGDataStore with the given cache size.
func New(cacheSize int) model.GHOSTDAGDataStore {
	return &ghostdagDataStore{cache: lrucache.New(cacheSize)}
}

func (gds *ghostdagDataStore) shard(stagingArea *model.StagingArea) *stagingShard {
	return stagingArea.GetOrCreateShard(model.StagingShardIDGHOSTDAG, func() model.StagingShard {
		return &stagingShard{store: gds, staging: make(map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData)}
	}).(*stagingShard)
}

// Stage records data for blockHash in the staging area.
func (gds *ghostdagDataStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, data *externalapi.BlockGHOSTDAGData) {
	gds.shard(stagingArea).staging[*blockHash] = data
}

// IsStaged reports whether any GHOSTDAG data is pending commit.
func (gds *ghostdagDataStore) IsStaged(stagingArea *model.StagingArea) bool {
	return len(gds.shard(stagingArea).staging) != 0
}

// Get returns the GHOSTDAG data stored for blockHash.
func (gds *ghostdagDataStore) Get(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error) {
	shard := gds.shard(stagingArea)
	if data, ok := shard.staging[*blockHash]; ok {
		return data, nil
	}
	if cached, ok := gds.cache.Get(blockHash); ok {
		return cached.(*externalapi.BlockGHOSTDAGData), nil
	}

	dataBytes, err := dbContext.Get(keyFor(blockHash))
	if err != nil {
		return nil, err
	}
	data, err := deserialize(dataBytes)
	if err != nil {
		return nil, err
	}
	gds.cache.Add(blockHash, data)
	return data, nil
}

// serialize and deserialize use a flat length-prefixed layout rather
// than protobuf (see the package comment on blockheaderstore for why
// protobuf isn't in this module's dependency set).
func serialize(data *externalapi.BlockGHOSTDAGData) ([]byte, error) {
	buf := make([]byte, 0, 256)

	if data.SelectedParent == nil {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1)
		buf = append(buf, data.SelectedParent[:]...)
	}

	buf = appendHashList(buf, data.MergeSetBlues)
	buf = appendHashList(buf, data.MergeSetReds)

	var countBytes [4]byte
	binary.LittleEndian.PutUint32(countBytes[:], uint32(len(data.BluesAnticoneSizes)))
	buf = append(buf, countBytes[:]...)
	for hash, size := range data.BluesAnticoneSizes {
		buf = append(buf, hash[:]...)
		var sizeBytes [4]byte
		binary.LittleEndian.PutUint32(sizeBytes[:], size)
		buf = append(buf, sizeBytes[:]...)
	}

	var u64 [8]byte
	binary.LittleEndian.PutUint64(u64[:], data.BlueScoreValue)
	buf = append(buf, u64[:]...)
	blueWork := data.BlueWorkValue
	if blueWork == nil {
		blueWork = new(uint256.Int)
	}
	blueWorkBytes := blueWork.Bytes32()
	buf = append(buf, blueWorkBytes[:]...)
	binary.LittleEndian.PutUint64(u64[:], data.DAAScoreValue)
	buf = append(buf, u64[:]...)

	return buf, nil
}

func appendHashList(buf []byte, hashes []*externalapi.DomainHash) []byte {
	var countBytes [4]byte
	binary.LittleEndian.PutUint32(countBytes[:], uint32(len(hashes)))
	buf = append(buf, countBytes[:]...)
	for _, hash := range hashes {
		buf = append(buf, hash[:]...)
	}
	return buf
}

func deserialize(data []byte) (*externalapi.BlockGHOSTDAGData, error) {
	r := &byteReader{data: data}

	hasSelectedParent, err := r.readBytes(1)
	if err != nil {
		return nil, err
	}
	var selectedParent *externalapi.DomainHash
	if hasSelectedParent[0] == 1 {
		selectedParent, err = r.readHash()
		if err != nil {
			return nil, err
		}
	}
	mergeSetBlues, err := r.readHashList()
	if err != nil {
		return nil, err
	}
	mergeSetReds, err := r.readHashList()
	if err != nil {
		return nil, err
	}

	anticoneCount, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	anticoneSizes := make(map[externalapi.DomainHash]uint32, anticoneCount)
	for i := uint32(0); i < anticoneCount; i++ {
		hash, err := r.readHash()
		if err != nil {
			return nil, err
		}
		size, err := r.readUint32()
		if err != nil {
			return nil, err
		}
		anticoneSizes[*hash] = size
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

	return &externalapi.BlockGHOSTDAGData{
		SelectedParent:     selectedParent,
		MergeSetBlues:      mergeSetBlues,
		MergeSetReds:       mergeSetReds,
		BluesAnticoneSizes: anticoneSizes,
		BlueScoreValue:     blueScore,
		BlueWorkValue:      new(uint256.Int).SetBytes(blueWorkBytes),
		DAAScoreValue:      daaScore,
	}, nil
}

type byteReader struct {
	data   []byte
	offset int
}

func (r *byteReader) readBytes(n int) ([]byte, error) {
	if r.offset+n > len(r.data) {
		return nil, ruleerrors.New(ruleerrors.ErrInvalidEncoding, "unexpected end of ghostdag data bytes")
	}
	b := r.data[r.offset : r.offset+n]
	r.offset += n
	return b, nil
}

func (r *byteReader) readHash() (*externalapi.DomainHash, error) {
	b, err := r.readBytes(externalapi.DomainHashSize)
	if err != nil {
		return nil, err
	}
	return externalapi.NewDomainHashFromByteSlice(b)
}

func (r *byteReader) readUint32() (uint32, error) {
	b, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *byteReader) readUint64() (uint64, error) {
	b, err := r.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *byteReader) readHashList() ([]*externalapi.DomainHash, error) {
	count, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	hashes := make([]*externalapi.DomainHash, count)
	for i := uint32(0); i < count; i++ {
		hash, err := r.readHash()
		if err != nil {
			return nil, err
		}
		hashes[i] = hash
	}
	return hashes, nil
}
