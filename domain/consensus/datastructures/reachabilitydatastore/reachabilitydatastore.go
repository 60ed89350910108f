// Package reachabilitydatastore stores the interval-tree and
// future-covering-set records the reachability manager maintains for
// C2 ancestry queries (spec.md §6.2 ReachabilityStore), grounded on the
// teacher's domain/blockdag/reachabilitystore.go data shape.
package reachabilitydatastore

import (
	"encoding/binary"

	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/ruleerrors"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/lrucache"
)

var dataBucketPrefix = []byte("reachability-data/")
var reindexRootKey = []byte("reachability-reindex-root")

func keyFor(hash *externalapi.DomainHash) []byte {
	key := make([]byte, 0, len(dataBucketPrefix)+externalapi.DomainHashSize)
	key = append(key, dataBucketPrefix...)
	key = append(key, hash[:]...)
	return key
}

type stagingShard struct {
	store          *reachabilityDataStore
	staging        map[externalapi.DomainHash]*model.ReachabilityData
	newReindexRoot *externalapi.DomainHash
}

func (s *stagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, data := range s.staging {
		if err := dbTx.Put(keyFor(&hash), serialize(data)); err != nil {
			return err
		}
		s.store.cache.Add(&hash, data)
	}
	if s.newReindexRoot != nil {
		if err := dbTx.Put(reindexRootKey, s.newReindexRoot[:]); err != nil {
			return err
		}
		s.store.reindexRootCache = s.newReindexRoot
	}
	return nil
}

type reachabilityDataStore struct {
	cache            *lrucache.LRUCache
	reindexRootCache *externalapi.DomainHash
}

// New returns a model.ReachabilityDataStore with the given cache size.
func New(cacheSize int) model.ReachabilityDataStore {
	return &reachabilityDataStore{cache: lrucache.New(cacheSize)}
}

func (rds *reachabilityDataStore) shard(stagingArea *model.StagingArea) *stagingShard {
	return stagingArea.GetOrCreateShard(model.StagingShardIDReachability, func() model.StagingShard {
		return &stagingShard{store: rds, staging: make(map[externalapi.DomainHash]*model.ReachabilityData)}
	}).(*stagingShard)
}

// StageReachabilityData records data for blockHash in the staging area.
func (rds *reachabilityDataStore) StageReachabilityData(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, data *model.ReachabilityData) {
	rds.shard(stagingArea).staging[*blockHash] = data
}

// ReachabilityData returns the reachability record for blockHash.
func (rds *reachabilityDataStore) ReachabilityData(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (*model.ReachabilityData, error) {
	shard := rds.shard(stagingArea)
	if data, ok := shard.staging[*blockHash]; ok {
		return data, nil
	}
	if cached, ok := rds.cache.Get(blockHash); ok {
		return cached.(*model.ReachabilityData), nil
	}

	dataBytes, err := dbContext.Get(keyFor(blockHash))
	if err != nil {
		return nil, err
	}
	data, err := deserialize(dataBytes)
	if err != nil {
		return nil, err
	}
	rds.cache.Add(blockHash, data)
	return data, nil
}

// HasReachabilityData reports whether a reachability record exists for
// blockHash.
func (rds *reachabilityDataStore) HasReachabilityData(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (bool, error) {
	shard := rds.shard(stagingArea)
	if _, ok := shard.staging[*blockHash]; ok {
		return true, nil
	}
	if rds.cache.Has(blockHash) {
		return true, nil
	}
	return dbContext.Has(keyFor(blockHash))
}

// StageReachabilityReindexRoot records reindexRoot as the tree's new
// reindex root.
func (rds *reachabilityDataStore) StageReachabilityReindexRoot(stagingArea *model.StagingArea, reindexRoot *externalapi.DomainHash) {
	rds.shard(stagingArea).newReindexRoot = reindexRoot
}

// ReachabilityReindexRoot returns the tree's current reindex root.
func (rds *reachabilityDataStore) ReachabilityReindexRoot(dbContext model.DBReader, stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {
	shard := rds.shard(stagingArea)
	if shard.newReindexRoot != nil {
		return shard.newReindexRoot, nil
	}
	if rds.reindexRootCache != nil {
		return rds.reindexRootCache, nil
	}

	rootBytes, err := dbContext.Get(reindexRootKey)
	if err != nil {
		return nil, err
	}
	root, err := externalapi.NewDomainHashFromByteSlice(rootBytes)
	if err != nil {
		return nil, err
	}
	rds.reindexRootCache = root
	return root, nil
}

func serialize(data *model.ReachabilityData) []byte {
	buf := make([]byte, 0, 128)

	var u64 [8]byte
	binary.LittleEndian.PutUint64(u64[:], data.TreeInterval.Start)
	buf = append(buf, u64[:]...)
	binary.LittleEndian.PutUint64(u64[:], data.TreeInterval.End)
	buf = append(buf, u64[:]...)

	hasParent := byte(0)
	if data.TreeParent != nil {
		hasParent = 1
	}
	buf = append(buf, hasParent)
	if data.TreeParent != nil {
		buf = append(buf, data.TreeParent[:]...)
	}

	buf = appendHashList(buf, data.TreeChildren)

	binary.LittleEndian.PutUint64(u64[:], data.ChildAllocationCursor)
	buf = append(buf, u64[:]...)

	buf = appendHashList(buf, data.FutureCoveringSet)

	return buf
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

func deserialize(data []byte) (*model.ReachabilityData, error) {
	r := &byteReader{data: data}

	start, err := r.readUint64()
	if err != nil {
		return nil, err
	}
	end, err := r.readUint64()
	if err != nil {
		return nil, err
	}

	hasParent, err := r.readByte()
	if err != nil {
		return nil, err
	}
	var treeParent *externalapi.DomainHash
	if hasParent == 1 {
		treeParent, err = r.readHash()
		if err != nil {
			return nil, err
		}
	}

	treeChildren, err := r.readHashList()
	if err != nil {
		return nil, err
	}
	allocationCursor, err := r.readUint64()
	if err != nil {
		return nil, err
	}
	futureCoveringSet, err := r.readHashList()
	if err != nil {
		return nil, err
	}

	return &model.ReachabilityData{
		TreeInterval:          &model.ReachabilityInterval{Start: start, End: end},
		TreeParent:            treeParent,
		TreeChildren:          treeChildren,
		ChildAllocationCursor: allocationCursor,
		FutureCoveringSet:     futureCoveringSet,
	}, nil
}

type byteReader struct {
	data   []byte
	offset int
}

func (r *byteReader) readBytes(n int) ([]byte, error) {
	if r.offset+n > len(r.data) {
		return nil, ruleerrors.New(ruleerrors.ErrInvalidEncoding, "unexpected end of reachability data bytes")
	}
	b := r.data[r.offset : r.offset+n]
	r.offset += n
	return b, nil
}

func (r *byteReader) readByte() (byte, error) {
	b, err := r.readBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *byteReader) readUint64() (uint64, error) {
	b, err := r.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *byteReader) readUint32() (uint32, error) {
	b, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *byteReader) readHash() (*externalapi.DomainHash, error) {
	b, err := r.readBytes(externalapi.DomainHashSize)
	if err != nil {
		return nil, err
	}
	return externalapi.NewDomainHashFromByteSlice(b)
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
