package rawdb

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/types"
)

const blockCacheLimit = 256

// BlockStore persists block bytes by hash, the canonical height to hash
// index and the chain status.
type BlockStore struct {
	db    DiskDB
	cache *lru.Cache[common.Hash, []byte]
}

// NewBlockStore wraps db.
func NewBlockStore(db DiskDB) *BlockStore {
	cache, _ := lru.New[common.Hash, []byte](blockCacheLimit)
	return &BlockStore{db: db, cache: cache}
}

// DB returns the underlying store.
func (s *BlockStore) DB() DiskDB { return s.db }

// Status reads the chain status, zero on a fresh store.
func (s *BlockStore) Status() types.ChainStatus {
	var st types.ChainStatus
	v, err := s.db.Get(chainStatusKey)
	if errors.Is(err, ErrNotFound) {
		return st
	}
	if err != nil {
		panic(errors.Wrap(err, "read chain status"))
	}
	if _, err := st.Parse(v); err != nil {
		panic(errors.Wrap(err, "parse chain status"))
	}
	return st
}

// SaveStatus writes the chain status.
func (s *BlockStore) SaveStatus(st types.ChainStatus) {
	must(s.db.Put(chainStatusKey, st.Serialize()), "save chain status")
}

// SaveBlockData stores the raw block under its hash.
func (s *BlockStore) SaveBlockData(hash common.Hash, data []byte) {
	must(s.db.Put(blockDataKey(hash), data), "save block data")
	s.cache.Add(hash, data)
}

// SaveBlockHash maps a height to a hash.
func (s *BlockStore) SaveBlockHash(height uint64, hash common.Hash) {
	must(s.db.Put(blockHashKey(height), hash.Bytes()), "save block hash")
}

// HashPath is a set of height to hash rewrites applied atomically.
type HashPath map[uint64]common.Hash

// SaveBlockHashPath rewrites every height of path in one batch.
func (s *BlockStore) SaveBlockHashPath(path HashPath) {
	b := s.db.NewBatch()
	for h, hx := range path {
		must(b.Put(blockHashKey(h), hx.Bytes()), "batch block hash")
	}
	must(b.Write(), "save block hash path")
}

// WriteBlock stores a block with an optional status and canonical path in
// one batch. data is skipped when nil.
func (s *BlockStore) WriteBlock(hash common.Hash, data []byte, status *types.ChainStatus, path HashPath) {
	b := s.db.NewBatch()
	if data != nil {
		must(b.Put(blockDataKey(hash), data), "batch block data")
	}
	if status != nil {
		must(b.Put(chainStatusKey, status.Serialize()), "batch chain status")
	}
	for h, hx := range path {
		must(b.Put(blockHashKey(h), hx.Bytes()), "batch block hash")
	}
	must(b.Write(), "write block")
	if data != nil {
		// data may be a window into a whole sync batch
		s.cache.Add(hash, common.CopyBytes(data))
	}
}

// SaveBatch writes an arbitrary batch built by NewBatch.
func (s *BlockStore) SaveBatch(b Batch) {
	must(b.Write(), "save block batch")
}

// NewBatch creates a batch on the block keyspace.
func (s *BlockStore) NewBatch() Batch { return s.db.NewBatch() }

// BlockData reads raw block bytes by hash.
func (s *BlockStore) BlockData(hash common.Hash) ([]byte, bool) {
	if v, ok := s.cache.Get(hash); ok {
		return v, true
	}
	v, err := s.db.Get(blockDataKey(hash))
	if errors.Is(err, ErrNotFound) {
		return nil, false
	}
	must(err, "read block data")
	s.cache.Add(hash, v)
	return v, true
}

// BlockHash reads the canonical hash at height.
func (s *BlockStore) BlockHash(height uint64) (common.Hash, bool) {
	v, err := s.db.Get(blockHashKey(height))
	if errors.Is(err, ErrNotFound) {
		return common.Hash{}, false
	}
	must(err, "read block hash")
	return common.BytesToHash(v), true
}

// BlockDataByHeight reads the canonical block at height.
func (s *BlockStore) BlockDataByHeight(height uint64) (common.Hash, []byte, bool) {
	hx, ok := s.BlockHash(height)
	if !ok {
		return common.Hash{}, nil, false
	}
	data, ok := s.BlockData(hx)
	if !ok {
		return common.Hash{}, nil, false
	}
	return hx, data, true
}

// LoadBlock reads and parses the canonical block at height.
func (s *BlockStore) LoadBlock(reg *types.ActionRegistry, hasher types.BlockHasher, height uint64) (*types.BlockPkg, error) {
	_, data, ok := s.BlockDataByHeight(height)
	if !ok {
		return nil, errors.Errorf("block %d not find", height)
	}
	return types.NewBlockPkg(reg, hasher, data, types.BlkOriginUnknown)
}

// must panics on disk failures, they are not recoverable.
func must(err error, what string) {
	if err != nil {
		panic(errors.Wrap(err, what))
	}
}
