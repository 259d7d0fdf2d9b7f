package rawdb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/hacash/node/log"
)

// minCache is the minimum amount of memory in megabytes to allocate to
// leveldb read and write caching, split half and half.
const minCache = 16

// LevelDB is a DiskDB on goleveldb.
type LevelDB struct {
	db *leveldb.DB
}

// NewLevelDB opens or creates a leveldb store at path, recovering a
// corrupted one.
func NewLevelDB(path string, cacheMB int, logger *log.Logger) (*LevelDB, error) {
	if cacheMB < minCache {
		cacheMB = minCache
	}
	options := &opt.Options{
		BlockCacheCapacity: cacheMB / 2 * opt.MiB,
		WriteBuffer:        cacheMB / 4 * opt.MiB,
		Filter:             filter.NewBloomFilter(10),
	}
	db, err := leveldb.OpenFile(path, options)
	if _, corrupted := err.(*ldberrors.ErrCorrupted); corrupted {
		logger.WithFields(log.Fields{"path": path, "error": err}).Warn("LevelDB corruption detected")
		db, err = leveldb.RecoverFile(path, nil)
		if err == nil {
			logger.WithField("path", path).Warn("LevelDB recovered from corruption")
		}
	}
	if err != nil {
		return nil, err
	}
	logger.WithFields(log.Fields{"path": path, "cache": cacheMB}).Info("Allocated leveldb cache")
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Has(key []byte) (bool, error) {
	return l.db.Has(key, nil)
}

func (l *LevelDB) Get(key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return v, err
}

func (l *LevelDB) Put(key []byte, value []byte) error {
	return l.db.Put(key, value, nil)
}

func (l *LevelDB) Delete(key []byte) error {
	return l.db.Delete(key, nil)
}

func (l *LevelDB) NewBatch() Batch {
	return &levelBatch{db: l.db, b: new(leveldb.Batch)}
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}

type levelBatch struct {
	db *leveldb.DB
	b  *leveldb.Batch
}

func (b *levelBatch) Put(key, value []byte) error {
	b.b.Put(key, value)
	return nil
}

func (b *levelBatch) Delete(key []byte) error {
	b.b.Delete(key)
	return nil
}

func (b *levelBatch) Len() int     { return b.b.Len() }
func (b *levelBatch) Write() error { return b.db.Write(b.b, nil) }
func (b *levelBatch) Reset()       { b.b.Reset() }
