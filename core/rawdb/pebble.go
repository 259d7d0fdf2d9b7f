package rawdb

import (
	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"

	"github.com/hacash/node/log"
)

// PebbleDB is a DiskDB on pebble.
type PebbleDB struct {
	db *pebble.DB
}

// NewPebbleDB opens or creates a pebble store at path.
func NewPebbleDB(path string, cacheMB int, logger *log.Logger) (*PebbleDB, error) {
	if cacheMB < minCache {
		cacheMB = minCache
	}
	cache := pebble.NewCache(int64(cacheMB) * 1024 * 1024)
	defer cache.Unref()
	db, err := pebble.Open(path, &pebble.Options{
		Cache:        cache,
		MemTableSize: cacheMB * 1024 * 1024 / 4,
	})
	if err != nil {
		return nil, err
	}
	logger.WithFields(log.Fields{"path": path, "cache": cacheMB}).Info("Allocated pebble cache")
	return &PebbleDB{db: db}, nil
}

func (p *PebbleDB) Has(key []byte) (bool, error) {
	_, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	closer.Close()
	return true, nil
}

func (p *PebbleDB) Get(key []byte) ([]byte, error) {
	v, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	out := append([]byte(nil), v...)
	closer.Close()
	return out, nil
}

func (p *PebbleDB) Put(key []byte, value []byte) error {
	return p.db.Set(key, value, pebble.Sync)
}

func (p *PebbleDB) Delete(key []byte) error {
	return p.db.Delete(key, pebble.Sync)
}

func (p *PebbleDB) NewBatch() Batch {
	return &pebbleBatch{b: p.db.NewBatch()}
}

func (p *PebbleDB) Close() error {
	return p.db.Close()
}

type pebbleBatch struct {
	b *pebble.Batch
}

func (b *pebbleBatch) Put(key, value []byte) error { return b.b.Set(key, value, nil) }
func (b *pebbleBatch) Delete(key []byte) error     { return b.b.Delete(key, nil) }
func (b *pebbleBatch) Len() int                    { return int(b.b.Count()) }
func (b *pebbleBatch) Write() error                { return b.b.Commit(pebble.Sync) }
func (b *pebbleBatch) Reset()                      { b.b.Reset() }
