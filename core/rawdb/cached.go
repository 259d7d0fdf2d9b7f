package rawdb

import (
	"github.com/VictoriaMetrics/fastcache"
)

// maxCachedValue is the largest value fastcache stores with Set.
const maxCachedValue = 64 * 1024

// CachedDB puts a fastcache read-through layer in front of a DiskDB. Misses
// are not cached.
type CachedDB struct {
	DiskDB
	cache *fastcache.Cache
}

// NewCachedDB wraps db with a cache of cacheMB megabytes.
func NewCachedDB(db DiskDB, cacheMB int) *CachedDB {
	return &CachedDB{DiskDB: db, cache: fastcache.New(cacheMB * 1024 * 1024)}
}

func (c *CachedDB) Has(key []byte) (bool, error) {
	if c.cache.Has(key) {
		return true, nil
	}
	return c.DiskDB.Has(key)
}

func (c *CachedDB) Get(key []byte) ([]byte, error) {
	if v, ok := c.cache.HasGet(nil, key); ok {
		return v, nil
	}
	v, err := c.DiskDB.Get(key)
	if err != nil {
		return nil, err
	}
	if len(key)+len(v) < maxCachedValue {
		c.cache.Set(key, v)
	}
	return v, nil
}

func (c *CachedDB) Put(key []byte, value []byte) error {
	if err := c.DiskDB.Put(key, value); err != nil {
		return err
	}
	c.cache.Del(key)
	return nil
}

func (c *CachedDB) Delete(key []byte) error {
	if err := c.DiskDB.Delete(key); err != nil {
		return err
	}
	c.cache.Del(key)
	return nil
}

func (c *CachedDB) NewBatch() Batch {
	return &cachedBatch{Batch: c.DiskDB.NewBatch(), cache: c.cache}
}

func (c *CachedDB) Close() error {
	c.cache.Reset()
	return c.DiskDB.Close()
}

// cachedBatch invalidates every touched key once the batch is written.
type cachedBatch struct {
	Batch
	cache *fastcache.Cache
	keys  [][]byte
}

func (b *cachedBatch) Put(key, value []byte) error {
	b.keys = append(b.keys, append([]byte(nil), key...))
	return b.Batch.Put(key, value)
}

func (b *cachedBatch) Delete(key []byte) error {
	b.keys = append(b.keys, append([]byte(nil), key...))
	return b.Batch.Delete(key)
}

func (b *cachedBatch) Write() error {
	if err := b.Batch.Write(); err != nil {
		return err
	}
	for _, k := range b.keys {
		b.cache.Del(k)
	}
	return nil
}

func (b *cachedBatch) Reset() {
	b.keys = b.keys[:0]
	b.Batch.Reset()
}
