package rawdb

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/hacash/node/common"
)

var errMemorydbClosed = errors.New("database closed")

// MemoryDB is an ephemeral DiskDB backed by a map.
type MemoryDB struct {
	db   map[string][]byte
	lock sync.RWMutex
}

// NewMemoryDB returns an empty in-memory store.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{db: make(map[string][]byte)}
}

func (m *MemoryDB) Has(key []byte) (bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.db == nil {
		return false, errMemorydbClosed
	}
	_, ok := m.db[string(key)]
	return ok, nil
}

func (m *MemoryDB) Get(key []byte) ([]byte, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.db == nil {
		return nil, errMemorydbClosed
	}
	if v, ok := m.db[string(key)]; ok {
		return common.CopyBytes(v), nil
	}
	return nil, ErrNotFound
}

func (m *MemoryDB) Put(key []byte, value []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.db == nil {
		return errMemorydbClosed
	}
	m.db[string(key)] = common.CopyBytes(value)
	return nil
}

func (m *MemoryDB) Delete(key []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.db == nil {
		return errMemorydbClosed
	}
	delete(m.db, string(key))
	return nil
}

// Len returns the number of entries.
func (m *MemoryDB) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.db)
}

func (m *MemoryDB) NewBatch() Batch {
	return &memBatch{db: m}
}

func (m *MemoryDB) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.db = nil
	return nil
}

type memOp struct {
	key    string
	value  []byte
	delete bool
}

type memBatch struct {
	db     *MemoryDB
	writes []memOp
}

func (b *memBatch) Put(key, value []byte) error {
	b.writes = append(b.writes, memOp{key: string(key), value: common.CopyBytes(value)})
	return nil
}

func (b *memBatch) Delete(key []byte) error {
	b.writes = append(b.writes, memOp{key: string(key), delete: true})
	return nil
}

func (b *memBatch) Len() int { return len(b.writes) }

func (b *memBatch) Write() error {
	b.db.lock.Lock()
	defer b.db.lock.Unlock()
	if b.db.db == nil {
		return errMemorydbClosed
	}
	for _, op := range b.writes {
		if op.delete {
			delete(b.db.db, op.key)
			continue
		}
		b.db.db[op.key] = op.value
	}
	return nil
}

func (b *memBatch) Reset() { b.writes = b.writes[:0] }
