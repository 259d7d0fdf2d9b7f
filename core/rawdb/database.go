// Package rawdb holds the disk key/value backends and the block and log
// stores built on top of them.
package rawdb

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/hacash/node/log"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("not found")

// KeyValueReader reads from a key/value store.
type KeyValueReader interface {
	Has(key []byte) (bool, error)
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter writes to a key/value store.
type KeyValueWriter interface {
	Put(key []byte, value []byte) error
	Delete(key []byte) error
}

// Batch is a write-only set of updates committed atomically by Write.
type Batch interface {
	KeyValueWriter
	Len() int
	Write() error
	Reset()
}

// DiskDB is the persistent key/value store the node runs on. Every
// implementation is safe for concurrent use.
type DiskDB interface {
	KeyValueReader
	KeyValueWriter
	NewBatch() Batch
	Close() error
}

// Engine names of the supported backends.
const (
	EngineLevelDB = "leveldb"
	EnginePebble  = "pebble"
	EngineMemory  = "memory"
)

// Sub directories of the data dir.
const (
	DirBlocks = "blocks"
	DirState  = "state"
	DirLogs   = "logs"
)

// Open opens one backend at dir. cacheMB sizes the backend's own cache and
// the fastcache read-through layer; zero disables the latter.
func Open(engine string, dir string, cacheMB int, logger *log.Logger) (DiskDB, error) {
	var (
		db  DiskDB
		err error
	)
	switch engine {
	case EngineLevelDB, "":
		db, err = NewLevelDB(dir, cacheMB, logger)
	case EnginePebble:
		db, err = NewPebbleDB(dir, cacheMB, logger)
	case EngineMemory:
		db = NewMemoryDB()
	default:
		return nil, errors.Errorf("unknown database engine %q", engine)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database at %s", engine, dir)
	}
	if cacheMB > 0 && engine != EngineMemory {
		db = NewCachedDB(db, cacheMB)
	}
	return db, nil
}

// Databases are the three stores of a node data dir.
type Databases struct {
	Blocks DiskDB
	State  DiskDB
	Logs   DiskDB
}

// OpenDatabases opens blocks, state and logs under dataDir.
func OpenDatabases(engine string, dataDir string, cacheMB int, logger *log.Logger) (*Databases, error) {
	dbs := &Databases{}
	var err error
	if dbs.Blocks, err = Open(engine, filepath.Join(dataDir, DirBlocks), cacheMB/4, logger); err != nil {
		return nil, err
	}
	if dbs.State, err = Open(engine, filepath.Join(dataDir, DirState), cacheMB/2, logger); err != nil {
		dbs.Blocks.Close()
		return nil, err
	}
	if dbs.Logs, err = Open(engine, filepath.Join(dataDir, DirLogs), cacheMB/4, logger); err != nil {
		dbs.Blocks.Close()
		dbs.State.Close()
		return nil, err
	}
	return dbs, nil
}

// NewMemoryDatabases returns three in-memory stores.
func NewMemoryDatabases() *Databases {
	return &Databases{Blocks: NewMemoryDB(), State: NewMemoryDB(), Logs: NewMemoryDB()}
}

// Close closes every store and returns the first error.
func (d *Databases) Close() error {
	var first error
	for _, db := range []DiskDB{d.Blocks, d.State, d.Logs} {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
