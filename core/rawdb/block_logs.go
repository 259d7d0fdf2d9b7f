package rawdb

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/hacash/node/core/types"
)

// BlockLogs is the log batch of one block. Items stay in memory until
// WriteToDisk; nothing is recorded for the genesis block.
type BlockLogs struct {
	height uint64
	items  [][]byte
	db     DiskDB
}

// NewBlockLogs creates the height 0 batch over db.
func NewBlockLogs(db DiskDB) *BlockLogs {
	return &BlockLogs{db: db}
}

// Next creates the empty batch of height on the same store.
func (l *BlockLogs) Next(height uint64) *BlockLogs {
	return &BlockLogs{height: height, db: l.db}
}

func (l *BlockLogs) Height() uint64 { return l.height }

func (l *BlockLogs) Push(item types.Field) {
	if l.height == 0 {
		return
	}
	l.items = append(l.items, item.Serialize())
}

// Len is the number of pending items, or the stored count when none.
func (l *BlockLogs) Len() int {
	if len(l.items) > 0 {
		return len(l.items)
	}
	return l.storedLen(l.height)
}

func (l *BlockLogs) Truncate(n int) {
	if n < len(l.items) {
		l.items = l.items[:n]
	}
}

// Read returns item idx of this batch, from memory or disk.
func (l *BlockLogs) Read(idx int) ([]byte, bool) {
	if idx < len(l.items) {
		return l.items[idx], true
	}
	return l.Load(l.height, idx)
}

// Load reads a persisted item of any height.
func (l *BlockLogs) Load(height uint64, idx int) ([]byte, bool) {
	v, err := l.db.Get(logItemKey(height, idx))
	if errors.Is(err, ErrNotFound) {
		return nil, false
	}
	must(err, "read block log")
	return v, true
}

// Remove deletes the persisted items of height.
func (l *BlockLogs) Remove(height uint64) {
	n := l.storedLen(height)
	b := l.db.NewBatch()
	for i := 0; i < n; i++ {
		must(b.Delete(logItemKey(height, i)), "batch block log")
	}
	must(b.Delete(logCountKey(height)), "batch block log")
	must(b.Write(), "remove block logs")
}

// WriteToDisk flushes the pending items and their count in one batch.
func (l *BlockLogs) WriteToDisk() {
	if len(l.items) == 0 {
		return
	}
	b := l.db.NewBatch()
	for i, item := range l.items {
		must(b.Put(logItemKey(l.height, i), item), "batch block log")
	}
	var cnt [8]byte
	binary.BigEndian.PutUint64(cnt[:], uint64(len(l.items)))
	must(b.Put(logCountKey(l.height), cnt[:]), "batch block log")
	must(b.Write(), "save block logs")
}

func (l *BlockLogs) storedLen(height uint64) int {
	v, err := l.db.Get(logCountKey(height))
	if errors.Is(err, ErrNotFound) {
		return 0
	}
	must(err, "read block log count")
	if len(v) != 8 {
		panic(errors.Errorf("block log count of height %d corrupted", height))
	}
	return int(binary.BigEndian.Uint64(v))
}
