// Package state implements the layered key/value overlay the execution
// core runs on, and the typed accessors of the chain state slots.
package state

import (
	"errors"
	"sync"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/rawdb"
	"github.com/hacash/node/core/types"
)

// LayeredState is one layer of the state overlay. A lookup checks this
// layer, then the parent chain, then disk. A tombstone in a closer layer
// masks every value below it.
type LayeredState struct {
	lock   sync.RWMutex
	parent *LayeredState
	disk   rawdb.DiskDB
	mem    types.MemMap
}

// NewLayeredState creates a root layer over disk. disk may be nil for a
// purely in-memory state.
func NewLayeredState(disk rawdb.DiskDB) *LayeredState {
	return &LayeredState{disk: disk, mem: make(types.MemMap)}
}

func (s *LayeredState) Get(key []byte) ([]byte, bool) {
	for cur := s; cur != nil; {
		cur.lock.RLock()
		v, ok := cur.mem[string(key)]
		next := cur.parent
		cur.lock.RUnlock()
		if ok {
			if v.Del {
				return nil, false
			}
			return v.Data, true
		}
		if next == nil {
			return cur.readDisk(key)
		}
		cur = next
	}
	return nil, false
}

func (s *LayeredState) readDisk(key []byte) ([]byte, bool) {
	if s.disk == nil {
		return nil, false
	}
	v, err := s.disk.Get(key)
	if errors.Is(err, rawdb.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		panic(err)
	}
	return v, true
}

func (s *LayeredState) Set(key, value []byte) {
	s.lock.Lock()
	s.mem[string(key)] = types.MemValue{Data: common.CopyBytes(value)}
	s.lock.Unlock()
}

func (s *LayeredState) Del(key []byte) {
	s.lock.Lock()
	s.mem[string(key)] = types.MemValue{Del: true}
	s.lock.Unlock()
}

// ForkSub returns an empty child layer over s.
func (s *LayeredState) ForkSub() types.State {
	return &LayeredState{parent: s, disk: s.disk, mem: make(types.MemMap)}
}

// MergeSub applies the child's writes onto s; later writes win.
func (s *LayeredState) MergeSub(child types.State) {
	mem := child.AsMem()
	s.lock.Lock()
	for k, v := range mem {
		s.mem[k] = v
	}
	s.lock.Unlock()
}

// Detach drops the parent link; misses then go straight to disk.
func (s *LayeredState) Detach() {
	s.lock.Lock()
	s.parent = nil
	s.lock.Unlock()
}

// CloneState deep copies this layer, keeping the parent link.
func (s *LayeredState) CloneState() types.State {
	s.lock.RLock()
	defer s.lock.RUnlock()
	mem := make(types.MemMap, len(s.mem))
	for k, v := range s.mem {
		mem[k] = types.MemValue{Data: common.CopyBytes(v.Data), Del: v.Del}
	}
	return &LayeredState{parent: s.parent, disk: s.disk, mem: mem}
}

// AsMem returns a copy of this layer's map.
func (s *LayeredState) AsMem() types.MemMap {
	s.lock.RLock()
	defer s.lock.RUnlock()
	mem := make(types.MemMap, len(s.mem))
	for k, v := range s.mem {
		mem[k] = v
	}
	return mem
}

// Len is the number of keys written in this layer.
func (s *LayeredState) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.mem)
}

// WriteToDisk flushes this layer in one batch. Parent layers are not
// written; they must already be on disk.
func (s *LayeredState) WriteToDisk() error {
	if s.disk == nil {
		return nil
	}
	s.lock.RLock()
	b := s.disk.NewBatch()
	for k, v := range s.mem {
		var err error
		if v.Del {
			err = b.Delete([]byte(k))
		} else {
			err = b.Put([]byte(k), v.Data)
		}
		if err != nil {
			s.lock.RUnlock()
			return err
		}
	}
	s.lock.RUnlock()
	return b.Write()
}
