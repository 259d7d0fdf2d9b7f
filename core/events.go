// Copyright 2014 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package core

import (
	"sync"

	"github.com/hacash/node/core/types"
)

// ChainHeadEvent is posted when a block becomes the new head.
type ChainHeadEvent struct {
	Block *types.BlockPkg
}

// headFeed fans head events out to subscribers. Slow subscribers miss
// events rather than block the engine.
type headFeed struct {
	mu   sync.Mutex
	next int
	subs map[int]chan<- ChainHeadEvent
}

func (f *headFeed) subscribe(ch chan<- ChainHeadEvent) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs == nil {
		f.subs = make(map[int]chan<- ChainHeadEvent)
	}
	id := f.next
	f.next++
	f.subs[id] = ch
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

func (f *headFeed) send(ev ChainHeadEvent) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	sent := 0
	for _, ch := range f.subs {
		select {
		case ch <- ev:
			sent++
		default:
		}
	}
	return sent
}
