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
	"time"

	"github.com/hacash/node/common"
	"github.com/hacash/node/common/exiter"
	"github.com/hacash/node/consensus/pow"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/log"
)

const (
	minerRecommit = time.Minute // repack to pick up new pool transactions
	minerRetry    = time.Second
)

// Sealer searches the nonce of a block intro.
type Sealer interface {
	Seal(intro *types.BlockIntro, target common.Hash, results chan<- *types.BlockIntro, stop <-chan struct{}) error
}

// Miner packs blocks from the pool on top of the head, seals them and
// inserts the result as a discovered block.
type Miner struct {
	engine *Engine
	sealer Sealer
	logger *log.Logger

	mu      sync.Mutex
	pending *types.Block
}

// NewMiner creates a miner, Run starts it.
func NewMiner(engine *Engine, sealer Sealer, logger *log.Logger) *Miner {
	if logger == nil {
		logger = log.Global
	}
	return &Miner{engine: engine, sealer: sealer, logger: logger}
}

// Pending returns the block being sealed, nil when idle.
func (miner *Miner) Pending() *types.Block {
	miner.mu.Lock()
	defer miner.mu.Unlock()
	return miner.pending
}

func (miner *Miner) setPending(blk *types.Block) {
	miner.mu.Lock()
	miner.pending = blk
	miner.mu.Unlock()
}

// Run mines until the worker is told to quit.
func (miner *Miner) Run(w *exiter.Worker) {
	defer w.End()
	cnf := miner.engine.Config()
	if cnf.MinerRewardAddress == (common.Address{}) {
		miner.logger.WithField("err", ErrNoMinerAddress).Error("Miner not started")
		return
	}
	heads := make(chan ChainHeadEvent, 1)
	unsubscribe := miner.engine.SubscribeChainHead(heads)
	defer unsubscribe()
	defer miner.setPending(nil)

	miner.logger.WithField("reward", cnf.MinerRewardAddress.String()).Info("Miner started")
	for {
		select {
		case <-w.Wait():
			miner.logger.Info("Miner stopped")
			return
		default:
		}
		blk, err := miner.engine.Minter().PackingNextBlock(miner.engine, miner.engine.TxPool())
		if err != nil {
			miner.logger.WithField("err", err).Warn("Failed to pack next block")
			if !miner.pause(w, minerRetry) {
				return
			}
			continue
		}
		if !miner.waitTimestamp(w, blk) {
			return
		}
		miner.setPending(blk)
		if !miner.seal(w, blk, heads) {
			return
		}
	}
}

// waitTimestamp holds a block packed in the same second as its parent.
func (miner *Miner) waitTimestamp(w *exiter.Worker, blk *types.Block) bool {
	prev := miner.engine.Latest().Block
	for blk.Timestamp <= prev.Timestamp {
		if !miner.pause(w, minerRetry) {
			return false
		}
		blk.Timestamp = types.Timestamp(time.Now().Unix())
	}
	return true
}

func (miner *Miner) pause(w *exiter.Worker, d time.Duration) bool {
	select {
	case <-w.Wait():
		return false
	case <-time.After(d):
		return true
	}
}

// seal runs one nonce search. It returns false when the worker quits.
func (miner *Miner) seal(w *exiter.Worker, blk *types.Block, heads <-chan ChainHeadEvent) bool {
	results := make(chan *types.BlockIntro, 1)
	stop := make(chan struct{})
	defer close(stop)

	target := pow.DifficultyToHash(uint32(blk.Difficulty))
	if err := miner.sealer.Seal(&blk.BlockIntro, target, results, stop); err != nil {
		miner.logger.WithField("err", err).Error("Block sealing failed")
		return miner.pause(w, minerRetry)
	}
	recommit := time.NewTimer(minerRecommit)
	defer recommit.Stop()
	select {
	case <-w.Wait():
		return false
	case <-heads:
		return true
	case <-recommit.C:
		return true
	case intro := <-results:
		if intro == nil {
			return true // nonce space exhausted, repack with a new timestamp
		}
		blk.BlockIntro = *intro
		pkg := types.BlockPkgFrom(miner.engine.Capabilities().Hasher, blk, types.BlkOriginMint)
		if err := miner.engine.Discover(pkg); err != nil {
			miner.logger.WithFields(log.Fields{
				"height": pkg.Height,
				"err":    err,
			}).Warn("Mined block rejected")
			return true
		}
		// drain the event of our own block
		select {
		case <-heads:
		default:
		}
		miner.logger.WithFields(log.Fields{
			"height": pkg.Height,
			"hash":   pkg.Hash,
			"txs":    len(blk.Txs),
		}).Info("Successfully sealed new block")
		return true
	}
}
