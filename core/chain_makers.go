// Copyright 2015 The go-ethereum Authors
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
	"github.com/hacash/node/common"
	"github.com/hacash/node/consensus/pow"
	"github.com/hacash/node/core/types"
)

// blockGenInterval is the timestamp step between generated blocks.
const blockGenInterval = 300

// BlockGen creates blocks for testing.
// See GenerateChain for a detailed explanation.
type BlockGen struct {
	i      int
	parent *types.BlockPkg
	block  *types.Block
	cb     *types.CoinbaseTx
}

// SetCoinbase sets the reward address of the generated block.
func (b *BlockGen) SetCoinbase(addr common.Address) {
	b.cb.Address = addr
}

// SetMessage sets the miner message of the coinbase. Blocks that differ
// only by message make competing forks.
func (b *BlockGen) SetMessage(msg string) {
	b.cb.Message = types.Fixed16{}
	copy(b.cb.Message[:], msg)
}

// OffsetTime moves the block timestamp by seconds.
func (b *BlockGen) OffsetTime(seconds int64) {
	b.block.Timestamp = types.Timestamp(int64(b.block.Timestamp) + seconds)
}

// SetPrevHash overrides the parent link, to build invalid blocks.
func (b *BlockGen) SetPrevHash(hash common.Hash) {
	b.block.PrevHash = hash
}

// AddTx appends a transaction after the coinbase. It is not executed.
func (b *BlockGen) AddTx(tx types.Transaction) {
	if err := b.block.PushTx(tx); err != nil {
		panic(err)
	}
}

// Number returns the height of the generated block.
func (b *BlockGen) Number() uint64 { return uint64(b.block.Height) }

// Index is the position of the block in the generated chain.
func (b *BlockGen) Index() int { return b.i }

// Parent returns the block the generated block builds on.
func (b *BlockGen) Parent() *types.BlockPkg { return b.parent }

// GenerateChain creates a chain of n blocks on top of parent. The first
// block is a child of parent; gen is called for every block to change its
// coinbase, time and transactions. Blocks are hashed with hasher and are
// not sealed, so they only pass a fake PoW check or the historic mainnet
// heights that skip it.
func GenerateChain(reg *types.ActionRegistry, hasher types.BlockHasher, parent *types.BlockPkg, n int, gen func(int, *BlockGen)) []*types.BlockPkg {
	blocks := make([]*types.BlockPkg, 0, n)
	for i := 0; i < n; i++ {
		height := parent.Height + 1
		blk := types.NewBlock(reg)
		blk.Height = types.BlockHeight(height)
		blk.Timestamp = types.Timestamp(uint64(parent.Block.Timestamp) + blockGenInterval)
		blk.PrevHash = parent.Hash
		blk.Difficulty = parent.Block.Difficulty
		if blk.Difficulty == 0 {
			blk.Difficulty = types.Uint4(pow.LowestDifficulty)
		}
		cb := pow.NewCoinbaseTx(height, common.Address{}, [16]byte{})
		if err := blk.PushTx(cb); err != nil {
			panic(err)
		}
		b := &BlockGen{i: i, parent: parent, block: blk, cb: cb}
		if gen != nil {
			gen(i, b)
		}
		blk.UpdateMrklRoot()
		pkg := types.BlockPkgFrom(hasher, blk, types.BlkOriginUnknown)
		blocks = append(blocks, pkg)
		parent = pkg
	}
	return blocks
}

// WithOrigin copies the packages with origin set, sharing the blocks.
func WithOrigin(blocks []*types.BlockPkg, origin types.BlkOrigin) []*types.BlockPkg {
	out := make([]*types.BlockPkg, len(blocks))
	for i, pkg := range blocks {
		cp := *pkg
		cp.Origin = origin
		out[i] = &cp
	}
	return out
}

// ConcatBlocks serializes blocks back to back, the format of a sync batch.
func ConcatBlocks(blocks []*types.BlockPkg) []byte {
	var out []byte
	for _, pkg := range blocks {
		out = append(out, pkg.Data...)
	}
	return out
}
