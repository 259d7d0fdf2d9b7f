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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacash/node/common"
	"github.com/hacash/node/consensus/pow"
	"github.com/hacash/node/core/types"
)

func testParent() *types.BlockPkg {
	return types.BlockPkgFrom(testHasher, pow.GenesisBlock(testReg), types.BlkOriginUnknown)
}

func signedTestTx(t *testing.T, pass string, ts uint64) *types.NormalTx {
	t.Helper()
	acc := types.NewAccountFromPassword(pass)
	tx := types.NewNormalTx(testReg, types.TxType2, acc.Address, types.NewAmountSmall(1, 244), ts)
	_, err := tx.FillSign(acc)
	require.NoError(t, err)
	return tx
}

// Tests that a generated chain passes validation and simple corruptions don't.
func TestBlockValidation(t *testing.T) {
	cnf := testEngineConfig()
	v := NewBlockValidator(&cnf)
	parent := testParent()
	now := uint64(time.Now().Unix())

	good := GenerateChain(testReg, testHasher, parent, 1, func(i int, b *BlockGen) {
		b.AddTx(signedTestTx(t, "alice", now-10))
	})[0]
	assert.NoError(t, v.ValidateBlock(good, parent))

	tests := []struct {
		name string
		gen  func(int, *BlockGen)
		err  string
	}{
		{"prev hash", func(_ int, b *BlockGen) { b.SetPrevHash(common.Hash{1}) }, "need prev hash"},
		{"same time", func(_ int, b *BlockGen) { b.OffsetTime(-blockGenInterval) }, "cannot less than prev block timestamp"},
		{"future", func(_ int, b *BlockGen) { b.OffsetTime(int64(now)) }, "cannot more than system timestamp"},
		{"future tx", func(_ int, b *BlockGen) { b.AddTx(signedTestTx(t, "bob", now+3600)) }, "cannot more than now"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg := GenerateChain(testReg, testHasher, parent, 1, tt.gen)[0]
			err := v.ValidateBlock(pkg, parent)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestValidateBody(t *testing.T) {
	cnf := testEngineConfig()
	v := NewBlockValidator(&cnf)
	now := uint64(time.Now().Unix())
	gen := func(txs ...types.Transaction) *types.Block {
		return GenerateChain(testReg, testHasher, testParent(), 1, func(_ int, b *BlockGen) {
			for _, tx := range txs {
				b.AddTx(tx)
			}
		})[0].Block
	}

	blk := gen(signedTestTx(t, "alice", now))
	blk.MrklRoot = common.Hash{7}
	assert.ErrorContains(t, v.ValidateBody(blk, now), "block mrkl root need")

	blk = gen()
	blk.Txs = append(blk.Txs, pow.NewCoinbaseTx(1, testMiner, [16]byte{}))
	blk.TxCount++
	assert.EqualError(t, v.ValidateBody(blk, now), "tx(1) type cannot be coinbase")

	blk = gen(signedTestTx(t, "alice", now))
	blk.Txs[0], blk.Txs[1] = blk.Txs[1], blk.Txs[0]
	assert.EqualError(t, v.ValidateBody(blk, now), "tx(0) type must be coinbase")

	blk = gen()
	blk.TxCount = 2
	assert.EqualError(t, v.ValidateBody(blk, now), "block tx count need 1 but got 2")

	unsigned := types.NewNormalTx(testReg, types.TxType2, types.NewAccountFromPassword("carol").Address, types.NewAmountSmall(1, 244), now)
	assert.Error(t, v.ValidateBody(gen(unsigned), now))

	cnf.MaxBlockTxs = 1
	assert.EqualError(t, v.ValidateBody(gen(signedTestTx(t, "alice", now)), now), "block txs cannot more than 1")
}

func TestValidationBoundaries(t *testing.T) {
	cnf := testEngineConfig()
	v := NewBlockValidator(&cnf)
	parent := testParent()
	now := uint64(time.Now().Unix())
	good := GenerateChain(testReg, testHasher, parent, 1, nil)[0]

	sizes := []struct {
		size int
		ok   bool
	}{
		{cnf.MaxBlockSize + blockMetaSize, true},
		{cnf.MaxBlockSize + blockMetaSize + 1, false},
	}
	for _, tt := range sizes {
		pkg := *good
		pkg.Data = make([]byte, tt.size)
		err := v.ValidateBlock(&pkg, parent)
		if tt.ok {
			assert.NoError(t, err, "size %d", tt.size)
		} else {
			assert.ErrorContains(t, err, "block size cannot over", "size %d", tt.size)
		}
	}

	stamps := []struct {
		ts uint64
		ok bool
	}{
		{now, true},
		{now + 1, false},
	}
	for _, tt := range stamps {
		tx := signedTestTx(t, "alice", tt.ts)
		blk := GenerateChain(testReg, testHasher, parent, 1, func(_ int, b *BlockGen) { b.AddTx(tx) })[0].Block
		if tt.ok {
			assert.NoError(t, v.ValidateBody(blk, now))
			assert.NoError(t, v.ValidateTx(tx, now))
		} else {
			assert.ErrorContains(t, v.ValidateBody(blk, now), "cannot more than now")
			assert.ErrorContains(t, v.ValidateTx(tx, now), "cannot more than now")
		}
	}

	cb := pow.NewCoinbaseTx(1, testMiner, [16]byte{})
	assert.ErrorContains(t, v.ValidateTx(cb, now), "cannot be coinbase")
}
