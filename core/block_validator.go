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
	"fmt"
	"time"

	"github.com/hacash/node/core/types"
	"github.com/hacash/node/params"
)

// blockMetaSize is the allowance on top of the block size limit for the
// intro and framing.
const blockMetaSize = 100

// BlockValidator is responsible for validating block intros and bodies
// against their parent before execution.
type BlockValidator struct {
	config *params.EngineConfig
	now    func() time.Time
}

// NewBlockValidator returns a new block validator which is safe for re-use
func NewBlockValidator(config *params.EngineConfig) *BlockValidator {
	return &BlockValidator{config: config, now: time.Now}
}

// ValidateBlock checks cur against prev: linkage, time, size, the coinbase
// position, transaction limits and signatures, and the merkle root.
func (v *BlockValidator) ValidateBlock(cur *types.BlockPkg, prev *types.BlockPkg) error {
	blk := cur.Block
	if blk.PrevHash != prev.Hash {
		return fmt.Errorf("need prev hash %s but got %s", prev.Hash, blk.PrevHash)
	}
	now := uint64(v.now().Unix())
	blkTime, prevTime := uint64(blk.Timestamp), uint64(prev.Block.Timestamp)
	if blkTime > now {
		return fmt.Errorf("block timestamp %d cannot more than system timestamp %d", blkTime, now)
	}
	if blkTime <= prevTime {
		return fmt.Errorf("block timestamp %d cannot less than prev block timestamp %d", blkTime, prevTime)
	}
	if limit := v.config.MaxBlockSize + blockMetaSize; len(cur.Data) > limit {
		return fmt.Errorf("block size cannot over %d bytes", limit)
	}
	return v.ValidateBody(blk, now)
}

// ValidateBody checks the transaction list of blk.
func (v *BlockValidator) ValidateBody(blk *types.Block, now uint64) error {
	count := int(blk.TxCount)
	if count < 1 {
		return fmt.Errorf("block txs cannot empty, need coinbase tx")
	}
	if count > v.config.MaxBlockTxs {
		return fmt.Errorf("block txs cannot more than %d", v.config.MaxBlockTxs)
	}
	if count != len(blk.Txs) {
		return fmt.Errorf("block tx count need %d but got %d", len(blk.Txs), count)
	}
	total := 0
	for i, tx := range blk.Txs {
		isCoinbase := tx.Type() == types.TxTypeCoinbase
		if i == 0 && !isCoinbase {
			return fmt.Errorf("tx(%d) type must be coinbase", i)
		}
		if i > 0 && isCoinbase {
			return fmt.Errorf("tx(%d) type cannot be coinbase", i)
		}
		size := tx.Size()
		if size > v.config.MaxTxSize {
			return fmt.Errorf("tx size cannot more than %d bytes", v.config.MaxTxSize)
		}
		total += size
		if isCoinbase {
			continue
		}
		if err := v.ValidateTx(tx, now); err != nil {
			return fmt.Errorf("tx(%d) %w", i, err)
		}
		if err := tx.(*types.NormalTx).VerifySignature(); err != nil {
			return err
		}
	}
	if total > v.config.MaxBlockSize {
		return fmt.Errorf("block txs total size cannot over %d bytes", v.config.MaxBlockSize)
	}
	if root := types.MrklRoot(blk.TxHashes(true)); root != blk.MrklRoot {
		return fmt.Errorf("block mrkl root need %s but got %s", root, blk.MrklRoot)
	}
	return nil
}

// ValidateTx checks the limits a normal transaction must meet to be packed
// into a block made at now. Signatures are not checked.
func (v *BlockValidator) ValidateTx(tx types.Transaction, now uint64) error {
	if tx.Type() == types.TxTypeCoinbase {
		return fmt.Errorf("type cannot be coinbase")
	}
	if _, ok := tx.(*types.NormalTx); !ok {
		return fmt.Errorf("type %d not support", tx.Type())
	}
	if size := tx.Size(); size > v.config.MaxTxSize {
		return fmt.Errorf("size cannot more than %d bytes", v.config.MaxTxSize)
	}
	if n := len(tx.Actions()); n > v.config.MaxTxActions {
		return fmt.Errorf("action count cannot more than %d", v.config.MaxTxActions)
	}
	if tx.Timestamp() > now {
		return fmt.Errorf("timestamp %d cannot more than now %d", tx.Timestamp(), now)
	}
	return nil
}
