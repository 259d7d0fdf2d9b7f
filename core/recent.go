package core

import (
	"strings"
	"time"

	"modernc.org/mathutil"

	"github.com/hacash/node/core/types"
)

const (
	feeRingSize    = 8  // blocks averaged by AverageFeePurity
	feeSampleTxs   = 30 // blocks with fewer txs count as the lowest purity
	recentKeepMult = 2  // recent blocks kept, in unstable depths
)

// recordRecent pushes the summary of a new head and drops the entries
// more than two unstable depths below it.
func (e *Engine) recordRecent(pkg *types.BlockPkg) {
	info := &types.RecentBlock{
		Height:   pkg.Height,
		Hash:     pkg.Hash,
		Prev:     pkg.Block.PrevHash,
		Txs:      uint32(pkg.Block.TxCount),
		Time:     uint64(pkg.Block.Timestamp),
		ArriveAt: uint64(time.Now().Unix()),
	}
	if cb, err := pkg.Block.Coinbase(); err == nil {
		info.Miner = cb.Address
		info.Reward = cb.Reward
		info.Message = strings.TrimRight(string(cb.Message[:]), "\x00 ")
	}
	keep := e.config.UnstableBlock * recentKeepMult
	e.recentMu.Lock()
	defer e.recentMu.Unlock()
	kept := make([]*types.RecentBlock, 0, len(e.recent)+1)
	kept = append(kept, info)
	for _, rb := range e.recent {
		if rb.Height+keep > pkg.Height && rb.Height != pkg.Height {
			kept = append(kept, rb)
		}
	}
	e.recent = kept
}

// RecentBlocks lists the recently imported heads, newest first.
func (e *Engine) RecentBlocks() []*types.RecentBlock {
	e.recentMu.Lock()
	defer e.recentMu.Unlock()
	return append([]*types.RecentBlock(nil), e.recent...)
}

// blockFeePurity is the mean fee purity of the middle third of the block
// transactions, or the configured lowest purity for small blocks.
func blockFeePurity(blk *types.Block, lowest uint64) uint64 {
	n := len(blk.Txs)
	if n < feeSampleTxs {
		return lowest
	}
	third := n / 3
	var sum uint64
	for _, tx := range blk.Txs[third : third*2] {
		if ntx, ok := tx.(*types.NormalTx); ok {
			sum += ntx.FeePurity()
		}
	}
	return sum / uint64(third)
}

func (e *Engine) recordAverageFee(blk *types.Block) {
	avg := blockFeePurity(blk, e.config.LowestFeePurity)
	e.feeMu.Lock()
	defer e.feeMu.Unlock()
	e.fees = append([]uint64{avg}, e.fees...)
	if len(e.fees) > feeRingSize {
		e.fees = e.fees[:feeRingSize]
	}
}

// AverageFeePurity averages the fee ring, never below the configured
// lowest purity.
func (e *Engine) AverageFeePurity() uint64 {
	e.feeMu.Lock()
	defer e.feeMu.Unlock()
	if len(e.fees) == 0 {
		return e.config.LowestFeePurity
	}
	var sum uint64
	for _, f := range e.fees {
		sum += f
	}
	return mathutil.MaxUint64(sum/uint64(len(e.fees)), e.config.LowestFeePurity)
}
