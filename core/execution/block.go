package execution

import (
	"fmt"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/operate"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
)

// Options are the capabilities block execution runs with.
type Options struct {
	VMs    types.VMFactory
	Hook   ActionHook
	Reward func(height uint64) types.Amount // nil skips the coinbase check
}

// ExecuteBlock runs every transaction of blk on st in order, then credits
// the collected fees to the coinbase address. st is written in place; the
// caller hands in a fork of the parent state.
func ExecuteBlock(chain types.ChainInfo, blk *types.Block, hash common.Hash, st types.State, logs types.Logs, opts Options) error {
	cb, err := blk.Coinbase()
	if err != nil {
		return err
	}
	height := uint64(blk.Height)
	if opts.Reward != nil {
		if want := opts.Reward(height); !cb.Reward.Equal(want) {
			return fmt.Errorf("block coinbase reward need %s but got %s", want, cb.Reward)
		}
	}
	env := types.Env{
		Chain: chain,
		Block: types.BlockInfo{Height: height, Hash: hash, Coinbase: cb.Address},
	}
	ctx := NewContext(env, st, logs, cb)
	ctx.SetHook(opts.Hook)

	var feeGot, feeBurn types.Amount
	for i, tx := range blk.Txs {
		if err := ExecuteTx(ctx, tx, opts.VMs); err != nil {
			return fmt.Errorf("block height %d tx %d %s execute error: %w", height, i, tx.Hash(), err)
		}
		got := tx.FeeGot()
		if feeGot, err = feeGot.Add(got); err != nil {
			return err
		}
		burn, err := tx.Fee().Sub(got)
		if err != nil {
			return err
		}
		if feeBurn, err = feeBurn.Add(burn); err != nil {
			return err
		}
	}
	cst := state.Wrap(ctx.State())
	if feeGot.IsPositive() {
		if err := operate.HacAdd(cst, cb.Address, feeGot); err != nil {
			return err
		}
	}
	if feeBurn.IsPositive() {
		total := cst.TotalCount()
		zhu, ok := feeBurn.ToZhuUint64()
		if !ok {
			return fmt.Errorf("block height %d burned fee %s overflow zhu", height, feeBurn)
		}
		total.BurnedFeeZhu += types.Uint8(zhu)
		cst.SetTotalCount(&total)
	}
	return nil
}

// TryExecuteTx runs tx on st as if it were packed at height into a block
// whose hash is not known yet.
func TryExecuteTx(chain types.ChainInfo, tx types.Transaction, height uint64, st types.State, opts Options) error {
	env := types.Env{
		Chain: chain,
		Block: types.BlockInfo{Height: height},
	}
	ctx := NewContext(env, st, nil, tx)
	ctx.SetHook(opts.Hook)
	return ExecuteTx(ctx, tx, opts.VMs)
}
