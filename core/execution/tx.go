package execution

import (
	"fmt"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/operate"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/tex"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/params"
)

// A transaction of the early chain was included twice; the second
// inclusion at this height is part of history.
var (
	repeatedTxHash   = common.Hash{0xf2, 0x2d, 0xeb, 0x27, 0xdd, 0x28, 0x93, 0x39, 0x7c, 0x2b, 0xc2, 0x03, 0xdd, 0xc9, 0xbc, 0x90, 0x34, 0xe4, 0x55, 0xfe, 0x63, 0x0d, 0x8e, 0xe3, 0x10, 0xe8, 0xb5, 0xec, 0xc6, 0xdc, 0x56, 0x28}
	repeatedTxHeight = uint64(63448)
)

// ExecuteTx resets ctx for tx and runs it on a child of the current state.
// The child is merged only if every action and the settlement succeed.
func ExecuteTx(ctx *ContextInst, tx types.Transaction, vms types.VMFactory) error {
	ctx.ResetForTx(tx)
	old := ctx.StateFork()
	var err error
	switch t := tx.(type) {
	case *types.CoinbaseTx:
		err = operate.HacAdd(state.Wrap(ctx.State()), t.Address, t.Reward)
	case *types.NormalTx:
		err = executeNormalTx(ctx, t, vms)
	default:
		err = fmt.Errorf("transaction type %d not support", tx.Type())
	}
	if err != nil {
		ctx.StateRecover(old)
		return err
	}
	ctx.StateMerge(old)
	return nil
}

// checkTx applies the structural rules that fast sync skips.
func checkTx(env *types.Env, st state.CoreState, tx *types.NormalTx) error {
	height := env.Block.Height
	if len(tx.Actions()) == 0 {
		return fmt.Errorf("tx actions cannot empty.")
	}
	if !tx.Main().IsPrivakey() {
		return fmt.Errorf("tx fee address version must be PRIVAKEY type.")
	}
	for _, adr := range tx.Addrs() {
		if err := adr.CheckVersion(); err != nil {
			return err
		}
	}
	if height > params.FeeSizeLimitHeight && tx.Fee().Size() > params.FeeSizeMax {
		return fmt.Errorf("tx fee size cannot be more than %d bytes when block height abover %d", params.FeeSizeMax, params.FeeSizeLimitHeight)
	}
	if height > params.TxTypeOneForbidHeight && tx.Type() <= types.TxType1 {
		return fmt.Errorf("Type 1 transactions have been deprecated after height %d", params.TxTypeOneForbidHeight)
	}
	hx := tx.Hash()
	if exist, ok := st.TxExist(hx); ok {
		if exist != repeatedTxHeight || hx != repeatedTxHash {
			return fmt.Errorf("tx %s already exist in height %d", hx, exist)
		}
	}
	return nil
}

func executeNormalTx(ctx *ContextInst, tx *types.NormalTx, vms types.VMFactory) error {
	env := ctx.Env()
	st := state.Wrap(ctx.State())
	if !env.Chain.FastSync {
		if err := checkTx(env, st, tx); err != nil {
			return err
		}
	}
	st.SetTxExist(tx.Hash(), env.Block.Height)
	if tx.Type() >= types.TxType3 && tx.GasMax > 0 && vms != nil {
		ctx.ReplaceVM(vms(env.Block.Height, uint8(tx.GasMax)))
	}
	for _, act := range tx.Actions() {
		ctx.SetDepth(0)
		if _, _, err := ctx.ActionCall(act); err != nil {
			return err
		}
	}
	if err := tex.Settle(ctx); err != nil {
		return err
	}
	// actions may have forked, take the current layer again
	return operate.HacSub(state.Wrap(ctx.State()), tx.Main(), tx.Fee())
}
