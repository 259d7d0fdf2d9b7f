package execution_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hacash/node/common"
	"github.com/hacash/node/consensus/pow"
	"github.com/hacash/node/core/actions"
	"github.com/hacash/node/core/execution"
	"github.com/hacash/node/core/rawdb"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
	mock_types "github.com/hacash/node/core/types/mocks"
	"github.com/hacash/node/params"
)

var reg = actions.DefaultRegistry(pow.NewFaker())

func ptr(a common.Address) types.AddrOrPtr { return types.AddrOrPtrFromAddress(a) }

func setHac(st types.State, addr common.Address, amt types.Amount) {
	bls := state.Balance{Hacash: amt}
	state.Wrap(st).SetBalance(addr, &bls)
}

func hacOf(st types.State, addr common.Address) string {
	bls, _ := state.Wrap(st).Balance(addr)
	return bls.Hacash.String()
}

// newTx builds a signed transaction of the main account over acts.
func newTx(t *testing.T, ty uint8, main *types.Account, fee types.Amount, acts []types.Action, signers ...*types.Account) *types.NormalTx {
	t.Helper()
	tx := types.NewNormalTx(reg, ty, main.Address, fee, 1700000000)
	for _, act := range acts {
		require.NoError(t, tx.PushAction(act))
	}
	for _, acc := range append([]*types.Account{main}, signers...) {
		_, err := tx.FillSign(acc)
		require.NoError(t, err)
	}
	return tx
}

func newCtx(tx types.Transaction, st types.State) *execution.ContextInst {
	env := types.Env{Block: types.BlockInfo{Height: 10}}
	ctx := execution.NewContext(env, st, nil, tx)
	ctx.ResetForTx(tx)
	return ctx
}

func TestExecuteTransfer(t *testing.T) {
	sender := types.NewAccountFromPassword("123456")
	to := common.MustParseAddress("1LsQLqkd8FQDh3R7ZhxC5fndNf92WfhM19")

	st := state.NewLayeredState(nil)
	setHac(st, sender.Address, types.NewAmountSmall(12, 244))

	tx := newTx(t, types.TxType2, sender, types.NewAmountSmall(1, 244), []types.Action{
		&actions.HacToTrs{To: ptr(to), Hacash: types.NewAmountSmall(2, 244)},
	})
	require.NoError(t, tx.VerifySignature())
	require.NoError(t, execution.TryExecuteTx(types.ChainInfo{}, tx, 10, st, execution.Options{}))

	assert.Equal(t, "9:244", hacOf(st, sender.Address))
	assert.Equal(t, "2:244", hacOf(st, to))
	height, ok := state.Wrap(st).TxExist(tx.Hash())
	assert.True(t, ok)
	assert.Equal(t, uint64(10), height)

	// the same transaction cannot be executed twice
	err := execution.TryExecuteTx(types.ChainInfo{}, tx, 11, st, execution.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exist in height 10")
	assert.Equal(t, "9:244", hacOf(st, sender.Address))
}

func TestExecuteTxRollsBackOnFailure(t *testing.T) {
	sender := types.NewAccountFromPassword("123456")
	to := common.MustParseAddress("1LsQLqkd8FQDh3R7ZhxC5fndNf92WfhM19")

	st := state.NewLayeredState(nil)
	setHac(st, sender.Address, types.NewAmountSmall(3, 244))

	tx := newTx(t, types.TxType2, sender, types.NewAmountSmall(1, 244), []types.Action{
		&actions.HacToTrs{To: ptr(to), Hacash: types.NewAmountSmall(1, 244)},
		&actions.HacToTrs{To: ptr(to), Hacash: types.NewAmountSmall(5, 244)},
	})
	require.Error(t, execution.TryExecuteTx(types.ChainInfo{}, tx, 10, st, execution.Options{}))

	assert.Equal(t, "3:244", hacOf(st, sender.Address))
	assert.Equal(t, "0:0", hacOf(st, to))
	_, ok := state.Wrap(st).TxExist(tx.Hash())
	assert.False(t, ok)
}

func TestExecuteTxChecks(t *testing.T) {
	sender := types.NewAccountFromPassword("123456")
	st := state.NewLayeredState(nil)
	setHac(st, sender.Address, types.NewAmountSmall(3, 244))

	empty := newTx(t, types.TxType2, sender, types.NewAmountSmall(1, 244), nil)
	err := execution.TryExecuteTx(types.ChainInfo{}, empty, 10, st, execution.Options{})
	require.Error(t, err)
	assert.Equal(t, "tx actions cannot empty.", err.Error())

	old := newTx(t, types.TxType1, sender, types.NewAmountSmall(1, 244), []types.Action{
		&actions.TxMessage{},
	})
	err = execution.TryExecuteTx(types.ChainInfo{}, old, params.TxTypeOneForbidHeight+1, st, execution.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Type 1 transactions have been deprecated")
}

func TestExecuteBlockCreditsFees(t *testing.T) {
	sender := types.NewAccountFromPassword("123456")
	miner := types.NewAccountFromPassword("miner").Address
	to := common.MustParseAddress("1LsQLqkd8FQDh3R7ZhxC5fndNf92WfhM19")

	st := state.NewLayeredState(nil)
	setHac(st, sender.Address, types.NewAmountSmall(12, 244))

	blk := types.NewBlock(reg)
	blk.Height = 1
	require.NoError(t, blk.PushTx(pow.NewCoinbaseTx(1, miner, [16]byte{})))
	require.NoError(t, blk.PushTx(newTx(t, types.TxType2, sender, types.NewAmountSmall(1, 244), []types.Action{
		&actions.HacToTrs{To: ptr(to), Hacash: types.NewAmountSmall(2, 244)},
	})))

	opts := execution.Options{Reward: pow.BlockReward}
	require.NoError(t, execution.ExecuteBlock(types.ChainInfo{}, blk, common.Hash{1}, st, nil, opts))

	assert.Equal(t, "9:244", hacOf(st, sender.Address))
	assert.Equal(t, "2:244", hacOf(st, to))
	assert.Equal(t, "10001:244", hacOf(st, miner))
}

func TestExecuteBlockBurnedFee(t *testing.T) {
	sender := types.NewAccountFromPassword("123456")
	miner := types.NewAccountFromPassword("miner").Address
	to := common.MustParseAddress("1LsQLqkd8FQDh3R7ZhxC5fndNf92WfhM19")
	burnBlock := func(st types.State, fee types.Amount) *types.Block {
		hac, err := types.ParseAmount("100000:255")
		require.NoError(t, err)
		bls := state.Balance{Hacash: hac}
		require.NoError(t, bls.AssetSet(state.AssetAmt{Serial: 1, Amount: 10}))
		state.Wrap(st).SetBalance(sender.Address, &bls)

		blk := types.NewBlock(reg)
		blk.Height = 1
		require.NoError(t, blk.PushTx(pow.NewCoinbaseTx(1, miner, [16]byte{})))
		require.NoError(t, blk.PushTx(newTx(t, types.TxType2, sender, fee, []types.Action{
			&actions.AssetToTrs{To: ptr(to), Amount: state.AssetAmt{Serial: 1, Amount: 1}},
		})))
		return blk
	}
	opts := execution.Options{Reward: pow.BlockReward}

	st := state.NewLayeredState(nil)
	require.NoError(t, execution.ExecuteBlock(types.ChainInfo{}, burnBlock(st, types.NewAmountSmall(10, 244)), common.Hash{1}, st, nil, opts))
	total := state.Wrap(st).TotalCount()
	// nine tenths of 10:244
	assert.EqualValues(t, 90000, total.BurnedFeeZhu)

	// 27e18 zhu is burned, more than a uint64 holds
	fee, err := types.ParseAmount("30000:255")
	require.NoError(t, err)
	st = state.NewLayeredState(nil)
	err = execution.ExecuteBlock(types.ChainInfo{}, burnBlock(st, fee), common.Hash{1}, st, nil, opts)
	assert.ErrorContains(t, err, "overflow zhu")
}

func TestExecuteBlockRewardMismatch(t *testing.T) {
	miner := types.NewAccountFromPassword("miner").Address
	cb := pow.NewCoinbaseTx(1, miner, [16]byte{})
	cb.Reward = types.NewAmountMei(2)

	blk := types.NewBlock(reg)
	blk.Height = 1
	require.NoError(t, blk.PushTx(cb))

	st := state.NewLayeredState(nil)
	err := execution.ExecuteBlock(types.ChainInfo{}, blk, common.Hash{1}, st, nil, execution.Options{Reward: pow.BlockReward})
	require.Error(t, err)
	assert.Equal(t, "block coinbase reward need 1:248 but got 2:248", err.Error())
}

func TestAstIfRollsBackFailedCondition(t *testing.T) {
	main := types.NewAccountFromPassword("main")
	x := types.NewAccountFromPassword("x")
	y := types.NewAccountFromPassword("y").Address
	z := types.NewAccountFromPassword("z").Address

	st := state.NewLayeredState(nil)
	setHac(st, main.Address, types.NewAmountMei(100))
	setHac(st, x.Address, types.NewAmountMei(3))

	branch := actions.NewAstIf(reg)
	branch.Cond = *actions.NewAstSelectOf(reg, 1, 1, &actions.HacFromTrs{From: ptr(x.Address), Hacash: types.NewAmountMei(5)})
	branch.BrIf = *actions.NewAstSelectOf(reg, 1, 1, &actions.SatToTrs{To: ptr(y), Satoshi: 100})
	branch.BrElse = *actions.NewAstSelectOf(reg, 1, 1, &actions.HacToTrs{To: ptr(z), Hacash: types.NewAmountMei(20)})

	tx := newTx(t, types.TxType3, main, types.NewAmountMei(1), []types.Action{branch}, x)
	require.NoError(t, execution.TryExecuteTx(types.ChainInfo{}, tx, 10, st, execution.Options{}))

	assert.Equal(t, "79:248", hacOf(st, main.Address))
	assert.Equal(t, "3:248", hacOf(st, x.Address))
	assert.Equal(t, "2:249", hacOf(st, z))
	bls, _ := state.Wrap(st).Balance(y)
	assert.Zero(t, bls.Satoshi)
}

func TestAstSelectBounds(t *testing.T) {
	main := types.NewAccountFromPassword("main")
	to := types.NewAccountFromPassword("to").Address

	ok := func() types.Action { return &actions.HacToTrs{To: ptr(to), Hacash: types.NewAmountMei(1)} }
	bad := func() types.Action { return &actions.HacToTrs{To: ptr(to), Hacash: types.NewAmountMei(1000)} }

	tests := []struct {
		name     string
		sel      *actions.AstSelect
		err      string
		received string
	}{
		{"none required", actions.NewAstSelectOf(reg, 0, 2, bad(), bad()), "", "0:0"},
		{"max stops", actions.NewAstSelectOf(reg, 1, 1, ok(), ok()), "", "1:248"},
		{"failed child skipped", actions.NewAstSelectOf(reg, 2, 2, bad(), ok(), ok()), "", "2:248"},
		{"min not reached", actions.NewAstSelectOf(reg, 2, 2, ok(), bad()), "must succeed at least 2 but only 1", "0:0"},
		{"min above max", actions.NewAstSelectOf(reg, 2, 1, ok()), "max cannot less than min", "0:0"},
		{"max above list", actions.NewAstSelectOf(reg, 1, 3, ok()), "max cannot more than list num", "0:0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := state.NewLayeredState(nil)
			setHac(st, main.Address, types.NewAmountMei(10))
			tx := newTx(t, types.TxType3, main, types.NewAmountMei(1), []types.Action{tt.sel})

			ctx := newCtx(tx, st)
			_, _, err := ctx.ActionCall(tt.sel)
			if tt.err == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.err)
			}
			assert.Equal(t, tt.received, hacOf(ctx.State(), to))
		})
	}
}

func TestAstTreeDepth(t *testing.T) {
	main := types.NewAccountFromPassword("main")
	nest := func(levels int) *actions.AstSelect {
		node := actions.NewAstSelectOf(reg, 0, 0)
		for i := 1; i < levels; i++ {
			node = actions.NewAstSelectOf(reg, 1, 1, node)
		}
		return node
	}

	deep := nest(params.AstTreeDepthMax)
	ctx := newCtx(newTx(t, types.TxType3, main, types.NewAmountMei(1), []types.Action{deep}), state.NewLayeredState(nil))
	_, _, err := ctx.ActionCall(deep)
	require.NoError(t, err)
	assert.Zero(t, ctx.AstLevel())

	// the nodes above the limit are entered by hand, a wrapping select
	// would hide the error behind its own
	ctx = newCtx(newTx(t, types.TxType3, main, types.NewAmountMei(1), []types.Action{deep}), state.NewLayeredState(nil))
	for i := 0; i < params.AstTreeDepthMax; i++ {
		_, err := ctx.AstEnter()
		require.NoError(t, err)
	}
	_, _, err = ctx.ActionCall(actions.NewAstSelectOf(reg, 0, 0))
	require.Error(t, err)
	assert.Equal(t, fmt.Sprintf("ast tree depth %d exceeded max %d", params.AstTreeDepthMax+1, params.AstTreeDepthMax), err.Error())
	assert.Equal(t, params.AstTreeDepthMax, ctx.AstLevel())

	ctx = newCtx(newTx(t, types.TxType3, main, types.NewAmountMei(1), []types.Action{deep}), state.NewLayeredState(nil))
	_, _, err = ctx.ActionCall(nest(params.AstTreeDepthMax + 1))
	require.Error(t, err)
	assert.Zero(t, ctx.AstLevel())
}

func TestActionLevels(t *testing.T) {
	main := types.NewAccountFromPassword("main")
	st := state.NewLayeredState(nil)

	mint := actions.NewDiamondMint(pow.NewFaker())
	msg := &actions.TxMessage{}
	ctx := newCtx(newTx(t, types.TxType2, main, types.NewAmountMei(1), []types.Action{mint, msg}), st)
	_, _, err := ctx.ActionCall(mint)
	require.Error(t, err)
	assert.Equal(t, fmt.Sprintf("action %d just can execute on TOP_ONLY", actions.KindDiamondMint), err.Error())

	cid1, cid2 := &actions.SubChainID{}, &actions.SubChainID{}
	ctx = newCtx(newTx(t, types.TxType2, main, types.NewAmountMei(1), []types.Action{cid1, cid2}), st)
	_, _, err = ctx.ActionCall(cid1)
	require.Error(t, err)
	assert.Equal(t, fmt.Sprintf("action %d just can execute on level TOP_UNIQUE", actions.KindSubChainID), err.Error())

	scope := &actions.HeightScope{Start: 1, End: 100}
	ctx = newCtx(newTx(t, types.TxType2, main, types.NewAmountMei(1), []types.Action{scope}), st)
	_, _, err = ctx.ActionCall(scope)
	require.NoError(t, err)

	leave, err := ctx.AstEnter()
	require.NoError(t, err)
	_, _, err = ctx.ActionCall(scope)
	require.Error(t, err)
	assert.Equal(t, "action just can execute on level TOP", err.Error())
	leave()

	sel := actions.NewAstSelectOf(reg, 0, 0)
	ctx.SetDepth(1)
	_, _, err = ctx.ActionCall(sel)
	require.Error(t, err)
	assert.Equal(t, "action just can execute on level AST", err.Error())

	ctx.SetDepth(params.MainCallDepthMax + 1)
	_, _, err = ctx.ActionCall(msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("action just can execute on depth %d", params.MainCallDepthMax))
}

func TestActionCallGas(t *testing.T) {
	main := types.NewAccountFromPassword("main")
	to := types.NewAccountFromPassword("to").Address
	st := state.NewLayeredState(nil)
	setHac(st, main.Address, types.NewAmountMei(10))

	act := &actions.HacToTrs{To: ptr(to), Hacash: types.NewAmountMei(1)}
	ctx := newCtx(newTx(t, types.TxType2, main, types.NewAmountMei(1), []types.Action{act}), st)

	hooked := 0
	ctx.SetHook(func(kind uint16, _ types.Action, _ types.Context, gas *uint32) error {
		hooked++
		assert.Equal(t, actions.KindHacToTrs, kind)
		*gas += 7
		return nil
	})
	gas, _, err := ctx.ActionCall(act)
	require.NoError(t, err)
	assert.Equal(t, 1, hooked)
	assert.Equal(t, uint32(act.Size()+7), gas)
	assert.Equal(t, gas, ctx.GasUsed())
}

func TestCheckSign(t *testing.T) {
	main := types.NewAccountFromPassword("main")
	other := types.NewAccountFromPassword("other")
	act := &actions.HacFromTrs{From: ptr(other.Address), Hacash: types.NewAmountMei(1)}
	st := state.NewLayeredState(nil)

	ctx := newCtx(newTx(t, types.TxType2, main, types.NewAmountMei(1), []types.Action{act}), st)
	require.NoError(t, ctx.CheckSign(main.Address))
	err := ctx.CheckSign(other.Address)
	require.Error(t, err)
	assert.Equal(t, fmt.Sprintf("address %s verify signature failed", other.Address.Readable()), err.Error())
	// cached result
	assert.Equal(t, err, ctx.CheckSign(other.Address))

	_, _, err = ctx.ActionCall(act)
	require.Error(t, err)

	// a contract address never signs
	contract := common.Address{common.AddrVersionContract, 1}
	assert.Error(t, ctx.CheckSign(contract))

	ctx.ResetForTx(newTx(t, types.TxType2, main, types.NewAmountMei(1), []types.Action{act}, other))
	assert.NoError(t, ctx.CheckSign(other.Address))
}

func TestSnapshotRecover(t *testing.T) {
	ctrl := gomock.NewController(t)
	machine := mock_types.NewMockVM(ctrl)

	main := types.NewAccountFromPassword("main")
	st := state.NewLayeredState(nil)
	setHac(st, main.Address, types.NewAmountMei(10))

	logs := rawdb.NewBlockLogs(rawdb.NewMemoryDB()).Next(10)
	logs.Push(new(types.Uint4))

	tx := newTx(t, types.TxType3, main, types.NewAmountMei(1), []types.Action{&actions.TxMessage{}})
	ctx := execution.NewContext(types.Env{Block: types.BlockInfo{Height: 10}}, st, logs, tx)
	ctx.ResetForTx(tx)
	ctx.ReplaceVM(machine)

	machine.EXPECT().SnapshotVolatile().Return("volatile")
	machine.EXPECT().RestoreVolatile("volatile")

	snap := ctx.Snapshot()
	setHac(ctx.State(), main.Address, types.NewAmountMei(1))
	logs.Push(new(types.Uint4))
	ctx.Tex().Zhu = 100
	assert.Equal(t, 2, logs.Len())

	ctx.Recover(snap)
	assert.Equal(t, "1:249", hacOf(ctx.State(), main.Address))
	assert.Equal(t, 1, logs.Len())
	assert.Zero(t, ctx.Tex().Zhu)

	machine.EXPECT().SnapshotVolatile().Return(nil)
	snap = ctx.Snapshot()
	setHac(ctx.State(), main.Address, types.NewAmountMei(1))
	ctx.Merge(snap)
	assert.Equal(t, "1:248", hacOf(ctx.State(), main.Address))
}

func TestContractCallDepth(t *testing.T) {
	ctrl := gomock.NewController(t)
	machine := mock_types.NewMockVM(ctrl)

	main := types.NewAccountFromPassword("main")
	call := &actions.ContractCall{Mode: types.Uint1(types.CallModeMain), CodeKind: 3, Code: types.BytesW2{1}}
	tx := newTx(t, types.TxType3, main, types.NewAmountMei(1), []types.Action{call})
	ctx := newCtx(tx, state.NewLayeredState(nil))

	_, _, err := ctx.ActionCall(call)
	require.Error(t, err)
	assert.Equal(t, "vm not supported", err.Error())

	ctx.ReplaceVM(machine)
	machine.EXPECT().Usable().Return(true)
	machine.EXPECT().Call(ctx, gomock.Any(), types.CallModeMain, uint8(3), []byte{1}, gomock.Any()).
		DoAndReturn(func(c types.Context, _ types.State, _ types.CallMode, _ uint8, _, _ []byte) (int64, []byte, error) {
			assert.Equal(t, 1, c.Depth())
			return 5, []byte("ok"), nil
		})
	_, ret, err := ctx.ActionCall(call)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), ret)
	assert.Zero(t, ctx.Depth())
}
