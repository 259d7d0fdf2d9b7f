package actions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacash/node/common"
	"github.com/hacash/node/consensus/pow"
	"github.com/hacash/node/core/actions"
	"github.com/hacash/node/core/execution"
	"github.com/hacash/node/core/operate"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
)

var (
	hasher = pow.NewFaker()
	reg    = actions.DefaultRegistry(hasher)
)

func ptr(a common.Address) types.AddrOrPtr { return types.AddrOrPtrFromAddress(a) }

// run executes act as the only top level action of a transaction of main.
// A failed action leaves st untouched.
func run(t *testing.T, env types.Env, st types.State, main *types.Account, act types.Action) error {
	t.Helper()
	tx := types.NewNormalTx(reg, types.TxType2, main.Address, types.NewAmountMei(1), 1700000000)
	require.NoError(t, tx.PushAction(act))
	_, err := tx.FillSign(main)
	require.NoError(t, err)
	ctx := execution.NewContext(env, st, nil, tx)
	ctx.ResetForTx(tx)
	snap := ctx.Snapshot()
	if _, _, err = ctx.ActionCall(act); err != nil {
		ctx.Recover(snap)
		return err
	}
	ctx.Merge(snap)
	return nil
}

func diamond(t *testing.T, s string) types.DiamondName {
	n, err := types.DiamondNameFromString(s)
	require.NoError(t, err)
	return n
}

func TestDiamondMintFastSync(t *testing.T) {
	miner := types.NewAccountFromPassword("miner")
	st := state.NewLayeredState(nil)
	env := types.Env{
		Chain: types.ChainInfo{FastSync: true, DiamondForm: true},
		Block: types.BlockInfo{Height: 5, Hash: common.Hash{5}},
	}
	mint := actions.NewDiamondMint(hasher)
	mint.Diamond = diamond(t, "WTYUIA")
	mint.Number = 1
	mint.Address = miner.Address
	require.NoError(t, run(t, env, st, miner, mint))

	cs := state.Wrap(st)
	sto, ok := cs.Diamond(mint.Diamond)
	require.True(t, ok)
	assert.Equal(t, miner.Address, sto.Address)
	name, ok := cs.DiamondName(1)
	require.True(t, ok)
	assert.Equal(t, mint.Diamond, name)
	latest, ok := cs.LatestDiamond()
	require.True(t, ok)
	assert.Equal(t, common.Hash{5}, latest.BornHash)
	assert.EqualValues(t, 5, latest.BornHeight)

	bls, _ := cs.Balance(miner.Address)
	assert.EqualValues(t, 1, bls.Diamond)
	owned, _ := cs.DiamondOwned(miner.Address)
	assert.Equal(t, "WTYUIA", owned.Readable())
	assert.EqualValues(t, 1, cs.TotalCount().MintedDiamond)
}

func TestDiamondMintVerify(t *testing.T) {
	miner := types.NewAccountFromPassword("miner")
	st := state.NewLayeredState(nil)
	env := types.Env{Block: types.BlockInfo{Height: 5}}

	mint := actions.NewDiamondMint(hasher)
	mint.Diamond = diamond(t, "WTYUIA")
	mint.Number = 2
	mint.Address = miner.Address
	err := run(t, env, st, miner, mint)
	require.Error(t, err)
	assert.Equal(t, "diamond number need 1 but got 2", err.Error())

	env.Block.Hash = common.Hash{1}
	env.Block.Height = 6
	err = run(t, env, st, miner, mint)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "highly divisible by 5")

	mint.Address = common.Address{common.AddrVersionContract}
	assert.Error(t, run(t, env, st, miner, mint))
}

func TestDiaSingleTrs(t *testing.T) {
	alice := types.NewAccountFromPassword("alice")
	bob := types.NewAccountFromPassword("bob").Address
	st := state.NewLayeredState(nil)
	cs := state.Wrap(st)

	d := diamond(t, "HXVMEK")
	cs.SetDiamond(d, &state.DiamondSto{Status: types.Uint1(state.DiamondStatusNormal), Address: alice.Address})
	_, err := operate.HacdAdd(cs, alice.Address, 1)
	require.NoError(t, err)

	env := types.Env{Block: types.BlockInfo{Height: 100}}
	require.NoError(t, run(t, env, st, alice, &actions.DiaSingleTrs{Diamond: d, To: ptr(bob)}))
	sto, _ := cs.Diamond(d)
	assert.Equal(t, bob, sto.Address)

	// alice no longer owns it
	err = run(t, env, st, alice, &actions.DiaSingleTrs{Diamond: d, To: ptr(bob)})
	require.Error(t, err)
}

func TestDiamondInscription(t *testing.T) {
	alice := types.NewAccountFromPassword("alice")
	st := state.NewLayeredState(nil)
	cs := state.Wrap(st)

	d := diamond(t, "WTYUIA")
	cs.SetDiamond(d, &state.DiamondSto{Status: types.Uint1(state.DiamondStatusNormal), Address: alice.Address})
	cs.SetDiamondSmelt(d, &state.DiamondSmelt{Diamond: d, AverageBidBurn: 20})
	bls := state.Balance{Hacash: types.NewAmountMei(100)}
	cs.SetBalance(alice.Address, &bls)

	list := types.DiamondNameList{ListW1: types.ListW1[types.DiamondName, *types.DiamondName]{Items: []types.DiamondName{d}}}
	env := types.Env{Block: types.BlockInfo{Height: operate.EngraveIntervalBlocks}}

	bad := &actions.DiamondInscription{Diamonds: list, EngravedContent: types.BytesW1{0x01}}
	err := run(t, env, st, alice, bad)
	require.Error(t, err)
	assert.Equal(t, "engraved content must readable string", err.Error())

	ins := &actions.DiamondInscription{Diamonds: list, EngravedContent: types.BytesW1("hello")}
	assert.True(t, ins.Burn90())
	require.NoError(t, run(t, env, st, alice, ins))
	sto, _ := cs.Diamond(d)
	assert.Equal(t, 1, sto.Inscripts.Len())
	assert.EqualValues(t, 1, cs.TotalCount().EngravedDiamond)

	wipe := &actions.DiamondInscriptionClear{Diamonds: list}
	err = run(t, env, st, alice, wipe)
	require.Error(t, err)
	assert.Equal(t, "diamond inscription cost error need 2:249 but got 0:0", err.Error())

	wipe.ProtocolCost = types.NewAmountMei(20)
	require.NoError(t, run(t, env, st, alice, wipe))
	sto, _ = cs.Diamond(d)
	assert.Zero(t, sto.Inscripts.Len())
	after, _ := cs.Balance(alice.Address)
	assert.Equal(t, "8:249", after.Hacash.String())
}

func TestChainGuards(t *testing.T) {
	main := types.NewAccountFromPassword("main")
	st := state.NewLayeredState(nil)
	env := types.Env{Chain: types.ChainInfo{ID: 7}, Block: types.BlockInfo{Height: 50}}

	require.NoError(t, run(t, env, st, main, &actions.SubmitHeightLimit{Start: 10}))
	err := run(t, env, st, main, &actions.SubmitHeightLimit{Start: 10, End: 20})
	require.Error(t, err)
	assert.Equal(t, "transction must submit in height between 10 and 20", err.Error())
	err = run(t, env, st, main, &actions.HeightScope{Start: 30, End: 20})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot big than")

	require.NoError(t, run(t, env, st, main, &actions.SubChainID{ChainID: 7}))
	err = run(t, env, st, main, &actions.SubChainID{ChainID: 1})
	require.Error(t, err)
	assert.Equal(t, "transction must belong to chain id 1 but on chain 7", err.Error())
}

func TestNestedActionsParse(t *testing.T) {
	main := types.NewAccountFromPassword("main")
	to := types.NewAccountFromPassword("to").Address

	branch := actions.NewAstIf(reg)
	branch.Cond = *actions.NewAstSelectOf(reg, 1, 1, &actions.SatToTrs{To: ptr(to), Satoshi: 10})
	branch.BrIf = *actions.NewAstSelectOf(reg, 0, 1, &actions.TxMessage{Message: types.BytesW1("yes")})
	branch.BrElse = *actions.NewAstSelectOf(reg, 1, 1,
		actions.NewAstSelectOf(reg, 1, 1, &actions.HacToTrs{To: ptr(to), Hacash: types.NewAmountMei(2)}))

	mint := actions.NewDiamondMint(hasher)
	mint.Diamond = diamond(t, "WTYUIA")
	mint.Number = 20001
	mint.Address = main.Address
	mint.CustomMessage = common.Hash{9}

	for _, act := range []types.Action{branch, mint} {
		tx := types.NewNormalTx(reg, types.TxType3, main.Address, types.NewAmountMei(1), 1700000000)
		require.NoError(t, tx.PushAction(act))
		_, err := tx.FillSign(main)
		require.NoError(t, err)

		buf := tx.Serialize()
		got, n, err := types.ParseTransaction(reg, buf)
		require.NoError(t, err)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, tx.Hash(), got.Hash())
		require.Len(t, got.Actions(), 1)
		assert.Equal(t, act.Kind(), got.Actions()[0].Kind())
		assert.Equal(t, act.Size(), got.Actions()[0].Size())
	}

	parsed := actions.NewDiamondMint(hasher)
	_, err := parsed.Parse(mint.Serialize())
	require.NoError(t, err)
	assert.Equal(t, common.Hash{9}, parsed.CustomMessage)
}
