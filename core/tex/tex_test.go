package tex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacash/node/common"
	"github.com/hacash/node/consensus/pow"
	"github.com/hacash/node/core/actions"
	"github.com/hacash/node/core/execution"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/tex"
	"github.com/hacash/node/core/types"
)

var reg = actions.DefaultRegistry(pow.NewFaker())

var (
	alice = types.NewAccountFromPassword("alice")
	bob   = types.NewAccountFromPassword("bob")
)

func signedCells(t *testing.T, acc *types.Account, cells ...tex.Cell) *tex.CellAct {
	t.Helper()
	act := tex.NewCellAct(acc.Address)
	for _, c := range cells {
		require.NoError(t, act.Cells.Push(c))
	}
	require.NoError(t, act.FillSign(acc))
	return act
}

func runTx(t *testing.T, st types.State, acts ...types.Action) error {
	t.Helper()
	tx := types.NewNormalTx(reg, types.TxType2, alice.Address, types.NewAmountSmall(1, 244), 1700000000)
	for _, act := range acts {
		require.NoError(t, tx.PushAction(act))
	}
	_, err := tx.FillSign(alice)
	require.NoError(t, err)
	return execution.TryExecuteTx(types.ChainInfo{}, tx, 10, st, execution.Options{})
}

func hacOf(st types.State, addr common.Address) string {
	bls, _ := state.Wrap(st).Balance(addr)
	return bls.Hacash.String()
}

func newState() types.State {
	st := state.NewLayeredState(nil)
	bls := state.Balance{Hacash: types.NewAmountMei(10)}
	state.Wrap(st).SetBalance(alice.Address, &bls)
	return st
}

func TestCellActCodec(t *testing.T) {
	act := signedCells(t, alice,
		tex.NewTrsZhu(true, 500),
		&tex.CondHeight{Cid: tex.CellCondHeightAtLeast, Height: 9},
		&tex.CondZhu{Cid: tex.CellCondZhuAtMost, Zhu: 1},
	)
	data := act.Serialize()
	assert.Len(t, data, act.Size())

	back, n, err := reg.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, data, back.Serialize())
	assert.Equal(t, tex.KindTexCellAct, back.Kind())

	_, _, err = tex.ParseCell([]byte{99})
	assert.Error(t, err)
}

func TestCellsSettle(t *testing.T) {
	st := newState()
	err := runTx(t, st,
		signedCells(t, alice,
			tex.NewTrsZhu(true, 100000000),
			&tex.CondHeight{Cid: tex.CellCondHeightAtLeast, Height: 5},
		),
		signedCells(t, bob, tex.NewTrsZhu(false, 100000000)),
	)
	require.NoError(t, err)
	assert.Equal(t, "89999:244", hacOf(st, alice.Address))
	assert.Equal(t, "1:248", hacOf(st, bob.Address))
}

func TestCellsMustNetToZero(t *testing.T) {
	err := runTx(t, newState(), signedCells(t, alice, tex.NewTrsZhu(true, 100000000)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settlement check failed")

	// bob cannot take more than alice paid
	err = runTx(t, newState(),
		signedCells(t, alice, tex.NewTrsZhu(true, 100)),
		signedCells(t, bob, tex.NewTrsZhu(false, 200)),
	)
	assert.Error(t, err)
}

func TestCellChecks(t *testing.T) {
	// the signature covers the cells
	act := signedCells(t, bob, tex.NewTrsZhu(false, 100))
	act.Cells.Items[0] = tex.NewTrsZhu(false, 1000)
	err := runTx(t, newState(), signedCells(t, alice, tex.NewTrsZhu(true, 1000)), act)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature verify failed")

	err = runTx(t, newState(), signedCells(t, alice,
		&tex.CondHeight{Cid: tex.CellCondHeightAtMost, Height: 5},
	))
	assert.Error(t, err)

	err = runTx(t, newState(), signedCells(t, alice,
		&tex.CondZhu{Cid: tex.CellCondZhuAtLeast, Zhu: 20 * 100000000},
	))
	assert.Error(t, err)

	err = runTx(t, newState(), signedCells(t, bob, tex.NewTrsZhu(true, 100)), signedCells(t, alice, tex.NewTrsZhu(false, 100)))
	assert.Error(t, err, "bob has nothing to pay with")

	assert.Error(t, tex.NewCellAct(bob.Address).FillSign(alice))
}
