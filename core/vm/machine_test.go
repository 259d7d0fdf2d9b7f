package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
)

func contractCode() []byte {
	var a common.Address
	a[0] = common.AddrVersionContract
	a[1] = 0x42
	return a[:]
}

func param(key, value string) []byte {
	return append(types.BytesW1(key).Serialize(), value...)
}

func TestMachineGlobals(t *testing.T) {
	m := NewMachine(1, 4)
	st := state.NewLayeredState(nil)

	gas, _, err := m.Call(nil, st, types.CallModeMain, OpGlobalPut, contractCode(), param("k", "v1"))
	require.NoError(t, err)
	assert.Equal(t, GasQuickStep+3, gas)

	snap := m.SnapshotVolatile()
	_, _, err = m.Call(nil, st, types.CallModeMain, OpGlobalPut, contractCode(), param("k", "v2"))
	require.NoError(t, err)
	used := m.GasUsed()

	m.RestoreVolatile(snap)
	assert.Equal(t, used, m.GasUsed(), "restore must not refund gas")
	_, ret, err := m.Call(nil, st, types.CallModeMain, OpGlobalGet, contractCode(), param("k", ""))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), ret)
}

func TestMachineStore(t *testing.T) {
	m := NewMachine(1, 10)
	st := state.NewLayeredState(nil)

	_, _, err := m.Call(nil, st, types.CallModeMain, OpStorePut, contractCode(), param("balance", "100"))
	require.NoError(t, err)
	_, ret, err := m.Call(nil, st, types.CallModeAbst, OpStoreGet, contractCode(), param("balance", ""))
	require.NoError(t, err)
	assert.Equal(t, []byte("100"), ret)

	_, _, err = m.Call(nil, st, types.CallModeAbst, OpStoreDel, contractCode(), param("balance", ""))
	assert.ErrorIs(t, err, ErrWriteProtection)

	_, _, err = m.Call(nil, st, types.CallModeMain, OpStoreDel, contractCode(), param("balance", ""))
	require.NoError(t, err)
	_, ok := st.Get(storeKey(common.Address(contractCode()), []byte("balance")))
	assert.False(t, ok)
}

func TestMachineErrors(t *testing.T) {
	st := state.NewLayeredState(nil)

	_, _, err := NewMachine(1, 1).Call(nil, st, types.CallModeMain, 99, contractCode(), param("k", ""))
	assert.ErrorIs(t, err, ErrUnknownOp)

	var user common.Address
	_, _, err = NewMachine(1, 1).Call(nil, st, types.CallModeMain, OpGlobalGet, user[:], param("k", ""))
	assert.ErrorIs(t, err, ErrInvalidCode)

	m := NewMachine(1, 1)
	_, _, err = m.Call(nil, st, types.CallModeMain, OpStorePut, contractCode(), param("k", "v"))
	require.NoError(t, err)
	_, _, err = m.Call(nil, st, types.CallModeMain, OpStorePut, contractCode(), param("k", "v"))
	assert.ErrorIs(t, err, ErrOutOfGas)
	assert.Equal(t, int64(0), m.GasRemain())
}

func TestNil(t *testing.T) {
	assert.False(t, Nil.Usable())
	_, _, err := Nil.Call(nil, nil, types.CallModeMain, 0, nil, nil)
	assert.Error(t, err)
	assert.True(t, NewFactory()(1, 1).Usable())
	assert.False(t, NilFactory()(1, 1).Usable())
}
