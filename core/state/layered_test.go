package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/rawdb"
	"github.com/hacash/node/core/types"
)

func TestLayeredStateLookupOrder(t *testing.T) {
	disk := rawdb.NewMemoryDB()
	require.NoError(t, disk.Put([]byte("a"), []byte("disk")))
	require.NoError(t, disk.Put([]byte("b"), []byte("disk")))

	root := NewLayeredState(disk)
	root.Set([]byte("b"), []byte("root"))
	child := root.ForkSub()
	grand := child.ForkSub()

	v, ok := grand.Get([]byte("a"))
	require.True(t, ok)
	assert.Equal(t, "disk", string(v))
	v, ok = grand.Get([]byte("b"))
	require.True(t, ok)
	assert.Equal(t, "root", string(v))

	child.Del([]byte("b"))
	_, ok = grand.Get([]byte("b"))
	assert.False(t, ok, "tombstone masks lower layers")
	_, ok = root.Get([]byte("b"))
	assert.True(t, ok)

	_, ok = grand.Get([]byte("missing"))
	assert.False(t, ok)
}

func TestLayeredStateMergeAndRecover(t *testing.T) {
	root := NewLayeredState(nil)
	root.Set([]byte("k"), []byte("1"))

	sub := root.ForkSub()
	sub.Set([]byte("k"), []byte("2"))
	sub.Set([]byte("n"), []byte("3"))
	v, _ := root.Get([]byte("k"))
	assert.Equal(t, "1", string(v), "child writes stay in the child")

	root.MergeSub(sub)
	v, _ = root.Get([]byte("k"))
	assert.Equal(t, "2", string(v))
	v, _ = root.Get([]byte("n"))
	assert.Equal(t, "3", string(v))

	discard := root.ForkSub()
	discard.Del([]byte("k"))
	_, ok := root.Get([]byte("k"))
	assert.True(t, ok, "a dropped child leaves no trace")
}

func TestLayeredStateCloneAndDetach(t *testing.T) {
	disk := rawdb.NewMemoryDB()
	root := NewLayeredState(disk)
	root.Set([]byte("p"), []byte("parent"))
	child := root.ForkSub()
	child.Set([]byte("c"), []byte("child"))

	clone := child.CloneState()
	clone.Set([]byte("c"), []byte("clone"))
	v, _ := child.Get([]byte("c"))
	assert.Equal(t, "child", string(v))
	v, _ = clone.Get([]byte("p"))
	assert.Equal(t, "parent", string(v), "clone keeps the parent link")

	child.Detach()
	_, ok := child.Get([]byte("p"))
	assert.False(t, ok)
}

func TestLayeredStateWriteToDisk(t *testing.T) {
	disk := rawdb.NewMemoryDB()
	require.NoError(t, disk.Put([]byte("gone"), []byte("x")))
	st := NewLayeredState(disk)
	st.Set([]byte("k"), []byte("v"))
	st.Del([]byte("gone"))
	require.NoError(t, st.WriteToDisk())

	v, err := disk.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "v", string(v))
	_, err = disk.Get([]byte("gone"))
	assert.ErrorIs(t, err, rawdb.ErrNotFound)
}

func TestCoreStateBalance(t *testing.T) {
	st := Wrap(NewLayeredState(rawdb.NewMemoryDB()))
	addr := common.MustParseAddress("1MzNY1oA3kfgYi75zquj3SRUPYztzXHzK9")
	_, ok := st.Balance(addr)
	assert.False(t, ok)

	bls := Balance{Hacash: types.NewAmountSmall(12, 244), Satoshi: 5}
	require.NoError(t, bls.AssetSet(AssetAmt{Serial: 1025, Amount: 7}))
	st.SetBalance(addr, &bls)

	got, ok := st.Balance(addr)
	require.True(t, ok)
	assert.Equal(t, "12:244", got.Hacash.String())
	assert.Equal(t, types.Fold64(5), got.Satoshi)
	assert.Equal(t, types.Fold64(7), got.Asset(1025).Amount)

	require.NoError(t, got.AssetSet(AssetAmt{Serial: 1025}))
	assert.Empty(t, got.Assets.Items, "zero amount removes the asset")

	st.SetTxExist(common.Hash{1}, 9)
	h, ok := st.TxExist(common.Hash{1})
	require.True(t, ok)
	assert.Equal(t, uint64(9), h)
}

func TestDiamondOwnedForm(t *testing.T) {
	var f DiamondOwnedForm
	a, _ := types.DiamondNameFromString("WTYUIA")
	b, _ := types.DiamondNameFromString("HXVMEK")
	c, _ := types.DiamondNameFromString("BSZNWT")
	f.Push(a, b, c)

	n, err := f.Drop(a)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "BSZNWTHXVMEK", f.Readable())

	_, err = f.Drop(a)
	assert.Error(t, err)
}
