package txpool

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/log"
	"github.com/hacash/node/params"
)

func pkgOf(id byte, purity uint64) *types.TxPkg {
	return &types.TxPkg{Hash: common.Hash{id}, FeePurity: purity}
}

func feePkg(t *testing.T, id byte, fee types.Amount) *types.TxPkg {
	tx := types.NewNormalTx(nil, types.TxType2, common.Address{}, fee, uint64(id))
	return &types.TxPkg{Hash: common.Hash{id}, Tx: tx, FeePurity: 1}
}

func newPool(sizes ...int) *TxPool {
	conf := Config{}
	for i, s := range sizes {
		conf.Groups = append(conf.Groups, GroupConfig{Size: s, ByFeePurity: i != params.TxGroupDiamint})
	}
	return New(conf, log.NewDiscardLogger())
}

func hashesAt(pool *TxPool, gi int) []byte {
	var ids []byte
	pool.IterAt(gi, func(pkg *types.TxPkg) bool {
		ids = append(ids, pkg.Hash[0])
		return true
	})
	return ids
}

func TestReplaceByFee(t *testing.T) {
	pool := newPool(10, 10)
	require.NoError(t, pool.Insert(pkgOf(1, 100), 0))
	require.NoError(t, pool.Insert(pkgOf(1, 110), 0))
	assert.Equal(t, 1, pool.Len(0))
	got, ok := pool.Find(common.Hash{1})
	require.True(t, ok)
	assert.EqualValues(t, 110, got.FeePurity)

	assert.Equal(t, ErrUnderpriced, pool.Insert(pkgOf(1, 100), 0))
	assert.Equal(t, ErrUnderpriced, pool.Insert(pkgOf(1, 110), 0))
	got, _ = pool.Find(common.Hash{1})
	assert.EqualValues(t, 110, got.FeePurity)
}

func TestOrderingAndTies(t *testing.T) {
	pool := newPool(100, 10)
	purities := []uint64{5, 9, 5, 7, 9, 1}
	for i, p := range purities {
		require.NoError(t, pool.Insert(pkgOf(byte(i+1), p), 0))
	}
	// ties keep their insertion order
	assert.Equal(t, []byte{2, 5, 4, 1, 3, 6}, hashesAt(pool, 0))

	first, ok := pool.FirstAt(0)
	require.True(t, ok)
	assert.Equal(t, common.Hash{2}, first.Hash)
}

func TestOrderingLargeGroup(t *testing.T) {
	pool := newPool(200, 10)
	rnd := rand.New(rand.NewSource(7))
	for i := 1; i <= 150; i++ {
		require.NoError(t, pool.Insert(pkgOf(byte(i), uint64(rnd.Intn(20))), 0))
	}
	var prev *types.TxPkg
	seen := make(map[common.Hash]bool)
	pool.IterAt(0, func(pkg *types.TxPkg) bool {
		assert.False(t, seen[pkg.Hash])
		seen[pkg.Hash] = true
		if prev != nil {
			require.GreaterOrEqual(t, prev.FeePurity, pkg.FeePurity)
			if prev.FeePurity == pkg.FeePurity {
				assert.Less(t, prev.Hash[0], pkg.Hash[0], "ties out of insertion order")
			}
		}
		prev = pkg
		return true
	})
	assert.Len(t, seen, 150)
}

func TestFullGroup(t *testing.T) {
	pool := newPool(3, 10)
	for i, p := range []uint64{30, 20, 10} {
		require.NoError(t, pool.Insert(pkgOf(byte(i+1), p), 0))
	}
	assert.Equal(t, ErrPoolFull, pool.Insert(pkgOf(9, 10), 0))
	assert.Equal(t, ErrPoolFull, pool.Insert(pkgOf(9, 5), 0))

	require.NoError(t, pool.Insert(pkgOf(4, 25), 0))
	assert.Equal(t, []byte{1, 4, 2}, hashesAt(pool, 0))
}

func TestLowestFeePurity(t *testing.T) {
	pool := New(Config{LowestFeePurity: 50, Groups: DefaultConfig.Groups}, log.NewDiscardLogger())
	err := pool.Insert(pkgOf(1, 49), 0)
	require.Error(t, err)
	assert.Equal(t, "tx fee purity 49 too low to add txpool", err.Error())
	assert.NoError(t, pool.Insert(pkgOf(1, 50), 0))

	assert.Error(t, pool.Insert(pkgOf(2, 80), 5))
}

func TestGroupByFee(t *testing.T) {
	pool := newPool(10, 10)
	require.NoError(t, pool.Insert(feePkg(t, 1, types.NewAmountSmall(1, 246)), params.TxGroupDiamint))
	require.NoError(t, pool.Insert(feePkg(t, 2, types.NewAmountSmall(2, 248)), params.TxGroupDiamint))
	require.NoError(t, pool.Insert(feePkg(t, 3, types.NewAmountSmall(5, 247)), params.TxGroupDiamint))
	assert.Equal(t, []byte{2, 3, 1}, hashesAt(pool, params.TxGroupDiamint))

	// a higher bid of the same tx replaces the old one
	require.NoError(t, pool.Insert(feePkg(t, 1, types.NewAmountSmall(3, 248)), params.TxGroupDiamint))
	assert.Equal(t, []byte{1, 2, 3}, hashesAt(pool, params.TxGroupDiamint))
}

func TestSingleGroupPerHash(t *testing.T) {
	pool := newPool(10, 10)
	require.NoError(t, pool.Insert(pkgOf(1, 100), 0))
	require.NoError(t, pool.InsertBy(pkgOf(1, 200), func(*types.TxPkg) int { return 1 }))
	assert.Equal(t, 0, pool.Len(0))
	assert.Equal(t, 1, pool.Len(1))
	_, ok := pool.FindAt(0, common.Hash{1})
	assert.False(t, ok)
}

func TestDrainRetainClear(t *testing.T) {
	pool := newPool(10, 10)
	for i := byte(1); i <= 5; i++ {
		require.NoError(t, pool.Insert(pkgOf(i, uint64(i)*10), int(i%2)))
	}
	got := pool.Drain([]common.Hash{{1}, {4}, {9}})
	assert.Len(t, got, 2)
	_, ok := pool.Find(common.Hash{4})
	assert.False(t, ok)

	pool.RetainAt(1, func(pkg *types.TxPkg) bool { return pkg.FeePurity > 30 })
	assert.Equal(t, []byte{5}, hashesAt(pool, 1))

	pool.DeleteAt(0, []common.Hash{{2}})
	assert.Equal(t, 0, pool.Len(0))

	pool.ClearAt(1)
	assert.Equal(t, 0, pool.Len(1))
	assert.Equal(t, "[TxPool] tx count: 0(0), 1(0)", pool.String())
}

func TestIterStops(t *testing.T) {
	pool := newPool(10, 10)
	for i := byte(1); i <= 5; i++ {
		require.NoError(t, pool.Insert(pkgOf(i, uint64(i)), 0))
	}
	n := 0
	pool.IterAt(0, func(*types.TxPkg) bool {
		n++
		return n < 2
	})
	assert.Equal(t, 2, n)
}

func TestSanitize(t *testing.T) {
	conf := Config{Groups: []GroupConfig{{Size: 0}}}
	got := conf.sanitize(log.NewDiscardLogger())
	assert.Equal(t, DefaultConfig.Groups, got.Groups)

	conf = Config{Groups: []GroupConfig{{Size: 0}, {Size: 3}}}
	got = conf.sanitize(log.NewDiscardLogger())
	assert.Equal(t, 1, got.Groups[0].Size)
	assert.Equal(t, 0, conf.Groups[0].Size)

	from := ConfigFrom(&params.DefaultEngineConfig)
	assert.True(t, from.Groups[params.TxGroupNormal].ByFeePurity)
	assert.False(t, from.Groups[params.TxGroupDiamint].ByFeePurity)
}
