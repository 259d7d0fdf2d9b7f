package pow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
)

func TestBlockHashModes(t *testing.T) {
	intro := GenesisBlock(nil).BlockIntro.Serialize()
	normal, fake := New(Config{}), NewFaker()

	assert.Equal(t, normal.BlockHash(1, intro), normal.BlockHash(1, intro))
	assert.NotEqual(t, normal.BlockHash(1, intro), fake.BlockHash(1, intro))
	assert.Equal(t, common.Hash(sha3Sum(intro)), fake.BlockHash(1, intro))
	assert.NotEqual(t, normal.BlockHash(1, intro), normal.BlockHash(50000, intro))

	assert.Equal(t, 1, BlockHashRounds(0))
	assert.Equal(t, 2, BlockHashRounds(50000))
	assert.Equal(t, blockHashRoundsMax, BlockHashRounds(1<<40))
}

func TestCheckTarget(t *testing.T) {
	low := common.Hash{0, 0, 1}
	high := common.Hash{0, 1}
	normal := New(Config{})
	assert.True(t, normal.CheckTarget(low, high))
	assert.True(t, normal.CheckTarget(low, low))
	assert.False(t, normal.CheckTarget(high, low))
	assert.True(t, NewFaker().CheckTarget(high, low))
}

func TestBlockReward(t *testing.T) {
	assert.Equal(t, uint64(1), BlockRewardMei(1))
	assert.Equal(t, uint64(1), BlockRewardMei(199999))
	assert.Equal(t, uint64(2), BlockRewardMei(200000))
	assert.Equal(t, uint64(8), BlockRewardMei(500000))
	assert.Equal(t, uint64(1), BlockRewardMei(1200000))
	assert.Equal(t, types.NewAmountMei(3).String(), BlockReward(300001).String())

	assert.Equal(t, uint64(0), CumulativeBlockReward(0))
	assert.Equal(t, uint64(100000), CumulativeBlockReward(100000))
	assert.Equal(t, uint64(200002), CumulativeBlockReward(200001))
}

func TestGenesis(t *testing.T) {
	blk := GenesisBlock(nil)
	assert.Equal(t, uint64(0), uint64(blk.Height))
	cb, err := blk.Coinbase()
	require.NoError(t, err)
	assert.NoError(t, VerifyCoinbase(0, cb))
	assert.Equal(t, types.MrklRoot(blk.TxHashes(true)), blk.MrklRoot)

	st := state.NewLayeredState(nil)
	require.NoError(t, InitializeState(st))
	bls, ok := state.Wrap(st).Balance(common.MustParseAddress("12vi7DEZjh6KrK5PVmmqSgvuJPCsZMmpfi"))
	require.True(t, ok)
	assert.Equal(t, "12:244", bls.Hacash.String())
}

func TestVerifyCoinbaseReward(t *testing.T) {
	cb := NewCoinbaseTx(200000, common.Address{}, [16]byte{})
	assert.NoError(t, VerifyCoinbase(200000, cb))
	assert.EqualError(t, VerifyCoinbase(1, cb), "block coinbase reward need 1:248 but got 2:248")
}

func TestDiamondHash(t *testing.T) {
	var zero [32]byte
	res := diamondResult(zero)
	_, ok := New(Config{}).DiamondName(res)
	assert.False(t, ok)

	fake := NewFaker()
	addr := types.NewAccountFromPassword("123456").Address
	ss, medium, res := fake.MineDiamond(1, common.Hash{}, [8]byte{1}, addr, nil)
	name, ok := fake.DiamondName(res)
	require.True(t, ok)
	assert.True(t, types.IsValidDiamondName(name[:]))
	assert.True(t, fake.CheckDifficulty(1, ss, medium))

	assert.Equal(t, 1, DiamondHashRepeat(8191))
	assert.Equal(t, 2, DiamondHashRepeat(8192))
}

func TestDiamondDifficulty(t *testing.T) {
	h := New(Config{})
	assert.True(t, h.CheckDifficulty(1, common.Hash{}, common.Hash{200}))
	// the first mixed byte plus number/3277 must stay within 255
	assert.False(t, h.CheckDifficulty(3277*100, common.Hash{}, common.Hash{200}))
	assert.True(t, h.CheckDifficulty(3277*100, common.Hash{}, common.Hash{155}))
	// above 42000 the leading sha3 byte is bounded
	assert.False(t, h.CheckDifficulty(42000, common.Hash{128}, common.Hash{}))
	assert.True(t, h.CheckDifficulty(42000, common.Hash{127}, common.Hash{}))
}

func TestSeal(t *testing.T) {
	h := New(Config{})
	h.SetThreads(2)
	intro := GenesisBlock(nil).BlockIntro
	intro.Height = 1

	var target common.Hash
	for i := range target {
		target[i] = 0xff
	}
	results := make(chan *types.BlockIntro, 1)
	stop := make(chan struct{})
	defer close(stop)
	require.NoError(t, h.Seal(&intro, target, results, stop))
	select {
	case sealed := <-results:
		require.NotNil(t, sealed)
		assert.True(t, h.CheckTarget(h.BlockHash(1, sealed.Serialize()), target))
	case <-time.After(5 * time.Second):
		t.Fatal("seal timed out")
	}
}

func TestSealFake(t *testing.T) {
	intro := GenesisBlock(nil).BlockIntro
	intro.Nonce = 99
	results := make(chan *types.BlockIntro, 1)
	require.NoError(t, NewFaker().Seal(&intro, common.Hash{}, results, nil))
	sealed := <-results
	assert.Equal(t, types.Uint4(0), sealed.Nonce)
}
