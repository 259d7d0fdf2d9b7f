package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacash/node/common/exiter"
	"github.com/hacash/node/consensus/pow"
	"github.com/hacash/node/core/actions"
	"github.com/hacash/node/core/rawdb"
	"github.com/hacash/node/core/txpool"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/core/vm"
	"github.com/hacash/node/log"
	"github.com/hacash/node/params"
)

func newPoolEngine(t *testing.T, cnf params.EngineConfig) (*Engine, *txpool.TxPool) {
	t.Helper()
	pool := txpool.New(txpool.ConfigFrom(&cnf), log.NewDiscardLogger())
	minter := pow.NewMinter(params.DefaultMintConfig, testHasher, testReg, log.NewDiscardLogger())
	caps := Capabilities{Registry: testReg, Hasher: testHasher, VMs: vm.NewFactory()}
	eng, err := New(cnf, caps, minter, pool, rawdb.NewMemoryDatabases(), log.NewDiscardLogger())
	require.NoError(t, err)
	return eng, pool
}

func transferTx(t *testing.T, from *types.Account, to *types.Account, amt types.Amount) *types.TxPkg {
	t.Helper()
	tx := types.NewNormalTx(testReg, types.TxType2, from.Address, types.NewAmountSmall(1, 244), uint64(time.Now().Unix()))
	require.NoError(t, tx.PushAction(&actions.HacToTrs{To: types.AddrOrPtrFromAddress(to.Address), Hacash: amt}))
	_, err := tx.FillSign(from)
	require.NoError(t, err)
	return types.NewTxPkg(tx)
}

func TestSubmitTx(t *testing.T) {
	eng, pool := newPoolEngine(t, testEngineConfig())
	miner := types.NewAccountFromPassword("miner")
	alice := types.NewAccountFromPassword("alice")

	// nothing to spend yet
	assert.Error(t, eng.SubmitTx(transferTx(t, miner, alice, types.NewAmountMei(1))))

	discoverAll(t, eng, makeChain(eng.Latest(), 2, "main"))
	pkg := transferTx(t, miner, alice, types.NewAmountMei(1))
	require.NoError(t, eng.SubmitTx(pkg))
	assert.Equal(t, 1, pool.Len(params.TxGroupNormal))
	assert.Error(t, eng.SubmitTx(pkg), "already in the pool")

	cnf := eng.Config()
	cnf.MaxTxSize = 10
	assert.ErrorContains(t, eng.SubmitTx(transferTx(t, miner, alice, types.NewAmountMei(1))), "tx size cannot more than 10 bytes")
}

func TestSubmitTxRejectsFutureTimestamp(t *testing.T) {
	eng, pool := newPoolEngine(t, testEngineConfig())
	miner := types.NewAccountFromPassword("miner")
	alice := types.NewAccountFromPassword("alice")
	discoverAll(t, eng, makeChain(eng.Latest(), 2, "main"))

	tx := types.NewNormalTx(testReg, types.TxType2, miner.Address, types.NewAmountSmall(1, 244), uint64(time.Now().Unix())+86400)
	require.NoError(t, tx.PushAction(&actions.HacToTrs{To: types.AddrOrPtrFromAddress(alice.Address), Hacash: types.NewAmountMei(1)}))
	_, err := tx.FillSign(miner)
	require.NoError(t, err)

	assert.ErrorContains(t, eng.SubmitTx(types.NewTxPkg(tx)), "cannot more than now")
	assert.Equal(t, 0, pool.Len(params.TxGroupNormal))
	assert.Error(t, eng.TryExecuteTx(tx, eng.Latest().Height+1, eng.ForkSubState()))
}

func TestMinerSealsBlocks(t *testing.T) {
	cnf := testEngineConfig()
	cnf.MinerRewardAddress = testMiner
	eng, pool := newPoolEngine(t, cnf)
	miner := types.NewAccountFromPassword("miner")
	alice := types.NewAccountFromPassword("alice")

	discoverAll(t, eng, makeChain(eng.Latest(), 2, "main"))
	pkg := transferTx(t, miner, alice, types.NewAmountMei(1))
	require.NoError(t, eng.SubmitTx(pkg))

	heads := make(chan ChainHeadEvent, 8)
	defer eng.SubscribeChainHead(heads)()

	ex := exiter.New()
	m := NewMiner(eng, testHasher, log.NewDiscardLogger())
	go m.Run(ex.Worker())

	var mined *types.BlockPkg
	select {
	case ev := <-heads:
		mined = ev.Block
	case <-time.After(10 * time.Second):
		t.Fatal("miner did not seal a block")
	}
	ex.Exit()
	ex.Wait()

	assert.Equal(t, uint64(3), mined.Height)
	assert.Equal(t, types.BlkOriginMint, mined.Origin)
	require.Len(t, mined.Block.Txs, 2)
	assert.Equal(t, pkg.Hash, mined.Block.Txs[1].Hash())
	assert.Zero(t, pool.Len(params.TxGroupNormal))
	assert.Equal(t, "1:248", hacAtHead(eng, alice.Address))
	assert.Nil(t, m.Pending())
}

func TestMinerNeedsRewardAddress(t *testing.T) {
	eng, _ := newPoolEngine(t, testEngineConfig())
	ex := exiter.New()
	w := ex.Worker()
	NewMiner(eng, testHasher, log.NewDiscardLogger()).Run(w)
	assert.Zero(t, ex.Jobs())
}
