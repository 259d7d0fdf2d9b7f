// Package core implements the chain engine: the unstable block tree, block
// insertion and finalization, synchronization batches, the startup rebuild
// and the CPU miner.
package core

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/hacash/node/core/execution"
	"github.com/hacash/node/core/rawdb"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/log"
	"github.com/hacash/node/metrics_config"
	"github.com/hacash/node/params"
)

var engineMetrics = metrics_config.NewGaugeVec("EngineGauges", "Chain engine gauges")

var _ types.EngineRead = (*Engine)(nil)

// Capabilities are the pluggable parts the engine executes blocks with.
// They are fixed at construction.
type Capabilities struct {
	Registry *types.ActionRegistry
	Hasher   types.BlockHasher
	VMs      types.VMFactory
	Hook     execution.ActionHook // optional
}

// Engine owns the block tree and every write to the block, state and log
// stores.
type Engine struct {
	config    params.EngineConfig
	caps      Capabilities
	minter    types.Minter
	txpool    types.TxPool
	validator *BlockValidator
	dbs       *rawdb.Databases
	store     *rawdb.BlockStore
	logs      *rawdb.BlockLogs
	logger    *log.Logger

	treeMu sync.RWMutex
	tree   *Roller

	mode atomic.Uint32 // insertion mode, see acquire

	recentMu sync.Mutex
	recent   []*types.RecentBlock // newest first

	feeMu sync.Mutex
	fees  []uint64 // newest first

	headFeed headFeed
}

// New opens the engine on dbs and rebuilds the unstable tree from the
// stored blocks above the finalized root. pool may be nil.
func New(config params.EngineConfig, caps Capabilities, minter types.Minter, pool types.TxPool, dbs *rawdb.Databases, logger *log.Logger) (*Engine, error) {
	if logger == nil {
		logger = log.Global
	}
	if caps.Registry == nil || caps.Hasher == nil {
		return nil, errors.New("engine needs an action registry and a block hasher")
	}
	config = config.Sanitize(logger)
	e := &Engine{
		config: config,
		caps:   caps,
		minter: minter,
		txpool: pool,
		dbs:    dbs,
		store:  rawdb.NewBlockStore(dbs.Blocks),
		logs:   rawdb.NewBlockLogs(dbs.Logs),
		logger: logger,
	}
	e.validator = NewBlockValidator(&e.config)
	if err := e.initialize(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) chainInfo(fastSync bool) types.ChainInfo {
	return types.ChainInfo{
		ID:          e.config.ChainID,
		DiamondForm: e.config.DiamondForm,
		FastSync:    fastSync,
	}
}

func (e *Engine) execOptions() execution.Options {
	return execution.Options{
		VMs:    e.caps.VMs,
		Hook:   e.caps.Hook,
		Reward: e.minter.BlockReward,
	}
}

// initialize loads the root the state on disk was flushed at and replays
// every stored block above it.
func (e *Engine) initialize() error {
	status := e.store.Status()
	rootHeight, ok := state.Wrap(state.NewLayeredState(e.dbs.State)).FinalizedHeight()
	if !ok && status.LastHeight > 0 {
		e.logger.WithField("last", uint64(status.LastHeight)).Warn("State database is empty, rebuilding every stored block")
	}
	if rootHeight > uint64(status.LastHeight) {
		return errors.Errorf("state height %d is above the last stored block %d", rootHeight, uint64(status.LastHeight))
	}
	var root *types.BlockPkg
	if rootHeight == 0 {
		root = types.BlockPkgFrom(e.caps.Hasher, e.minter.GenesisBlock(), types.BlkOriginRebuild)
	} else {
		var err error
		if root, err = e.store.LoadBlock(e.caps.Registry, e.caps.Hasher, rootHeight); err != nil {
			return errors.Wrapf(err, "load root block %d", rootHeight)
		}
	}
	chunk := newChunk(root, state.NewLayeredState(e.dbs.State), e.logs.Next(rootHeight), nil)
	e.treeMu.Lock()
	e.tree = NewRoller(chunk, e.config.UnstableBlock)
	e.treeMu.Unlock()
	e.rebuild(uint64(status.LastHeight))
	return nil
}

// Config returns the sanitized engine configuration.
func (e *Engine) Config() *params.EngineConfig { return &e.config }

func (e *Engine) Capabilities() Capabilities { return e.caps }
func (e *Engine) Minter() types.Minter       { return e.minter }
func (e *Engine) TxPool() types.TxPool       { return e.txpool }
func (e *Engine) Store() types.BlockStore    { return e.store }
func (e *Engine) BlockStore() *rawdb.BlockStore {
	return e.store
}
func (e *Engine) Logs() *rawdb.BlockLogs { return e.logs }

// Latest is the head block.
func (e *Engine) Latest() *types.BlockPkg {
	e.treeMu.RLock()
	defer e.treeMu.RUnlock()
	return e.tree.head.Block
}

// Root is the last finalized block.
func (e *Engine) Root() *types.BlockPkg {
	e.treeMu.RLock()
	defer e.treeMu.RUnlock()
	return e.tree.root.Block
}

// State is the state after the head block. Callers must not write it.
func (e *Engine) State() types.State {
	e.treeMu.RLock()
	defer e.treeMu.RUnlock()
	return e.tree.head.State
}

// ForkSubState returns a writable child of the head state.
func (e *Engine) ForkSubState() types.State {
	return e.State().ForkSub()
}

// TryExecuteTx checks the packing limits of tx and runs it on st as if it
// were packed at height now.
func (e *Engine) TryExecuteTx(tx types.Transaction, height uint64, st types.State) error {
	if err := e.validator.ValidateTx(tx, uint64(e.validator.now().Unix())); err != nil {
		return fmt.Errorf("tx %w", err)
	}
	return execution.TryExecuteTx(e.chainInfo(false), tx, height, st, e.execOptions())
}

// SubmitTx checks a transaction against the head state and the minter
// rules and adds it to the pool.
func (e *Engine) SubmitTx(pkg *types.TxPkg) error {
	if e.txpool == nil {
		return errors.New("transaction pool not enabled")
	}
	if len(pkg.Data) > e.config.MaxTxSize {
		return fmt.Errorf("tx size cannot more than %d bytes", e.config.MaxTxSize)
	}
	if err := pkg.Tx.VerifySignature(); err != nil {
		return err
	}
	height := e.Latest().Height + 1
	if err := e.TryExecuteTx(pkg.Tx, height, e.ForkSubState()); err != nil {
		return err
	}
	if err := e.minter.TxSubmit(e, pkg); err != nil {
		return err
	}
	return e.txpool.Insert(pkg, e.minter.TxPoolGroup(pkg))
}

// SubscribeChainHead registers ch for head changes. The returned function
// cancels the subscription.
func (e *Engine) SubscribeChainHead(ch chan<- ChainHeadEvent) func() {
	return e.headFeed.subscribe(ch)
}

// Close waits for the running insertion and rejects every later one.
func (e *Engine) Close() {
	for !e.mode.CompareAndSwap(modeIdle, modeClosed) {
		if e.mode.Load() == modeClosed {
			return
		}
		sleep()
	}
	e.logger.Info("Chain engine closed")
}

func (e *Engine) report() {
	if engineMetrics == nil {
		return
	}
	e.treeMu.RLock()
	root, head, size := e.tree.root.Height, e.tree.head.Height, e.tree.Len()
	e.treeMu.RUnlock()
	engineMetrics.WithLabelValues("root").Set(float64(root))
	engineMetrics.WithLabelValues("head").Set(float64(head))
	engineMetrics.WithLabelValues("chunks").Set(float64(size))
}
