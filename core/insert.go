package core

import (
	"fmt"
	"time"

	"github.com/hacash/node/core/execution"
	"github.com/hacash/node/core/rawdb"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/log"
)

// Insertion modes. Only one insertion runs at a time.
const (
	modeIdle uint32 = iota
	modeDiscover
	modeSync
	modeClosed
)

const busyWait = 100 * time.Millisecond

func sleep() { time.Sleep(busyWait) }

// acquire moves the engine from idle to mode. It waits while a discover
// runs and fails with busy while a sync batch runs.
func (e *Engine) acquire(mode uint32, busy error) (func(), error) {
	for {
		if e.mode.CompareAndSwap(modeIdle, mode) {
			return func() { e.mode.Store(modeIdle) }, nil
		}
		switch e.mode.Load() {
		case modeDiscover:
			sleep()
		case modeSync:
			return nil, busy
		case modeClosed:
			return nil, ErrEngineClosed
		}
	}
}

// insertResult carries what insertBy changed in the tree to rollBy.
type insertResult struct {
	block         *types.BlockPkg
	newRoot       *Chunk
	newHead       *Chunk
	oldRootHeight uint64
	path          rawdb.HashPath // canonical rewrites when the head moved
}

// insertBy verifies and executes pkg on top of its parent and links it
// into tree. A new root gets its state flushed to disk here, before any
// later block can be executed on it.
func (e *Engine) insertBy(tree *Roller, pkg *types.BlockPkg) (*insertResult, error) {
	fastSync := (e.config.FastSync && pkg.Origin == types.BlkOriginSync) || pkg.Origin == types.BlkOriginRebuild
	height := pkg.Height
	oldRoot, head := tree.root.Height, tree.head.Height
	if height <= oldRoot || height > head+1 {
		return nil, fmt.Errorf("insert height must between [%d, %d] but got %d", oldRoot+1, head+1, height)
	}
	prevHash := pkg.Block.PrevHash
	parent, ok := tree.Find(prevHash)
	if !ok || parent.Height+1 != height {
		return nil, fmt.Errorf("not find prev block <%d, %s>", height-1, prevHash)
	}
	if parent.hasChild(pkg.Hash) {
		return nil, fmt.Errorf("repetitive block <%d, %s>", height, pkg.Hash)
	}
	if !fastSync {
		if err := e.minter.BlkVerify(pkg, parent.Block, e.store); err != nil {
			return nil, err
		}
		if err := e.validator.ValidateBlock(pkg, parent.Block); err != nil {
			return nil, err
		}
	}

	sub := parent.State.ForkSub()
	if height == 1 {
		if err := e.minter.Initialize(sub); err != nil {
			panic(fmt.Sprintf("initialize genesis state: %v", err))
		}
	}
	logs := e.logs.Next(0)
	if e.config.LogsEnable {
		logs = e.logs.Next(height)
	}
	if err := execution.ExecuteBlock(e.chainInfo(fastSync), pkg.Block, pkg.Hash, sub, logs, e.execOptions()); err != nil {
		return nil, err
	}
	if !fastSync {
		if err := e.minter.BlkInsert(pkg, sub, parent.State); err != nil {
			return nil, err
		}
	}

	chunk := newChunk(pkg, sub, logs, parent)
	newRoot, newHead := tree.Insert(parent, chunk)
	res := &insertResult{
		block:         pkg,
		newRoot:       newRoot,
		newHead:       newHead,
		oldRootHeight: oldRoot,
	}
	if newHead != nil {
		res.path = canonicalPath(newHead, tree.root.Height)
	}
	if newRoot != nil {
		state.Wrap(newRoot.State).SetFinalizedHeight(newRoot.Height)
		if err := newRoot.State.WriteToDisk(); err != nil {
			panic(fmt.Sprintf("write root state %d to disk: %v", newRoot.Height, err))
		}
		newRoot.State.Detach()
	}
	return res, nil
}

// canonicalPath maps every height from the root up to head onto the
// chain ending at head.
func canonicalPath(head *Chunk, rootHeight uint64) rawdb.HashPath {
	path := make(rawdb.HashPath)
	for seek := head; seek != nil && seek.Height >= rootHeight; seek = seek.parent {
		path[seek.Height] = seek.Hash
	}
	return path
}

// rollBy persists what insertBy did. Rebuilt blocks are already stored.
func (e *Engine) rollBy(res *insertResult) {
	pkg := res.block
	rebuild := pkg.Origin == types.BlkOriginRebuild
	if !rebuild {
		var status *types.ChainStatus
		if res.newHead != nil {
			root := res.oldRootHeight
			if res.newRoot != nil {
				root = res.newRoot.Height
			}
			status = &types.ChainStatus{
				RootHeight: types.BlockHeight(root),
				LastHeight: types.BlockHeight(res.newHead.Height),
			}
		}
		e.store.WriteBlock(pkg.Hash, pkg.Data, status, res.path)
	}
	if nr := res.newRoot; nr != nil {
		if e.config.LogsEnable {
			nr.Logs.WriteToDisk()
		}
		e.logger.WithFields(log.Fields{
			"height": nr.Height,
			"hash":   nr.Hash,
		}).Debug("Finalized block")
	}
	if res.newHead == nil || rebuild {
		return
	}
	if e.config.RecentBlocks {
		e.recordRecent(pkg)
	}
	if e.config.AverageFeePurity {
		e.recordAverageFee(pkg.Block)
	}
	if e.txpool != nil {
		e.minter.TxPoolRefresh(e, e.txpool, pkg.Block.TxHashes(false), pkg.Height)
	}
	fields := log.Fields{
		"height": pkg.Height,
		"hash":   pkg.Hash,
		"txs":    len(pkg.Block.Txs),
		"origin": pkg.Origin.String(),
	}
	if pkg.Origin == types.BlkOriginSync {
		e.logger.WithFields(fields).Debug("Imported new chain head")
	} else {
		e.logger.WithFields(fields).Info("Imported new chain head")
	}
	e.headFeed.send(ChainHeadEvent{Block: pkg})
	e.report()
}
