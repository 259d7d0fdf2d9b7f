package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/log"
)

const rebuildAllThreshold = 20 // replays longer than this log progress

// Discover inserts one freshly announced or mined block.
func (e *Engine) Discover(pkg *types.BlockPkg) error {
	release, err := e.acquire(modeDiscover, ErrDiscoverBusy)
	if err != nil {
		return err
	}
	defer release()

	e.treeMu.Lock()
	res, err := e.insertBy(e.tree, pkg)
	e.treeMu.Unlock()
	if err != nil {
		return err
	}
	e.rollBy(res)
	return nil
}

// Synchronize inserts a batch of consecutive serialized blocks. Parsing,
// insertion and persisting run as a pipeline; the first failure stops it
// and is returned as a *SyncError, with every block before the failing
// one inserted and persisted.
func (e *Engine) Synchronize(data []byte) error {
	return e.synchronize(data, types.BlkOriginSync)
}

func (e *Engine) synchronize(data []byte, origin types.BlkOrigin) error {
	release, err := e.acquire(modeSync, ErrSyncBusy)
	if err != nil {
		return err
	}
	defer release()
	began := time.Now()

	var intro types.BlockIntro
	if _, err := intro.Parse(data); err != nil {
		return &SyncError{Err: ErrBlockDataFormat}
	}
	start := uint64(intro.Height)
	e.treeMu.RLock()
	lo, hi := e.tree.root.Height+1, e.tree.head.Height+1
	e.treeMu.RUnlock()
	if start < lo || start > hi {
		return &SyncError{Err: fmt.Errorf("insert height need between %d and %d but got %d", lo, hi, start)}
	}

	var (
		size    = int(e.config.UnstableBlock * 2)
		blocks  = make(chan *types.BlockPkg, size)
		results = make(chan *insertResult, size)
		errc    = make(chan error, 2)
		quit    = make(chan struct{})
		once    sync.Once
		wg      sync.WaitGroup
	)
	stop := func(err error) {
		errc <- err
		once.Do(func() { close(quit) })
	}
	wg.Add(2)
	// parse
	go func() {
		defer wg.Done()
		defer close(blocks)
		need := start
		for seek := 0; seek < len(data); {
			blk, n, err := types.ParseBlock(e.caps.Registry, data[seek:])
			if err != nil {
				stop(errors.Wrap(err, "block parse error"))
				return
			}
			pkg := &types.BlockPkg{
				Height: uint64(blk.Height),
				Hash:   blk.Hash(e.caps.Hasher),
				Data:   data[seek : seek+n],
				Block:  blk,
				Origin: origin,
			}
			seek += n
			if pkg.Height != need {
				stop(fmt.Errorf("need block height %d but got %d", need, pkg.Height))
				return
			}
			need++
			select {
			case blocks <- pkg:
			case <-quit:
				return
			}
		}
	}()
	// insert
	go func() {
		defer wg.Done()
		defer close(results)
		// blocks parsed before a parse failure are still inserted
		for pkg := range blocks {
			e.treeMu.Lock()
			res, err := e.insertBy(e.tree, pkg)
			e.treeMu.Unlock()
			if err != nil {
				stop(fmt.Errorf("insert %d error: %w", pkg.Height, err))
				return
			}
			// the roller drains results until closed, an inserted block
			// is always persisted
			results <- res
		}
	}()
	// roll
	last := start - 1
	for res := range results {
		e.rollBy(res)
		last = res.block.Height
	}
	wg.Wait()

	fields := log.Fields{
		"from":    start,
		"to":      last,
		"head":    e.Latest().Height,
		"size":    common.StorageSize(len(data)),
		"elapsed": common.PrettyDuration(time.Since(began)),
	}
	select {
	case err := <-errc:
		e.logger.WithFields(fields).WithField("err", err).Warn("Block sync batch failed")
		return &SyncError{Err: err}
	default:
	}
	e.logger.WithFields(fields).Info("Synchronized blocks")
	return nil
}

// rebuild replays the stored canonical blocks above the root up to last.
// A stored block that no longer executes means the stores are corrupted.
func (e *Engine) rebuild(last uint64) {
	e.treeMu.Lock()
	defer e.treeMu.Unlock()
	tree := e.tree
	from := tree.root.Height
	if last <= from {
		return
	}
	all := last-from > rebuildAllThreshold
	e.logger.WithFields(log.Fields{
		"datadir": e.config.DataDir,
		"from":    from + 1,
		"to":      last,
	}).Info("Rebuilding unstable blocks")
	for height := from + 1; height <= last; height++ {
		_, data, ok := e.store.BlockDataByHeight(height)
		if !ok {
			e.logger.WithField("height", height).Warn("Stored block missing, rebuild stopped")
			break
		}
		pkg, err := types.NewBlockPkg(e.caps.Registry, e.caps.Hasher, data, types.BlkOriginRebuild)
		if err != nil {
			panic(fmt.Sprintf("[State Panic] rebuild block %d parse error: %v", height, err))
		}
		res, err := e.insertBy(tree, pkg)
		if err != nil {
			panic(fmt.Sprintf("[State Panic] rebuild block %d state error: %v", height, err))
		}
		e.rollBy(res)
		if all && height%631 == 0 {
			e.logger.WithFields(log.Fields{
				"height":   height,
				"progress": fmt.Sprintf("%.2f%%", float64(height)/float64(last)*100),
			}).Info("Rebuilding blocks")
		}
	}
	e.logger.WithField("head", tree.head.Height).Info("Rebuild finished")
}
