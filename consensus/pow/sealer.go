package pow

import (
	crand "crypto/rand"
	"math"
	"math/big"
	"math/rand"
	"runtime"
	"sync"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/log"
)

// Seal attempts to find a nonce that brings the intro hash under target.
// The search runs in the background; the sealed intro, or nil once the
// whole nonce space is exhausted, is sent on results.
func (h *Hasher) Seal(intro *types.BlockIntro, target common.Hash, results chan<- *types.BlockIntro, stop <-chan struct{}) error {
	// If we're running a fake PoW, simply return a 0 nonce immediately
	if h.config.PowMode == ModeFake {
		sealed := *intro
		sealed.Nonce = 0
		select {
		case results <- &sealed:
		default:
			h.config.Log.WithField("mode", "fake").Warn("Sealing result is not read by miner")
		}
		return nil
	}
	abort := make(chan struct{})

	h.lock.Lock()
	threads := h.threads
	if h.rand == nil {
		seed, err := crand.Int(crand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			h.lock.Unlock()
			return err
		}
		h.rand = rand.New(rand.NewSource(seed.Int64()))
	}
	start := uint32(h.rand.Int63())
	h.lock.Unlock()
	if threads == 0 {
		threads = runtime.NumCPU()
	}
	if threads < 0 {
		threads = 0 // Allows disabling local mining without extra logic
	}
	var (
		pend   sync.WaitGroup
		locals = make(chan *types.BlockIntro)
		done   = make(chan struct{})
	)
	for i := 0; i < threads; i++ {
		pend.Add(1)
		go func(id int) {
			defer pend.Done()
			h.mine(intro, target, id, threads, start, abort, locals)
		}(i)
	}
	go func() {
		pend.Wait()
		close(done)
	}()
	// Wait until sealing is terminated or a nonce is found
	go func() {
		var result *types.BlockIntro
		select {
		case <-stop:
			// Outside abort, stop all miner threads
			close(abort)
		case result = <-locals:
			// One of the threads found a block, abort all others
			select {
			case results <- result:
			default:
				h.config.Log.WithField("height", uint64(intro.Height)).Warn("Sealing result is not read by miner")
			}
			close(abort)
		case <-done:
			select {
			case results <- nil:
			case <-stop:
			}
			return
		case <-h.update:
			// Thread count was changed on user request, restart
			close(abort)
			if err := h.Seal(intro, target, results, stop); err != nil {
				h.config.Log.WithField("err", err).Error("Failed to restart sealing after update")
			}
		}
		<-done
	}()
	return nil
}

// mine walks the nonces id, id+step, ... offset by start until one meets
// target or the space is covered.
func (h *Hasher) mine(intro *types.BlockIntro, target common.Hash, id, step int, start uint32, abort chan struct{}, found chan *types.BlockIntro) {
	var (
		work     = *intro
		height   = uint64(intro.Height)
		attempts = uint64(0)
		total    = uint64(math.MaxUint32) + 1
	)
	logger := h.config.Log
	logger.WithFields(log.Fields{"id": id, "start": start}).Trace("Started nonce search")
search:
	for n := uint64(id); n < total; n += uint64(step) {
		select {
		case <-abort:
			logger.WithField("attempts", attempts).Trace("Nonce search aborted")
			break search
		default:
			attempts++
			work.Nonce = types.Uint4(start + uint32(n))
			hash := h.BlockHash(height, work.Serialize())
			if !HashBigThan(hash, target) {
				sealed := work
				select {
				case found <- &sealed:
					logger.WithFields(log.Fields{"attempts": attempts, "nonce": uint32(work.Nonce)}).Trace("Nonce found and reported")
				case <-abort:
					logger.WithFields(log.Fields{"attempts": attempts, "nonce": uint32(work.Nonce)}).Trace("Nonce found but discarded")
				}
				break search
			}
		}
	}
}
