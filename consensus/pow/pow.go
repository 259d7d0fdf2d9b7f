// Package pow implements the Hacash proof-of-work: the block and diamond
// hashers, the difficulty retarget, the reward schedule and the Minter the
// chain engine consults for every block.
package pow

import (
	"math/rand"
	"sync"

	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"

	"github.com/hacash/node/common"
	"github.com/hacash/node/log"
)

// Mode defines the type and amount of PoW verification a hasher makes.
type Mode uint

const (
	ModeNormal Mode = iota
	ModeFake
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeFake:
		return "fake"
	}
	return "unknown"
}

// ParseMode maps a config value to a Mode; anything unknown is normal.
func ParseMode(s string) Mode {
	if s == "fake" {
		return ModeFake
	}
	return ModeNormal
}

const (
	blockHashRoundStep = 50000 // one more mix round every 50000 blocks
	blockHashRoundsMax = 16
)

// Config are the configuration parameters of the hasher.
type Config struct {
	PowMode Mode

	Log *log.Logger `toml:"-"`
}

// Hasher computes block and diamond hashes and searches block nonces.
type Hasher struct {
	config Config

	// Mining related fields
	rand    *rand.Rand    // Properly seeded random source for nonces
	threads int           // Number of threads to mine on if mining
	update  chan struct{} // Notification channel to update mining parameters

	lock sync.Mutex // Ensures thread safety for the mining fields
}

// New creates a hasher with the given mode.
func New(config Config) *Hasher {
	if config.Log == nil {
		config.Log = log.Global
	}
	return &Hasher{
		config: config,
		update: make(chan struct{}),
	}
}

// NewFaker creates a hasher that accepts every block and diamond target,
// though blocks still have to conform to the chain rules.
func NewFaker() *Hasher {
	return New(Config{PowMode: ModeFake})
}

// Mode returns the verification mode.
func (h *Hasher) Mode() Mode { return h.config.PowMode }

// Threads returns the number of mining threads currently enabled. This doesn't
// necessarily mean that mining is running!
func (h *Hasher) Threads() int {
	h.lock.Lock()
	defer h.lock.Unlock()

	return h.threads
}

// SetThreads updates the number of mining threads currently enabled. Calling
// this method does not start mining, only sets the thread count. If zero is
// specified, the miner will use all cores of the machine. Setting a thread
// count below zero is allowed and will cause the miner to idle, without any
// work being done.
func (h *Hasher) SetThreads(threads int) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.threads = threads
	select {
	case h.update <- struct{}{}:
	default:
	}
}

func sha3Sum(data ...[]byte) [32]byte {
	d := sha3.New256()
	for _, b := range data {
		d.Write(b)
	}
	var r [32]byte
	copy(r[:], d.Sum(nil))
	return r
}

// mixRounds hashes seed repeat times with blake3.
func mixRounds(repeat int, seed [32]byte) [32]byte {
	r := seed
	for i := 0; i < repeat; i++ {
		r = blake3.Sum256(r[:])
	}
	return r
}

// BlockHashRounds is the mix round count of a height.
func BlockHashRounds(height uint64) int {
	n := 1 + int(height/blockHashRoundStep)
	if n > blockHashRoundsMax {
		n = blockHashRoundsMax
	}
	return n
}

// BlockHash is the PoW hash of a block intro. Fake mode skips the mix.
func (h *Hasher) BlockHash(height uint64, intro []byte) common.Hash {
	base := sha3Sum(intro)
	if h.config.PowMode == ModeFake {
		return base
	}
	return common.Hash(mixRounds(BlockHashRounds(height), base))
}

// CheckTarget reports whether hash does not exceed target.
func (h *Hasher) CheckTarget(hash, target common.Hash) bool {
	if h.config.PowMode == ModeFake {
		return true
	}
	return !HashBigThan(hash, target)
}

// HashBigThan compares two hashes as big-endian numbers.
func HashBigThan(a, b common.Hash) bool {
	for i := 0; i < common.HashLength; i++ {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}
