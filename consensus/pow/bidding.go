package pow

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/params"
)

const (
	bidDelaySecs  = 15 // a bid must be this old to bind a block
	bidRecordNum  = 10
	bidProveHold  = 5 // numbers kept behind the latest
	bidTargetStep = params.DiamondMintPeriod
)

// diamondMint is implemented by the diamond mint action.
type diamondMint interface {
	types.Action
	MintNumber() uint32
	MintName() types.DiamondName
}

// pickDiamondMint returns the mint action of tx, if any.
func pickDiamondMint(tx types.Transaction) (diamondMint, bool) {
	for _, act := range tx.Actions() {
		if m, ok := act.(diamondMint); ok {
			return m, true
		}
	}
	return nil, false
}

// pickDiamondMintFromBlock returns the first mint of a block with its tx
// index.
func pickDiamondMintFromBlock(blk *types.Block) (int, types.Transaction, diamondMint, bool) {
	for i, tx := range blk.Txs {
		if m, ok := pickDiamondMint(tx); ok {
			return i, tx, m, true
		}
	}
	return 0, nil, nil, false
}

// DiamondMintNumber returns the diamond number minted by tx, or 0.
func DiamondMintNumber(tx types.Transaction) uint32 {
	if m, ok := pickDiamondMint(tx); ok {
		return m.MintNumber()
	}
	return 0
}

type bidRecord struct {
	usable    bool
	tarHeight uint64
	time      uint64
	number    uint32
	diamond   types.DiamondName
	hash      common.Hash
	addr      common.Address
	fee       types.Amount
}

// bidding remembers the highest bids seen per diamond number so a block
// that packs a lower bid can be rejected.
type bidding struct {
	lock     sync.Mutex
	latest   uint32
	failures map[uint32]map[common.Address]struct{}
	bids     map[uint32][]bidRecord // newest first
	now      func() uint64
}

func newBidding() *bidding {
	return &bidding{
		failures: make(map[uint32]map[common.Address]struct{}),
		bids:     make(map[uint32][]bidRecord),
		now:      func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// failure remembers the miner of a block that skipped the highest bid.
func (b *bidding) failure(number uint32, blk *types.Block) {
	cb, err := blk.Coinbase()
	if err != nil {
		return
	}
	fails, ok := b.failures[number]
	if !ok {
		fails = make(map[common.Address]struct{})
		b.failures[number] = fails
	}
	fails[cb.Main()] = struct{}{}
}

func (b *bidding) record(curHeight uint64, pkg *types.TxPkg, act diamondMint) {
	number := act.MintNumber()
	if number > b.latest {
		b.latest = number
	}
	rec := bidRecord{
		usable:    true,
		tarHeight: curHeight/bidTargetStep*bidTargetStep + bidTargetStep,
		time:      b.now(),
		number:    number,
		diamond:   act.MintName(),
		hash:      pkg.Hash,
		addr:      pkg.Tx.Main(),
		fee:       pkg.Tx.Fee(),
	}
	bids := b.bids[number]
	if len(bids) == 0 {
		b.bids[number] = []bidRecord{rec}
		return
	}
	if rec.fee.Cmp(bids[0].fee) <= 0 {
		return
	}
	if bids[0].time == rec.time {
		bids[0] = rec // replace in the same second
		return
	}
	bids = append([]bidRecord{rec}, bids...)
	if limit := bidDelaySecs + bidRecordNum; len(bids) > limit {
		bids = bids[:limit]
	}
	b.bids[number] = bids
}

// discount lowers the required fee once several miners skipped it.
func (b *bidding) discount(number uint32, fee types.Amount) types.Amount {
	fails := len(b.failures[number])
	sub := func(x uint8) types.Amount {
		r, err := fee.Sub(types.NewAmountSmall(x, 247))
		if err != nil || r.IsNegative() {
			return types.Amount{}
		}
		return r
	}
	switch {
	case fails < 3:
		return fee
	case fails == 3:
		return sub(5)
	case fails == 4:
		return sub(9)
	}
	return types.Amount{}
}

// highest returns the highest bid still payable at the block time.
func (b *bidding) highest(curHeight uint64, number uint32, prev types.State, blockTime uint64) (types.Amount, bool) {
	bids, ok := b.bids[number]
	if !ok {
		return types.Amount{}, false
	}
	cs := state.Wrap(prev)
	deadline := uint64(0)
	if blockTime > bidDelaySecs {
		deadline = blockTime - bidDelaySecs
	}
	for _, r := range bids {
		usable := curHeight <= r.tarHeight || r.usable
		if r.number != number || r.time >= deadline || !usable {
			continue
		}
		bls, _ := cs.Balance(r.addr)
		if bls.Hacash.Cmp(r.fee) >= 0 {
			return b.discount(number, r.fee), true
		}
	}
	return types.Amount{}, false
}

func (b *bidding) removeTx(number uint32, hash common.Hash) {
	bids := b.bids[number]
	for i := range bids {
		if bids[i].hash == hash {
			bids[i].usable = false
		}
	}
}

func (b *bidding) roll(number uint32) {
	if number <= bidProveHold {
		return
	}
	expired := number - bidProveHold
	delete(b.failures, expired)
	delete(b.bids, expired)
}

func (b *bidding) show(number uint32) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "bidding list %d (", number)
	for _, r := range b.bids[number] {
		fmt.Fprintf(&sb, " %s %s %s;", string(r.diamond[:]), r.addr.Readable(), r.fee)
	}
	sb.WriteString(" )")
	return sb.String()
}
