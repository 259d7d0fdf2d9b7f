package txpool

import (
	"errors"
	"math/big"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/types"
)

// scanWindow is the range size below which insertion scans linearly.
const scanWindow = 10

var (
	ErrUnderpriced = errors.New("tx already exists in tx pool and it's fee is higher")
	ErrPoolFull    = errors.New("tx pool is full and your tx fee is too low")
)

// group is one ordered queue of the pool. Items are sorted by descending
// key; equal keys keep their insertion order.
type group struct {
	size        int
	byFeePurity bool
	items       []*types.TxPkg
}

func newGroup(size int, byFeePurity bool) *group {
	return &group{size: size, byFeePurity: byFeePurity}
}

// cmp orders a against b by the group key.
func (g *group) cmp(a, b *types.TxPkg) int {
	if g.byFeePurity {
		switch {
		case a.FeePurity > b.FeePurity:
			return 1
		case a.FeePurity < b.FeePurity:
			return -1
		}
		return 0
	}
	return feeOf(a).Cmp(feeOf(b))
}

func feeOf(pkg *types.TxPkg) *big.Int {
	if pkg.Tx == nil {
		return new(big.Int)
	}
	return pkg.Tx.Fee().Big()
}

func (g *group) search(hash common.Hash) int {
	for i, pkg := range g.items {
		if pkg.Hash == hash {
			return i
		}
	}
	return -1
}

func (g *group) find(hash common.Hash) (*types.TxPkg, bool) {
	if i := g.search(hash); i >= 0 {
		return g.items[i], true
	}
	return nil, false
}

func (g *group) insert(pkg *types.TxPkg) error {
	if i := g.search(pkg.Hash); i >= 0 {
		if g.cmp(pkg, g.items[i]) <= 0 {
			return ErrUnderpriced
		}
		g.removeAt(i)
	}
	n := len(g.items)
	if n >= g.size && g.cmp(pkg, g.items[n-1]) <= 0 {
		return ErrPoolFull
	}
	at := g.position(pkg)
	g.items = append(g.items, nil)
	copy(g.items[at+1:], g.items[at:])
	g.items[at] = pkg
	if len(g.items) > g.size {
		g.items = g.items[:g.size]
	}
	return nil
}

// position returns the index of the first item ranked strictly below pkg.
// Everything before lo ranks at least as high as pkg, everything from hi
// ranks below it.
func (g *group) position(pkg *types.TxPkg) int {
	lo, hi := 0, len(g.items)
	for hi-lo > scanWindow {
		mid := lo + (hi-lo)/2
		if g.cmp(pkg, g.items[mid]) > 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	for i := lo; i < hi; i++ {
		if g.cmp(pkg, g.items[i]) > 0 {
			return i
		}
	}
	return hi
}

func (g *group) removeAt(i int) *types.TxPkg {
	pkg := g.items[i]
	g.items = append(g.items[:i], g.items[i+1:]...)
	return pkg
}

func (g *group) retain(keep func(*types.TxPkg) bool) {
	kept := g.items[:0]
	for _, pkg := range g.items {
		if keep(pkg) {
			kept = append(kept, pkg)
		}
	}
	for i := len(kept); i < len(g.items); i++ {
		g.items[i] = nil
	}
	g.items = kept
}

func (g *group) clear() {
	g.items = nil
}
