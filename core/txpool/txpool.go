// Package txpool implements the pending transaction pool: a fixed set of
// groups, each ordered by fee purity or by raw fee.
package txpool

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/log"
	"github.com/hacash/node/metrics_config"
	"github.com/hacash/node/params"
)

var txpoolMetrics = metrics_config.NewGaugeVec("TxpoolGauges", "Txpool gauges")

var _ types.TxPool = (*TxPool)(nil)

// GroupConfig sizes and orders one group.
type GroupConfig struct {
	Size        int
	ByFeePurity bool // otherwise by raw fee
}

// Config are the configuration parameters of the transaction pool.
type Config struct {
	LowestFeePurity uint64
	Groups          []GroupConfig
}

// DefaultConfig holds a normal group ordered by fee purity and a diamond
// mint group ordered by bid fee.
var DefaultConfig = Config{
	LowestFeePurity: params.DefaultLowestFeePurity,
	Groups: []GroupConfig{
		{Size: 5000, ByFeePurity: true},
		{Size: 100, ByFeePurity: false},
	},
}

// ConfigFrom derives the pool settings of an engine config.
func ConfigFrom(cnf *params.EngineConfig) Config {
	conf := Config{LowestFeePurity: cnf.LowestFeePurity}
	for i, size := range cnf.TxPoolMaxs {
		conf.Groups = append(conf.Groups, GroupConfig{Size: size, ByFeePurity: i != params.TxGroupDiamint})
	}
	return conf
}

// sanitize checks the provided user configurations and changes anything that's
// unreasonable or unworkable.
func (config *Config) sanitize(logger *log.Logger) Config {
	conf := *config
	if len(conf.Groups) < len(DefaultConfig.Groups) {
		logger.WithFields(log.Fields{
			"provided": len(conf.Groups),
			"updated":  len(DefaultConfig.Groups),
		}).Warn("Sanitizing invalid txpool group count")
		conf.Groups = append([]GroupConfig(nil), DefaultConfig.Groups...)
	}
	conf.Groups = append([]GroupConfig(nil), conf.Groups...)
	for i := range conf.Groups {
		if conf.Groups[i].Size < 1 {
			logger.WithFields(log.Fields{
				"group":    i,
				"provided": conf.Groups[i].Size,
				"updated":  1,
			}).Warn("Sanitizing invalid txpool group size")
			conf.Groups[i].Size = 1
		}
	}
	return conf
}

// TxPool keeps pending transactions in independently locked groups. A
// transaction hash lives in at most one group.
type TxPool struct {
	config Config
	logger *log.Logger

	mu     sync.Mutex // serializes cross group writes
	groups []*lockedGroup
}

type lockedGroup struct {
	sync.Mutex
	*group
}

// New creates a transaction pool.
func New(config Config, logger *log.Logger) *TxPool {
	config = (&config).sanitize(logger)
	pool := &TxPool{config: config, logger: logger}
	for _, gc := range config.Groups {
		pool.groups = append(pool.groups, &lockedGroup{group: newGroup(gc.Size, gc.ByFeePurity)})
	}
	return pool
}

func (pool *TxPool) at(gi int) (*lockedGroup, error) {
	if gi < 0 || gi >= len(pool.groups) {
		return nil, fmt.Errorf("tx pool group overflow")
	}
	return pool.groups[gi], nil
}

// Insert adds pkg to group gi. A hash already pending in another group is
// moved to gi when the insert succeeds.
func (pool *TxPool) Insert(pkg *types.TxPkg, gi int) error {
	if pkg.FeePurity < pool.config.LowestFeePurity {
		return fmt.Errorf("tx fee purity %d too low to add txpool", pkg.FeePurity)
	}
	g, err := pool.at(gi)
	if err != nil {
		return err
	}
	pool.mu.Lock()
	defer pool.mu.Unlock()

	g.Lock()
	err = g.insert(pkg)
	g.Unlock()
	if err != nil {
		return err
	}
	for i, other := range pool.groups {
		if i == gi {
			continue
		}
		other.Lock()
		if j := other.search(pkg.Hash); j >= 0 {
			other.removeAt(j)
		}
		other.Unlock()
	}
	pool.report()
	return nil
}

// InsertBy adds pkg to the group chosen by classify.
func (pool *TxPool) InsertBy(pkg *types.TxPkg, classify func(*types.TxPkg) int) error {
	return pool.Insert(pkg, classify(pkg))
}

// Find looks a hash up in every group.
func (pool *TxPool) Find(hash common.Hash) (*types.TxPkg, bool) {
	for _, g := range pool.groups {
		g.Lock()
		pkg, ok := g.find(hash)
		g.Unlock()
		if ok {
			return pkg, true
		}
	}
	return nil, false
}

// FindAt looks a hash up in group gi only.
func (pool *TxPool) FindAt(gi int, hash common.Hash) (*types.TxPkg, bool) {
	g, err := pool.at(gi)
	if err != nil {
		return nil, false
	}
	g.Lock()
	defer g.Unlock()
	return g.find(hash)
}

// FirstAt returns the best entry of group gi.
func (pool *TxPool) FirstAt(gi int) (*types.TxPkg, bool) {
	g, err := pool.at(gi)
	if err != nil {
		return nil, false
	}
	g.Lock()
	defer g.Unlock()
	if len(g.items) == 0 {
		return nil, false
	}
	return g.items[0], true
}

// IterAt visits group gi best first until visit returns false. The group
// stays locked during the walk; visit must not call back into the pool.
func (pool *TxPool) IterAt(gi int, visit func(*types.TxPkg) bool) {
	g, err := pool.at(gi)
	if err != nil {
		return
	}
	g.Lock()
	defer g.Unlock()
	for _, pkg := range g.items {
		if !visit(pkg) {
			return
		}
	}
}

// RetainAt drops every entry of group gi that keep rejects.
func (pool *TxPool) RetainAt(gi int, keep func(*types.TxPkg) bool) {
	g, err := pool.at(gi)
	if err != nil {
		return
	}
	g.Lock()
	g.retain(keep)
	g.Unlock()
	pool.report()
}

// DeleteAt removes the given hashes from group gi.
func (pool *TxPool) DeleteAt(gi int, hashes []common.Hash) {
	g, err := pool.at(gi)
	if err != nil {
		return
	}
	g.Lock()
	for _, hx := range hashes {
		if i := g.search(hx); i >= 0 {
			g.removeAt(i)
		}
	}
	g.Unlock()
	pool.report()
}

// Drain removes and returns every pending entry whose hash is listed.
func (pool *TxPool) Drain(hashes []common.Hash) []*types.TxPkg {
	want := mapset.NewThreadUnsafeSet()
	for _, hx := range hashes {
		want.Add(hx)
	}
	var res []*types.TxPkg
	for _, g := range pool.groups {
		if want.Cardinality() == 0 {
			break
		}
		g.Lock()
		g.retain(func(pkg *types.TxPkg) bool {
			if want.Contains(pkg.Hash) {
				want.Remove(pkg.Hash)
				res = append(res, pkg)
				return false
			}
			return true
		})
		g.Unlock()
	}
	pool.report()
	return res
}

// ClearAt empties group gi.
func (pool *TxPool) ClearAt(gi int) {
	g, err := pool.at(gi)
	if err != nil {
		return
	}
	g.Lock()
	g.clear()
	g.Unlock()
	pool.report()
}

// Len is the entry count of group gi.
func (pool *TxPool) Len(gi int) int {
	g, err := pool.at(gi)
	if err != nil {
		return 0
	}
	g.Lock()
	defer g.Unlock()
	return len(g.items)
}

func (pool *TxPool) String() string {
	parts := make([]string, 0, len(pool.groups))
	for i := range pool.groups {
		parts = append(parts, strconv.Itoa(i)+"("+strconv.Itoa(pool.Len(i))+")")
	}
	return "[TxPool] tx count: " + strings.Join(parts, ", ")
}

func (pool *TxPool) report() {
	if txpoolMetrics == nil {
		return
	}
	for i := range pool.groups {
		txpoolMetrics.WithLabelValues("group" + strconv.Itoa(i)).Set(float64(pool.Len(i)))
	}
}
