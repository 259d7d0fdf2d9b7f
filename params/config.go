package params

import (
	"github.com/hacash/node/common"
	"github.com/hacash/node/log"
)

// Transaction pool groups.
const (
	TxGroupNormal  = 0
	TxGroupDiamint = 1
)

// EngineConfig holds every knob of the chain engine.
type EngineConfig struct {
	MaxBlockTxs   int
	MaxBlockSize  int
	MaxTxSize     int
	MaxTxActions  int
	ChainID       uint32 // sub chain id, 0 is mainnet
	UnstableBlock uint64 // blocks that are likely to fall back from a fork
	FastSync      bool
	SyncMaxHeight uint64 // stop accepting blocks above this height, 0 means no limit
	DataDir       string

	// data services
	DiamondForm      bool
	RecentBlocks     bool
	AverageFeePurity bool
	LowestFeePurity  uint64

	// block logs
	LogsEnable bool

	// hac miner
	MinerEnable        bool
	MinerRewardAddress common.Address
	MinerMessage       [16]byte

	// txpool group capacities
	TxPoolMaxs []int
}

// DefaultEngineConfig contains the mainnet engine settings.
var DefaultEngineConfig = EngineConfig{
	MaxBlockTxs:      1000,
	MaxBlockSize:     1024 * 1024, // 1MB
	MaxTxSize:        1024 * 16,   // 16kb
	MaxTxActions:     TxActionsMax,
	ChainID:          0,
	UnstableBlock:    4,
	DiamondForm:      true,
	RecentBlocks:     false,
	AverageFeePurity: false,
	LowestFeePurity:  DefaultLowestFeePurity,
	TxPoolMaxs:       []int{5000, 100},
}

// IsMainnet reports whether the engine runs the main chain.
func (c *EngineConfig) IsMainnet() bool {
	return c.ChainID == 0
}

// IsOpenMiner reports whether the node mines blocks itself.
func (c *EngineConfig) IsOpenMiner() bool {
	return c.MinerEnable
}

// Sanitize checks the provided user configurations and changes anything that's
// unreasonable or unworkable.
func (c *EngineConfig) Sanitize(logger *log.Logger) EngineConfig {
	conf := *c
	if conf.MaxBlockTxs < 1 {
		logger.WithFields(log.Fields{
			"provided": conf.MaxBlockTxs,
			"updated":  DefaultEngineConfig.MaxBlockTxs,
		}).Warn("Sanitizing invalid engine max block txs")
		conf.MaxBlockTxs = DefaultEngineConfig.MaxBlockTxs
	}
	if conf.MaxBlockSize < 1024 {
		logger.WithFields(log.Fields{
			"provided": conf.MaxBlockSize,
			"updated":  DefaultEngineConfig.MaxBlockSize,
		}).Warn("Sanitizing invalid engine max block size")
		conf.MaxBlockSize = DefaultEngineConfig.MaxBlockSize
	}
	if conf.MaxTxSize < 1 || conf.MaxTxSize > conf.MaxBlockSize {
		logger.WithFields(log.Fields{
			"provided": conf.MaxTxSize,
			"updated":  DefaultEngineConfig.MaxTxSize,
		}).Warn("Sanitizing invalid engine max tx size")
		conf.MaxTxSize = DefaultEngineConfig.MaxTxSize
	}
	if conf.MaxTxActions < 1 || conf.MaxTxActions > TxActionsMax {
		logger.WithFields(log.Fields{
			"provided": conf.MaxTxActions,
			"updated":  TxActionsMax,
		}).Warn("Sanitizing invalid engine max tx actions")
		conf.MaxTxActions = TxActionsMax
	}
	if conf.UnstableBlock < 1 {
		logger.WithFields(log.Fields{
			"provided": conf.UnstableBlock,
			"updated":  DefaultEngineConfig.UnstableBlock,
		}).Warn("Sanitizing invalid engine unstable block")
		conf.UnstableBlock = DefaultEngineConfig.UnstableBlock
	}
	if len(conf.TxPoolMaxs) < 2 {
		logger.WithFields(log.Fields{
			"provided": conf.TxPoolMaxs,
			"updated":  DefaultEngineConfig.TxPoolMaxs,
		}).Warn("Sanitizing invalid txpool group sizes")
		conf.TxPoolMaxs = append([]int(nil), DefaultEngineConfig.TxPoolMaxs...)
	}
	return conf
}

// MintConfig holds the PoW minter settings.
type MintConfig struct {
	ChainID                uint64
	SyncMaxHeight          uint64
	DifficultyAdjustBlocks uint64 // 288, one day
	EachBlockTargetTime    uint64 // 300 seconds
	TestCoin               bool
}

// DefaultMintConfig contains the mainnet minter settings.
var DefaultMintConfig = MintConfig{
	DifficultyAdjustBlocks: 288,
	EachBlockTargetTime:    300,
}

// IsMainnet reports whether the minter runs the main chain.
func (c *MintConfig) IsMainnet() bool {
	return c.ChainID == 0
}

// Sanitize fixes unusable minter settings.
func (c *MintConfig) Sanitize(logger *log.Logger) MintConfig {
	conf := *c
	if conf.DifficultyAdjustBlocks < 2 {
		logger.WithFields(log.Fields{
			"provided": conf.DifficultyAdjustBlocks,
			"updated":  DefaultMintConfig.DifficultyAdjustBlocks,
		}).Warn("Sanitizing invalid difficulty adjust blocks")
		conf.DifficultyAdjustBlocks = DefaultMintConfig.DifficultyAdjustBlocks
	}
	if conf.EachBlockTargetTime < 1 {
		logger.WithFields(log.Fields{
			"provided": conf.EachBlockTargetTime,
			"updated":  DefaultMintConfig.EachBlockTargetTime,
		}).Warn("Sanitizing invalid block target time")
		conf.EachBlockTargetTime = DefaultMintConfig.EachBlockTargetTime
	}
	return conf
}
