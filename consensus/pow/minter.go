package pow

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/log"
	"github.com/hacash/node/params"
)

const (
	historyCheckCycles = 200 // mainnet skips difficulty checks below 288*200
	poolPrintInterval  = 15
	poolCleanInterval  = 11 // about one hour
)

// Minter is the Hacash PoW consensus plug-in of the chain engine.
type Minter struct {
	config  params.MintConfig
	hasher  *Hasher
	genesis *types.Block
	diff    *difficulty
	bidding *bidding
	logger  *log.Logger
}

// NewMinter creates a minter. reg parses the actions of packed blocks.
func NewMinter(config params.MintConfig, hasher *Hasher, reg *types.ActionRegistry, logger *log.Logger) *Minter {
	if logger == nil {
		logger = log.Global
	}
	config = config.Sanitize(logger)
	genesis := GenesisBlock(reg)
	return &Minter{
		config:  config,
		hasher:  hasher,
		genesis: genesis,
		diff:    newDifficulty(config, genesis),
		bidding: newBidding(),
		logger:  logger,
	}
}

func (m *Minter) Config() *params.MintConfig        { return &m.config }
func (m *Minter) Hasher() *Hasher                   { return m.hasher }
func (m *Minter) GenesisBlock() *types.Block        { return m.genesis }
func (m *Minter) Initialize(st types.State) error   { return InitializeState(st) }
func (m *Minter) BlockReward(h uint64) types.Amount { return BlockReward(h) }

// NextDifficulty is the compact difficulty and target of the block after
// prev.
func (m *Minter) NextDifficulty(prev *types.Block, sto types.BlockStore) (uint32, common.Hash, error) {
	return m.diff.target(uint32(prev.Difficulty), uint64(prev.Timestamp), uint64(prev.Height)+1, sto)
}

func (m *Minter) skipHistoryCheck(height uint64) bool {
	return m.config.IsMainnet() && height < m.config.DifficultyAdjustBlocks*historyCheckCycles
}

// TxSubmit applies the diamond bidding rules to a submitted transaction.
func (m *Minter) TxSubmit(eng types.EngineRead, pkg *types.TxPkg) error {
	act, ok := pickDiamondMint(pkg.Tx)
	if !ok {
		return nil
	}
	cur := eng.Latest().Height
	next := cur + 1
	if next%params.DiamondMintPeriod == 0 {
		return fmt.Errorf("diamond mint transaction cannot submit after height of ending in 4 or 9")
	}
	if err := checkMinimumBiddingFee(next, pkg.Tx, act); err != nil {
		return err
	}
	m.bidding.lock.Lock()
	m.bidding.record(cur, pkg, act)
	m.bidding.lock.Unlock()
	return nil
}

func checkMinimumBiddingFee(next uint64, tx types.Transaction, act diamondMint) error {
	least := BlockReward(next)
	if tx.Fee().LessThan(least) && act.MintNumber() > params.DiamondForceBidCheckNumber {
		return fmt.Errorf("diamond biding fee %s cannot less than %s after number %d",
			tx.Fee(), least, params.DiamondForceBidCheckNumber)
	}
	return nil
}

// BlkFound checks the hash of a freshly announced block before it is
// executed.
func (m *Minter) BlkFound(intro *types.BlockIntro, hash common.Hash, sto types.BlockStore) error {
	height := uint64(intro.Height)
	cyl := m.config.DifficultyAdjustBlocks
	if height <= cyl || m.skipHistoryCheck(height) {
		return nil
	}
	if height%cyl == 0 {
		cb, err := m.diff.cycleBlock(height-1, sto)
		if err != nil {
			return err
		}
		tar := DifficultyToHash(cb.difficulty)
		loose := new(uint256.Int).SetBytes32(tar[:])
		if _, overflow := loose.MulOverflow(loose, uint256.NewInt(4)); !overflow {
			tar = common.Hash(loose.Bytes32())
			if !m.hasher.CheckTarget(hash, tar) {
				return fmt.Errorf("block found %d PoW hashrates check failed cannot more than %s but got %s", height, tar, hash)
			}
		}
		return nil
	}
	cb, err := m.diff.cycleBlock(height, sto)
	if err != nil {
		return err
	}
	if uint32(intro.Difficulty) != cb.difficulty {
		return fmt.Errorf("found block %d PoW difficulty must be %d but got %d", height, cb.difficulty, uint32(intro.Difficulty))
	}
	if !m.hasher.CheckTarget(hash, cb.target) {
		return fmt.Errorf("found block %d PoW hashrates check failed cannot more than %s but got %s", height, cb.target, hash)
	}
	return nil
}

// BlkVerify checks the coinbase and the difficulty of cur against its
// parent.
func (m *Minter) BlkVerify(cur *types.BlockPkg, prev *types.BlockPkg, sto types.BlockStore) error {
	height := cur.Height
	if maxh := m.config.SyncMaxHeight; maxh > 0 && height > maxh {
		return fmt.Errorf("config [mint].height_max limit: %d", maxh)
	}
	cb, err := cur.Block.Coinbase()
	if err != nil {
		return err
	}
	if err := VerifyCoinbase(height, cb); err != nil {
		return err
	}
	if m.skipHistoryCheck(height) {
		return nil
	}
	num, tar, err := m.NextDifficulty(prev.Block, sto)
	if err != nil {
		return err
	}
	if got := uint32(cur.Block.Difficulty); got != num {
		return fmt.Errorf("height %d PoW difficulty check failed must be %d but got %d", height, num, got)
	}
	if !m.hasher.CheckTarget(cur.Hash, tar) {
		return fmt.Errorf("height %d PoW hashrates check failed cannot more than %s but got %s", height, tar, cur.Hash)
	}
	return nil
}

// BlkInsert rejects blocks that pack a diamond bid lower than the highest
// one seen in time.
func (m *Minter) BlkInsert(cur *types.BlockPkg, _ types.State, prev types.State) error {
	height := cur.Height
	if height <= params.DiamondMintBidCheckHeight || height%params.DiamondMintPeriod != 0 {
		return nil
	}
	idx, tx, act, ok := pickDiamondMintFromBlock(cur.Block)
	if !ok {
		return nil
	}
	if idx != 1 && height > params.DiamondMintFirstTxHeight {
		return fmt.Errorf("diamond mint transaction must be first one tx in block")
	}
	if err := checkMinimumBiddingFee(height, tx, act); err != nil {
		return err
	}
	number := act.MintNumber()
	fee := tx.Fee()
	m.bidding.lock.Lock()
	defer m.bidding.lock.Unlock()
	if high, ok := m.bidding.highest(height, number, prev, uint64(cur.Block.Timestamp)); ok {
		if fee.LessThan(high) {
			m.bidding.failure(number, cur.Block)
			name := act.MintName()
			m.logger.WithFields(log.Fields{
				"height":  height,
				"diamond": string(name[:]),
				"number":  number,
				"fee":     fee.String(),
				"highest": high.String(),
				"records": m.bidding.show(number),
			}).Warn("Diamond mint bidding fee less than the consensus record")
			if number > params.DiamondForceBidCheckNumber {
				return fmt.Errorf("diamond mint bidding fee %s less than consensus record %s", fee, high)
			}
		}
	}
	m.bidding.removeTx(number, tx.Hash())
	m.bidding.roll(number)
	return nil
}

// TxPoolGroup puts diamond mints into their own group.
func (m *Minter) TxPoolGroup(pkg *types.TxPkg) int {
	if _, ok := pickDiamondMint(pkg.Tx); ok {
		return params.TxGroupDiamint
	}
	return params.TxGroupNormal
}

// PackingNextBlock builds an unsealed block on top of the engine head:
// the coinbase, one diamond mint on mint heights and then the pool in
// order until the block is full.
func (m *Minter) PackingNextBlock(eng types.EngineRead, pool types.TxPool) (*types.Block, error) {
	cnf := eng.Config()
	prev := eng.Latest()
	next := prev.Height + 1
	diff := uint32(prev.Block.Difficulty)
	if diff == 0 {
		diff = LowestDifficulty
	}
	if next%m.config.DifficultyAdjustBlocks == 0 {
		num, _, err := m.NextDifficulty(prev.Block, eng.Store())
		if err != nil {
			return nil, err
		}
		diff = num
	}
	cb := NewCoinbaseTx(next, cnf.MinerRewardAddress, cnf.MinerMessage)
	blk := types.NewBlock(prev.Block.Registry())
	blk.Height = types.BlockHeight(next)
	blk.Timestamp = types.Timestamp(time.Now().Unix())
	blk.PrevHash = prev.Hash
	blk.Difficulty = types.Uint4(diff)
	if err := blk.PushTx(cb); err != nil {
		return nil, err
	}
	m.appendPoolTxs(blk, next, cb.Size(), eng, pool)
	blk.UpdateMrklRoot()
	return blk, nil
}

// NewCoinbaseTx creates the reward transaction of height with an empty
// miner nonce.
func NewCoinbaseTx(height uint64, addr common.Address, msg [16]byte) *types.CoinbaseTx {
	return &types.CoinbaseTx{
		Address: addr,
		Reward:  BlockReward(height),
		Message: types.Fixed16(msg),
		Extend:  types.Some[types.CoinbaseExtend](types.CoinbaseExtend{}),
	}
}

func (m *Minter) appendPoolTxs(blk *types.Block, height uint64, baseSize int, eng types.EngineRead, pool types.TxPool) {
	cnf := eng.Config()
	var (
		total   = baseSize
		fees    = types.Amount{}
		invalid []common.Hash
		sub     = eng.ForkSubState()
	)
	// try executes and pushes one tx, false means it was dropped
	pick := func(pkg *types.TxPkg) bool {
		if err := pkg.Tx.VerifySignature(); err != nil {
			invalid = append(invalid, pkg.Hash)
			return false
		}
		if err := eng.TryExecuteTx(pkg.Tx, height, sub); err != nil {
			invalid = append(invalid, pkg.Hash)
			return false
		}
		nf, err := fees.Add(pkg.Tx.FeeGot())
		if err != nil {
			invalid = append(invalid, pkg.Hash)
			return false
		}
		if err := blk.PushTx(pkg.Tx); err != nil {
			return false
		}
		fees = nf
		total += len(pkg.Data)
		return true
	}
	if height%params.DiamondMintPeriod == 0 {
		pool.IterAt(params.TxGroupDiamint, func(pkg *types.TxPkg) bool {
			if len(pkg.Data)+total > cnf.MaxBlockSize {
				return true
			}
			if len(blk.Txs) >= cnf.MaxBlockTxs {
				return false
			}
			pick(pkg)
			return false // one mint per block
		})
	}
	pool.IterAt(params.TxGroupNormal, func(pkg *types.TxPkg) bool {
		if len(blk.Txs) >= cnf.MaxBlockTxs {
			return false
		}
		if len(pkg.Data)+total > cnf.MaxBlockSize {
			return true
		}
		pick(pkg)
		return true
	})
	if len(invalid) > 0 {
		pool.Drain(invalid)
		m.logger.WithFields(log.Fields{
			"height":  height,
			"dropped": len(invalid),
		}).Debug("Dropped invalid pool transactions while packing")
	}
}

// TxPoolRefresh removes the transactions confirmed by the new head at
// height and periodically evicts pool entries that would no longer
// execute.
func (m *Minter) TxPoolRefresh(eng types.EngineRead, pool types.TxPool, txs []common.Hash, height uint64) {
	if height%poolPrintInterval == 0 {
		m.logger.WithField("pool", pool.String()).Info("Transaction pool status")
	}
	if height%params.DiamondMintPeriod == 0 {
		m.cleanDiamondMintTxs(eng, pool)
	}
	if len(txs) > 1 {
		pool.Drain(txs[1:]) // skip the coinbase
	}
	if height%poolCleanInterval == 0 {
		m.cleanInvalidNormalTxs(eng, pool, height)
	}
}

func (m *Minter) cleanInvalidNormalTxs(eng types.EngineRead, pool types.TxPool, height uint64) {
	next := height + 1
	sub := eng.ForkSubState()
	pool.RetainAt(params.TxGroupNormal, func(pkg *types.TxPkg) bool {
		if pkg.Tx.VerifySignature() != nil {
			return false
		}
		return eng.TryExecuteTx(pkg.Tx, next, sub) == nil
	})
}

func (m *Minter) cleanDiamondMintTxs(eng types.EngineRead, pool types.TxPool) {
	latest, _ := state.Wrap(eng.State()).LatestDiamond()
	next := uint32(latest.Number) + 1
	pool.RetainAt(params.TxGroupDiamint, func(pkg *types.TxPkg) bool {
		return DiamondMintNumber(pkg.Tx) == next
	})
}
