package types

import (
	"github.com/hacash/node/common"
	"github.com/hacash/node/params"
)

// BlockStore is the read side of the persisted block store.
type BlockStore interface {
	Status() ChainStatus
	BlockData(hash common.Hash) ([]byte, bool)
	BlockHash(height uint64) (common.Hash, bool)
	BlockDataByHeight(height uint64) (common.Hash, []byte, bool)
}

// EngineRead is the read-only view of the chain engine handed to the
// minter and the api.
type EngineRead interface {
	Config() *params.EngineConfig
	Latest() *BlockPkg
	Store() BlockStore
	// State is the state after the head block. It must not be written.
	State() State
	// ForkSubState returns a writable child of the head state.
	ForkSubState() State
	// TryExecuteTx runs tx as if it were packed at height on st.
	TryExecuteTx(tx Transaction, height uint64, st State) error
	RecentBlocks() []*RecentBlock
	AverageFeePurity() uint64
}

// TxPool is the pending transaction pool seen by the minter and the engine.
type TxPool interface {
	Insert(pkg *TxPkg, group int) error
	Find(hash common.Hash) (*TxPkg, bool)
	FirstAt(group int) (*TxPkg, bool)
	IterAt(group int, visit func(*TxPkg) bool)
	RetainAt(group int, keep func(*TxPkg) bool)
	Drain(hashes []common.Hash) []*TxPkg
	ClearAt(group int)
	Len(group int) int
	String() string
}

// Minter is the consensus plug-in of the engine: genesis, rewards,
// difficulty and the pool policies.
type Minter interface {
	Config() *params.MintConfig
	GenesisBlock() *Block
	Initialize(st State) error
	BlockReward(height uint64) Amount

	TxSubmit(eng EngineRead, pkg *TxPkg) error
	BlkFound(intro *BlockIntro, hash common.Hash, sto BlockStore) error
	BlkVerify(cur *BlockPkg, prev *BlockPkg, sto BlockStore) error
	BlkInsert(cur *BlockPkg, st State, prev State) error

	PackingNextBlock(eng EngineRead, pool TxPool) (*Block, error)
	TxPoolGroup(pkg *TxPkg) int
	TxPoolRefresh(eng EngineRead, pool TxPool, txs []common.Hash, height uint64)
}

// RecentBlock is the summary kept for the latest canonical blocks.
type RecentBlock struct {
	Height   uint64
	Hash     common.Hash
	Prev     common.Hash
	Txs      uint32
	Miner    common.Address
	Message  string
	Reward   Amount
	Time     uint64
	ArriveAt uint64
}
