package types

import (
	"github.com/hacash/node/common"
)

// MemValue is one entry of a state overlay. Del marks a tombstone that
// masks every lower layer.
type MemValue struct {
	Data []byte
	Del  bool
}

// MemMap is the in-memory layer of a state overlay.
type MemMap map[string]MemValue

// State is a layered key/value overlay. Reads fall through to the parent
// overlay and finally to disk; writes stay in memory until WriteToDisk.
type State interface {
	Get(key []byte) ([]byte, bool)
	Set(key, value []byte)
	Del(key []byte)

	ForkSub() State
	MergeSub(child State)
	Detach()
	CloneState() State
	AsMem() MemMap
	WriteToDisk() error
}

// CallMode selects how the VM runs a code blob.
type CallMode uint8

const (
	CallModeMain CallMode = iota
	CallModeAbst
)

// VM is the capability the execution core consumes from the contract
// machine. Spent gas is not part of the volatile snapshot.
type VM interface {
	Usable() bool
	Call(ctx Context, state State, mode CallMode, kind uint8, code []byte, param []byte) (gas int64, ret []byte, err error)
	SnapshotVolatile() any
	RestoreVolatile(snap any)
}

// VMFactory creates the VM of a transaction that supports fee extend.
type VMFactory func(height uint64, gasMax uint8) VM

// Logs is the per-block log sink.
type Logs interface {
	Height() uint64
	Push(item Field)
	Len() int
	Truncate(n int)
}

// ChainInfo describes the chain being executed.
type ChainInfo struct {
	ID          uint32
	DiamondForm bool
	FastSync    bool
}

// BlockInfo describes the block being executed.
type BlockInfo struct {
	Height   uint64
	Hash     common.Hash
	Coinbase common.Address
}

// TxInfo describes the transaction being executed.
type TxInfo struct {
	Ty    uint8
	Fee   Amount
	Main  common.Address
	Addrs []common.Address
}

// Env is the read-only environment of an execution context.
type Env struct {
	Chain ChainInfo
	Block BlockInfo
	Tx    TxInfo
}

// Snapshot is a savepoint of a context: the state overlay stack position,
// the VM volatile data and the number of logs.
type Snapshot struct {
	State  State
	VM     any
	LogLen int
	Tex    TexLedger
}

// Context is the execution cursor every action receives.
type Context interface {
	Env() *Env
	Tx() Transaction

	State() State
	StateFork() State
	StateMerge(old State)
	StateRecover(old State)

	Snapshot() *Snapshot
	Merge(snap *Snapshot)
	Recover(snap *Snapshot)

	Depth() int
	SetDepth(d int)
	AstLevel() int
	AstEnter() (func(), error)

	CheckSign(addr common.Address) error
	Tex() *TexLedger
	VM() VM
	Logs() Logs

	ActionCall(act Action) (gas uint32, ret []byte, err error)
}
