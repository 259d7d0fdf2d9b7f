// Package execution runs transactions and blocks on a layered state.
package execution

import (
	"fmt"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/core/vm"
	"github.com/hacash/node/params"
)

// ActionHook is called for every action before it executes. It may charge
// extra gas or reject the action.
type ActionHook func(kind uint16, act types.Action, ctx types.Context, gas *uint32) error

// ContextInst is the execution cursor of one block. It is reset for every
// transaction and never shared between goroutines.
type ContextInst struct {
	env   types.Env
	tx    types.Transaction
	state types.State
	logs  types.Logs
	vm    types.VM
	tex   types.TexLedger
	hook  ActionHook

	depth int
	ast   int
	gas   uint32

	signs map[common.Address]error
}

// NewContext creates a context over st. logs may be nil when the block
// logs service is off.
func NewContext(env types.Env, st types.State, logs types.Logs, tx types.Transaction) *ContextInst {
	if logs == nil {
		logs = discardLogs{height: env.Block.Height}
	}
	return &ContextInst{
		env:   env,
		tx:    tx,
		state: st,
		logs:  logs,
		vm:    vm.Nil,
		tex:   *types.NewTexLedger(),
		signs: make(map[common.Address]error),
	}
}

// SetHook installs the action hook.
func (c *ContextInst) SetHook(h ActionHook) { c.hook = h }

// ResetForTx points the context at tx and drops every per transaction
// cache: signatures, the tex ledger and the VM.
func (c *ContextInst) ResetForTx(tx types.Transaction) {
	c.tx = tx
	c.env.Tx = TxInfoOf(tx)
	c.depth, c.ast, c.gas = 0, 0, 0
	c.signs = make(map[common.Address]error)
	c.tex = *types.NewTexLedger()
	c.ReplaceVM(vm.Nil)
}

// ReplaceVM swaps the VM slot and returns the previous machine.
func (c *ContextInst) ReplaceVM(m types.VM) types.VM {
	old := c.vm
	c.vm = m
	return old
}

// Release returns the state and the logs the context ran on.
func (c *ContextInst) Release() (types.State, types.Logs) { return c.state, c.logs }

// GasUsed is the base gas charged by the actions of the current tx.
func (c *ContextInst) GasUsed() uint32 { return c.gas }

func (c *ContextInst) Env() *types.Env       { return &c.env }
func (c *ContextInst) Tx() types.Transaction { return c.tx }
func (c *ContextInst) State() types.State    { return c.state }
func (c *ContextInst) Depth() int            { return c.depth }
func (c *ContextInst) SetDepth(d int)        { c.depth = d }
func (c *ContextInst) AstLevel() int         { return c.ast }
func (c *ContextInst) Tex() *types.TexLedger { return &c.tex }
func (c *ContextInst) VM() types.VM          { return c.vm }
func (c *ContextInst) Logs() types.Logs      { return c.logs }

// SetState replaces the current state without touching the stack.
func (c *ContextInst) SetState(st types.State) { c.state = st }

// StateFork makes a child of the current state current and returns the
// parent, which the caller hands back to StateMerge or StateRecover.
func (c *ContextInst) StateFork() types.State {
	old := c.state
	c.state = old.ForkSub()
	return old
}

// StateMerge folds the current child into old and makes old current.
func (c *ContextInst) StateMerge(old types.State) {
	child := c.state
	child.Detach()
	old.MergeSub(child)
	c.state = old
}

// StateRecover drops the current child and makes old current.
func (c *ContextInst) StateRecover(old types.State) {
	c.state.Detach()
	c.state = old
}

// Snapshot forks the state and records the VM volatile data, the log
// count and the tex ledger.
func (c *ContextInst) Snapshot() *types.Snapshot {
	return &types.Snapshot{
		State:  c.StateFork(),
		VM:     c.vm.SnapshotVolatile(),
		LogLen: c.logs.Len(),
		Tex:    c.tex.Clone(),
	}
}

func (c *ContextInst) Merge(snap *types.Snapshot) {
	c.StateMerge(snap.State)
}

func (c *ContextInst) Recover(snap *types.Snapshot) {
	c.StateRecover(snap.State)
	c.vm.RestoreVolatile(snap.VM)
	c.logs.Truncate(snap.LogLen)
	c.tex = snap.Tex
}

// AstEnter raises the ast level and returns the function that restores it.
func (c *ContextInst) AstEnter() (func(), error) {
	old := c.ast
	next := old + 1
	if next > params.AstTreeDepthMax {
		return func() {}, fmt.Errorf("ast tree depth %d exceeded max %d", next, params.AstTreeDepthMax)
	}
	c.ast = next
	return func() { c.ast = old }, nil
}

// CheckSign verifies the signature of addr over the current transaction.
// The result is cached until the next transaction.
func (c *ContextInst) CheckSign(addr common.Address) error {
	if err := addr.MustPrivakey(); err != nil {
		return err
	}
	if err, ok := c.signs[addr]; ok {
		return err
	}
	err := verifyTargetSign(c.tx, addr)
	c.signs[addr] = err
	return err
}

func verifyTargetSign(tx types.Transaction, addr common.Address) error {
	ntx, ok := tx.(*types.NormalTx)
	if !ok {
		return fmt.Errorf("address %s verify signature failed", addr.Readable())
	}
	if err := types.VerifyOneSign(ntx.SignHashFor(addr), addr, ntx.Signs()); err != nil {
		return fmt.Errorf("address %s verify signature failed", addr.Readable())
	}
	return nil
}

// checkLevel enforces the placement rule of act at the current depth.
func (c *ContextInst) checkLevel(act types.Action) error {
	acts := c.tx.Actions()
	if len(acts) < 1 || len(acts) > params.TxActionsMax {
		return fmt.Errorf("one transaction max actions is %d", params.TxActionsMax)
	}
	kind := act.Kind()
	top := c.depth == 0 && c.ast == 0
	switch lv := act.Level(); lv {
	case types.ActLvTopOnly:
		if len(acts) > 1 || !top {
			return fmt.Errorf("action %d just can execute on TOP_ONLY", kind)
		}
	case types.ActLvTopUnique:
		same := 0
		for _, a := range acts {
			if a.Kind() == kind {
				same++
			}
		}
		if same > 1 || !top {
			return fmt.Errorf("action %d just can execute on level TOP_UNIQUE", kind)
		}
	case types.ActLvTop:
		if !top {
			return fmt.Errorf("action just can execute on level TOP")
		}
	case types.ActLvAst:
		if c.depth != 0 {
			return fmt.Errorf("action just can execute on level AST")
		}
	case types.ActLvAny:
	default:
		limit := params.MainCallDepthMax
		if lv == types.ActLvContractCall {
			limit = params.ContractCallMax
		}
		if d := c.depth + c.ast; d > limit {
			return fmt.Errorf("action just can execute on depth %d but call in %d", limit, d)
		}
	}
	return nil
}

// ActionCall checks the placement and the signers of act, runs it and
// charges its base gas: the serialized size, ten times over when either the
// tx or the action burns 90% of the fee.
func (c *ContextInst) ActionCall(act types.Action) (uint32, []byte, error) {
	if err := c.checkLevel(act); err != nil {
		return 0, nil, err
	}
	seen := make(map[common.Address]struct{})
	for _, ptr := range act.ReqSign() {
		adr, err := ptr.Real(c.env.Tx.Addrs)
		if err != nil {
			return 0, nil, err
		}
		if _, ok := seen[adr]; ok {
			continue
		}
		seen[adr] = struct{}{}
		if adr.IsPrivakey() {
			if err := c.CheckSign(adr); err != nil {
				return 0, nil, err
			}
		}
	}
	gas := uint32(act.Size())
	if c.tx.Burn90() || act.Burn90() {
		gas *= 10
	}
	if c.hook != nil {
		if err := c.hook(act.Kind(), act, c, &gas); err != nil {
			return 0, nil, err
		}
	}
	ret, err := act.Execute(c)
	if err != nil {
		return 0, nil, err
	}
	c.gas += gas
	return gas, ret, nil
}

// TxInfoOf builds the environment record of tx.
func TxInfoOf(tx types.Transaction) types.TxInfo {
	if tx == nil {
		return types.TxInfo{}
	}
	return types.TxInfo{
		Ty:    tx.Type(),
		Fee:   tx.Fee(),
		Main:  tx.Main(),
		Addrs: tx.Addrs(),
	}
}

// discardLogs keeps nothing.
type discardLogs struct {
	height uint64
}

func (l discardLogs) Height() uint64 { return l.height }
func (l discardLogs) Len() int       { return 0 }

func (discardLogs) Push(types.Field) {}

func (discardLogs) Truncate(int) {}
