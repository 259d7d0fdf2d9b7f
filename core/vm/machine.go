package vm

import (
	"fmt"
	"maps"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/types"
)

// callScope is the decoded input of one call. Param is a one byte length
// prefixed key followed by the value.
type callScope struct {
	ctx      types.Context
	state    types.State
	mode     types.CallMode
	contract common.Address
	key      []byte
	value    []byte
}

func newCallScope(ctx types.Context, st types.State, mode types.CallMode, code, param []byte) (*callScope, error) {
	if len(code) != common.AddressLength {
		return nil, ErrInvalidCode
	}
	var contract common.Address
	copy(contract[:], code)
	if !contract.IsContract() {
		return nil, ErrInvalidCode
	}
	var key types.BytesW1
	n, err := key.Parse(param)
	if err != nil {
		return nil, fmt.Errorf("vm param: %w", err)
	}
	return &callScope{
		ctx:      ctx,
		state:    st,
		mode:     mode,
		contract: contract,
		key:      key,
		value:    param[n:],
	}, nil
}

// Machine is a gas metered key/value contract machine. Globals live for
// one transaction, the contract store lives in the chain state.
type Machine struct {
	height   uint64
	gasLimit int64
	gasUsed  int64
	globals  map[string][]byte
	table    *JumpTable
}

// NewMachine creates a machine whose gas allowance is gasMax units.
func NewMachine(height uint64, gasMax uint8) *Machine {
	return &Machine{
		height:   height,
		gasLimit: int64(gasMax) * GasPerUnit,
		globals:  make(map[string][]byte),
		table:    &instructionSet,
	}
}

func (m *Machine) Usable() bool     { return true }
func (m *Machine) GasUsed() int64   { return m.gasUsed }
func (m *Machine) GasRemain() int64 { return m.gasLimit - m.gasUsed }

// Call runs one operation. Gas is charged before the operation executes and
// is never refunded, even when the caller later rolls the state back.
func (m *Machine) Call(ctx types.Context, st types.State, mode types.CallMode, kind uint8, code, param []byte) (int64, []byte, error) {
	op := m.table[kind]
	if op == nil {
		return 0, nil, fmt.Errorf("%w: kind %d", ErrUnknownOp, kind)
	}
	scope, err := newCallScope(ctx, st, mode, code, param)
	if err != nil {
		return 0, nil, err
	}
	if op.writes && mode == types.CallModeAbst {
		return 0, nil, ErrWriteProtection
	}
	gas := op.constantGas
	if op.dynamicGas != nil {
		gas += op.dynamicGas(scope)
	}
	if m.gasUsed+gas > m.gasLimit {
		m.gasUsed = m.gasLimit
		return gas, nil, ErrOutOfGas
	}
	m.gasUsed += gas
	ret, err := op.execute(m, scope)
	return gas, ret, err
}

// SnapshotVolatile copies the globals. Spent gas is not part of it.
func (m *Machine) SnapshotVolatile() any {
	return maps.Clone(m.globals)
}

func (m *Machine) RestoreVolatile(snap any) {
	g, ok := snap.(map[string][]byte)
	if !ok || g == nil {
		m.globals = make(map[string][]byte)
		return
	}
	m.globals = maps.Clone(g)
}
