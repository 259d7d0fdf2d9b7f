// Package vm provides the contract machines the execution core can attach
// to a transaction.
package vm

import (
	"errors"

	"github.com/hacash/node/core/types"
)

var (
	ErrOutOfGas        = errors.New("gas not enough")
	ErrUnknownOp       = errors.New("vm operation not find")
	ErrWriteProtection = errors.New("state write not allowed in abstract call")
	ErrInvalidCode     = errors.New("vm code must be a contract address")
)

// Nil is the empty VM slot. Every call fails.
var Nil types.VM = nilVM{}

type nilVM struct{}

func (nilVM) Usable() bool { return false }

func (nilVM) Call(types.Context, types.State, types.CallMode, uint8, []byte, []byte) (int64, []byte, error) {
	return 0, nil, errors.New("vm not supported")
}

func (nilVM) SnapshotVolatile() any { return nil }

func (nilVM) RestoreVolatile(any) {}

// NewFactory returns the VM factory that attaches a KV machine to every
// transaction buying gas.
func NewFactory() types.VMFactory {
	return func(height uint64, gasMax uint8) types.VM {
		return NewMachine(height, gasMax)
	}
}

// NilFactory never attaches a VM.
func NilFactory() types.VMFactory {
	return func(uint64, uint8) types.VM { return Nil }
}
