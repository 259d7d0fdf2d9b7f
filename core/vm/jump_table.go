// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.
package vm

type (
	executionFunc func(m *Machine, scope *callScope) ([]byte, error)
	// gasFunc returns the gas an operation costs on top of its constant gas
	gasFunc func(scope *callScope) int64
)

type operation struct {
	// execute is the operation function
	execute     executionFunc
	constantGas int64
	dynamicGas  gasFunc

	writes bool // determines whether this a state modifying operation
}

// Machine operation kinds.
const (
	OpGlobalPut uint8 = 1 // volatile global of the transaction
	OpGlobalGet uint8 = 2
	OpStorePut  uint8 = 3 // persistent contract store
	OpStoreGet  uint8 = 4
	OpStoreDel  uint8 = 5
)

var (
	instructionSet = newInstructionSet()
)

// JumpTable contains the machine operations by kind.
type JumpTable [256]*operation

func newInstructionSet() JumpTable {
	var tbl JumpTable
	tbl[OpGlobalPut] = &operation{
		execute:     opGlobalPut,
		constantGas: GasQuickStep,
		dynamicGas:  gasDataBytes,
	}
	tbl[OpGlobalGet] = &operation{
		execute:     opGlobalGet,
		constantGas: GasQuickStep,
		dynamicGas:  gasKeyBytes,
	}
	tbl[OpStorePut] = &operation{
		execute:     opStorePut,
		constantGas: GasStoreWrite,
		dynamicGas:  gasDataBytes,
		writes:      true,
	}
	tbl[OpStoreGet] = &operation{
		execute:     opStoreGet,
		constantGas: GasStoreRead,
		dynamicGas:  gasKeyBytes,
	}
	tbl[OpStoreDel] = &operation{
		execute:     opStoreDel,
		constantGas: GasStoreDelete,
		dynamicGas:  gasKeyBytes,
		writes:      true,
	}
	return tbl
}
