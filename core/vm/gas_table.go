// Copyright 2017 The go-ethereum Authors
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

// Gas costs of the machine operations.
const (
	GasQuickStep   int64 = 2
	GasStoreRead   int64 = 20
	GasStoreWrite  int64 = 200
	GasStoreDelete int64 = 50
	GasPerByte     int64 = 1

	// GasPerUnit is the gas one unit of the transaction gas_max buys.
	GasPerUnit int64 = 256
)

func gasKeyBytes(scope *callScope) int64 {
	return int64(len(scope.key)) * GasPerByte
}

func gasDataBytes(scope *callScope) int64 {
	return int64(len(scope.key)+len(scope.value)) * GasPerByte
}
