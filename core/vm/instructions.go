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

import (
	"github.com/hacash/node/common"
	"github.com/hacash/node/core/state"
)

func storeKey(contract common.Address, key []byte) []byte {
	k := make([]byte, 0, common.AddressLength+len(key))
	k = append(k, contract[:]...)
	return state.SlotKey(state.SlotContractStore, append(k, key...))
}

func opGlobalPut(m *Machine, scope *callScope) ([]byte, error) {
	m.globals[string(scope.key)] = common.CopyBytes(scope.value)
	return nil, nil
}

func opGlobalGet(m *Machine, scope *callScope) ([]byte, error) {
	return common.CopyBytes(m.globals[string(scope.key)]), nil
}

func opStorePut(m *Machine, scope *callScope) ([]byte, error) {
	scope.state.Set(storeKey(scope.contract, scope.key), common.CopyBytes(scope.value))
	return nil, nil
}

func opStoreGet(m *Machine, scope *callScope) ([]byte, error) {
	v, _ := scope.state.Get(storeKey(scope.contract, scope.key))
	return common.CopyBytes(v), nil
}

func opStoreDel(m *Machine, scope *callScope) ([]byte, error) {
	scope.state.Del(storeKey(scope.contract, scope.key))
	return nil, nil
}
