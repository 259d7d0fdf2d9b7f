// Copyright 2014 The go-ethereum Authors
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

package core

import (
	"errors"
)

var (
	// ErrEngineClosed is returned by every insertion once Close was called.
	ErrEngineClosed = errors.New("chain engine closed")

	// ErrDiscoverBusy is returned when a discovered block arrives while a
	// synchronize batch holds the engine.
	ErrDiscoverBusy = errors.New("the blockchain is syncing and cannot insert newly discovered block")

	// ErrSyncBusy is returned when a synchronize batch arrives while another
	// one is running.
	ErrSyncBusy = errors.New("the blockchain is syncing and need wait")

	// ErrBlockDataFormat is returned when a sync batch does not start with a
	// block intro.
	ErrBlockDataFormat = errors.New("block data format error")

	// ErrNoMinerAddress is returned when the miner is started without a
	// reward address.
	ErrNoMinerAddress = errors.New("miner reward address not set")
)

// syncWarningPrefix marks every error returned by Synchronize.
const syncWarningPrefix = "[Block Sync Warning] "

// SyncError is a failed synchronize batch. The blocks before the failing
// one stay inserted.
type SyncError struct {
	Err error
}

func (e *SyncError) Error() string { return syncWarningPrefix + e.Err.Error() }
func (e *SyncError) Unwrap() error { return e.Err }
