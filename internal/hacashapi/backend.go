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

// package hacashapi implements the HTTP JSON API of the node.
package hacashapi

import (
	"github.com/hacash/node/core"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/params"
)

// Backend interface provides the chain services the API reads from and
// submits to. *core.Engine implements it.
type Backend interface {
	Config() *params.EngineConfig
	Capabilities() core.Capabilities
	Latest() *types.BlockPkg
	Store() types.BlockStore
	State() types.State
	TxPool() types.TxPool
	RecentBlocks() []*types.RecentBlock
	AverageFeePurity() uint64

	Discover(pkg *types.BlockPkg) error
	SubmitTx(pkg *types.TxPkg) error
	SubscribeChainHead(ch chan<- core.ChainHeadEvent) func()
}

// Relayer spreads locally submitted content to the peers. The p2p handler
// implements it.
type Relayer interface {
	RelayTx(pkg *types.TxPkg)
	SubmitBlock(body []byte) error
}

// PendingBlocks exposes the block the local miner is working on.
type PendingBlocks interface {
	Pending() *types.Block
}

var _ Backend = (*core.Engine)(nil)
