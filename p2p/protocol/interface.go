package protocol

import (
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/params"
)

// Chain is the engine the handler serves and feeds.
type Chain interface {
	Config() *params.EngineConfig
	Latest() *types.BlockPkg
	Store() types.BlockStore
	Minter() types.Minter
	Discover(pkg *types.BlockPkg) error
	Synchronize(data []byte) error
	SubmitTx(pkg *types.TxPkg) error
}

// Peer is one connected node.
type Peer interface {
	ID() string
	Send(ty uint16, body []byte) error
	Disconnect()
}

// PeerSet relays messages across the connected peers.
type PeerSet interface {
	// Broadcast sends to every peer except from, which may be nil.
	Broadcast(from Peer, ty uint16, body []byte)
	// SwitchPeer picks the peer to continue a sync with after p.
	SwitchPeer(p Peer) Peer
}
