package protocol

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/hacash/node/common"
	"github.com/hacash/node/common/exiter"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/log"
	"github.com/hacash/node/params"
)

var ErrArrivalQueueFull = errors.New("block and tx arrival queue is full")

// arrival is a pushed tx or block waiting for the insert loop. peer is nil
// for local submissions.
type arrival struct {
	peer  Peer
	block bool
	body  []byte
}

// Handler answers the peer protocol from the chain engine and feeds pushed
// transactions and blocks into it.
type Handler struct {
	chain   Chain
	pool    types.TxPool // optional
	reg     *types.ActionRegistry
	hasher  types.BlockHasher
	genesis common.Hash
	logger  *log.Logger

	peersMu sync.RWMutex
	peers   PeerSet

	knows     *lru.Cache
	arrivals  chan arrival
	inserting sync.Mutex
}

// NewHandler creates the handler, Start runs its insert loop.
func NewHandler(chain Chain, pool types.TxPool, reg *types.ActionRegistry, hasher types.BlockHasher, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Global
	}
	knows, _ := lru.New(knowledgeSize)
	return &Handler{
		chain:    chain,
		pool:     pool,
		reg:      reg,
		hasher:   hasher,
		genesis:  chain.Minter().GenesisBlock().Hash(hasher),
		logger:   logger,
		knows:    knows,
		arrivals: make(chan arrival, arrivalQueueSize),
	}
}

// SetPeerSet installs the peers blocks and txs are relayed to.
func (h *Handler) SetPeerSet(ps PeerSet) {
	h.peersMu.Lock()
	h.peers = ps
	h.peersMu.Unlock()
}

func (h *Handler) peerSet() PeerSet {
	h.peersMu.RLock()
	defer h.peersMu.RUnlock()
	return h.peers
}

func (h *Handler) broadcast(from Peer, ty uint16, body []byte) {
	if ps := h.peerSet(); ps != nil {
		ps.Broadcast(from, ty, body)
	}
}

// Start runs the insert loop until the worker quits.
func (h *Handler) Start(w *exiter.Worker) {
	defer w.End()
	for {
		select {
		case <-w.Wait():
			// let a running insertion finish
			h.inserting.Lock()
			h.inserting.Unlock()
			h.logger.Info("P2P message handler stopped")
			return
		case a := <-h.arrivals:
			if a.block {
				h.handleNewBlock(a.peer, a.body)
			} else {
				h.handleNewTx(a.peer, a.body)
			}
		}
	}
}

func (h *Handler) enqueue(a arrival) error {
	select {
	case h.arrivals <- a:
		return nil
	default:
		return ErrArrivalQueueFull
	}
}

// RelayTx announces a transaction the local pool already accepted.
func (h *Handler) RelayTx(pkg *types.TxPkg) {
	h.known(pkg.Tx.HashWithFee())
	h.broadcast(nil, MsgTxSubmit, pkg.Data)
}

// SubmitBlock queues a locally submitted raw block.
func (h *Handler) SubmitBlock(body []byte) error {
	return h.enqueue(arrival{block: true, body: body})
}

// OnConnect starts the handshake and offers the highest diamond bid.
func (h *Handler) OnConnect(peer Peer) {
	if err := peer.Send(MsgReqStatus, nil); err != nil {
		h.logger.WithFields(log.Fields{"peer": peer.ID(), "err": err}).Debug("Failed to request peer status")
		return
	}
	if h.pool == nil {
		return
	}
	if pkg, ok := h.pool.FirstAt(params.TxGroupDiamint); ok {
		_ = peer.Send(MsgTxSubmit, pkg.Data)
	}
}

// OnMessage handles one message from peer. Unknown types are ignored.
func (h *Handler) OnMessage(peer Peer, ty uint16, body []byte) {
	switch ty {
	case MsgTxSubmit, MsgBlockDiscover:
		if err := h.enqueue(arrival{peer: peer, block: ty == MsgBlockDiscover, body: body}); err != nil {
			h.logger.WithFields(log.Fields{"peer": peer.ID(), "err": err}).Debug("Dropped pushed message")
		}
	case MsgBlockHash:
		h.receiveHashes(peer, body)
	case MsgReqBlockHash:
		h.sendHashes(peer, body)
	case MsgBlock:
		h.receiveBlocks(peer, body)
	case MsgReqBlock:
		h.sendBlocks(peer, body)
	case MsgReqStatus:
		h.sendStatus(peer)
	case MsgStatus:
		h.receiveStatus(peer, body)
	default:
		h.logger.WithFields(log.Fields{"peer": peer.ID(), "type": ty}).Debug("Unknown message type")
	}
}

// known records key as seen and reports whether it was seen before.
func (h *Handler) known(key common.Hash) bool {
	ok, _ := h.knows.ContainsOrAdd(key, struct{}{})
	return ok
}
