package protocol

import (
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/log"
)

func (h *Handler) status() *HandshakeStatus {
	latest := h.chain.Latest()
	return &HandshakeStatus{
		GenesisHash:  h.genesis,
		BlockVersion: statusBlockVersion,
		TxType:       statusTxType,
		ActionKind:   statusActionKind,
		RepairSerial: statusRepairSerial,
		LatestHeight: latest.Height,
		LatestHash:   latest.Hash,
	}
}

func (h *Handler) send(peer Peer, ty uint16, body []byte) {
	if err := peer.Send(ty, body); err != nil {
		h.logger.WithFields(log.Fields{"peer": peer.ID(), "type": ty, "err": err}).Debug("Failed to send message")
	}
}

func (h *Handler) sendStatus(peer Peer) {
	h.send(peer, MsgStatus, h.status().Serialize())
}

func (h *Handler) receiveStatus(peer Peer, body []byte) {
	var st HandshakeStatus
	if _, err := st.Parse(body); err != nil {
		h.logger.WithFields(log.Fields{"peer": peer.ID(), "err": err}).Debug("Bad peer status")
		peer.Disconnect()
		return
	}
	if st.GenesisHash != h.genesis {
		h.logger.WithFields(log.Fields{"peer": peer.ID(), "genesis": st.GenesisHash}).Warn("Peer is on another chain")
		peer.Disconnect()
		return
	}
	mine := h.chain.Latest().Height
	if mine == 0 && st.LatestHeight > 0 {
		h.send(peer, MsgReqBlock, heightBytes(1))
		return
	}
	if mine < st.LatestHeight {
		h.send(peer, MsgReqBlockHash, h.hashRequest(mine).Serialize())
	}
}

// hashRequest asks for the hashes of the unstable span ending at end, the
// range where a fork point can be.
func (h *Handler) hashRequest(end uint64) ReqBlockHash {
	span := h.chain.Config().UnstableBlock
	if span > 255 {
		span = 255
	}
	return ReqBlockHash{Count: uint8(span), EndHeight: end}
}

func (h *Handler) sendHashes(peer Peer, body []byte) {
	var req ReqBlockHash
	if err := req.Parse(body); err != nil {
		h.logger.WithFields(log.Fields{"peer": peer.ID(), "err": err}).Debug("Bad block hash request")
		return
	}
	if req.Count == 0 || req.Count > maxReqHashes {
		return
	}
	latest := h.chain.Latest().Height
	end := req.EndHeight
	if end > latest {
		end = latest
	}
	if end == 0 {
		return
	}
	start := uint64(1)
	if end > uint64(req.Count) {
		start = end - uint64(req.Count)
	}
	store := h.chain.Store()
	reply := BlockHashes{EndHeight: end}
	for hei := end; hei >= start; hei-- {
		hash, ok := store.BlockHash(hei)
		if !ok {
			break
		}
		reply.Hashes = append(reply.Hashes, hash)
	}
	if len(reply.Hashes) == 0 {
		return
	}
	h.send(peer, MsgBlockHash, reply.Serialize())
}

func (h *Handler) receiveHashes(peer Peer, body []byte) {
	var msg BlockHashes
	if err := msg.Parse(body); err != nil {
		h.logger.WithFields(log.Fields{"peer": peer.ID(), "err": err}).Debug("Bad block hashes")
		return
	}
	limit := int(h.chain.Config().UnstableBlock + 1)
	hashes := msg.Hashes
	if len(hashes) > limit {
		hashes = hashes[:limit]
	}
	store := h.chain.Store()
	for i, hash := range hashes {
		if uint64(i) >= msg.EndHeight {
			break
		}
		hei := msg.EndHeight - uint64(i)
		mine, ok := store.BlockHash(hei)
		if ok && mine == hash {
			h.send(peer, MsgReqBlock, heightBytes(hei+1))
			return
		}
	}
	h.logger.WithFields(log.Fields{"peer": peer.ID(), "end": msg.EndHeight}).Debug("Fork is too deep to sync from peer")
}

func (h *Handler) sendBlocks(peer Peer, body []byte) {
	start, err := parseHeight(body)
	if err != nil || start == 0 {
		return
	}
	latest := h.chain.Latest().Height
	if start > latest {
		return
	}
	store := h.chain.Store()
	batch := BlockBatch{LatestHeight: latest, StartHeight: start}
	for hei := start; hei <= latest; hei++ {
		_, data, ok := store.BlockDataByHeight(hei)
		if !ok {
			break
		}
		batch.Blocks = append(batch.Blocks, data...)
		batch.EndHeight = hei
		if len(batch.Blocks) >= maxSendBlockSize || hei-start+1 >= maxSendBlockNum {
			break
		}
	}
	if batch.EndHeight == 0 {
		return
	}
	h.send(peer, MsgBlock, batch.Serialize())
}

func (h *Handler) receiveBlocks(peer Peer, body []byte) {
	var batch BlockBatch
	if err := batch.Parse(body); err != nil || len(batch.Blocks) == 0 {
		return
	}
	h.inserting.Lock()
	err := h.chain.Synchronize(batch.Blocks)
	h.inserting.Unlock()
	logger := h.logger.WithFields(log.Fields{"peer": peer.ID(), "start": batch.StartHeight, "end": batch.EndHeight})
	if err != nil {
		logger.WithField("err", err).Warn("Failed to sync blocks")
		return
	}
	logger.WithField("latest", batch.LatestHeight).Info("Synced blocks")
	if batch.EndHeight < batch.LatestHeight {
		next := peer
		if ps := h.peerSet(); ps != nil {
			if p := ps.SwitchPeer(peer); p != nil {
				next = p
			}
		}
		h.send(next, MsgReqBlock, heightBytes(batch.EndHeight+1))
	}
}

func (h *Handler) handleNewTx(peer Peer, body []byte) {
	pkg, err := types.ParseTxPkg(h.reg, body)
	if err != nil {
		h.logger.WithField("err", err).Debug("Bad pushed transaction")
		return
	}
	if h.known(pkg.Tx.HashWithFee()) {
		return
	}
	cnf := h.chain.Config()
	if pkg.FeePurity < cnf.LowestFeePurity {
		return
	}
	if len(pkg.Data) > cnf.MaxTxSize {
		return
	}
	if err := h.chain.SubmitTx(pkg); err != nil {
		h.logger.WithFields(log.Fields{"tx": pkg.Hash, "err": err}).Debug("Rejected pushed transaction")
		return
	}
	h.broadcast(peer, MsgTxSubmit, body)
}

func (h *Handler) handleNewBlock(peer Peer, body []byte) {
	cnf := h.chain.Config()
	if len(body) > cnf.MaxBlockSize {
		return
	}
	var intro types.BlockIntro
	if _, err := intro.Parse(body); err != nil {
		return
	}
	hash := intro.Hash(h.hasher)
	if h.known(hash) {
		return
	}
	blkhei := uint64(intro.Height)
	latest := h.chain.Latest().Height
	span := cnf.UnstableBlock
	if blkhei > span && latest > span && blkhei < latest-span {
		h.logger.WithFields(log.Fields{"height": blkhei, "latest": latest}).Debug("Discovered block height too late")
		return
	}
	if blkhei > latest+1 {
		// missing parents, ask for the span the fork may start in
		if peer != nil {
			req := ReqBlockHash{Count: uint8(min(span+1, 255)), EndHeight: latest}
			h.send(peer, MsgReqBlockHash, req.Serialize())
		}
		return
	}
	if err := h.chain.Minter().BlkFound(&intro, hash, h.chain.Store()); err != nil {
		h.logger.WithFields(log.Fields{"height": blkhei, "hash": hash, "err": err}).Debug("Discovered block rejected")
		return
	}
	pkg, err := types.NewBlockPkg(h.reg, h.hasher, body, types.BlkOriginDiscover)
	if err != nil {
		h.logger.WithFields(log.Fields{"height": blkhei, "err": err}).Debug("Bad discovered block")
		return
	}
	h.inserting.Lock()
	err = h.chain.Discover(pkg)
	h.inserting.Unlock()
	if err != nil {
		h.logger.WithFields(log.Fields{"height": blkhei, "hash": hash, "err": err}).Info("Discovered block not inserted")
		return
	}
	h.broadcast(peer, MsgBlockDiscover, body)
}
