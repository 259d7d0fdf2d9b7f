package hacashapi

import (
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hacash/node/core"
)

const (
	noticeWriteWait  = 10 * time.Second
	noticePingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (s *Server) minerPending(w http.ResponseWriter, r *http.Request) {
	if s.miner == nil || !s.backend.Config().MinerEnable {
		sendError(w, "miner not enable")
		return
	}
	blk := s.miner.Pending()
	if blk == nil {
		sendError(w, "pending block not ready")
		return
	}
	data := jsonData{
		"height":     uint64(blk.Height),
		"prevhash":   blk.PrevHash.Hex(),
		"timestamp":  uint64(blk.Timestamp),
		"difficulty": uint32(blk.Difficulty),
		"mrklroot":   blk.MrklRoot.Hex(),
		"tx_count":   uint32(blk.TxCount),
	}
	if cb, err := blk.Coinbase(); err == nil {
		data["reward"] = amountString(r, cb.Reward)
		data["reward_address"] = cb.Address.Readable()
	}
	if qBool(r, "detail") {
		data["intro"] = hex.EncodeToString(blk.BlockIntro.Serialize())
	}
	if qBool(r, "transaction") {
		hashes := make([]string, 0, len(blk.Txs))
		for _, tx := range blk.Txs[1:] {
			hashes = append(hashes, tx.Hash().Hex())
		}
		data["transactions"] = hashes
	}
	sendData(w, data)
}

// notice pushes {"height":N} to miner workers on every head change. The
// current height is sent right after connecting.
func (s *Server) notice(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithField("err", err).Debug("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	heads := make(chan core.ChainHeadEvent, 8)
	unsubscribe := s.backend.SubscribeChainHead(heads)
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(height uint64) error {
		conn.SetWriteDeadline(time.Now().Add(noticeWriteWait))
		return conn.WriteJSON(jsonData{"ret": 0, "height": height})
	}
	if err := send(s.backend.Latest().Height); err != nil {
		return
	}
	ping := time.NewTicker(noticePingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			return
		case <-s.quit:
			return
		case ev := <-heads:
			if err := send(ev.Block.Height); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(noticeWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
