package protocol

import (
	"bufio"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hacash/node/common"
	"github.com/hacash/node/common/exiter"
	"github.com/hacash/node/log"
)

const dialTimeout = 10 * time.Second

// Conn is a framed connection, net.Conn satisfies it.
type Conn interface {
	common.Stream
	io.Closer
}

// StreamPeer is a peer reached over one connection.
type StreamPeer struct {
	id   string
	conn Conn

	writeMu sync.Mutex
	once    sync.Once
	closed  chan struct{}
}

func NewStreamPeer(id string, conn Conn) *StreamPeer {
	return &StreamPeer{id: id, conn: conn, closed: make(chan struct{})}
}

func (p *StreamPeer) ID() string { return p.id }

// Send writes one framed message.
func (p *StreamPeer) Send(ty uint16, body []byte) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return common.WriteMessageToStream(p.conn, EncodeMessage(ty, body))
}

// Disconnect closes the connection, later calls do nothing.
func (p *StreamPeer) Disconnect() {
	p.once.Do(func() {
		close(p.closed)
		p.conn.Close()
	})
}

// Peers is the set of connected peers.
type Peers struct {
	mu    sync.RWMutex
	peers map[string]Peer
	order []string
	next  int
}

func NewPeers() *Peers {
	return &Peers{peers: make(map[string]Peer)}
}

// Add registers p and reports false if a peer with its id is connected.
func (ps *Peers) Add(p Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if _, ok := ps.peers[p.ID()]; ok {
		return false
	}
	ps.peers[p.ID()] = p
	ps.order = append(ps.order, p.ID())
	ps.report()
	return true
}

func (ps *Peers) Remove(p Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if cur, ok := ps.peers[p.ID()]; !ok || cur != p {
		return
	}
	delete(ps.peers, p.ID())
	for i, id := range ps.order {
		if id == p.ID() {
			ps.order = append(ps.order[:i], ps.order[i+1:]...)
			break
		}
	}
	ps.report()
}

func (ps *Peers) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.peers)
}

// IDs lists the connected peers in connection order.
func (ps *Peers) IDs() []string {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return append([]string(nil), ps.order...)
}

func (ps *Peers) report() {
	if common.PeerMetrics != nil {
		common.PeerMetrics.WithLabelValues("numPeers").Set(float64(len(ps.peers)))
	}
}

func (ps *Peers) Broadcast(from Peer, ty uint16, body []byte) {
	ps.mu.RLock()
	targets := make([]Peer, 0, len(ps.peers))
	for _, id := range ps.order {
		if p := ps.peers[id]; from == nil || p.ID() != from.ID() {
			targets = append(targets, p)
		}
	}
	ps.mu.RUnlock()
	for _, p := range targets {
		if err := p.Send(ty, body); err != nil {
			log.Global.WithFields(log.Fields{"peer": p.ID(), "err": err}).Debug("Broadcast failed")
		}
	}
}

// SwitchPeer picks peers round robin, avoiding p when another is connected.
func (ps *Peers) SwitchPeer(p Peer) Peer {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	n := len(ps.order)
	for i := 0; i < n; i++ {
		ps.next = (ps.next + 1) % n
		cand := ps.peers[ps.order[ps.next]]
		if p == nil || cand.ID() != p.ID() {
			return cand
		}
	}
	return p
}

// Serve runs the read loop of peer until the connection fails.
func Serve(peer *StreamPeer, ps *Peers, h *Handler) {
	if !ps.Add(peer) {
		peer.Disconnect()
		return
	}
	addStreams(1)
	defer func() {
		addStreams(-1)
		ps.Remove(peer)
		peer.Disconnect()
	}()
	h.OnConnect(peer)
	for {
		data, err := common.ReadMessageFromStream(peer.conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Global.WithFields(log.Fields{"peer": peer.ID(), "err": err}).Debug("Peer read failed")
			}
			return
		}
		ty, body, err := DecodeMessage(data)
		if err != nil {
			continue
		}
		h.OnMessage(peer, ty, body)
	}
}

// Listen accepts inbound peers on addr until the worker quits.
func Listen(addr string, ps *Peers, h *Handler, w *exiter.Worker) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "p2p listen on %s", addr)
	}
	log.Global.WithField("addr", ln.Addr().String()).Info("P2P listener started")
	go func() {
		<-w.Wait()
		ln.Close()
	}()
	go func() {
		defer w.End()
		for {
			conn, err := ln.Accept()
			if err != nil {
				if w.Quit() {
					return
				}
				log.Global.WithField("err", err).Warn("P2P accept failed")
				continue
			}
			go Serve(NewStreamPeer(conn.RemoteAddr().String(), conn), ps, h)
		}
	}()
	return nil
}

// Dial connects to addr and serves it in the background.
func Dial(addr string, ps *Peers, h *Handler) error {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return errors.Wrapf(err, "dial peer %s", addr)
	}
	go Serve(NewStreamPeer(addr, conn), ps, h)
	return nil
}

// LoadStableNodes reads the ip:port lines of a warm peer cache file. A
// missing file is an empty list.
func LoadStableNodes(path string) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var nodes []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		nodes = append(nodes, line)
	}
	return nodes, sc.Err()
}

// SaveStableNodes writes the connected peer addresses back to path.
func SaveStableNodes(path string, nodes []string) error {
	return os.WriteFile(path, []byte(strings.Join(nodes, "\n")+"\n"), 0o644)
}
