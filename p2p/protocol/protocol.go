package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"

	"github.com/hacash/node/common"
)

var ErrShortMessage = errors.New("message too short")

// EncodeMessage prefixes body with its message type.
func EncodeMessage(ty uint16, body []byte) []byte {
	out := make([]byte, 2+len(body))
	binary.BigEndian.PutUint16(out, ty)
	copy(out[2:], body)
	return out
}

// DecodeMessage splits a frame into its message type and body.
func DecodeMessage(data []byte) (uint16, []byte, error) {
	if len(data) < 2 {
		return 0, nil, ErrShortMessage
	}
	return binary.BigEndian.Uint16(data), data[2:], nil
}

// HandshakeStatus is exchanged right after connecting. Peers with another
// genesis hash are on another network.
type HandshakeStatus struct {
	GenesisHash  common.Hash
	BlockVersion uint8
	TxType       uint8
	ActionKind   uint16
	RepairSerial uint16
	Mark         [3]byte
	LatestHeight uint64 // 5 bytes on the wire
	LatestHash   common.Hash
}

const handshakeStatusSize = 32 + 1 + 1 + 2 + 2 + 3 + 5 + 32

func (s *HandshakeStatus) Serialize() []byte {
	out := make([]byte, 0, handshakeStatusSize)
	out = append(out, s.GenesisHash[:]...)
	out = append(out, s.BlockVersion, s.TxType)
	out = binary.BigEndian.AppendUint16(out, s.ActionKind)
	out = binary.BigEndian.AppendUint16(out, s.RepairSerial)
	out = append(out, s.Mark[:]...)
	var h [8]byte
	binary.BigEndian.PutUint64(h[:], s.LatestHeight)
	out = append(out, h[3:]...)
	return append(out, s.LatestHash[:]...)
}

func (s *HandshakeStatus) Parse(buf []byte) (int, error) {
	if len(buf) < handshakeStatusSize {
		return 0, errors.Wrapf(ErrShortMessage, "status need %d bytes but got %d", handshakeStatusSize, len(buf))
	}
	copy(s.GenesisHash[:], buf[0:32])
	s.BlockVersion = buf[32]
	s.TxType = buf[33]
	s.ActionKind = binary.BigEndian.Uint16(buf[34:36])
	s.RepairSerial = binary.BigEndian.Uint16(buf[36:38])
	copy(s.Mark[:], buf[38:41])
	var h [8]byte
	copy(h[3:], buf[41:46])
	s.LatestHeight = binary.BigEndian.Uint64(h[:])
	copy(s.LatestHash[:], buf[46:78])
	return handshakeStatusSize, nil
}

// ReqBlockHash asks for the canonical hashes from EndHeight down Count
// blocks.
type ReqBlockHash struct {
	Count     uint8
	EndHeight uint64
}

func (r ReqBlockHash) Serialize() []byte {
	return binary.BigEndian.AppendUint64([]byte{r.Count}, r.EndHeight)
}

func (r *ReqBlockHash) Parse(buf []byte) error {
	if len(buf) != 9 {
		return fmt.Errorf("block hash request need 9 bytes but got %d", len(buf))
	}
	r.Count = buf[0]
	r.EndHeight = binary.BigEndian.Uint64(buf[1:])
	return nil
}

// BlockHashes answers ReqBlockHash, Hashes are in descending height from
// EndHeight.
type BlockHashes struct {
	EndHeight uint64
	Hashes    []common.Hash
}

func (b BlockHashes) Serialize() []byte {
	out := binary.BigEndian.AppendUint64(make([]byte, 0, 8+len(b.Hashes)*common.HashLength), b.EndHeight)
	for _, h := range b.Hashes {
		out = append(out, h[:]...)
	}
	return out
}

func (b *BlockHashes) Parse(buf []byte) error {
	if len(buf) < 8 {
		return errors.Wrap(ErrShortMessage, "block hashes")
	}
	rest := buf[8:]
	if len(rest) == 0 || len(rest)%common.HashLength != 0 {
		return fmt.Errorf("block hashes length %d error", len(rest))
	}
	b.EndHeight = binary.BigEndian.Uint64(buf)
	b.Hashes = make([]common.Hash, len(rest)/common.HashLength)
	for i := range b.Hashes {
		copy(b.Hashes[i][:], rest[i*common.HashLength:])
	}
	return nil
}

// BlockBatch carries consecutive serialized blocks from StartHeight to
// EndHeight together with the sender's latest height.
type BlockBatch struct {
	LatestHeight uint64
	StartHeight  uint64
	EndHeight    uint64
	Blocks       []byte
}

func (b BlockBatch) Serialize() []byte {
	out := make([]byte, 0, 24+len(b.Blocks))
	out = binary.BigEndian.AppendUint64(out, b.LatestHeight)
	out = binary.BigEndian.AppendUint64(out, b.StartHeight)
	out = binary.BigEndian.AppendUint64(out, b.EndHeight)
	return append(out, b.Blocks...)
}

func (b *BlockBatch) Parse(buf []byte) error {
	if len(buf) < 24 {
		return errors.Wrap(ErrShortMessage, "block batch")
	}
	b.LatestHeight = binary.BigEndian.Uint64(buf[0:8])
	b.StartHeight = binary.BigEndian.Uint64(buf[8:16])
	b.EndHeight = binary.BigEndian.Uint64(buf[16:24])
	b.Blocks = buf[24:]
	return nil
}

func heightBytes(h uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, h)
}

func parseHeight(buf []byte) (uint64, error) {
	if len(buf) != 8 {
		return 0, fmt.Errorf("height need 8 bytes but got %d", len(buf))
	}
	return binary.BigEndian.Uint64(buf), nil
}
