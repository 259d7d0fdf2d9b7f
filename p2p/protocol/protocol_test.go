package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacash/node/common"
)

func TestMessageEnvelope(t *testing.T) {
	data := EncodeMessage(MsgBlockDiscover, []byte{1, 2, 3})
	assert.Equal(t, []byte{0, 8, 1, 2, 3}, data)
	ty, body, err := DecodeMessage(data)
	require.NoError(t, err)
	assert.Equal(t, MsgBlockDiscover, ty)
	assert.Equal(t, []byte{1, 2, 3}, body)

	ty, body, err = DecodeMessage(EncodeMessage(MsgReqStatus, nil))
	require.NoError(t, err)
	assert.Equal(t, MsgReqStatus, ty)
	assert.Empty(t, body)

	_, _, err = DecodeMessage([]byte{1})
	assert.ErrorIs(t, err, ErrShortMessage)
}

func TestHandshakeStatusLayout(t *testing.T) {
	st := HandshakeStatus{
		GenesisHash:  common.Hash{0xaa},
		BlockVersion: statusBlockVersion,
		TxType:       statusTxType,
		ActionKind:   statusActionKind,
		RepairSerial: statusRepairSerial,
		Mark:         [3]byte{7, 8, 9},
		LatestHeight: 0x0102030405,
		LatestHash:   common.Hash{0xbb},
	}
	data := st.Serialize()
	require.Len(t, data, 78)
	assert.Equal(t, byte(0xaa), data[0])
	assert.Equal(t, []byte{1, 2, 0, 12, 0, 1, 7, 8, 9}, data[32:41])
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, data[41:46])
	assert.Equal(t, byte(0xbb), data[46])

	var got HandshakeStatus
	n, err := got.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 78, n)
	assert.Equal(t, st, got)

	_, err = got.Parse(data[:77])
	assert.ErrorIs(t, err, ErrShortMessage)
}

func TestBlockHashMessages(t *testing.T) {
	req := ReqBlockHash{Count: 4, EndHeight: 300}
	data := req.Serialize()
	assert.Equal(t, []byte{4, 0, 0, 0, 0, 0, 0, 1, 44}, data)
	var got ReqBlockHash
	require.NoError(t, got.Parse(data))
	assert.Equal(t, req, got)
	assert.Error(t, got.Parse(data[:8]))

	hashes := BlockHashes{EndHeight: 9, Hashes: []common.Hash{{9}, {8}}}
	data = hashes.Serialize()
	assert.Len(t, data, 8+64)
	var back BlockHashes
	require.NoError(t, back.Parse(data))
	assert.Equal(t, hashes, back)

	assert.Error(t, back.Parse(data[:8]), "no hashes")
	assert.Error(t, back.Parse(data[:39]), "partial hash")
	require.NoError(t, back.Parse(data[:40]))
	assert.Len(t, back.Hashes, 1)
	assert.ErrorIs(t, back.Parse(data[:7]), ErrShortMessage)
}

func TestBlockBatchMessage(t *testing.T) {
	batch := BlockBatch{LatestHeight: 20, StartHeight: 3, EndHeight: 5, Blocks: []byte("blocks")}
	data := batch.Serialize()
	assert.Len(t, data, 24+6)
	var got BlockBatch
	require.NoError(t, got.Parse(data))
	assert.Equal(t, batch, got)
	assert.ErrorIs(t, got.Parse(data[:23]), ErrShortMessage)

	h, err := parseHeight(heightBytes(77))
	require.NoError(t, err)
	assert.Equal(t, uint64(77), h)
	_, err = parseHeight([]byte{1})
	assert.Error(t, err)
}
