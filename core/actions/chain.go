package actions

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hacash/node/core/types"
)

func checkHeightRange(ctx types.Context, start, end types.BlockHeight) error {
	left, right := uint64(start), uint64(end)
	if right == 0 {
		right = math.MaxUint64
	}
	if left > right {
		return fmt.Errorf("left height %d cannot big than rigth height %d", left, right)
	}
	if h := height(ctx); h < left || h > right {
		return fmt.Errorf("transction must submit in height between %d and %d", left, right)
	}
	return nil
}

func describeHeightRange(start, end types.BlockHeight) string {
	right := "Unlimited"
	if end != 0 {
		right = strconv.FormatUint(uint64(end), 10)
	}
	return fmt.Sprintf("Limit height range (%d, %s)", start, right)
}

// SubmitHeightLimit restricts the heights a transaction may be packed
// at. An end of zero is unlimited.
type SubmitHeightLimit struct {
	Start types.BlockHeight
	End   types.BlockHeight
}

func (a *SubmitHeightLimit) Kind() uint16               { return KindSubmitHeightLimit }
func (a *SubmitHeightLimit) Level() types.ActLv         { return types.ActLvTopUnique }
func (a *SubmitHeightLimit) Burn90() bool               { return false }
func (a *SubmitHeightLimit) ReqSign() []types.AddrOrPtr { return nil }
func (a *SubmitHeightLimit) Describe() string           { return describeHeightRange(a.Start, a.End) }

func (a *SubmitHeightLimit) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindSubmitHeightLimit, buf, &a.Start, &a.End)
}
func (a *SubmitHeightLimit) Serialize() []byte {
	return types.SerializeActionBody(KindSubmitHeightLimit, &a.Start, &a.End)
}
func (a *SubmitHeightLimit) Size() int { return types.ActionBodySize(&a.Start, &a.End) }

func (a *SubmitHeightLimit) Execute(ctx types.Context) ([]byte, error) {
	return nil, checkHeightRange(ctx, a.Start, a.End)
}

// HeightScope is the top level form of SubmitHeightLimit that may repeat.
type HeightScope struct {
	Start types.BlockHeight
	End   types.BlockHeight
}

func (a *HeightScope) Kind() uint16               { return KindHeightScope }
func (a *HeightScope) Level() types.ActLv         { return types.ActLvTop }
func (a *HeightScope) Burn90() bool               { return false }
func (a *HeightScope) ReqSign() []types.AddrOrPtr { return nil }
func (a *HeightScope) Describe() string           { return describeHeightRange(a.Start, a.End) }

func (a *HeightScope) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindHeightScope, buf, &a.Start, &a.End)
}
func (a *HeightScope) Serialize() []byte {
	return types.SerializeActionBody(KindHeightScope, &a.Start, &a.End)
}
func (a *HeightScope) Size() int { return types.ActionBodySize(&a.Start, &a.End) }

func (a *HeightScope) Execute(ctx types.Context) ([]byte, error) {
	return nil, checkHeightRange(ctx, a.Start, a.End)
}

// SubChainID binds a transaction to one chain id.
type SubChainID struct {
	ChainID types.Uint4
}

func (a *SubChainID) Kind() uint16               { return KindSubChainID }
func (a *SubChainID) Level() types.ActLv         { return types.ActLvTopUnique }
func (a *SubChainID) Burn90() bool               { return false }
func (a *SubChainID) ReqSign() []types.AddrOrPtr { return nil }
func (a *SubChainID) Describe() string           { return fmt.Sprintf("Chain ID %d", a.ChainID) }

func (a *SubChainID) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindSubChainID, buf, &a.ChainID)
}
func (a *SubChainID) Serialize() []byte { return types.SerializeActionBody(KindSubChainID, &a.ChainID) }
func (a *SubChainID) Size() int         { return types.ActionBodySize(&a.ChainID) }

func (a *SubChainID) Execute(ctx types.Context) ([]byte, error) {
	if lid, sid := ctx.Env().Chain.ID, uint32(a.ChainID); lid != sid {
		return nil, fmt.Errorf("transction must belong to chain id %d but on chain %d", sid, lid)
	}
	return nil, nil
}

// ChainIDList is a 1 byte count list of chain ids.
type ChainIDList = types.ListW1[types.Uint4, *types.Uint4]

// ChainAllow binds a transaction to any chain of a list.
type ChainAllow struct {
	Chains ChainIDList
}

func (a *ChainAllow) Kind() uint16               { return KindChainAllow }
func (a *ChainAllow) Level() types.ActLv         { return types.ActLvTop }
func (a *ChainAllow) Burn90() bool               { return false }
func (a *ChainAllow) ReqSign() []types.AddrOrPtr { return nil }
func (a *ChainAllow) Describe() string           { return "Valid chain ID list " + a.ids() }

func (a *ChainAllow) ids() string {
	ids := make([]string, len(a.Chains.Items))
	for i, c := range a.Chains.Items {
		ids[i] = strconv.FormatUint(uint64(c), 10)
	}
	return strings.Join(ids, ",")
}

func (a *ChainAllow) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindChainAllow, buf, &a.Chains)
}
func (a *ChainAllow) Serialize() []byte { return types.SerializeActionBody(KindChainAllow, &a.Chains) }
func (a *ChainAllow) Size() int         { return types.ActionBodySize(&a.Chains) }

func (a *ChainAllow) Execute(ctx types.Context) ([]byte, error) {
	cid := ctx.Env().Chain.ID
	for _, id := range a.Chains.Items {
		if uint32(id) == cid {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("transction must belong to chains %s but on chain %d", a.ids(), cid)
}

// TxMessage carries a short note and changes nothing.
type TxMessage struct {
	Message types.BytesW1
}

func (a *TxMessage) Kind() uint16               { return KindTxMessage }
func (a *TxMessage) Level() types.ActLv         { return types.ActLvMainCall }
func (a *TxMessage) Burn90() bool               { return false }
func (a *TxMessage) ReqSign() []types.AddrOrPtr { return nil }
func (a *TxMessage) Describe() string           { return fmt.Sprintf("Message %q", string(a.Message)) }

func (a *TxMessage) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindTxMessage, buf, &a.Message)
}
func (a *TxMessage) Serialize() []byte { return types.SerializeActionBody(KindTxMessage, &a.Message) }
func (a *TxMessage) Size() int         { return types.ActionBodySize(&a.Message) }

func (a *TxMessage) Execute(types.Context) ([]byte, error) { return nil, nil }

// TxBlob carries opaque data for an off chain protocol.
type TxBlob struct {
	Protocol types.Uint1
	Data     types.BytesW2
}

func (a *TxBlob) Kind() uint16               { return KindTxBlob }
func (a *TxBlob) Level() types.ActLv         { return types.ActLvMainCall }
func (a *TxBlob) Burn90() bool               { return false }
func (a *TxBlob) ReqSign() []types.AddrOrPtr { return nil }

func (a *TxBlob) Describe() string {
	return fmt.Sprintf("Blob of protocol %d size %d", a.Protocol, len(a.Data))
}

func (a *TxBlob) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindTxBlob, buf, &a.Protocol, &a.Data)
}
func (a *TxBlob) Serialize() []byte { return types.SerializeActionBody(KindTxBlob, &a.Protocol, &a.Data) }
func (a *TxBlob) Size() int         { return types.ActionBodySize(&a.Protocol, &a.Data) }

func (a *TxBlob) Execute(types.Context) ([]byte, error) { return nil, nil }
