package actions

import (
	"fmt"

	"github.com/hacash/node/common"
	"github.com/hacash/node/consensus/pow"
	"github.com/hacash/node/core/operate"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
)

// Asset issuance rules.
const (
	assetMainnetStartHeight = 600000
	assetSerialMin          = 1024
	assetTicketMax          = 8
	assetNameMax            = 32
	assetDecimalMax         = 16
)

// AssetCreate issues a new asset to its issuer. The protocol fee is one
// block reward and is burnt from the main address.
type AssetCreate struct {
	Metadata    state.AssetSmelt
	ProtocolFee types.Amount
}

func (a *AssetCreate) Kind() uint16               { return KindAssetCreate }
func (a *AssetCreate) Level() types.ActLv         { return types.ActLvTopOnly }
func (a *AssetCreate) Burn90() bool               { return false }
func (a *AssetCreate) ReqSign() []types.AddrOrPtr { return nil }

func (a *AssetCreate) Describe() string {
	return fmt.Sprintf("Create asset <%d> %s supply %d", a.Metadata.Serial, string(a.Metadata.Ticket), a.Metadata.Supply)
}

func (a *AssetCreate) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindAssetCreate, buf, &a.Metadata, &a.ProtocolFee)
}
func (a *AssetCreate) Serialize() []byte {
	return types.SerializeActionBody(KindAssetCreate, &a.Metadata, &a.ProtocolFee)
}
func (a *AssetCreate) Size() int { return types.ActionBodySize(&a.Metadata, &a.ProtocolFee) }

func (a *AssetCreate) Execute(ctx types.Context) ([]byte, error) {
	env := ctx.Env()
	meta := a.Metadata
	hei := env.Block.Height
	if env.Chain.ID == 0 && hei > assetMainnetStartHeight {
		return nil, fmt.Errorf("asset just for test chain now")
	}
	if hei == 0 {
		return nil, fmt.Errorf("The asset issuance has not yet begun")
	}
	if uint64(meta.Serial) > hei {
		return nil, fmt.Errorf("The asset serial overflow")
	}
	if err := meta.Issuer.CheckVersion(); err != nil {
		return nil, err
	}
	if tl := len(meta.Ticket); tl < 1 || tl > assetTicketMax {
		return nil, fmt.Errorf("ticket length must be 1 ~ 8")
	}
	if nl := len(meta.Name); nl < 1 || nl > assetNameMax {
		return nil, fmt.Errorf("name length must be 1 ~ 32")
	}
	if meta.Decimal > assetDecimalMax {
		return nil, fmt.Errorf("decimal cannot more than 16")
	}
	if meta.Serial <= assetSerialMin {
		return nil, fmt.Errorf("serial cannot less than 1024")
	}
	if reward := pow.BlockReward(hei); !a.ProtocolFee.Equal(reward) {
		return nil, fmt.Errorf("Protocol fee need %s but got %s", reward, a.ProtocolFee)
	}
	st := state.Wrap(ctx.State())
	if err := operate.HacSub(st, env.Tx.Main, a.ProtocolFee); err != nil {
		return nil, err
	}
	if _, ok := st.Asset(meta.Serial); ok {
		return nil, fmt.Errorf("Asset serial %d already exists", meta.Serial)
	}
	st.SetAsset(meta.Serial, &meta)
	total := st.TotalCount()
	total.CreatedAssets++
	if zhu, ok := a.ProtocolFee.ToZhuUint64(); ok {
		total.BurnedFeeZhu += types.Uint8(zhu)
	}
	st.SetTotalCount(&total)
	bls, _ := st.Balance(meta.Issuer)
	if err := bls.AssetSet(state.AssetAmt{Serial: meta.Serial, Amount: meta.Supply}); err != nil {
		return nil, err
	}
	st.SetBalance(meta.Issuer, &bls)
	return nil, nil
}

func moveAsset(ctx types.Context, from, to common.Address, amt state.AssetAmt) error {
	return operate.AssetTransfer(state.Wrap(ctx.State()), from, to, amt)
}

// AssetToTrs pays an asset from the main address.
type AssetToTrs struct {
	To     types.AddrOrPtr
	Amount state.AssetAmt
}

func (a *AssetToTrs) Kind() uint16               { return KindAssetToTrs }
func (a *AssetToTrs) Level() types.ActLv         { return types.ActLvMainCall }
func (a *AssetToTrs) Burn90() bool               { return true }
func (a *AssetToTrs) ReqSign() []types.AddrOrPtr { return nil }
func (a *AssetToTrs) Describe() string           { return fmt.Sprintf("Transfer asset %s to %s", a.Amount, a.To) }

func (a *AssetToTrs) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindAssetToTrs, buf, &a.To, &a.Amount)
}
func (a *AssetToTrs) Serialize() []byte {
	return types.SerializeActionBody(KindAssetToTrs, &a.To, &a.Amount)
}
func (a *AssetToTrs) Size() int { return types.ActionBodySize(&a.To, &a.Amount) }

func (a *AssetToTrs) Execute(ctx types.Context) ([]byte, error) {
	to, err := addr(ctx, a.To)
	if err != nil {
		return nil, err
	}
	return nil, moveAsset(ctx, ctx.Env().Tx.Main, to, a.Amount)
}

// AssetFromTrs pulls an asset into the main address. From must sign.
type AssetFromTrs struct {
	From   types.AddrOrPtr
	Amount state.AssetAmt
}

func (a *AssetFromTrs) Kind() uint16               { return KindAssetFromTrs }
func (a *AssetFromTrs) Level() types.ActLv         { return types.ActLvMainCall }
func (a *AssetFromTrs) Burn90() bool               { return true }
func (a *AssetFromTrs) ReqSign() []types.AddrOrPtr { return []types.AddrOrPtr{a.From} }
func (a *AssetFromTrs) Describe() string           { return fmt.Sprintf("Transfer asset %s from %s", a.Amount, a.From) }

func (a *AssetFromTrs) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindAssetFromTrs, buf, &a.From, &a.Amount)
}
func (a *AssetFromTrs) Serialize() []byte {
	return types.SerializeActionBody(KindAssetFromTrs, &a.From, &a.Amount)
}
func (a *AssetFromTrs) Size() int { return types.ActionBodySize(&a.From, &a.Amount) }

func (a *AssetFromTrs) Execute(ctx types.Context) ([]byte, error) {
	from, err := addr(ctx, a.From)
	if err != nil {
		return nil, err
	}
	return nil, moveAsset(ctx, from, ctx.Env().Tx.Main, a.Amount)
}

// AssetFromToTrs moves an asset between two addresses. From must sign.
type AssetFromToTrs struct {
	From   types.AddrOrPtr
	To     types.AddrOrPtr
	Amount state.AssetAmt
}

func (a *AssetFromToTrs) Kind() uint16               { return KindAssetFromToTrs }
func (a *AssetFromToTrs) Level() types.ActLv         { return types.ActLvMainCall }
func (a *AssetFromToTrs) Burn90() bool               { return true }
func (a *AssetFromToTrs) ReqSign() []types.AddrOrPtr { return []types.AddrOrPtr{a.From} }

func (a *AssetFromToTrs) Describe() string {
	return fmt.Sprintf("Transfer asset %s from %s to %s", a.Amount, a.From, a.To)
}

func (a *AssetFromToTrs) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindAssetFromToTrs, buf, &a.From, &a.To, &a.Amount)
}
func (a *AssetFromToTrs) Serialize() []byte {
	return types.SerializeActionBody(KindAssetFromToTrs, &a.From, &a.To, &a.Amount)
}
func (a *AssetFromToTrs) Size() int { return types.ActionBodySize(&a.From, &a.To, &a.Amount) }

func (a *AssetFromToTrs) Execute(ctx types.Context) ([]byte, error) {
	from, err := addr(ctx, a.From)
	if err != nil {
		return nil, err
	}
	to, err := addr(ctx, a.To)
	if err != nil {
		return nil, err
	}
	return nil, moveAsset(ctx, from, to, a.Amount)
}
