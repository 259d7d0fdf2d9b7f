package state

import (
	"bytes"
	"fmt"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/params"
)

func parseFields(buf []byte, fs ...types.Field) (int, error) {
	seek := 0
	for _, f := range fs {
		n, err := f.Parse(buf[seek:])
		if err != nil {
			return 0, err
		}
		seek += n
	}
	return seek, nil
}

func serializeFields(fs ...types.Field) []byte {
	var out []byte
	for _, f := range fs {
		out = append(out, f.Serialize()...)
	}
	return out
}

func sizeFields(fs ...types.Field) int {
	sz := 0
	for _, f := range fs {
		sz += f.Size()
	}
	return sz
}

// AssetAmt is an amount of one asset serial.
type AssetAmt struct {
	Serial types.Fold64
	Amount types.Fold64
}

func (a *AssetAmt) Parse(buf []byte) (int, error) { return parseFields(buf, &a.Serial, &a.Amount) }
func (a AssetAmt) Serialize() []byte              { return serializeFields(&a.Serial, &a.Amount) }
func (a AssetAmt) Size() int                      { return a.Serial.Size() + a.Amount.Size() }
func (a AssetAmt) String() string                 { return fmt.Sprintf("(%d:%d)", a.Serial, a.Amount) }

// Balance is the holdings of one address.
type Balance struct {
	Hacash  types.Amount
	Satoshi types.Fold64
	Diamond types.Fold64
	Assets  types.ListW1[AssetAmt, *AssetAmt]
}

func (b *Balance) Parse(buf []byte) (int, error) {
	return parseFields(buf, &b.Hacash, &b.Satoshi, &b.Diamond, &b.Assets)
}

func (b Balance) Serialize() []byte {
	return serializeFields(&b.Hacash, &b.Satoshi, &b.Diamond, &b.Assets)
}

func (b Balance) Size() int { return sizeFields(&b.Hacash, &b.Satoshi, &b.Diamond, &b.Assets) }

// Asset returns the held amount of serial.
func (b *Balance) Asset(serial types.Fold64) AssetAmt {
	for _, a := range b.Assets.Items {
		if a.Serial == serial {
			return a
		}
	}
	return AssetAmt{Serial: serial}
}

// AssetSet stores amt; a zero amount removes the entry.
func (b *Balance) AssetSet(amt AssetAmt) error {
	for i, a := range b.Assets.Items {
		if a.Serial != amt.Serial {
			continue
		}
		if amt.Amount == 0 {
			b.Assets.Items = append(b.Assets.Items[:i], b.Assets.Items[i+1:]...)
		} else {
			b.Assets.Items[i] = amt
		}
		return nil
	}
	if amt.Amount == 0 {
		return nil
	}
	if len(b.Assets.Items) >= params.BalanceAssetMax {
		return fmt.Errorf("balance assets count cannot over %d", params.BalanceAssetMax)
	}
	b.Assets.Items = append(b.Assets.Items, amt)
	return nil
}

// IsEmpty reports whether the balance holds nothing.
func (b *Balance) IsEmpty() bool {
	return b.Hacash.IsZero() && b.Satoshi == 0 && b.Diamond == 0 && len(b.Assets.Items) == 0
}

// Diamond status values.
const (
	DiamondStatusNormal         uint8 = 1
	DiamondStatusLendingSystem  uint8 = 2
	DiamondStatusLendingUser    uint8 = 3
	DiamondInscriptionMax             = 200
	DiamondInscriptionLengthMax       = 64
)

// Inscripts is the inscription list of a diamond.
type Inscripts = types.ListW1[types.BytesW1, *types.BytesW1]

// DiamondSto is the ownership record of a diamond.
type DiamondSto struct {
	Status             types.Uint1
	Address            common.Address
	PrevEngravedHeight types.BlockHeight
	Inscripts          Inscripts
}

func (d *DiamondSto) Parse(buf []byte) (int, error) {
	return parseFields(buf, &d.Status, &d.Address, &d.PrevEngravedHeight, &d.Inscripts)
}

func (d DiamondSto) Serialize() []byte {
	return serializeFields(&d.Status, &d.Address, &d.PrevEngravedHeight, &d.Inscripts)
}

func (d DiamondSto) Size() int {
	return sizeFields(&d.Status, &d.Address, &d.PrevEngravedHeight, &d.Inscripts)
}

// DiamondSmelt is the mint record of a diamond.
type DiamondSmelt struct {
	Diamond        types.DiamondName
	Number         types.DiamondNumber
	BornHeight     types.BlockHeight
	BornHash       common.Hash
	PrevHash       common.Hash
	MinerAddress   common.Address
	BidFee         types.Amount
	Nonce          types.Fixed8
	AverageBidBurn types.Uint2 // mei
	LifeGene       common.Hash
}

func (d *DiamondSmelt) fields() []types.Field {
	return []types.Field{&d.Diamond, &d.Number, &d.BornHeight, &d.BornHash, &d.PrevHash,
		&d.MinerAddress, &d.BidFee, &d.Nonce, &d.AverageBidBurn, &d.LifeGene}
}

func (d *DiamondSmelt) Parse(buf []byte) (int, error) { return parseFields(buf, d.fields()...) }
func (d *DiamondSmelt) Serialize() []byte             { return serializeFields(d.fields()...) }
func (d *DiamondSmelt) Size() int                     { return sizeFields(d.fields()...) }

// DiamondOwnedForm is the concatenated names of the diamonds an address
// holds, kept when the diamond form service is on.
type DiamondOwnedForm struct {
	Names types.BytesW4
}

func (f *DiamondOwnedForm) Parse(buf []byte) (int, error) { return f.Names.Parse(buf) }
func (f DiamondOwnedForm) Serialize() []byte              { return f.Names.Serialize() }
func (f DiamondOwnedForm) Size() int                      { return f.Names.Size() }

// Readable returns the names as one string.
func (f DiamondOwnedForm) Readable() string { return string(f.Names) }

// Push appends names.
func (f *DiamondOwnedForm) Push(names ...types.DiamondName) {
	for _, n := range names {
		f.Names = append(f.Names, n[:]...)
	}
}

// Drop removes names, each of which must be present, and returns the
// remaining count.
func (f *DiamondOwnedForm) Drop(names ...types.DiamondName) (int, error) {
	form := []byte(f.Names)
	for _, n := range names {
		found := false
		for i := 0; i+6 <= len(form); i += 6 {
			if bytes.Equal(form[i:i+6], n[:]) {
				last := len(form) - 6
				copy(form[i:i+6], form[last:])
				form = form[:last]
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("diamond owned form need drop %s but not find", string(n[:]))
		}
	}
	f.Names = form
	return len(form) / 6, nil
}

// TotalCount holds the global supply counters.
type TotalCount struct {
	MintedDiamond       types.Uint4
	EngravedDiamond     types.Uint4
	BurnedFeeZhu        types.Uint8
	DiamondBidBurnZhu   types.Uint8
	InscriptionBurnZhu  types.Uint8
	CreatedAssets       types.Uint4
	TransferredHacTimes types.Uint8
}

func (t *TotalCount) fields() []types.Field {
	return []types.Field{&t.MintedDiamond, &t.EngravedDiamond, &t.BurnedFeeZhu, &t.DiamondBidBurnZhu,
		&t.InscriptionBurnZhu, &t.CreatedAssets, &t.TransferredHacTimes}
}

func (t *TotalCount) Parse(buf []byte) (int, error) { return parseFields(buf, t.fields()...) }
func (t *TotalCount) Serialize() []byte             { return serializeFields(t.fields()...) }
func (t *TotalCount) Size() int                     { return sizeFields(t.fields()...) }

// AssetSmelt is the metadata of a created asset.
type AssetSmelt struct {
	Serial  types.Fold64
	Supply  types.Fold64
	Decimal types.Uint1
	Issuer  common.Address
	Ticket  types.BytesW1
	Name    types.BytesW1
}

func (a *AssetSmelt) fields() []types.Field {
	return []types.Field{&a.Serial, &a.Supply, &a.Decimal, &a.Issuer, &a.Ticket, &a.Name}
}

func (a *AssetSmelt) Parse(buf []byte) (int, error) { return parseFields(buf, a.fields()...) }
func (a *AssetSmelt) Serialize() []byte             { return serializeFields(a.fields()...) }
func (a *AssetSmelt) Size() int                     { return sizeFields(a.fields()...) }
