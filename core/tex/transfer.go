package tex

import (
	"fmt"
	"math"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/operate"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
)

// CellZhuMax is the largest hac amount one cell may move, in zhu.
const CellZhuMax = 100000000_00000000

// TrsZhu pays hac into the ledger (cell 1) or gets hac out of it (cell 2).
type TrsZhu struct {
	Cid uint8
	Zhu types.Fold64
}

func NewTrsZhu(pay bool, zhu uint64) *TrsZhu {
	c := &TrsZhu{Cid: CellTrsZhuGet, Zhu: types.Fold64(zhu)}
	if pay {
		c.Cid = CellTrsZhuPay
	}
	return c
}

func (c *TrsZhu) ID() uint8                     { return c.Cid }
func (c *TrsZhu) Parse(buf []byte) (int, error) { return parseCellBody(c.Cid, buf, &c.Zhu) }
func (c *TrsZhu) Serialize() []byte             { return serializeCellBody(c.Cid, &c.Zhu) }
func (c *TrsZhu) Size() int                     { return 1 + c.Zhu.Size() }

func (c *TrsZhu) Execute(ctx types.Context, addr common.Address) error {
	zhu := uint64(c.Zhu)
	if zhu > CellZhuMax {
		return fmt.Errorf("cell zhu too big")
	}
	st := state.Wrap(ctx.State())
	amt := types.NewAmountZhu(zhu)
	tex := ctx.Tex()
	if c.Cid == CellTrsZhuPay {
		if err := operate.HacSub(st, addr, amt); err != nil {
			return err
		}
		tex.Zhu += int64(zhu)
		return nil
	}
	if err := operate.HacAdd(st, addr, amt); err != nil {
		return err
	}
	tex.Zhu -= int64(zhu)
	return nil
}

// TrsSat pays satoshi into the ledger (cell 3) or gets them (cell 4).
type TrsSat struct {
	Cid uint8
	Sat types.Fold64
}

func NewTrsSat(pay bool, sat uint64) *TrsSat {
	c := &TrsSat{Cid: CellTrsSatGet, Sat: types.Fold64(sat)}
	if pay {
		c.Cid = CellTrsSatPay
	}
	return c
}

func (c *TrsSat) ID() uint8                     { return c.Cid }
func (c *TrsSat) Parse(buf []byte) (int, error) { return parseCellBody(c.Cid, buf, &c.Sat) }
func (c *TrsSat) Serialize() []byte             { return serializeCellBody(c.Cid, &c.Sat) }
func (c *TrsSat) Size() int                     { return 1 + c.Sat.Size() }

func (c *TrsSat) Execute(ctx types.Context, addr common.Address) error {
	sat := uint64(c.Sat)
	if sat > math.MaxInt64 {
		return fmt.Errorf("cell sat too big")
	}
	st := state.Wrap(ctx.State())
	tex := ctx.Tex()
	if c.Cid == CellTrsSatPay {
		if err := operate.SatSub(st, addr, sat); err != nil {
			return err
		}
		if tex.Sat > math.MaxInt64-int64(sat) {
			return fmt.Errorf("cell state coin sat overflow")
		}
		tex.Sat += int64(sat)
		return nil
	}
	if err := operate.SatAdd(st, addr, sat); err != nil {
		return err
	}
	if tex.Sat < math.MinInt64+int64(sat) {
		return fmt.Errorf("cell state coin sat overflow")
	}
	tex.Sat -= int64(sat)
	return nil
}

// TrsDiaPay moves named diamonds into the ledger.
type TrsDiaPay struct {
	Diamonds types.DiamondNameList
}

func (c *TrsDiaPay) ID() uint8 { return CellTrsDiaPay }
func (c *TrsDiaPay) Parse(buf []byte) (int, error) {
	return parseCellBody(CellTrsDiaPay, buf, &c.Diamonds)
}
func (c *TrsDiaPay) Serialize() []byte { return serializeCellBody(CellTrsDiaPay, &c.Diamonds) }
func (c *TrsDiaPay) Size() int         { return 1 + c.Diamonds.Size() }

func (c *TrsDiaPay) Execute(ctx types.Context, addr common.Address) error {
	if _, err := c.Diamonds.Check(); err != nil {
		return err
	}
	st := state.Wrap(ctx.State())
	if err := operate.DiamondsTransfer(st, ctx.Env().Chain.DiamondForm, addr, SettlementAddress, c.Diamonds); err != nil {
		return err
	}
	return ctx.Tex().RecordDiamondPay(c.Diamonds)
}

// TrsDiaGet books a claim on a number of parked diamonds.
type TrsDiaGet struct {
	Number types.DiamondNumber
}

func (c *TrsDiaGet) ID() uint8 { return CellTrsDiaGet }
func (c *TrsDiaGet) Parse(buf []byte) (int, error) {
	return parseCellBody(CellTrsDiaGet, buf, &c.Number)
}
func (c *TrsDiaGet) Serialize() []byte { return serializeCellBody(CellTrsDiaGet, &c.Number) }
func (c *TrsDiaGet) Size() int         { return 1 + c.Number.Size() }

func (c *TrsDiaGet) Execute(ctx types.Context, addr common.Address) error {
	if c.Number == 0 {
		return fmt.Errorf("cell diamond get number cannot be zero")
	}
	return ctx.Tex().RecordDiamondGet(addr, int(c.Number))
}

// TrsAsset pays an asset into the ledger (cell 7) or gets it (cell 8).
type TrsAsset struct {
	Cid   uint8
	Asset state.AssetAmt
}

func NewTrsAsset(pay bool, amt state.AssetAmt) *TrsAsset {
	c := &TrsAsset{Cid: CellTrsAssetGet, Asset: amt}
	if pay {
		c.Cid = CellTrsAssetPay
	}
	return c
}

func (c *TrsAsset) ID() uint8                     { return c.Cid }
func (c *TrsAsset) Parse(buf []byte) (int, error) { return parseCellBody(c.Cid, buf, &c.Asset) }
func (c *TrsAsset) Serialize() []byte             { return serializeCellBody(c.Cid, &c.Asset) }
func (c *TrsAsset) Size() int                     { return 1 + c.Asset.Size() }

func (c *TrsAsset) Execute(ctx types.Context, addr common.Address) error {
	if err := checkAssetSerial(ctx, c.Asset.Serial); err != nil {
		return err
	}
	st := state.Wrap(ctx.State())
	delta := int64(c.Asset.Amount)
	if c.Cid == CellTrsAssetPay {
		if err := operate.AssetSub(st, addr, c.Asset); err != nil {
			return err
		}
	} else {
		if err := operate.AssetAdd(st, addr, c.Asset); err != nil {
			return err
		}
		delta = -delta
	}
	return ctx.Tex().AssetAdd(uint64(c.Asset.Serial), delta)
}
