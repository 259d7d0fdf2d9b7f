package tex

import (
	"fmt"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
)

type compare uint8

const (
	atMost compare = iota
	atLeast
	equal
)

// mode maps a condition cell id to its comparison; ids come in runs of
// AtMost, AtLeast, Eq starting at base.
func mode(cid, base uint8) compare {
	return compare(cid - base)
}

func (m compare) check(have, want uint64) bool {
	switch m {
	case atMost:
		return have <= want
	case atLeast:
		return have >= want
	}
	return have == want
}

// CondZhu compares the hac balance of the address, floored to zhu.
type CondZhu struct {
	Cid uint8
	Zhu types.Fold64
}

func (c *CondZhu) ID() uint8                     { return c.Cid }
func (c *CondZhu) Parse(buf []byte) (int, error) { return parseCellBody(c.Cid, buf, &c.Zhu) }
func (c *CondZhu) Serialize() []byte             { return serializeCellBody(c.Cid, &c.Zhu) }
func (c *CondZhu) Size() int                     { return 1 + c.Zhu.Size() }

func (c *CondZhu) Execute(ctx types.Context, addr common.Address) error {
	bls, _ := state.Wrap(ctx.State()).Balance(addr)
	zhu, ok := bls.Hacash.ToZhuUint64()
	if !ok || !mode(c.Cid, CellCondZhuAtMost).check(zhu, uint64(c.Zhu)) {
		return fmt.Errorf("cell condition zhu check failed")
	}
	return nil
}

// CondSat compares the satoshi balance of the address.
type CondSat struct {
	Cid uint8
	Sat types.Fold64
}

func (c *CondSat) ID() uint8                     { return c.Cid }
func (c *CondSat) Parse(buf []byte) (int, error) { return parseCellBody(c.Cid, buf, &c.Sat) }
func (c *CondSat) Serialize() []byte             { return serializeCellBody(c.Cid, &c.Sat) }
func (c *CondSat) Size() int                     { return 1 + c.Sat.Size() }

func (c *CondSat) Execute(ctx types.Context, addr common.Address) error {
	bls, _ := state.Wrap(ctx.State()).Balance(addr)
	if !mode(c.Cid, CellCondSatAtMost).check(uint64(bls.Satoshi), uint64(c.Sat)) {
		return fmt.Errorf("cell condition sat check failed")
	}
	return nil
}

// CondDia compares the diamond count of the address.
type CondDia struct {
	Cid     uint8
	Diamond types.Fold64
}

func (c *CondDia) ID() uint8                     { return c.Cid }
func (c *CondDia) Parse(buf []byte) (int, error) { return parseCellBody(c.Cid, buf, &c.Diamond) }
func (c *CondDia) Serialize() []byte             { return serializeCellBody(c.Cid, &c.Diamond) }
func (c *CondDia) Size() int                     { return 1 + c.Diamond.Size() }

func (c *CondDia) Execute(ctx types.Context, addr common.Address) error {
	bls, _ := state.Wrap(ctx.State()).Balance(addr)
	if !mode(c.Cid, CellCondDiaAtMost).check(uint64(bls.Diamond), uint64(c.Diamond)) {
		return fmt.Errorf("cell condition dia check failed")
	}
	return nil
}

// CondAsset compares the held amount of one asset serial.
type CondAsset struct {
	Cid   uint8
	Asset state.AssetAmt
}

func (c *CondAsset) ID() uint8                     { return c.Cid }
func (c *CondAsset) Parse(buf []byte) (int, error) { return parseCellBody(c.Cid, buf, &c.Asset) }
func (c *CondAsset) Serialize() []byte             { return serializeCellBody(c.Cid, &c.Asset) }
func (c *CondAsset) Size() int                     { return 1 + c.Asset.Size() }

func (c *CondAsset) Execute(ctx types.Context, addr common.Address) error {
	if err := checkAssetSerial(ctx, c.Asset.Serial); err != nil {
		return err
	}
	bls, _ := state.Wrap(ctx.State()).Balance(addr)
	held := bls.Asset(c.Asset.Serial)
	if !mode(c.Cid, CellCondAssetAtMost).check(uint64(held.Amount), uint64(c.Asset.Amount)) {
		return fmt.Errorf("cell condition asset <%d> check failed", c.Asset.Serial)
	}
	return nil
}

// CondHeight bounds the height of the executing block.
type CondHeight struct {
	Cid    uint8
	Height types.BlockHeight
}

func (c *CondHeight) ID() uint8                     { return c.Cid }
func (c *CondHeight) Parse(buf []byte) (int, error) { return parseCellBody(c.Cid, buf, &c.Height) }
func (c *CondHeight) Serialize() []byte             { return serializeCellBody(c.Cid, &c.Height) }
func (c *CondHeight) Size() int                     { return 1 + c.Height.Size() }

func (c *CondHeight) Execute(ctx types.Context, _ common.Address) error {
	if !mode(c.Cid, CellCondHeightAtMost).check(ctx.Env().Block.Height, uint64(c.Height)) {
		return fmt.Errorf("cell condition check failed")
	}
	return nil
}
