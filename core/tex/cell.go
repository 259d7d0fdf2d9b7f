// Package tex implements the trustless exchange cells: signed lists of pays,
// gets and conditions that net out to zero within one transaction.
package tex

import (
	"fmt"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
)

// SettlementAddress parks paid coins and diamonds until the ledger settles.
var SettlementAddress = common.Address{common.AddrVersionPrivakey,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}

// Cell ids.
const (
	CellTrsZhuPay   uint8 = 1
	CellTrsZhuGet   uint8 = 2
	CellTrsSatPay   uint8 = 3
	CellTrsSatGet   uint8 = 4
	CellTrsDiaPay   uint8 = 5
	CellTrsDiaGet   uint8 = 6
	CellTrsAssetPay uint8 = 7
	CellTrsAssetGet uint8 = 8

	CellCondZhuAtMost     uint8 = 11
	CellCondZhuAtLeast    uint8 = 12
	CellCondZhuEq         uint8 = 13
	CellCondSatAtMost     uint8 = 14
	CellCondSatAtLeast    uint8 = 15
	CellCondSatEq         uint8 = 16
	CellCondDiaAtMost     uint8 = 17
	CellCondDiaAtLeast    uint8 = 18
	CellCondDiaEq         uint8 = 19
	CellCondAssetAtMost   uint8 = 20
	CellCondAssetAtLeast  uint8 = 21
	CellCondAssetEq       uint8 = 22
	CellCondHeightAtMost  uint8 = 23
	CellCondHeightAtLeast uint8 = 24
)

// Cell is one step of a tex cell list, executed for the signing address.
type Cell interface {
	types.Field
	ID() uint8
	Execute(ctx types.Context, addr common.Address) error
}

// newCell allocates an empty cell of cid.
func newCell(cid uint8) (Cell, error) {
	switch cid {
	case CellTrsZhuPay, CellTrsZhuGet:
		return &TrsZhu{Cid: cid}, nil
	case CellTrsSatPay, CellTrsSatGet:
		return &TrsSat{Cid: cid}, nil
	case CellTrsDiaPay:
		return &TrsDiaPay{}, nil
	case CellTrsDiaGet:
		return &TrsDiaGet{}, nil
	case CellTrsAssetPay, CellTrsAssetGet:
		return &TrsAsset{Cid: cid}, nil
	case CellCondZhuAtMost, CellCondZhuAtLeast, CellCondZhuEq:
		return &CondZhu{Cid: cid}, nil
	case CellCondSatAtMost, CellCondSatAtLeast, CellCondSatEq:
		return &CondSat{Cid: cid}, nil
	case CellCondDiaAtMost, CellCondDiaAtLeast, CellCondDiaEq:
		return &CondDia{Cid: cid}, nil
	case CellCondAssetAtMost, CellCondAssetAtLeast, CellCondAssetEq:
		return &CondAsset{Cid: cid}, nil
	case CellCondHeightAtMost, CellCondHeightAtLeast:
		return &CondHeight{Cid: cid}, nil
	}
	return nil, fmt.Errorf("cannot find tex cell id '%d'", cid)
}

// ParseCell reads one cell, the id byte included.
func ParseCell(buf []byte) (Cell, int, error) {
	if len(buf) < 1 {
		return nil, 0, types.ErrBufTooShort
	}
	c, err := newCell(buf[0])
	if err != nil {
		return nil, 0, err
	}
	n, err := c.Parse(buf)
	if err != nil {
		return nil, 0, err
	}
	return c, n, nil
}

func parseCellBody(cid uint8, buf []byte, fs ...types.Field) (int, error) {
	if len(buf) < 1 {
		return 0, types.ErrBufTooShort
	}
	if buf[0] != cid {
		return 0, fmt.Errorf("tex cell id need %d but got %d", cid, buf[0])
	}
	seek := 1
	for _, f := range fs {
		n, err := f.Parse(buf[seek:])
		if err != nil {
			return 0, err
		}
		seek += n
	}
	return seek, nil
}

func serializeCellBody(cid uint8, fs ...types.Field) []byte {
	out := []byte{cid}
	for _, f := range fs {
		out = append(out, f.Serialize()...)
	}
	return out
}

// CellListW1 is a 1 byte count list of cells.
type CellListW1 struct {
	Items []Cell
}

func (l *CellListW1) Parse(buf []byte) (int, error) {
	if len(buf) < 1 {
		return 0, types.ErrBufTooShort
	}
	count := int(buf[0])
	items := make([]Cell, 0, count)
	seek := 1
	for i := 0; i < count; i++ {
		c, n, err := ParseCell(buf[seek:])
		if err != nil {
			return 0, err
		}
		seek += n
		items = append(items, c)
	}
	l.Items = items
	return seek, nil
}

func (l CellListW1) Serialize() []byte {
	out := []byte{byte(len(l.Items))}
	for _, c := range l.Items {
		out = append(out, c.Serialize()...)
	}
	return out
}

func (l CellListW1) Size() int {
	sz := 1
	for _, c := range l.Items {
		sz += c.Size()
	}
	return sz
}

// Push appends a cell.
func (l *CellListW1) Push(c Cell) error {
	if len(l.Items) >= 255 {
		return fmt.Errorf("%w: tex cell list over 255", types.ErrSizeOverflow)
	}
	l.Items = append(l.Items, c)
	return nil
}

// Execute runs every cell in order for addr.
func (l CellListW1) Execute(ctx types.Context, addr common.Address) error {
	for _, c := range l.Items {
		if err := c.Execute(ctx, addr); err != nil {
			return err
		}
	}
	return nil
}

func checkAssetSerial(ctx types.Context, serial types.Fold64) error {
	if _, ok := state.Wrap(ctx.State()).Asset(serial); !ok {
		return fmt.Errorf("asset <%d> not exist", serial)
	}
	return nil
}
