package types

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/hacash/node/common"
	"github.com/hacash/node/params"
)

// TexDiamondsMax bounds the diamonds parked in one ledger.
const TexDiamondsMax = 60000

// DiamondGet is a pending diamond credit of a tex ledger.
type DiamondGet struct {
	Addr  common.Address
	Count int
}

// TexLedger nets the coin moves of the tex cells of one transaction. Every
// pay adds, every get subtracts; the ledger must be zero at settlement.
type TexLedger struct {
	Zhu      int64
	Sat      int64
	Dia      int32
	Diamonds []DiamondName
	DiaGets  []DiamondGet
	Assets   *orderedmap.OrderedMap[uint64, int64]
}

// NewTexLedger creates an empty ledger.
func NewTexLedger() *TexLedger {
	return &TexLedger{Assets: orderedmap.New[uint64, int64]()}
}

// Clone deep copies the ledger.
func (t *TexLedger) Clone() TexLedger {
	c := TexLedger{
		Zhu:      t.Zhu,
		Sat:      t.Sat,
		Dia:      t.Dia,
		Diamonds: append([]DiamondName(nil), t.Diamonds...),
		DiaGets:  append([]DiamondGet(nil), t.DiaGets...),
		Assets:   orderedmap.New[uint64, int64](),
	}
	if t.Assets != nil {
		for p := t.Assets.Oldest(); p != nil; p = p.Next() {
			c.Assets.Set(p.Key, p.Value)
		}
	}
	return c
}

// IsEmpty reports whether nothing was recorded.
func (t *TexLedger) IsEmpty() bool {
	return t.Zhu == 0 && t.Sat == 0 && t.Dia == 0 && len(t.Diamonds) == 0 &&
		len(t.DiaGets) == 0 && (t.Assets == nil || t.Assets.Len() == 0)
}

// RecordDiamondPay parks paid diamonds in the ledger.
func (t *TexLedger) RecordDiamondPay(dias DiamondNameList) error {
	n := int32(len(dias.Items))
	if t.Dia > 1<<30 || n > 1<<30 {
		return fmt.Errorf("cell state diamond record overflow")
	}
	if len(t.Diamonds)+len(dias.Items) > TexDiamondsMax {
		return fmt.Errorf("diamonds quantity cannot over %d", TexDiamondsMax)
	}
	t.Dia += n
	t.Diamonds = append(t.Diamonds, dias.Items...)
	return nil
}

// RecordDiamondGet books a credit of count parked diamonds to addr.
func (t *TexLedger) RecordDiamondGet(addr common.Address, count int) error {
	if count > params.DiamondListMax {
		return fmt.Errorf("Tex state diamond trs num cannot over %d", params.DiamondListMax)
	}
	t.DiaGets = append(t.DiaGets, DiamondGet{Addr: addr, Count: count})
	t.Dia -= int32(count)
	return nil
}

// FetchDiamonds takes the first n parked diamonds.
func (t *TexLedger) FetchDiamonds(n int) ([]DiamondName, error) {
	if n > len(t.Diamonds) {
		return nil, fmt.Errorf("diamonds settlement check failed")
	}
	out := append([]DiamondName(nil), t.Diamonds[:n]...)
	t.Diamonds = t.Diamonds[n:]
	return out, nil
}

// AssetAdd moves the netted amount of an asset serial by delta.
func (t *TexLedger) AssetAdd(serial uint64, delta int64) error {
	if t.Assets == nil {
		t.Assets = orderedmap.New[uint64, int64]()
	}
	cur, _ := t.Assets.Get(serial)
	res := cur + delta
	if (delta > 0 && res < cur) || (delta < 0 && res > cur) {
		return fmt.Errorf("cell state asset <%d> overflow", serial)
	}
	t.Assets.Set(serial, res)
	return nil
}
