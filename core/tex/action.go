package tex

import (
	"fmt"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/types"
)

// KindTexCellAct is the action kind of a signed cell list.
const KindTexCellAct uint16 = 35

// CellAct executes a cell list on behalf of Addr, authorized by its own
// signature instead of the transaction signatures.
type CellAct struct {
	Addr  common.Address
	Cells CellListW1
	Sign  types.Sign
}

// NewCellAct creates an unsigned cell action for addr.
func NewCellAct(addr common.Address) *CellAct {
	return &CellAct{Addr: addr}
}

func (a *CellAct) Kind() uint16               { return KindTexCellAct }
func (a *CellAct) Level() types.ActLv         { return types.ActLvTop }
func (a *CellAct) Burn90() bool               { return false }
func (a *CellAct) ReqSign() []types.AddrOrPtr { return nil }

func (a *CellAct) Describe() string {
	return fmt.Sprintf("tex cells of %s count %d", a.Addr.Readable(), len(a.Cells.Items))
}

func (a *CellAct) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindTexCellAct, buf, &a.Addr, &a.Cells, &a.Sign)
}

func (a *CellAct) Serialize() []byte {
	return types.SerializeActionBody(KindTexCellAct, &a.Addr, &a.Cells, &a.Sign)
}

func (a *CellAct) Size() int { return types.ActionBodySize(&a.Addr, &a.Cells, &a.Sign) }

// SignStuff is the hash the address signs: the address and the cells.
func (a *CellAct) SignStuff() common.Hash {
	return types.Sha3(a.Addr.Serialize(), a.Cells.Serialize())
}

// FillSign signs the cell list with acc, which must own Addr.
func (a *CellAct) FillSign(acc *types.Account) error {
	if acc.Address != a.Addr {
		return fmt.Errorf("account %s is not %s", acc.Address.Readable(), a.Addr.Readable())
	}
	a.Sign = acc.SignHash(a.SignStuff())
	return nil
}

func (a *CellAct) Execute(ctx types.Context) ([]byte, error) {
	if err := a.Addr.MustPrivakey(); err != nil {
		return nil, err
	}
	if a.Sign.Address() != a.Addr || !a.Sign.Verify(a.SignStuff()) {
		return nil, fmt.Errorf("address %s signature verify failed in tex cell action", a.Addr.Readable())
	}
	return nil, a.Cells.Execute(ctx, a.Addr)
}

// Actions lists the action kinds of this package.
func Actions() []types.ActionEntry {
	return []types.ActionEntry{{
		Kind: KindTexCellAct,
		Name: "TexCellAct",
		Parser: func(_ *types.ActionRegistry, buf []byte) (types.Action, int, error) {
			a := new(CellAct)
			n, err := a.Parse(buf)
			if err != nil {
				return nil, 0, err
			}
			return a, n, nil
		},
	}}
}
