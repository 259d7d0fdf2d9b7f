package actions

import (
	"fmt"

	"github.com/hacash/node/core/operate"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
)

const (
	protocolCostSizeMax  = 4
	engravedReadableType = 50 // types up to this one carry printable ascii
)

// DiamondInscription engraves one content into each listed diamond of the
// main address. The protocol cost is burnt.
type DiamondInscription struct {
	Diamonds        types.DiamondNameList
	ProtocolCost    types.Amount
	EngravedType    types.Uint1
	EngravedContent types.BytesW1
}

func (a *DiamondInscription) Kind() uint16               { return KindDiamondInscription }
func (a *DiamondInscription) Level() types.ActLv         { return types.ActLvTop }
func (a *DiamondInscription) Burn90() bool               { return true }
func (a *DiamondInscription) ReqSign() []types.AddrOrPtr { return nil }

func (a *DiamondInscription) Describe() string {
	return fmt.Sprintf("Inscript %d HACD %s with cost %s", len(a.Diamonds.Items), a.Diamonds.Readable(), a.ProtocolCost)
}

func (a *DiamondInscription) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindDiamondInscription, buf, &a.Diamonds, &a.ProtocolCost, &a.EngravedType, &a.EngravedContent)
}
func (a *DiamondInscription) Serialize() []byte {
	return types.SerializeActionBody(KindDiamondInscription, &a.Diamonds, &a.ProtocolCost, &a.EngravedType, &a.EngravedContent)
}
func (a *DiamondInscription) Size() int {
	return types.ActionBodySize(&a.Diamonds, &a.ProtocolCost, &a.EngravedType, &a.EngravedContent)
}

func readable(b []byte) bool {
	for _, c := range b {
		if c < 32 || c > 126 {
			return false
		}
	}
	return true
}

func (a *DiamondInscription) check() (int, error) {
	if a.ProtocolCost.IsNegative() {
		return 0, fmt.Errorf("protocol fee cannot be negative")
	}
	n, err := a.Diamonds.Check()
	if err != nil {
		return 0, err
	}
	if a.ProtocolCost.Size() > protocolCostSizeMax {
		return 0, fmt.Errorf("protocol fee amount size cannot over %d bytes", protocolCostSizeMax)
	}
	cl := len(a.EngravedContent)
	if cl == 0 {
		return 0, fmt.Errorf("engraved content cannot be empty")
	}
	if cl > state.DiamondInscriptionLengthMax {
		return 0, fmt.Errorf("engraved content size cannot over %d bytes", state.DiamondInscriptionLengthMax)
	}
	if a.EngravedType <= engravedReadableType && !readable(a.EngravedContent) {
		return 0, fmt.Errorf("engraved content must readable string")
	}
	return n, nil
}

func (a *DiamondInscription) Execute(ctx types.Context) ([]byte, error) {
	n, err := a.check()
	if err != nil {
		return nil, err
	}
	env := ctx.Env()
	st := state.Wrap(ctx.State())
	var cost types.Amount
	for _, name := range a.Diamonds.Items {
		c, err := operate.EngraveOneDiamond(st, env.Block.Height, env.Tx.Main, name, a.EngravedContent)
		if err != nil {
			return nil, err
		}
		if cost, err = cost.Add(c); err != nil {
			return nil, err
		}
	}
	if a.ProtocolCost.LessThan(cost) {
		return nil, fmt.Errorf("diamond inscription cost error need %s but got %s", cost, a.ProtocolCost)
	}
	total := st.TotalCount()
	total.EngravedDiamond += types.Uint4(n)
	if a.ProtocolCost.IsPositive() {
		zhu, _ := a.ProtocolCost.ToZhuUint64()
		total.InscriptionBurnZhu += types.Uint8(zhu)
	}
	st.SetTotalCount(&total)
	if a.ProtocolCost.IsPositive() {
		return nil, operate.HacSub(st, env.Tx.Main, a.ProtocolCost)
	}
	return nil, nil
}

// DiamondInscriptionClear wipes every inscription of the listed diamonds.
type DiamondInscriptionClear struct {
	Diamonds     types.DiamondNameList
	ProtocolCost types.Amount
}

func (a *DiamondInscriptionClear) Kind() uint16               { return KindDiamondInscriptionClear }
func (a *DiamondInscriptionClear) Level() types.ActLv         { return types.ActLvTop }
func (a *DiamondInscriptionClear) Burn90() bool               { return true }
func (a *DiamondInscriptionClear) ReqSign() []types.AddrOrPtr { return nil }

func (a *DiamondInscriptionClear) Describe() string {
	return fmt.Sprintf("Clean inscriptions of %d HACD %s with cost %s", len(a.Diamonds.Items), a.Diamonds.Readable(), a.ProtocolCost)
}

func (a *DiamondInscriptionClear) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindDiamondInscriptionClear, buf, &a.Diamonds, &a.ProtocolCost)
}
func (a *DiamondInscriptionClear) Serialize() []byte {
	return types.SerializeActionBody(KindDiamondInscriptionClear, &a.Diamonds, &a.ProtocolCost)
}
func (a *DiamondInscriptionClear) Size() int { return types.ActionBodySize(&a.Diamonds, &a.ProtocolCost) }

func (a *DiamondInscriptionClear) Execute(ctx types.Context) ([]byte, error) {
	if a.ProtocolCost.IsNegative() {
		return nil, fmt.Errorf("protocol cost cannot be negative")
	}
	if _, err := a.Diamonds.Check(); err != nil {
		return nil, err
	}
	if a.ProtocolCost.Size() > protocolCostSizeMax {
		return nil, fmt.Errorf("protocol cost amount size cannot over %d bytes", protocolCostSizeMax)
	}
	env := ctx.Env()
	st := state.Wrap(ctx.State())
	var cost types.Amount
	for _, name := range a.Diamonds.Items {
		c, err := operate.EngraveCleanOneDiamond(st, env.Tx.Main, name)
		if err != nil {
			return nil, err
		}
		if cost, err = cost.Add(c); err != nil {
			return nil, err
		}
	}
	if a.ProtocolCost.LessThan(cost) {
		return nil, fmt.Errorf("diamond inscription cost error need %s but got %s", cost, a.ProtocolCost)
	}
	if !a.ProtocolCost.IsPositive() {
		return nil, nil
	}
	total := st.TotalCount()
	zhu, _ := a.ProtocolCost.ToZhuUint64()
	total.InscriptionBurnZhu += types.Uint8(zhu)
	st.SetTotalCount(&total)
	return nil, operate.HacSub(st, env.Tx.Main, a.ProtocolCost)
}
