package actions

import (
	"fmt"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/operate"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
)

func diamondsTransfer(ctx types.Context, from, to common.Address, list types.DiamondNameList) error {
	return operate.DiamondsTransfer(state.Wrap(ctx.State()), ctx.Env().Chain.DiamondForm, from, to, list)
}

// DiaSingleTrs sends one diamond from the main address.
type DiaSingleTrs struct {
	Diamond types.DiamondName
	To      types.AddrOrPtr
}

func (a *DiaSingleTrs) Kind() uint16               { return KindDiaSingleTrs }
func (a *DiaSingleTrs) Level() types.ActLv         { return types.ActLvMainCall }
func (a *DiaSingleTrs) Burn90() bool               { return false }
func (a *DiaSingleTrs) ReqSign() []types.AddrOrPtr { return nil }

func (a *DiaSingleTrs) Describe() string {
	return fmt.Sprintf("Transfer HACD %s to %s", string(a.Diamond[:]), a.To)
}

func (a *DiaSingleTrs) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindDiaSingleTrs, buf, &a.Diamond, &a.To)
}
func (a *DiaSingleTrs) Serialize() []byte {
	return types.SerializeActionBody(KindDiaSingleTrs, &a.Diamond, &a.To)
}
func (a *DiaSingleTrs) Size() int { return types.ActionBodySize(&a.Diamond, &a.To) }

func (a *DiaSingleTrs) Execute(ctx types.Context) ([]byte, error) {
	to, err := addr(ctx, a.To)
	if err != nil {
		return nil, err
	}
	var list types.DiamondNameList
	list.Items = []types.DiamondName{a.Diamond}
	return nil, diamondsTransfer(ctx, ctx.Env().Tx.Main, to, list)
}

// DiaFromToTrs moves diamonds between two addresses. From must sign.
type DiaFromToTrs struct {
	From     types.AddrOrPtr
	To       types.AddrOrPtr
	Diamonds types.DiamondNameList
}

func (a *DiaFromToTrs) Kind() uint16               { return KindDiaFromToTrs }
func (a *DiaFromToTrs) Level() types.ActLv         { return types.ActLvMainCall }
func (a *DiaFromToTrs) Burn90() bool               { return false }
func (a *DiaFromToTrs) ReqSign() []types.AddrOrPtr { return []types.AddrOrPtr{a.From} }

func (a *DiaFromToTrs) Describe() string {
	return fmt.Sprintf("Transfer %d HACD %s from %s to %s", a.Diamonds.Len(), a.Diamonds.Readable(), a.From, a.To)
}

func (a *DiaFromToTrs) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindDiaFromToTrs, buf, &a.From, &a.To, &a.Diamonds)
}
func (a *DiaFromToTrs) Serialize() []byte {
	return types.SerializeActionBody(KindDiaFromToTrs, &a.From, &a.To, &a.Diamonds)
}
func (a *DiaFromToTrs) Size() int { return types.ActionBodySize(&a.From, &a.To, &a.Diamonds) }

func (a *DiaFromToTrs) Execute(ctx types.Context) ([]byte, error) {
	from, err := addr(ctx, a.From)
	if err != nil {
		return nil, err
	}
	to, err := addr(ctx, a.To)
	if err != nil {
		return nil, err
	}
	return nil, diamondsTransfer(ctx, from, to, a.Diamonds)
}

// DiaToTrs sends diamonds from the main address.
type DiaToTrs struct {
	To       types.AddrOrPtr
	Diamonds types.DiamondNameList
}

func (a *DiaToTrs) Kind() uint16               { return KindDiaToTrs }
func (a *DiaToTrs) Level() types.ActLv         { return types.ActLvMainCall }
func (a *DiaToTrs) Burn90() bool               { return false }
func (a *DiaToTrs) ReqSign() []types.AddrOrPtr { return nil }

func (a *DiaToTrs) Describe() string {
	return fmt.Sprintf("Transfer %d HACD %s to %s", a.Diamonds.Len(), a.Diamonds.Readable(), a.To)
}

func (a *DiaToTrs) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindDiaToTrs, buf, &a.To, &a.Diamonds)
}
func (a *DiaToTrs) Serialize() []byte {
	return types.SerializeActionBody(KindDiaToTrs, &a.To, &a.Diamonds)
}
func (a *DiaToTrs) Size() int { return types.ActionBodySize(&a.To, &a.Diamonds) }

func (a *DiaToTrs) Execute(ctx types.Context) ([]byte, error) {
	to, err := addr(ctx, a.To)
	if err != nil {
		return nil, err
	}
	return nil, diamondsTransfer(ctx, ctx.Env().Tx.Main, to, a.Diamonds)
}

// DiaFromTrs pulls diamonds into the main address. From must sign.
type DiaFromTrs struct {
	From     types.AddrOrPtr
	Diamonds types.DiamondNameList
}

func (a *DiaFromTrs) Kind() uint16               { return KindDiaFromTrs }
func (a *DiaFromTrs) Level() types.ActLv         { return types.ActLvMainCall }
func (a *DiaFromTrs) Burn90() bool               { return false }
func (a *DiaFromTrs) ReqSign() []types.AddrOrPtr { return []types.AddrOrPtr{a.From} }

func (a *DiaFromTrs) Describe() string {
	return fmt.Sprintf("Transfer %d HACD %s from %s", a.Diamonds.Len(), a.Diamonds.Readable(), a.From)
}

func (a *DiaFromTrs) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindDiaFromTrs, buf, &a.From, &a.Diamonds)
}
func (a *DiaFromTrs) Serialize() []byte {
	return types.SerializeActionBody(KindDiaFromTrs, &a.From, &a.Diamonds)
}
func (a *DiaFromTrs) Size() int { return types.ActionBodySize(&a.From, &a.Diamonds) }

func (a *DiaFromTrs) Execute(ctx types.Context) ([]byte, error) {
	from, err := addr(ctx, a.From)
	if err != nil {
		return nil, err
	}
	return nil, diamondsTransfer(ctx, from, ctx.Env().Tx.Main, a.Diamonds)
}
