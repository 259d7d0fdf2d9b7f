package actions

import (
	"fmt"

	"github.com/hacash/node/core/operate"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
)

// HacToTrs pays hac from the main address.
type HacToTrs struct {
	To     types.AddrOrPtr
	Hacash types.Amount
}

func (a *HacToTrs) Kind() uint16               { return KindHacToTrs }
func (a *HacToTrs) Level() types.ActLv         { return types.ActLvMainCall }
func (a *HacToTrs) Burn90() bool               { return false }
func (a *HacToTrs) ReqSign() []types.AddrOrPtr { return nil }
func (a *HacToTrs) Describe() string           { return fmt.Sprintf("Transfer %s HAC to %s", a.Hacash, a.To) }

func (a *HacToTrs) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindHacToTrs, buf, &a.To, &a.Hacash)
}
func (a *HacToTrs) Serialize() []byte { return types.SerializeActionBody(KindHacToTrs, &a.To, &a.Hacash) }
func (a *HacToTrs) Size() int         { return types.ActionBodySize(&a.To, &a.Hacash) }

func (a *HacToTrs) Execute(ctx types.Context) ([]byte, error) {
	to, err := addr(ctx, a.To)
	if err != nil {
		return nil, err
	}
	return nil, operate.HacTransfer(state.Wrap(ctx.State()), height(ctx), ctx.Env().Tx.Main, to, a.Hacash)
}

// HacFromTrs pulls hac into the main address. From must sign.
type HacFromTrs struct {
	From   types.AddrOrPtr
	Hacash types.Amount
}

func (a *HacFromTrs) Kind() uint16               { return KindHacFromTrs }
func (a *HacFromTrs) Level() types.ActLv         { return types.ActLvMainCall }
func (a *HacFromTrs) Burn90() bool               { return false }
func (a *HacFromTrs) ReqSign() []types.AddrOrPtr { return []types.AddrOrPtr{a.From} }
func (a *HacFromTrs) Describe() string           { return fmt.Sprintf("Transfer %s HAC from %s", a.Hacash, a.From) }

func (a *HacFromTrs) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindHacFromTrs, buf, &a.From, &a.Hacash)
}
func (a *HacFromTrs) Serialize() []byte {
	return types.SerializeActionBody(KindHacFromTrs, &a.From, &a.Hacash)
}
func (a *HacFromTrs) Size() int { return types.ActionBodySize(&a.From, &a.Hacash) }

func (a *HacFromTrs) Execute(ctx types.Context) ([]byte, error) {
	from, err := addr(ctx, a.From)
	if err != nil {
		return nil, err
	}
	return nil, operate.HacTransfer(state.Wrap(ctx.State()), height(ctx), from, ctx.Env().Tx.Main, a.Hacash)
}

// HacFromToTrs moves hac between two addresses. From must sign.
type HacFromToTrs struct {
	From   types.AddrOrPtr
	To     types.AddrOrPtr
	Hacash types.Amount
}

func (a *HacFromToTrs) Kind() uint16               { return KindHacFromToTrs }
func (a *HacFromToTrs) Level() types.ActLv         { return types.ActLvMainCall }
func (a *HacFromToTrs) Burn90() bool               { return false }
func (a *HacFromToTrs) ReqSign() []types.AddrOrPtr { return []types.AddrOrPtr{a.From} }

func (a *HacFromToTrs) Describe() string {
	return fmt.Sprintf("Transfer %s HAC from %s to %s", a.Hacash, a.From, a.To)
}

func (a *HacFromToTrs) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindHacFromToTrs, buf, &a.From, &a.To, &a.Hacash)
}
func (a *HacFromToTrs) Serialize() []byte {
	return types.SerializeActionBody(KindHacFromToTrs, &a.From, &a.To, &a.Hacash)
}
func (a *HacFromToTrs) Size() int { return types.ActionBodySize(&a.From, &a.To, &a.Hacash) }

func (a *HacFromToTrs) Execute(ctx types.Context) ([]byte, error) {
	from, err := addr(ctx, a.From)
	if err != nil {
		return nil, err
	}
	to, err := addr(ctx, a.To)
	if err != nil {
		return nil, err
	}
	return nil, operate.HacTransfer(state.Wrap(ctx.State()), height(ctx), from, to, a.Hacash)
}

// SatToTrs pays satoshi from the main address.
type SatToTrs struct {
	To      types.AddrOrPtr
	Satoshi types.Fold64
}

func (a *SatToTrs) Kind() uint16               { return KindSatToTrs }
func (a *SatToTrs) Level() types.ActLv         { return types.ActLvMainCall }
func (a *SatToTrs) Burn90() bool               { return false }
func (a *SatToTrs) ReqSign() []types.AddrOrPtr { return nil }
func (a *SatToTrs) Describe() string           { return fmt.Sprintf("Transfer %d SAT to %s", a.Satoshi, a.To) }

func (a *SatToTrs) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindSatToTrs, buf, &a.To, &a.Satoshi)
}
func (a *SatToTrs) Serialize() []byte { return types.SerializeActionBody(KindSatToTrs, &a.To, &a.Satoshi) }
func (a *SatToTrs) Size() int         { return types.ActionBodySize(&a.To, &a.Satoshi) }

func (a *SatToTrs) Execute(ctx types.Context) ([]byte, error) {
	to, err := addr(ctx, a.To)
	if err != nil {
		return nil, err
	}
	return nil, operate.SatTransfer(state.Wrap(ctx.State()), ctx.Env().Tx.Main, to, uint64(a.Satoshi))
}

// SatFromTrs pulls satoshi into the main address. From must sign.
type SatFromTrs struct {
	From    types.AddrOrPtr
	Satoshi types.Fold64
}

func (a *SatFromTrs) Kind() uint16               { return KindSatFromTrs }
func (a *SatFromTrs) Level() types.ActLv         { return types.ActLvMainCall }
func (a *SatFromTrs) Burn90() bool               { return false }
func (a *SatFromTrs) ReqSign() []types.AddrOrPtr { return []types.AddrOrPtr{a.From} }
func (a *SatFromTrs) Describe() string           { return fmt.Sprintf("Transfer %d SAT from %s", a.Satoshi, a.From) }

func (a *SatFromTrs) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindSatFromTrs, buf, &a.From, &a.Satoshi)
}
func (a *SatFromTrs) Serialize() []byte {
	return types.SerializeActionBody(KindSatFromTrs, &a.From, &a.Satoshi)
}
func (a *SatFromTrs) Size() int { return types.ActionBodySize(&a.From, &a.Satoshi) }

func (a *SatFromTrs) Execute(ctx types.Context) ([]byte, error) {
	from, err := addr(ctx, a.From)
	if err != nil {
		return nil, err
	}
	return nil, operate.SatTransfer(state.Wrap(ctx.State()), from, ctx.Env().Tx.Main, uint64(a.Satoshi))
}

// SatFromToTrs moves satoshi between two addresses. From must sign.
type SatFromToTrs struct {
	From    types.AddrOrPtr
	To      types.AddrOrPtr
	Satoshi types.Fold64
}

func (a *SatFromToTrs) Kind() uint16               { return KindSatFromToTrs }
func (a *SatFromToTrs) Level() types.ActLv         { return types.ActLvMainCall }
func (a *SatFromToTrs) Burn90() bool               { return false }
func (a *SatFromToTrs) ReqSign() []types.AddrOrPtr { return []types.AddrOrPtr{a.From} }

func (a *SatFromToTrs) Describe() string {
	return fmt.Sprintf("Transfer %d SAT from %s to %s", a.Satoshi, a.From, a.To)
}

func (a *SatFromToTrs) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindSatFromToTrs, buf, &a.From, &a.To, &a.Satoshi)
}
func (a *SatFromToTrs) Serialize() []byte {
	return types.SerializeActionBody(KindSatFromToTrs, &a.From, &a.To, &a.Satoshi)
}
func (a *SatFromToTrs) Size() int { return types.ActionBodySize(&a.From, &a.To, &a.Satoshi) }

func (a *SatFromToTrs) Execute(ctx types.Context) ([]byte, error) {
	from, err := addr(ctx, a.From)
	if err != nil {
		return nil, err
	}
	to, err := addr(ctx, a.To)
	if err != nil {
		return nil, err
	}
	return nil, operate.SatTransfer(state.Wrap(ctx.State()), from, to, uint64(a.Satoshi))
}
