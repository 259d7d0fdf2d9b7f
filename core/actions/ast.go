package actions

import (
	"fmt"

	"github.com/hacash/node/core/types"
	"github.com/hacash/node/params"
)

// AstSelect runs its children in order until ExeMax of them succeed. A
// failed child is rolled back alone; fewer than ExeMin successes roll back
// the whole node.
type AstSelect struct {
	ExeMin  types.Uint1
	ExeMax  types.Uint1
	Actions types.DynActionListW1
}

// NewAstSelect creates an empty node whose children are parsed with reg.
func NewAstSelect(reg *types.ActionRegistry) *AstSelect {
	return &AstSelect{Actions: types.DynActionListW1{Registry: reg}}
}

// NewAstSelectOf creates a node over acts with the given bounds.
func NewAstSelectOf(reg *types.ActionRegistry, exeMin, exeMax uint8, acts ...types.Action) *AstSelect {
	a := NewAstSelect(reg)
	a.ExeMin, a.ExeMax = types.Uint1(exeMin), types.Uint1(exeMax)
	a.Actions.Items = acts
	return a
}

func (a *AstSelect) Kind() uint16               { return KindAstSelect }
func (a *AstSelect) Level() types.ActLv         { return types.ActLvAst }
func (a *AstSelect) ReqSign() []types.AddrOrPtr { return childSigners(a.Actions.Items) }

func (a *AstSelect) Burn90() bool {
	for _, act := range a.Actions.Items {
		if act.Burn90() {
			return true
		}
	}
	return false
}

func (a *AstSelect) Describe() string {
	return fmt.Sprintf("Select execute %d ~ %d of %d actions", a.ExeMin, a.ExeMax, len(a.Actions.Items))
}

func (a *AstSelect) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindAstSelect, buf, &a.ExeMin, &a.ExeMax, &a.Actions)
}
func (a *AstSelect) Serialize() []byte {
	return types.SerializeActionBody(KindAstSelect, &a.ExeMin, &a.ExeMax, &a.Actions)
}
func (a *AstSelect) Size() int { return types.ActionBodySize(&a.ExeMin, &a.ExeMax, &a.Actions) }

func (a *AstSelect) check() error {
	least, most, num := int(a.ExeMin), int(a.ExeMax), len(a.Actions.Items)
	if least > most {
		return fmt.Errorf("action ast select max cannot less than min")
	}
	if most > num {
		return fmt.Errorf("action ast select max cannot more than list num")
	}
	if num > params.TxActionsMax {
		return fmt.Errorf("action ast select num cannot more than %d", params.TxActionsMax)
	}
	return nil
}

func (a *AstSelect) Execute(ctx types.Context) ([]byte, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	leave, err := ctx.AstEnter()
	if err != nil {
		return nil, err
	}
	defer leave()

	whole := ctx.Snapshot()
	var (
		ok  int
		ret []byte
	)
	for _, act := range a.Actions.Items {
		if ok >= int(a.ExeMax) {
			break
		}
		snap := ctx.Snapshot()
		_, r, err := ctx.ActionCall(act)
		if err != nil {
			ctx.Recover(snap)
			continue
		}
		ctx.Merge(snap)
		ret = r
		ok++
	}
	if ok < int(a.ExeMin) {
		ctx.Recover(whole)
		return nil, fmt.Errorf("action ast select must succeed at least %d but only %d", a.ExeMin, ok)
	}
	ctx.Merge(whole)
	return ret, nil
}

// AstIf runs BrIf when Cond succeeds and BrElse otherwise. The effects of a
// failed Cond are rolled back before BrElse runs.
type AstIf struct {
	Cond   AstSelect
	BrIf   AstSelect
	BrElse AstSelect
}

// NewAstIf creates an empty node whose branches are parsed with reg.
func NewAstIf(reg *types.ActionRegistry) *AstIf {
	return &AstIf{
		Cond:   *NewAstSelect(reg),
		BrIf:   *NewAstSelect(reg),
		BrElse: *NewAstSelect(reg),
	}
}

func (a *AstIf) Kind() uint16       { return KindAstIf }
func (a *AstIf) Level() types.ActLv { return types.ActLvAst }
func (a *AstIf) Burn90() bool       { return a.Cond.Burn90() || a.BrIf.Burn90() || a.BrElse.Burn90() }
func (a *AstIf) Describe() string   { return "Asset if-else execute" }

func (a *AstIf) ReqSign() []types.AddrOrPtr {
	var out []types.AddrOrPtr
	for _, br := range []*AstSelect{&a.Cond, &a.BrIf, &a.BrElse} {
		out = append(out, br.ReqSign()...)
	}
	return out
}

func (a *AstIf) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindAstIf, buf, &a.Cond, &a.BrIf, &a.BrElse)
}
func (a *AstIf) Serialize() []byte {
	return types.SerializeActionBody(KindAstIf, &a.Cond, &a.BrIf, &a.BrElse)
}
func (a *AstIf) Size() int { return types.ActionBodySize(&a.Cond, &a.BrIf, &a.BrElse) }

func (a *AstIf) Execute(ctx types.Context) ([]byte, error) {
	leave, err := ctx.AstEnter()
	if err != nil {
		return nil, err
	}
	defer leave()

	whole := ctx.Snapshot()
	cond := ctx.Snapshot()
	var ret []byte
	if _, _, cerr := ctx.ActionCall(&a.Cond); cerr == nil {
		ctx.Merge(cond)
		_, ret, err = ctx.ActionCall(&a.BrIf)
	} else {
		ctx.Recover(cond)
		_, ret, err = ctx.ActionCall(&a.BrElse)
	}
	if err != nil {
		ctx.Recover(whole)
		return nil, err
	}
	ctx.Merge(whole)
	return ret, nil
}

// childSigners collects the signers every child may need, since any of
// them can run.
func childSigners(acts []types.Action) []types.AddrOrPtr {
	var out []types.AddrOrPtr
	for _, act := range acts {
		out = append(out, act.ReqSign()...)
	}
	return out
}
