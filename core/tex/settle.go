package tex

import (
	"fmt"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/operate"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
)

// Settle checks that the ledger of the current transaction nets to zero
// and delivers the parked diamonds to their claimants.
func Settle(ctx types.Context) error {
	t := ctx.Tex()
	if t.IsEmpty() {
		return nil
	}
	if t.Zhu != 0 || t.Sat != 0 || t.Dia != 0 {
		return fmt.Errorf("coin settlement check failed")
	}
	if t.Assets != nil {
		for p := t.Assets.Oldest(); p != nil; p = p.Next() {
			if p.Value != 0 {
				return fmt.Errorf("asset <%d> settlement check failed", p.Key)
			}
		}
	}
	type delivery struct {
		to   common.Address
		list types.DiamondNameList
	}
	var deliveries []delivery
	for _, g := range t.DiaGets {
		names, err := t.FetchDiamonds(g.Count)
		if err != nil {
			return err
		}
		var list types.DiamondNameList
		list.Items = names
		if _, err := list.Check(); err != nil {
			return err
		}
		deliveries = append(deliveries, delivery{to: g.Addr, list: list})
	}
	if len(t.Diamonds) > 0 {
		return fmt.Errorf("diamonds settlement check failed")
	}
	st := state.Wrap(ctx.State())
	form := ctx.Env().Chain.DiamondForm
	for _, d := range deliveries {
		if err := operate.DiamondsTransfer(st, form, SettlementAddress, d.to, d.list); err != nil {
			return err
		}
	}
	return nil
}
