package operate

import (
	"fmt"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/params"
)

// Inscription limits.
const (
	EngraveIntervalBlocks = 1000
	EngraveFreeCount      = 10
)

func setHacd(st state.CoreState, addr common.Address, op func(old uint64) (uint64, error)) (uint64, error) {
	if err := addr.CheckVersion(); err != nil {
		return 0, err
	}
	bls, _ := st.Balance(addr)
	v, err := op(uint64(bls.Diamond))
	if err != nil {
		return 0, err
	}
	if bls.Diamond, err = types.NewFold64(v); err != nil {
		return 0, err
	}
	st.SetBalance(addr, &bls)
	return v, nil
}

// HacdAdd credits n diamonds to the balance count of addr.
func HacdAdd(st state.CoreState, addr common.Address, n uint64) (uint64, error) {
	return setHacd(st, addr, func(old uint64) (uint64, error) { return old + n, nil })
}

// HacdSub debits n diamonds from the balance count of addr.
func HacdSub(st state.CoreState, addr common.Address, n uint64) (uint64, error) {
	return setHacd(st, addr, func(old uint64) (uint64, error) {
		if old < n {
			return 0, fmt.Errorf("address %s diamond %d is insufficient, at least %d", addr.Readable(), old, n)
		}
		return old - n, nil
	})
}

// HacdTransfer moves a diamond count between two different addresses.
func HacdTransfer(st state.CoreState, from, to common.Address, n uint64) error {
	if from == to {
		return fmt.Errorf("cannot transfer to self")
	}
	if from.IsMultisig() {
		return fmt.Errorf("scriptmh address cannot be from yet")
	}
	if _, err := HacdSub(st, from, n); err != nil {
		return err
	}
	if _, err := HacdAdd(st, to, n); err != nil {
		return err
	}
	BlackholeEngulf(st, to)
	return nil
}

// CheckDiamondStatus returns the record of name when it is unpledged and
// owned by addr.
func CheckDiamondStatus(st state.CoreState, addr common.Address, name types.DiamondName) (state.DiamondSto, error) {
	if err := addr.CheckVersion(); err != nil {
		return state.DiamondSto{}, err
	}
	sto, ok := st.Diamond(name)
	if !ok {
		return state.DiamondSto{}, fmt.Errorf("diamond status %s not find", string(name[:]))
	}
	if uint8(sto.Status) != state.DiamondStatusNormal {
		return state.DiamondSto{}, fmt.Errorf("diamond %s has been mortgaged and cannot be transferred", string(name[:]))
	}
	if sto.Address != addr {
		return state.DiamondSto{}, fmt.Errorf("diamond %s not belong to address %s", string(name[:]), addr.Readable())
	}
	return sto, nil
}

// MoveOneDiamond changes the owner of one diamond record.
func MoveOneDiamond(st state.CoreState, from, to common.Address, name types.DiamondName) error {
	if err := from.CheckVersion(); err != nil {
		return err
	}
	if err := to.CheckVersion(); err != nil {
		return err
	}
	if from == to {
		return fmt.Errorf("cannot transfer to self")
	}
	sto, err := CheckDiamondStatus(st, from, name)
	if err != nil {
		return err
	}
	sto.Address = to
	st.SetDiamond(name, &sto)
	return nil
}

// DiamondsTransfer moves every listed diamond, keeps the owned form index
// when enabled and transfers the balance count.
func DiamondsTransfer(st state.CoreState, diamondForm bool, from, to common.Address, list types.DiamondNameList) error {
	n, err := list.Check()
	if err != nil {
		return err
	}
	for _, name := range list.Items {
		if err := MoveOneDiamond(st, from, to, name); err != nil {
			return err
		}
	}
	if diamondForm {
		if err := DiamondOwnedMove(st, from, to, list.Items); err != nil {
			return err
		}
	}
	return HacdTransfer(st, from, to, uint64(n))
}

// EngraveOneDiamond appends an inscription and returns the burn cost. The
// first ten inscriptions are free, later ones cost a tenth of the average
// bid burn.
func EngraveOneDiamond(st state.CoreState, height uint64, addr common.Address, name types.DiamondName, content types.BytesW1) (types.Amount, error) {
	sto, err := CheckDiamondStatus(st, addr, name)
	if err != nil {
		return types.Amount{}, err
	}
	if uint64(sto.PrevEngravedHeight)+EngraveIntervalBlocks > height {
		return types.Amount{}, fmt.Errorf("only one inscription can be made every %d blocks", EngraveIntervalBlocks)
	}
	have := sto.Inscripts.Len()
	if have >= state.DiamondInscriptionMax {
		return types.Amount{}, fmt.Errorf("maximum inscriptions for one diamond is %d", state.DiamondInscriptionMax)
	}
	smelt, ok := st.DiamondSmelt(name)
	if !ok {
		return types.Amount{}, fmt.Errorf("diamond smelt %s not find", string(name[:]))
	}
	var cost types.Amount
	if have >= EngraveFreeCount {
		cost = types.NewAmountCoin(uint64(smelt.AverageBidBurn), params.UnitMei-1)
	}
	sto.PrevEngravedHeight = types.BlockHeight(height)
	if err := sto.Inscripts.Push(content); err != nil {
		return types.Amount{}, err
	}
	st.SetDiamond(name, &sto)
	return cost, nil
}

// EngraveCleanOneDiamond wipes every inscription and returns the burn cost,
// the average bid burn in mei.
func EngraveCleanOneDiamond(st state.CoreState, addr common.Address, name types.DiamondName) (types.Amount, error) {
	sto, err := CheckDiamondStatus(st, addr, name)
	if err != nil {
		return types.Amount{}, err
	}
	smelt, ok := st.DiamondSmelt(name)
	if !ok {
		return types.Amount{}, fmt.Errorf("diamond smelt %s not find", string(name[:]))
	}
	if sto.Inscripts.Len() == 0 {
		return types.Amount{}, fmt.Errorf("cannot find any inscriptions in HACD %s", string(name[:]))
	}
	cost := types.NewAmountMei(uint64(smelt.AverageBidBurn))
	sto.PrevEngravedHeight = 0
	sto.Inscripts = state.Inscripts{}
	st.SetDiamond(name, &sto)
	return cost, nil
}

// DiamondOwnedAppend adds names to the owned form of addr.
func DiamondOwnedAppend(st state.CoreState, addr common.Address, names ...types.DiamondName) {
	owned, _ := st.DiamondOwned(addr)
	owned.Push(names...)
	st.SetDiamondOwned(addr, &owned)
}

// DiamondOwnedMove moves names between two owned forms. An emptied form is
// removed.
func DiamondOwnedMove(st state.CoreState, from, to common.Address, names []types.DiamondName) error {
	owned, ok := st.DiamondOwned(from)
	if !ok {
		return fmt.Errorf("from diamond owned form not find")
	}
	left, err := owned.Drop(names...)
	if err != nil {
		return err
	}
	if left > 0 {
		st.SetDiamondOwned(from, &owned)
	} else {
		st.DelDiamondOwned(from)
	}
	DiamondOwnedAppend(st, to, names...)
	return nil
}
