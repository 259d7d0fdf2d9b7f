package operate

import (
	"fmt"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/state"
)

// AssetAdd credits amt to addr.
func AssetAdd(st state.CoreState, addr common.Address, amt state.AssetAmt) error {
	if amt.Amount == 0 {
		return fmt.Errorf("Asset operate amount cannot be zore")
	}
	if err := addr.CheckVersion(); err != nil {
		return err
	}
	bls, _ := st.Balance(addr)
	old := bls.Asset(amt.Serial)
	v, err := old.Amount.CheckedAdd(amt.Amount)
	if err != nil {
		return fmt.Errorf("cannot do checked_add with asset %s and %s", old, amt)
	}
	if err := bls.AssetSet(state.AssetAmt{Serial: amt.Serial, Amount: v}); err != nil {
		return err
	}
	st.SetBalance(addr, &bls)
	BlackholeEngulf(st, addr)
	return nil
}

// AssetSub debits amt from addr.
func AssetSub(st state.CoreState, addr common.Address, amt state.AssetAmt) error {
	if amt.Amount == 0 {
		return fmt.Errorf("Asset operate amount cannot be zore")
	}
	if err := addr.CheckVersion(); err != nil {
		return err
	}
	bls, _ := st.Balance(addr)
	old := bls.Asset(amt.Serial)
	if old.Amount < amt.Amount {
		return fmt.Errorf("address %s asset %s is insufficient, at least %s", addr.Readable(), old, amt)
	}
	if err := bls.AssetSet(state.AssetAmt{Serial: amt.Serial, Amount: old.Amount - amt.Amount}); err != nil {
		return err
	}
	st.SetBalance(addr, &bls)
	return nil
}

// AssetCheck verifies addr holds at least amt.
func AssetCheck(st state.CoreState, addr common.Address, amt state.AssetAmt) (state.AssetAmt, error) {
	if amt.Amount == 0 {
		return state.AssetAmt{}, fmt.Errorf("check asset is cannot empty")
	}
	if err := addr.CheckVersion(); err != nil {
		return state.AssetAmt{}, err
	}
	if bls, ok := st.Balance(addr); ok {
		if held := bls.Asset(amt.Serial); held.Amount >= amt.Amount {
			return held, nil
		}
	}
	return state.AssetAmt{}, fmt.Errorf("address %s asset is insufficient, at least %s", addr.Readable(), amt)
}

// AssetTransfer moves amt between two different addresses.
func AssetTransfer(st state.CoreState, from, to common.Address, amt state.AssetAmt) error {
	if from == to {
		return fmt.Errorf("cannot trs to self")
	}
	if err := AssetSub(st, from, amt); err != nil {
		return err
	}
	return AssetAdd(st, to, amt)
}
