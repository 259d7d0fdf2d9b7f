// Package operate implements the balance primitives every transfer action
// is built from.
package operate

import (
	"fmt"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/params"
)

func checkPositive(amt types.Amount) error {
	if !amt.IsPositive() {
		return fmt.Errorf("amount %s value is not positive", amt)
	}
	return nil
}

// BlackholeEngulf empties the balance of the zero address.
func BlackholeEngulf(st state.CoreState, addr common.Address) {
	if addr.IsZero() {
		st.DelBalance(addr)
	}
}

func setHac(st state.CoreState, addr common.Address, bls *state.Balance, hac types.Amount) error {
	if hac.Size() > params.HacAmountSizeMax {
		return fmt.Errorf("address %s amount %s size %d over %d can not to store",
			addr.Readable(), hac, hac.Size(), params.HacAmountSizeMax)
	}
	bls.Hacash = hac
	st.SetBalance(addr, bls)
	return nil
}

// HacAdd credits amt to addr.
func HacAdd(st state.CoreState, addr common.Address, amt types.Amount) error {
	if err := checkPositive(amt); err != nil {
		return err
	}
	if err := addr.CheckVersion(); err != nil {
		return err
	}
	bls, _ := st.Balance(addr)
	hac, err := bls.Hacash.Add(amt)
	if err != nil {
		return err
	}
	if err := setHac(st, addr, &bls, hac); err != nil {
		return err
	}
	BlackholeEngulf(st, addr)
	return nil
}

// HacSub debits amt from addr.
func HacSub(st state.CoreState, addr common.Address, amt types.Amount) error {
	if err := checkPositive(amt); err != nil {
		return err
	}
	if err := addr.CheckVersion(); err != nil {
		return err
	}
	bls, _ := st.Balance(addr)
	if bls.Hacash.LessThan(amt) {
		return fmt.Errorf("address %s balance %s is insufficient, at least %s",
			addr.Readable(), bls.Hacash, amt)
	}
	hac, err := bls.Hacash.Sub(amt)
	if err != nil {
		return err
	}
	return setHac(st, addr, &bls, hac)
}

// HacCheck verifies addr holds at least amt.
func HacCheck(st state.CoreState, addr common.Address, amt types.Amount) (types.Amount, error) {
	if err := checkPositive(amt); err != nil {
		return types.Amount{}, err
	}
	if err := addr.CheckVersion(); err != nil {
		return types.Amount{}, err
	}
	if bls, ok := st.Balance(addr); ok && !bls.Hacash.LessThan(amt) {
		return bls.Hacash, nil
	}
	return types.Amount{}, fmt.Errorf("address %s balance is insufficient, at least %s", addr.Readable(), amt)
}

// HacTransfer moves amt from one address to another. A self transfer
// changes nothing; from height 200000 on it still checks the balance.
func HacTransfer(st state.CoreState, height uint64, from, to common.Address, amt types.Amount) error {
	if from == to {
		if height >= params.HacSelfTransferCheckHeight {
			_, err := HacCheck(st, from, amt)
			return err
		}
		return nil
	}
	if from.IsMultisig() {
		return fmt.Errorf("scriptmh address cannot be from yet")
	}
	if err := checkPositive(amt); err != nil {
		return err
	}
	if err := HacSub(st, from, amt); err != nil {
		return err
	}
	return HacAdd(st, to, amt)
}
