package operate

import (
	"fmt"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
)

// SatAdd credits sat satoshi to addr.
func SatAdd(st state.CoreState, addr common.Address, sat uint64) error {
	if err := addr.CheckVersion(); err != nil {
		return err
	}
	if sat == 0 {
		return fmt.Errorf("satoshi value cannot zore")
	}
	bls, _ := st.Balance(addr)
	v, err := bls.Satoshi.CheckedAdd(types.Fold64(sat))
	if err != nil {
		return err
	}
	bls.Satoshi = v
	st.SetBalance(addr, &bls)
	BlackholeEngulf(st, addr)
	return nil
}

// SatSub debits sat satoshi from addr.
func SatSub(st state.CoreState, addr common.Address, sat uint64) error {
	if err := addr.CheckVersion(); err != nil {
		return err
	}
	if sat == 0 {
		return fmt.Errorf("satoshi value cannot zore")
	}
	bls, _ := st.Balance(addr)
	if uint64(bls.Satoshi) < sat {
		return fmt.Errorf("address %s satoshi %d is insufficient, at least %d", addr.Readable(), bls.Satoshi, sat)
	}
	bls.Satoshi -= types.Fold64(sat)
	st.SetBalance(addr, &bls)
	return nil
}

// SatCheck verifies addr holds at least sat satoshi.
func SatCheck(st state.CoreState, addr common.Address, sat uint64) (uint64, error) {
	if err := addr.CheckVersion(); err != nil {
		return 0, err
	}
	if sat == 0 {
		return 0, fmt.Errorf("check satoshi is cannot empty")
	}
	if bls, ok := st.Balance(addr); ok && uint64(bls.Satoshi) >= sat {
		return uint64(bls.Satoshi), nil
	}
	return 0, fmt.Errorf("address %s satoshi is insufficient", addr.Readable())
}

// SatTransfer moves sat satoshi between two different addresses.
func SatTransfer(st state.CoreState, from, to common.Address, sat uint64) error {
	if from == to {
		return fmt.Errorf("cannot trs to self")
	}
	if err := SatSub(st, from, sat); err != nil {
		return err
	}
	return SatAdd(st, to, sat)
}
