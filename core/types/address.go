package types

import (
	"fmt"

	"github.com/hacash/node/common"
)

// AddrPtrDivider separates literal addresses from table pointers in an
// AddrOrPtr: a first byte below it is an address version, a byte at or above
// it is a pointer to index byte-AddrPtrDivider of the tx address table.
const AddrPtrDivider = 10

// AddressListW1 is a count prefixed address list.
type AddressListW1 = ListW1[common.Address, *common.Address]

// AddrOrPtr is either a literal address or a pointer into the
// per-transaction address table.
type AddrOrPtr struct {
	addr  common.Address
	ptr   uint8
	isPtr bool
}

// AddrOrPtrFromAddress wraps a literal address.
func AddrOrPtrFromAddress(a common.Address) AddrOrPtr {
	return AddrOrPtr{addr: a}
}

// AddrOrPtrFromIndex points at entry idx of the address table.
func AddrOrPtrFromIndex(idx uint8) (AddrOrPtr, error) {
	if int(idx)+AddrPtrDivider > 255 {
		return AddrOrPtr{}, fmt.Errorf("addr ptr index %d overflow", idx)
	}
	return AddrOrPtr{ptr: idx, isPtr: true}, nil
}

func (a AddrOrPtr) IsPtr() bool { return a.isPtr }

// Real resolves the address against the tx address table.
func (a AddrOrPtr) Real(addrs []common.Address) (common.Address, error) {
	if !a.isPtr {
		return a.addr, nil
	}
	if int(a.ptr) >= len(addrs) {
		return common.Address{}, fmt.Errorf("addr ptr index overflow")
	}
	return addrs[a.ptr], nil
}

func (a *AddrOrPtr) Parse(buf []byte) (int, error) {
	if len(buf) < 1 {
		return 0, ErrBufTooShort
	}
	if buf[0] < AddrPtrDivider {
		a.isPtr = false
		return a.addr.Parse(buf)
	}
	a.isPtr = true
	a.ptr = buf[0] - AddrPtrDivider
	return 1, nil
}

func (a AddrOrPtr) Serialize() []byte {
	if a.isPtr {
		return []byte{a.ptr + AddrPtrDivider}
	}
	return a.addr.Serialize()
}

func (a AddrOrPtr) Size() int {
	if a.isPtr {
		return 1
	}
	return common.AddressLength
}

func (a AddrOrPtr) MarshalJSON() ([]byte, error) {
	if a.isPtr {
		return quote(fmt.Sprintf("$%d", a.ptr)), nil
	}
	return quote(a.addr.Readable()), nil
}

func (a *AddrOrPtr) UnmarshalJSON(input []byte) error {
	s, err := unquote(input)
	if err != nil {
		return err
	}
	if len(s) > 1 && s[0] == '$' {
		var idx uint8
		if _, err := fmt.Sscanf(s[1:], "%d", &idx); err != nil {
			return err
		}
		v, err := AddrOrPtrFromIndex(idx)
		if err != nil {
			return err
		}
		*a = v
		return nil
	}
	addr, err := common.ParseAddress(s)
	if err != nil {
		return err
	}
	*a = AddrOrPtrFromAddress(addr)
	return nil
}

func (a AddrOrPtr) String() string {
	if a.isPtr {
		return fmt.Sprintf("$%d", a.ptr)
	}
	return a.addr.Readable()
}
