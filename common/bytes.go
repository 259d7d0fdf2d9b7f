package common

import (
	"errors"
	"fmt"
)

// ErrBufTooShort is returned by every codec when the input ends before the
// value is complete.
var ErrBufTooShort = errors.New("buf too short")

// BufTooShort reports a short buffer with the expected and actual lengths.
func BufTooShort(need, got int) error {
	return fmt.Errorf("%w: need %d but got %d", ErrBufTooShort, need, got)
}

// Parse reads a hash from the front of buf.
func (h *Hash) Parse(buf []byte) (int, error) {
	if len(buf) < HashLength {
		return 0, BufTooShort(HashLength, len(buf))
	}
	copy(h[:], buf[:HashLength])
	return HashLength, nil
}

func (h Hash) Serialize() []byte { return append([]byte(nil), h[:]...) }

func (h Hash) Size() int { return HashLength }

// Parse reads an address from the front of buf.
func (a *Address) Parse(buf []byte) (int, error) {
	if len(buf) < AddressLength {
		return 0, BufTooShort(AddressLength, len(buf))
	}
	copy(a[:], buf[:AddressLength])
	return AddressLength, nil
}

func (a Address) Serialize() []byte { return append([]byte(nil), a[:]...) }

func (a Address) Size() int { return AddressLength }

// CopyBytes returns an exact copy of the provided bytes.
func CopyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// LeftPadBytes zero-pads slice to the left up to length l.
func LeftPadBytes(slice []byte, l int) []byte {
	if l <= len(slice) {
		return slice
	}
	padded := make([]byte, l)
	copy(padded[l-len(slice):], slice)
	return padded
}

// TrimLeftZeroes returns a subslice of s without leading zeroes.
func TrimLeftZeroes(s []byte) []byte {
	idx := 0
	for ; idx < len(s); idx++ {
		if s[idx] != 0 {
			break
		}
	}
	return s[idx:]
}

// AllZero reports whether every byte of b is zero.
func AllZero(b []byte) bool {
	for _, x := range b {
		if x != 0 {
			return false
		}
	}
	return true
}
