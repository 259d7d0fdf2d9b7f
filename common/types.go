// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package common

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// Lengths of hashes and addresses in bytes.
const (
	// HashLength is the expected length of the hash
	HashLength = 32
	// AddressLength is the expected length of the address, version byte included
	AddressLength = 21
)

// Hash represents a 32 byte sha3 or PoW hash of arbitrary data.
type Hash [HashLength]byte

// BytesToHash sets b to hash.
// If b is larger than len(h), b will be cropped from the left.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// BigToHash sets byte representation of b to hash.
func BigToHash(b *big.Int) Hash { return BytesToHash(b.Bytes()) }

// HexToHash parses a hex string with or without 0x prefix.
func HexToHash(s string) (Hash, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return Hash{}, err
	}
	if len(b) != HashLength {
		return Hash{}, fmt.Errorf("hash length need %d but got %d", HashLength, len(b))
	}
	return BytesToHash(b), nil
}

// Bytes gets the byte representation of the underlying hash.
func (h Hash) Bytes() []byte { return h[:] }

// Big converts a hash to a big integer.
func (h Hash) Big() *big.Int { return new(big.Int).SetBytes(h[:]) }

// Hex converts a hash to a lowercase hex string without prefix, as
// used by the json api and the logs.
func (h Hash) Hex() string { return hex.EncodeToString(h[:]) }

// TerminalString implements log.TerminalStringer, formatting a string for console
// output during logging.
func (h Hash) TerminalString() string {
	return fmt.Sprintf("%x..%x", h[:3], h[29:])
}

// String implements the stringer interface.
func (h Hash) String() string {
	return h.Hex()
}

// IsZero reports whether every byte of the hash is zero.
func (h Hash) IsZero() bool { return h == Hash{} }

// Equal compares two hashes.
func (h Hash) Equal(o Hash) bool { return bytes.Equal(h[:], o[:]) }

// Half returns the first 16 bytes.
func (h Hash) Half() [16]byte {
	var r [16]byte
	copy(r[:], h[:16])
	return r
}

// Nonce returns the first 8 bytes.
func (h Hash) Nonce() [8]byte {
	var r [8]byte
	copy(r[:], h[:8])
	return r
}

// Check returns the first 4 bytes.
func (h Hash) Check() [4]byte {
	var r [4]byte
	copy(r[:], h[:4])
	return r
}

// Mark returns the first 2 bytes.
func (h Hash) Mark() [2]byte {
	var r [2]byte
	copy(r[:], h[:2])
	return r
}

// Increase adds one to the hash read as a big-endian number, wrapping on
// overflow. Miners use it to walk the nonce space of the coinbase extend.
func (h Hash) Increase() Hash {
	r := h
	for i := HashLength - 1; i >= 0; i-- {
		r[i]++
		if r[i] != 0 {
			break
		}
	}
	return r
}

// SetBytes sets the hash to the value of b.
// If b is larger than len(h), b will be cropped from the left.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > len(h) {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// MarshalText returns the hex representation of h.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText parses a hash in hex syntax.
func (h *Hash) UnmarshalText(input []byte) error {
	v, err := HexToHash(string(input))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// Hashes is a slice of hashes with a membership helper.
type Hashes []Hash

// Contains reports whether x is part of the slice.
func (hs Hashes) Contains(x Hash) bool {
	for _, h := range hs {
		if h == x {
			return true
		}
	}
	return false
}
