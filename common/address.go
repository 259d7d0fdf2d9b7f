package common

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"
)

// Address versions. The version is the first byte of every address and also
// decides the leading symbol of the readable base58check form.
const (
	AddrVersionPrivakey byte = 0 // leading symbol: 1
	AddrVersionContract byte = 1 // leading symbol: Q-Z, a-k, m-o
	AddrVersionMultisig byte = 5 // leading symbol: 3
)

var (
	ErrAddressChecksum = errors.New("base58check error")
	ErrAddressLength   = errors.New("address length error")

	// ZeroAddress is the blackhole. Every credit to it is engulfed.
	ZeroAddress = Address{}
)

// Address is a version byte followed by the hash160 of a public key, a
// multisig script or a contract.
type Address [AddressLength]byte

// AddressFromPubKey builds a private key address from a compressed public key.
func AddressFromPubKey(pub []byte) Address {
	sh := sha256.Sum256(pub)
	rh := ripemd160.New()
	rh.Write(sh[:])
	var a Address
	a[0] = AddrVersionPrivakey
	copy(a[1:], rh.Sum(nil))
	return a
}

// Base58CheckEncode appends the double sha256 checksum to b and encodes it.
// The first byte of b is the version.
func Base58CheckEncode(b []byte) string {
	chk := checksum(b)
	buf := make([]byte, 0, len(b)+4)
	buf = append(buf, b...)
	buf = append(buf, chk[:]...)
	return base58.Encode(buf)
}

// Base58CheckDecode decodes s and strips its checksum. The version byte is
// kept at the front of the result.
func Base58CheckDecode(s string) ([]byte, error) {
	raw, err := base58.Decode(s)
	if err != nil || len(raw) < 5 {
		return nil, ErrAddressChecksum
	}
	body, sum := raw[:len(raw)-4], raw[len(raw)-4:]
	chk := checksum(body)
	if string(chk[:]) != string(sum) {
		return nil, ErrAddressChecksum
	}
	return body, nil
}

// ParseAddress decodes the readable base58check form.
func ParseAddress(s string) (Address, error) {
	body, err := Base58CheckDecode(s)
	if err != nil {
		return Address{}, err
	}
	if len(body) != AddressLength {
		return Address{}, ErrAddressLength
	}
	var a Address
	copy(a[:], body)
	if err := a.CheckVersion(); err != nil {
		return Address{}, err
	}
	return a, nil
}

// MustParseAddress is ParseAddress for compiled-in constants.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(fmt.Sprintf("invalid address %s: %v", s, err))
	}
	return a
}

func checksum(b []byte) [4]byte {
	h1 := sha256.Sum256(b)
	h2 := sha256.Sum256(h1[:])
	var r [4]byte
	copy(r[:], h2[:4])
	return r
}

// Readable returns the base58check form.
func (a Address) Readable() string {
	return Base58CheckEncode(a[:])
}

func (a Address) String() string { return a.Readable() }

func (a Address) Version() byte { return a[0] }

func (a Address) Bytes() []byte { return a[:] }

// CheckVersion rejects unknown address versions.
func (a Address) CheckVersion() error {
	switch a[0] {
	case AddrVersionPrivakey, AddrVersionContract, AddrVersionMultisig:
		return nil
	}
	return fmt.Errorf("address version %d not support", a[0])
}

func (a Address) IsPrivakey() bool { return a[0] == AddrVersionPrivakey }
func (a Address) IsContract() bool { return a[0] == AddrVersionContract }
func (a Address) IsMultisig() bool { return a[0] == AddrVersionMultisig }

// MustPrivakey fails unless the address belongs to a private key.
func (a Address) MustPrivakey() error {
	if !a.IsPrivakey() {
		return fmt.Errorf("address %s is not PRIVAKEY type", a.Readable())
	}
	return nil
}

// IsZero reports whether a is the blackhole address.
func (a Address) IsZero() bool { return a == ZeroAddress }

// MarshalText encodes the address in readable form.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Readable()), nil
}

// UnmarshalText decodes the readable form.
func (a *Address) UnmarshalText(input []byte) error {
	v, err := ParseAddress(string(input))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
