package types

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/hacash/node/common"
)

// Sign is a compressed public key and a 64 byte r||s signature.
type Sign struct {
	PubKey    Fixed33
	Signature Fixed64
}

func (s *Sign) Parse(buf []byte) (int, error) {
	n1, err := s.PubKey.Parse(buf)
	if err != nil {
		return 0, err
	}
	n2, err := s.Signature.Parse(buf[n1:])
	if err != nil {
		return 0, err
	}
	return n1 + n2, nil
}

func (s Sign) Serialize() []byte {
	return append(s.PubKey.Serialize(), s.Signature.Serialize()...)
}

func (s Sign) Size() int { return 33 + 64 }

// Address returns the private key address of the signer.
func (s Sign) Address() common.Address {
	return common.AddressFromPubKey(s.PubKey[:])
}

// Verify checks the signature of hash under the carried public key.
func (s Sign) Verify(hash common.Hash) bool {
	pub, err := secp256k1.ParsePubKey(s.PubKey[:])
	if err != nil {
		return false
	}
	var r, sv secp256k1.ModNScalar
	if overflow := r.SetByteSlice(s.Signature[:32]); overflow || r.IsZero() {
		return false
	}
	if overflow := sv.SetByteSlice(s.Signature[32:]); overflow || sv.IsZero() {
		return false
	}
	return ecdsa.NewSignature(&r, &sv).Verify(hash[:], pub)
}

// Account is a private key with its derived public key and address.
type Account struct {
	priv    *btcec.PrivateKey
	PubKey  Fixed33
	Address common.Address
}

// NewAccountFromSecret wraps a 32 byte private key.
func NewAccountFromSecret(secret []byte) (*Account, error) {
	if len(secret) != 32 {
		return nil, fmt.Errorf("private key length need 32 but got %d", len(secret))
	}
	priv, pub := btcec.PrivKeyFromBytes(secret)
	if priv.Key.IsZero() {
		return nil, fmt.Errorf("private key is zero")
	}
	acc := &Account{priv: priv}
	copy(acc.PubKey[:], pub.SerializeCompressed())
	acc.Address = common.AddressFromPubKey(acc.PubKey[:])
	return acc, nil
}

// NewAccountFromPassword derives the private key as sha256(password), the
// brain wallet scheme of the node's tooling.
func NewAccountFromPassword(pass string) *Account {
	sum := sha256.Sum256([]byte(pass))
	acc, err := NewAccountFromSecret(sum[:])
	if err != nil {
		panic(err)
	}
	return acc
}

// SignHash signs hash with the account key.
func (a *Account) SignHash(hash common.Hash) Sign {
	compact := ecdsa.SignCompact(a.priv, hash[:], true)
	s := Sign{PubKey: a.PubKey}
	copy(s.Signature[:], compact[1:])
	return s
}

// VerifyOneSign finds a signature of addr over hash among signs.
func VerifyOneSign(hash common.Hash, addr common.Address, signs []Sign) error {
	for _, s := range signs {
		if s.Address() == addr && s.Verify(hash) {
			return nil
		}
	}
	return fmt.Errorf("%s verify signature failed", addr.Readable())
}
