package pow

import (
	"github.com/hacash/node/common"
	"github.com/hacash/node/core/types"
)

const (
	diamondHashChars    = "0WTYUIAHXVMEKBSZN"
	diamondNameChars    = "WTYUIAHXVMEKBSZN"
	diamondResultLen    = 16
	diamondResultPrefix = 10 // leading '0' chars of a valid result
	diamondMagic        = 13
)

// diffBits bounds the leading sha3 bytes of a mint as the diamond numbers
// grow, one more byte every 42000 diamonds.
var diffBits = [32]byte{
	128, 132, 136, 140, 144, 148, 152, 156,
	160, 164, 168, 172, 176, 180, 184, 188,
	192, 196, 200, 204, 208, 212, 216, 220,
	224, 228, 232, 236, 240, 244, 248, 252,
}

// DiamondHashRepeat is the mix round count of a diamond number, one more
// every 8192 diamonds.
func DiamondHashRepeat(number uint32) int {
	return int(number/8192 + 1)
}

// diamondResult maps a mixed hash onto the 17 char alphabet, two bytes per
// char.
func diamondResult(hx [32]byte) [diamondResultLen]byte {
	var res [diamondResultLen]byte
	idx := uint32(diamondMagic)
	for i := 0; i < diamondResultLen; i++ {
		num := idx * uint32(hx[i*2]) * uint32(hx[i*2+1])
		idx = num % uint32(len(diamondHashChars))
		res[i] = diamondHashChars[idx]
		if idx == 0 {
			idx = diamondMagic
		}
	}
	return res
}

// MineDiamond hashes one diamond mint attempt. It returns the sha3 of the
// stuff, the mixed hash and the 16 char result whose tail is the name.
func (h *Hasher) MineDiamond(number uint32, prev common.Hash, nonce [8]byte, addr common.Address, custom []byte) (common.Hash, common.Hash, [16]byte) {
	stuff := make([]byte, 0, 32+8+21+len(custom))
	stuff = append(stuff, prev[:]...)
	stuff = append(stuff, nonce[:]...)
	stuff = append(stuff, addr[:]...)
	stuff = append(stuff, custom...)
	sshash := sha3Sum(stuff)
	medium := mixRounds(DiamondHashRepeat(number), sshash)
	if h.config.PowMode == ModeFake {
		var res [diamondResultLen]byte
		for i := 0; i < diamondResultPrefix; i++ {
			res[i] = '0'
		}
		for i := diamondResultPrefix; i < diamondResultLen; i++ {
			res[i] = diamondNameChars[medium[i]%byte(len(diamondNameChars))]
		}
		return sshash, medium, res
	}
	return sshash, medium, diamondResult(medium)
}

// DiamondName extracts the six letter name of a valid result.
func (h *Hasher) DiamondName(res [16]byte) (types.DiamondName, bool) {
	var name types.DiamondName
	for i := 0; i < diamondResultPrefix; i++ {
		if res[i] != '0' {
			return name, false
		}
	}
	for i := diamondResultPrefix; i < diamondResultLen; i++ {
		if res[i] == '0' {
			return name, false
		}
	}
	copy(name[:], res[diamondResultPrefix:])
	return name, types.IsValidDiamondName(name[:])
}

// CheckDifficulty applies both difficulty steps of a diamond number to the
// sha3 hash and the mixed hash.
func (h *Hasher) CheckDifficulty(number uint32, sshash, medium common.Hash) bool {
	if h.config.PowMode == ModeFake {
		return true
	}
	loops := int(number / 42000)
	maxByte := 255 - byte(number/65536)
	for i := 0; i < common.HashLength; i++ {
		if i < loops && sshash[i] >= diffBits[i] {
			return false
		}
		if sshash[i] > maxByte {
			return false
		}
	}
	diffnum := int(number / 3277)
	for _, b := range medium {
		if diffnum < 255 {
			return int(b)+diffnum <= 255
		}
		if b != 0 {
			return false
		}
		diffnum -= 255
	}
	return false
}
