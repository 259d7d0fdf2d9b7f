package types

import (
	"fmt"
)

// Fixed-width big-endian unsigned integers.
type (
	Uint1 uint8
	Uint2 uint16
	Uint3 uint32
	Uint4 uint32
	Uint5 uint64
	Uint8 uint64
)

// Well known aliases.
type (
	BlockHeight = Uint5
	Timestamp   = Uint5
)

func readUint(buf []byte, width int) (uint64, error) {
	if len(buf) < width {
		return 0, fmt.Errorf("%w: uint%d need %d but got %d", ErrBufTooShort, width, width, len(buf))
	}
	var v uint64
	for i := 0; i < width; i++ {
		v = v<<8 | uint64(buf[i])
	}
	return v, nil
}

func writeUint(v uint64, width int) []byte {
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

func (u *Uint1) Parse(buf []byte) (int, error) {
	v, err := readUint(buf, 1)
	*u = Uint1(v)
	return 1, err
}
func (u Uint1) Serialize() []byte { return []byte{byte(u)} }
func (u Uint1) Size() int         { return 1 }
func (u Uint1) Uint() uint64      { return uint64(u) }

func (u *Uint2) Parse(buf []byte) (int, error) {
	v, err := readUint(buf, 2)
	*u = Uint2(v)
	return 2, err
}
func (u Uint2) Serialize() []byte { return writeUint(uint64(u), 2) }
func (u Uint2) Size() int         { return 2 }
func (u Uint2) Uint() uint64      { return uint64(u) }

func (u *Uint3) Parse(buf []byte) (int, error) {
	v, err := readUint(buf, 3)
	*u = Uint3(v)
	return 3, err
}
func (u Uint3) Serialize() []byte { return writeUint(uint64(u), 3) }
func (u Uint3) Size() int         { return 3 }
func (u Uint3) Uint() uint64      { return uint64(u) }

func (u *Uint4) Parse(buf []byte) (int, error) {
	v, err := readUint(buf, 4)
	*u = Uint4(v)
	return 4, err
}
func (u Uint4) Serialize() []byte { return writeUint(uint64(u), 4) }
func (u Uint4) Size() int         { return 4 }
func (u Uint4) Uint() uint64      { return uint64(u) }

func (u *Uint5) Parse(buf []byte) (int, error) {
	v, err := readUint(buf, 5)
	*u = Uint5(v)
	return 5, err
}
func (u Uint5) Serialize() []byte { return writeUint(uint64(u), 5) }
func (u Uint5) Size() int         { return 5 }
func (u Uint5) Uint() uint64      { return uint64(u) }

func (u *Uint8) Parse(buf []byte) (int, error) {
	v, err := readUint(buf, 8)
	*u = Uint8(v)
	return 8, err
}
func (u Uint8) Serialize() []byte { return writeUint(uint64(u), 8) }
func (u Uint8) Size() int         { return 8 }
func (u Uint8) Uint() uint64      { return uint64(u) }
