package types

import (
	"fmt"
	"math/bits"
	"strconv"
)

// Fold64Max is the largest value a Fold64 can hold: 5 value bits in the head
// byte plus 7 tail bytes.
const Fold64Max uint64 = 1<<61 - 1

// Fold64 is a variable width unsigned integer. The top 3 bits of the first
// byte hold the number of extra bytes that follow; the value is the remaining
// 5 bits followed by those bytes, big-endian. Only the shortest form parses.
type Fold64 uint64

// NewFold64 checks the range of v.
func NewFold64(v uint64) (Fold64, error) {
	if v > Fold64Max {
		return 0, fmt.Errorf("Fold64 value %d overflow max %d", v, Fold64Max)
	}
	return Fold64(v), nil
}

func (f *Fold64) Parse(buf []byte) (int, error) {
	if len(buf) < 1 {
		return 0, ErrBufTooShort
	}
	n := int(buf[0] >> 5)
	if len(buf) < 1+n {
		return 0, fmt.Errorf("%w: Fold64 parse length %d < %d", ErrBufTooShort, len(buf), 1+n)
	}
	v := uint64(buf[0] & 0x1f)
	for i := 0; i < n; i++ {
		v = v<<8 | uint64(buf[1+i])
	}
	if v > Fold64Max {
		return 0, fmt.Errorf("Fold64 value %d overflow max %d", v, Fold64Max)
	}
	if expect := Fold64(v).Size(); expect != 1+n {
		return 0, fmt.Errorf("Fold64 non-canonical size %d expect %d", 1+n, expect)
	}
	*f = Fold64(v)
	return 1 + n, nil
}

func (f Fold64) Serialize() []byte {
	if uint64(f) > Fold64Max {
		panic("Fold64 value overflow")
	}
	sz := f.Size()
	out := writeUint(uint64(f), sz)
	out[0] = out[0]&0x1f | byte(sz-1)<<5
	return out
}

func (f Fold64) Size() int {
	v := uint64(f)
	if v < 32 {
		return 1
	}
	extra := bits.Len64(v) - 5
	return 1 + (extra+7)/8
}

func (f Fold64) Uint() uint64 { return uint64(f) }

func (f Fold64) String() string { return strconv.FormatUint(uint64(f), 10) }

// CheckedAdd returns f+o or an error when the sum leaves the Fold64 range.
func (f Fold64) CheckedAdd(o Fold64) (Fold64, error) {
	s, carry := bits.Add64(uint64(f), uint64(o), 0)
	if carry != 0 || s > Fold64Max {
		return 0, fmt.Errorf("Fold64 add %d + %d overflow", f, o)
	}
	return Fold64(s), nil
}

// CheckedSub returns f-o or an error when o > f.
func (f Fold64) CheckedSub(o Fold64) (Fold64, error) {
	if o > f {
		return 0, fmt.Errorf("Fold64 sub %d - %d underflow", f, o)
	}
	return f - o, nil
}
