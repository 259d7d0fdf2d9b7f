package types

import (
	"fmt"
	"math"
)

// Fixed length byte arrays. Hash (32) and Address (21) live in common.
type (
	Fixed1  [1]byte
	Fixed2  [2]byte
	Fixed3  [3]byte
	Fixed4  [4]byte
	Fixed6  [6]byte
	Fixed8  [8]byte
	Fixed10 [10]byte
	Fixed16 [16]byte
	Fixed33 [33]byte
	Fixed64 [64]byte
)

func parseFixed(dst []byte, buf []byte) (int, error) {
	if len(buf) < len(dst) {
		return 0, fmt.Errorf("%w: fixed%d need %d but got %d", ErrBufTooShort, len(dst), len(dst), len(buf))
	}
	copy(dst, buf)
	return len(dst), nil
}

func (f *Fixed1) Parse(buf []byte) (int, error)  { return parseFixed(f[:], buf) }
func (f *Fixed2) Parse(buf []byte) (int, error)  { return parseFixed(f[:], buf) }
func (f *Fixed3) Parse(buf []byte) (int, error)  { return parseFixed(f[:], buf) }
func (f *Fixed4) Parse(buf []byte) (int, error)  { return parseFixed(f[:], buf) }
func (f *Fixed6) Parse(buf []byte) (int, error)  { return parseFixed(f[:], buf) }
func (f *Fixed8) Parse(buf []byte) (int, error)  { return parseFixed(f[:], buf) }
func (f *Fixed10) Parse(buf []byte) (int, error) { return parseFixed(f[:], buf) }
func (f *Fixed16) Parse(buf []byte) (int, error) { return parseFixed(f[:], buf) }
func (f *Fixed33) Parse(buf []byte) (int, error) { return parseFixed(f[:], buf) }
func (f *Fixed64) Parse(buf []byte) (int, error) { return parseFixed(f[:], buf) }

func (f Fixed1) Serialize() []byte  { return append([]byte(nil), f[:]...) }
func (f Fixed2) Serialize() []byte  { return append([]byte(nil), f[:]...) }
func (f Fixed3) Serialize() []byte  { return append([]byte(nil), f[:]...) }
func (f Fixed4) Serialize() []byte  { return append([]byte(nil), f[:]...) }
func (f Fixed6) Serialize() []byte  { return append([]byte(nil), f[:]...) }
func (f Fixed8) Serialize() []byte  { return append([]byte(nil), f[:]...) }
func (f Fixed10) Serialize() []byte { return append([]byte(nil), f[:]...) }
func (f Fixed16) Serialize() []byte { return append([]byte(nil), f[:]...) }
func (f Fixed33) Serialize() []byte { return append([]byte(nil), f[:]...) }
func (f Fixed64) Serialize() []byte { return append([]byte(nil), f[:]...) }

func (f Fixed1) Size() int  { return len(f) }
func (f Fixed2) Size() int  { return len(f) }
func (f Fixed3) Size() int  { return len(f) }
func (f Fixed4) Size() int  { return len(f) }
func (f Fixed6) Size() int  { return len(f) }
func (f Fixed8) Size() int  { return len(f) }
func (f Fixed10) Size() int { return len(f) }
func (f Fixed16) Size() int { return len(f) }
func (f Fixed33) Size() int { return len(f) }
func (f Fixed64) Size() int { return len(f) }

// ToJSONFmt renders the bytes as a json string in format bf.
func (f Fixed16) ToJSONFmt(bf BinaryFormat) []byte { return quote(EncodeBinary(f[:], bf)) }
func (f Fixed33) ToJSONFmt(bf BinaryFormat) []byte { return quote(EncodeBinary(f[:], bf)) }
func (f Fixed64) ToJSONFmt(bf BinaryFormat) []byte { return quote(EncodeBinary(f[:], bf)) }

func (f Fixed16) MarshalJSON() ([]byte, error) { return f.ToJSONFmt(FormatHex), nil }
func (f Fixed33) MarshalJSON() ([]byte, error) { return f.ToJSONFmt(FormatHex), nil }
func (f Fixed64) MarshalJSON() ([]byte, error) { return f.ToJSONFmt(FormatHex), nil }

func (f *Fixed16) UnmarshalJSON(input []byte) error { return unmarshalFixed(f[:], input) }
func (f *Fixed33) UnmarshalJSON(input []byte) error { return unmarshalFixed(f[:], input) }
func (f *Fixed64) UnmarshalJSON(input []byte) error { return unmarshalFixed(f[:], input) }

func unmarshalFixed(dst []byte, input []byte) error {
	s, err := unquote(input)
	if err != nil {
		return err
	}
	b, err := DecodeBinary(s)
	if err != nil {
		return err
	}
	if len(b) != len(dst) {
		return fmt.Errorf("fixed%d got %d bytes", len(dst), len(b))
	}
	copy(dst, b)
	return nil
}

// Length prefixed byte strings, with a 1, 2 or 4 byte count.
type (
	BytesW1 []byte
	BytesW2 []byte
	BytesW4 []byte
)

func parseBytesW(buf []byte, width int) ([]byte, int, error) {
	n, err := readUint(buf, width)
	if err != nil {
		return nil, 0, err
	}
	end := width + int(n)
	if len(buf) < end {
		return nil, 0, fmt.Errorf("%w: bytes need %d but got %d", ErrBufTooShort, end, len(buf))
	}
	return append([]byte(nil), buf[width:end]...), end, nil
}

func serializeBytesW(b []byte, width int) []byte {
	out := writeUint(uint64(len(b)), width)
	return append(out, b...)
}

func (b *BytesW1) Parse(buf []byte) (int, error) {
	v, n, err := parseBytesW(buf, 1)
	*b = v
	return n, err
}
func (b BytesW1) Serialize() []byte { return serializeBytesW(b, 1) }
func (b BytesW1) Size() int         { return 1 + len(b) }

// Check enforces the width bound before serialization.
func (b BytesW1) Check() error {
	if len(b) > math.MaxUint8 {
		return fmt.Errorf("%w: BytesW1 length %d", ErrSizeOverflow, len(b))
	}
	return nil
}

func (b *BytesW2) Parse(buf []byte) (int, error) {
	v, n, err := parseBytesW(buf, 2)
	*b = v
	return n, err
}
func (b BytesW2) Serialize() []byte { return serializeBytesW(b, 2) }
func (b BytesW2) Size() int         { return 2 + len(b) }

func (b BytesW2) Check() error {
	if len(b) > math.MaxUint16 {
		return fmt.Errorf("%w: BytesW2 length %d", ErrSizeOverflow, len(b))
	}
	return nil
}

func (b *BytesW4) Parse(buf []byte) (int, error) {
	v, n, err := parseBytesW(buf, 4)
	*b = v
	return n, err
}
func (b BytesW4) Serialize() []byte { return serializeBytesW(b, 4) }
func (b BytesW4) Size() int         { return 4 + len(b) }

func (b BytesW1) ToJSONFmt(bf BinaryFormat) []byte { return quote(EncodeBinary(b, bf)) }
func (b BytesW2) ToJSONFmt(bf BinaryFormat) []byte { return quote(EncodeBinary(b, bf)) }
func (b BytesW4) ToJSONFmt(bf BinaryFormat) []byte { return quote(EncodeBinary(b, bf)) }

func (b BytesW1) MarshalJSON() ([]byte, error) { return b.ToJSONFmt(FormatHex), nil }
func (b BytesW2) MarshalJSON() ([]byte, error) { return b.ToJSONFmt(FormatHex), nil }
func (b BytesW4) MarshalJSON() ([]byte, error) { return b.ToJSONFmt(FormatHex), nil }

func (b *BytesW1) UnmarshalJSON(input []byte) error { return unmarshalBytes((*[]byte)(b), input) }
func (b *BytesW2) UnmarshalJSON(input []byte) error { return unmarshalBytes((*[]byte)(b), input) }
func (b *BytesW4) UnmarshalJSON(input []byte) error { return unmarshalBytes((*[]byte)(b), input) }

func unmarshalBytes(dst *[]byte, input []byte) error {
	s, err := unquote(input)
	if err != nil {
		return err
	}
	b, err := DecodeBinary(s)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}
