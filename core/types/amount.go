package types

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/hacash/node/params"
)

// ErrAmountOverflow is returned when a result no longer fits the 127 byte
// significand of an Amount.
var ErrAmountOverflow = errors.New("amount overflow")

const amountMaxDist = 127

var (
	bigTen  = big.NewInt(10)
	bigZero = big.NewInt(0)
)

// Amount is a decimal value significand * 10^unit. Dist is the signed length
// of the big-endian significand Byte, its sign is the sign of the value.
type Amount struct {
	Unit uint8
	Dist int8
	Byte []byte
}

// NewAmountSmall builds v:unit directly without normalization.
func NewAmountSmall(v uint8, unit uint8) Amount {
	return Amount{Unit: unit, Dist: 1, Byte: []byte{v}}
}

// NewAmountCoin builds v:unit and folds trailing decimal zeros into the unit.
func NewAmountCoin(v uint64, unit uint8) Amount {
	if v == 0 || unit == 0 {
		return Amount{}
	}
	for v%10 == 0 && unit < 255 {
		v /= 10
		unit++
	}
	b := new(big.Int).SetUint64(v).Bytes()
	return Amount{Unit: unit, Dist: int8(len(b)), Byte: b}
}

func NewAmountMei(v uint64) Amount { return NewAmountCoin(v, params.UnitMei) }
func NewAmountZhu(v uint64) Amount { return NewAmountCoin(v, params.UnitZhu) }

// AmountFromBig converts an integer count of base units.
func AmountFromBig(v *big.Int) (Amount, error) {
	if v.Sign() == 0 {
		return Amount{}, nil
	}
	sign := v.Sign()
	num := new(big.Int).Abs(v)
	unit := 0
	rem := new(big.Int)
	for unit < 255 {
		q, r := new(big.Int).QuoRem(num, bigTen, rem)
		if r.Sign() != 0 {
			break
		}
		num = q
		unit++
	}
	b := num.Bytes()
	if len(b) > amountMaxDist {
		return Amount{}, fmt.Errorf("%w: amount is too wide", ErrAmountOverflow)
	}
	dist := int8(len(b))
	if sign < 0 {
		dist = -dist
	}
	return Amount{Unit: uint8(unit), Dist: dist, Byte: b}, nil
}

func (a *Amount) Parse(buf []byte) (int, error) {
	if len(buf) < 2 {
		return 0, fmt.Errorf("%w: amount head", ErrBufTooShort)
	}
	unit, dist := buf[0], int8(buf[1])
	n := int(dist)
	if n < 0 {
		n = -n
	}
	if len(buf) < 2+n {
		return 0, fmt.Errorf("%w: amount need %d but got %d", ErrBufTooShort, 2+n, len(buf))
	}
	a.Unit = unit
	a.Dist = dist
	a.Byte = append([]byte(nil), buf[2:2+n]...)
	return 2 + n, nil
}

func (a Amount) Serialize() []byte {
	out := make([]byte, 0, a.Size())
	out = append(out, a.Unit, byte(a.Dist))
	return append(out, a.Byte...)
}

func (a Amount) Size() int { return 2 + a.tailLen() }

func (a Amount) tailLen() int {
	if a.Dist < 0 {
		return int(-a.Dist)
	}
	return int(a.Dist)
}

func allZero(b []byte) bool {
	for _, x := range b {
		if x != 0 {
			return false
		}
	}
	return true
}

func (a Amount) IsZero() bool     { return a.Unit == 0 || a.Dist == 0 || allZero(a.Byte) }
func (a Amount) IsPositive() bool { return a.Unit > 0 && a.Dist > 0 && !allZero(a.Byte) }
func (a Amount) IsNegative() bool { return a.Unit > 0 && a.Dist < 0 && !allZero(a.Byte) }

// Big returns the value in base units.
func (a Amount) Big() *big.Int {
	if a.IsZero() {
		return new(big.Int)
	}
	v := new(big.Int).SetBytes(a.Byte)
	v.Mul(v, new(big.Int).Exp(bigTen, big.NewInt(int64(a.Unit)), nil))
	if a.Dist < 0 {
		v.Neg(v)
	}
	return v
}

// Equal compares the canonical encodings; all zero forms are equal.
func (a Amount) Equal(o Amount) bool {
	if a.IsZero() && o.IsZero() {
		return true
	}
	return a.Unit == o.Unit && a.Dist == o.Dist && string(a.Byte) == string(o.Byte)
}

// Cmp compares the values and returns -1, 0 or 1.
func (a Amount) Cmp(o Amount) int {
	if a.Equal(o) {
		return 0
	}
	return a.Big().Cmp(o.Big())
}

func (a Amount) LessThan(o Amount) bool { return a.Cmp(o) < 0 }

// Add returns a+o.
func (a Amount) Add(o Amount) (Amount, error) {
	return AmountFromBig(new(big.Int).Add(a.Big(), o.Big()))
}

// Sub returns a-o.
func (a Amount) Sub(o Amount) (Amount, error) {
	return AmountFromBig(new(big.Int).Sub(a.Big(), o.Big()))
}

// UnitSub divides the value by 10^sub by lowering the unit.
func (a Amount) UnitSub(sub uint8) (Amount, error) {
	if sub >= a.Unit {
		return Amount{}, fmt.Errorf("unit_sub error: unit must big than %d", sub)
	}
	r := a.Clone()
	r.Unit -= sub
	return r, nil
}

// DistMul multiplies the significand by n keeping the unit.
func (a Amount) DistMul(n uint64) (Amount, error) {
	if a.IsZero() {
		return Amount{}, nil
	}
	if a.Dist < 0 {
		return Amount{}, errors.New("cannot dist_mul for negative")
	}
	v := new(big.Int).SetBytes(a.Byte)
	v.Mul(v, new(big.Int).SetUint64(n))
	v.Mul(v, new(big.Int).Exp(bigTen, big.NewInt(int64(a.Unit)), nil))
	return AmountFromBig(v)
}

// Compress cuts the significand to at most width bytes by dropping decimal
// digits. With grow set a dropped remainder rounds the result up.
func (a Amount) Compress(width int, grow bool) (Amount, error) {
	if width < 1 || width > amountMaxDist {
		return Amount{}, fmt.Errorf("amount compress width %d invalid", width)
	}
	if a.IsNegative() {
		return Amount{}, errors.New("cannot compress negative amount")
	}
	if a.IsZero() || a.tailLen() <= width {
		return a.Clone(), nil
	}
	num := new(big.Int).SetBytes(a.Byte)
	unit := int(a.Unit)
	dropped := false
	rem := new(big.Int)
	for len(num.Bytes()) > width {
		if unit >= 255 {
			return Amount{}, fmt.Errorf("%w: compress unit", ErrAmountOverflow)
		}
		num.QuoRem(num, bigTen, rem)
		if rem.Sign() != 0 {
			dropped = true
		}
		unit++
	}
	if grow && dropped {
		num.Add(num, big.NewInt(1))
		if len(num.Bytes()) > width {
			num.Quo(num, bigTen)
			num.Add(num, big.NewInt(1))
			unit++
		}
	}
	b := num.Bytes()
	return Amount{Unit: uint8(unit), Dist: int8(len(b)), Byte: b}, nil
}

// ToUnitUint64 floors the value to a count of 10^base units.
func (a Amount) ToUnitUint64(base uint8) (uint64, bool) {
	if a.IsNegative() {
		return 0, false
	}
	if a.IsZero() {
		return 0, true
	}
	v := a.Big()
	v.Quo(v, new(big.Int).Exp(bigTen, big.NewInt(int64(base)), nil))
	if !v.IsUint64() {
		return 0, false
	}
	return v.Uint64(), true
}

// To238Uint64 is the fee purity base, the count of 10^238 units.
func (a Amount) To238Uint64() uint64 {
	v, _ := a.ToUnitUint64(238)
	return v
}

func (a Amount) ToZhuUint64() (uint64, bool) { return a.ToUnitUint64(params.UnitZhu) }
func (a Amount) ToMeiUint64() (uint64, bool) { return a.ToUnitUint64(params.UnitMei) }

// Clone returns a deep copy.
func (a Amount) Clone() Amount {
	return Amount{Unit: a.Unit, Dist: a.Dist, Byte: append([]byte(nil), a.Byte...)}
}

// String renders the finance form N:U, for example 12:244.
func (a Amount) String() string {
	if a.IsZero() {
		return "0:0"
	}
	sign := ""
	if a.Dist < 0 {
		sign = "-"
	}
	return sign + new(big.Int).SetBytes(a.Byte).String() + ":" + strconv.Itoa(int(a.Unit))
}

// MeiString renders the value as a decimal count of mei.
func (a Amount) MeiString() string {
	if a.IsZero() {
		return "0"
	}
	r := new(big.Rat).SetInt(a.Big())
	r.Quo(r, new(big.Rat).SetInt(new(big.Int).Exp(bigTen, big.NewInt(int64(params.UnitMei)), nil)))
	s := r.FloatString(8)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s
}

// ParseAmount accepts the finance form N:U or a decimal count of mei.
func ParseAmount(s string) (Amount, error) {
	s = strings.NewReplacer(",", "", " ", "", "\n", "").Replace(s)
	if s == "" {
		return Amount{}, errors.New("amount empty")
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		u, err := strconv.ParseUint(s[i+1:], 10, 8)
		if err != nil {
			return Amount{}, fmt.Errorf("amount unit from '%s' format error or overflow", s)
		}
		n, ok := new(big.Int).SetString(s[:i], 10)
		if !ok {
			return Amount{}, fmt.Errorf("amount value from '%s' format error or overflow", s)
		}
		if n.Sign() == 0 || u == 0 {
			return Amount{}, nil
		}
		n.Mul(n, new(big.Int).Exp(bigTen, big.NewInt(int64(u)), nil))
		return AmountFromBig(n)
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intp, frac, _ := strings.Cut(s, ".")
	frac = strings.TrimRight(frac, "0")
	if len(frac) > int(params.UnitMei) {
		return Amount{}, fmt.Errorf("amount value from '%s' format error or overflow", s)
	}
	n, ok := new(big.Int).SetString(intp+frac, 10)
	if !ok {
		return Amount{}, fmt.Errorf("amount value from '%s' format error or overflow", s)
	}
	if neg {
		n.Neg(n)
	}
	n.Mul(n, new(big.Int).Exp(bigTen, big.NewInt(int64(int(params.UnitMei)-len(frac))), nil))
	return AmountFromBig(n)
}

// MustParseAmount is ParseAmount for constants.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) MarshalJSON() ([]byte, error) { return quote(a.String()), nil }

func (a *Amount) UnmarshalJSON(input []byte) error {
	s, err := unquote(input)
	if err != nil {
		return err
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Sign helpers used by the json api.
func (a Amount) Sign() int {
	return a.Big().Cmp(bigZero)
}
