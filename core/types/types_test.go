package types

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacash/node/common"
)

func TestAmountForms(t *testing.T) {
	tests := []struct {
		in   string
		fin  string
		mei  string
		wire []byte
	}{
		{"1:248", "1:248", "1", []byte{248, 1, 1}},
		{"12.5", "125:247", "12.5", []byte{247, 1, 125}},
		{"100:248", "1:250", "100", []byte{250, 1, 1}},
		{"256:248", "256:248", "256", []byte{248, 2, 1, 0}},
		{"0:248", "0:0", "0", []byte{0, 0}},
	}
	for _, tt := range tests {
		a, err := ParseAmount(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.fin, a.String(), tt.in)
		assert.Equal(t, tt.mei, a.MeiString(), tt.in)
		assert.Equal(t, tt.wire, a.Serialize(), tt.in)

		back, n, err := Create[Amount](tt.wire)
		require.NoError(t, err)
		assert.Equal(t, len(tt.wire), n)
		assert.True(t, back.Equal(a), tt.in)
	}

	_, err := ParseAmount("1:abc")
	assert.Error(t, err)
	_, err = ParseAmount("")
	assert.Error(t, err)
}

func TestAmountArithmetic(t *testing.T) {
	one := NewAmountMei(1)
	two, err := one.Add(one)
	require.NoError(t, err)
	assert.Equal(t, "2:248", two.String())

	neg, err := one.Sub(two)
	require.NoError(t, err)
	assert.True(t, neg.IsNegative())
	assert.Equal(t, "-1:248", neg.String())
	assert.True(t, neg.LessThan(one))
	assert.Equal(t, -1, neg.Sign())

	zhu := NewAmountZhu(100000000)
	assert.True(t, zhu.Equal(one))
	v, ok := one.ToZhuUint64()
	assert.True(t, ok)
	assert.Equal(t, uint64(100000000), v)

	_, err = NewAmountSmall(1, 2).UnitSub(2)
	assert.Error(t, err)
}

func TestFold64(t *testing.T) {
	tests := []struct {
		v    uint64
		wire []byte
	}{
		{0, []byte{0x00}},
		{31, []byte{0x1f}},
		{32, []byte{0x20, 0x20}},
		{0x1fff, []byte{0x3f, 0xff}},
		{0x2000, []byte{0x40, 0x20, 0x00}},
	}
	for _, tt := range tests {
		f, err := NewFold64(tt.v)
		require.NoError(t, err)
		assert.Equal(t, tt.wire, f.Serialize(), "value %d", tt.v)
		assert.Equal(t, len(tt.wire), f.Size())

		var back Fold64
		require.NoError(t, ParseAll(&back, tt.wire))
		assert.Equal(t, f, back)
	}

	// value 5 in two bytes is not the shortest form
	var f Fold64
	_, err := f.Parse([]byte{0x20, 0x05})
	assert.Error(t, err)

	_, err = NewFold64(Fold64Max + 1)
	assert.Error(t, err)
	_, err = Fold64(Fold64Max).CheckedAdd(1)
	assert.Error(t, err)
	_, err = Fold64(1).CheckedSub(2)
	assert.Error(t, err)
}

func TestFold64Fuzz(t *testing.T) {
	fz := fuzz.NewWithSeed(7)
	for i := 0; i < 500; i++ {
		var v uint64
		fz.Fuzz(&v)
		f := Fold64(v & Fold64Max)
		var back Fold64
		require.NoError(t, ParseAll(&back, f.Serialize()))
		assert.Equal(t, f, back)
	}
}

func TestDiamondNames(t *testing.T) {
	l, err := DiamondNameListFromString("WTYUIA, HXVMEK")
	require.NoError(t, err)
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, "WTYUIA,HXVMEK", l.Readable())

	_, err = DiamondNameListFromString("WTYUIAWTYUIA")
	assert.Error(t, err)
	_, err = DiamondNameListFromString("WTYUI")
	assert.Error(t, err)
	_, err = DiamondNameFromString("ABCDEF")
	assert.Error(t, err)
}

func newCoinbaseBlock(t *testing.T, reg *ActionRegistry, miner common.Address) *Block {
	t.Helper()
	blk := NewBlock(reg)
	blk.Height = 1
	blk.Timestamp = 1600000000
	cb := &CoinbaseTx{
		Address: miner,
		Reward:  NewAmountMei(1),
		Extend:  Some[CoinbaseExtend](CoinbaseExtend{}),
	}
	copy(cb.Message[:], "types")
	require.NoError(t, blk.PushTx(cb))
	blk.UpdateMrklRoot()
	return blk
}

func TestBlockCodec(t *testing.T) {
	reg, err := NewActionRegistry()
	require.NoError(t, err)
	acc := NewAccountFromPassword("types")
	blk := newCoinbaseBlock(t, reg, acc.Address)

	data := blk.Serialize()
	assert.Len(t, data, blk.Size())
	back, n, err := ParseBlock(reg, data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, data, back.Serialize())

	cb, err := back.Coinbase()
	require.NoError(t, err)
	assert.Equal(t, acc.Address, cb.Address)
	assert.True(t, cb.Extend.IsSome())
	// a single tx is its own root
	assert.Equal(t, cb.HashWithFee(), back.MrklRoot)

	_, _, err = ParseBlock(reg, data[:len(data)-1])
	assert.Error(t, err)
	data[0] = 2
	_, _, err = ParseBlock(reg, data)
	assert.Error(t, err)
}

func TestMrklRoot(t *testing.T) {
	a, b, c := common.Hash{1}, common.Hash{2}, common.Hash{3}
	assert.Equal(t, common.Hash{}, MrklRoot(nil))
	assert.Equal(t, Sha3(a[:], b[:]), MrklRoot([]common.Hash{a, b}))
	ab := Sha3(a[:], b[:])
	assert.Equal(t, Sha3(ab[:], c[:]), MrklRoot([]common.Hash{a, b, c}))
}

func TestSignVerify(t *testing.T) {
	acc := NewAccountFromPassword("123456")
	hash := Sha3([]byte("message"))
	sig := acc.SignHash(hash)
	assert.True(t, sig.Verify(hash))
	assert.Equal(t, acc.Address, sig.Address())
	assert.NoError(t, VerifyOneSign(hash, acc.Address, []Sign{sig}))

	other := NewAccountFromPassword("654321")
	assert.Error(t, VerifyOneSign(hash, other.Address, []Sign{sig}))
	assert.False(t, sig.Verify(Sha3([]byte("other"))))
}

// Random input must be rejected with an error, never a panic.
func TestParseGarbage(t *testing.T) {
	reg, err := NewActionRegistry()
	require.NoError(t, err)
	fz := fuzz.NewWithSeed(1).NilChance(0).NumElements(0, 400)
	for i := 0; i < 2000; i++ {
		var data []byte
		fz.Fuzz(&data)
		if i%2 == 0 && len(data) > 0 {
			data[0] = BlockVersion1
		}
		assert.NotPanics(t, func() {
			ParseBlock(reg, data)
			ParseTransaction(reg, data)
			var a Amount
			a.Parse(data)
		})
	}
}

func TestBinaryJSONFormats(t *testing.T) {
	const readable = "1AVRuFXNFi3rdMrPH4hdqSgFrEBnWisWaS"
	want, _ := hex.DecodeString("00681990afd226b1cbc6c5f085cfdc2092d0843241")

	b, err := DecodeBinary("b58:" + readable)
	require.NoError(t, err)
	assert.Equal(t, want, b)
	assert.Equal(t, "b58:"+readable, EncodeBinary(want, FormatBase58Check))
	var addr common.Address
	copy(addr[:], want)
	assert.Equal(t, readable, addr.Readable())

	tests := []struct {
		in   string
		want []byte
	}{
		{"0x010203", []byte{1, 2, 3}},
		{"0X0A0b", []byte{10, 11}},
		{"b64:AQIDBA==", []byte{1, 2, 3, 4}},
		{"B64:AQIDBA==", []byte{1, 2, 3, 4}},
		{"b58:", []byte{}},
		{"hacash", []byte("hacash")},
		{"010203", []byte("010203")},
	}
	for _, tt := range tests {
		b, err := DecodeBinary(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, b, tt.in)
	}

	for _, bad := range []string{"0x123", "b64:***", "b58:1AVRuFXNFi3rdMrPH4hdqSgFrEBnWisWaT"} {
		_, err := DecodeBinary(bad)
		assert.Error(t, err, bad)
	}

	bf, err := ParseBinaryFormat("base58check")
	require.NoError(t, err)
	assert.Equal(t, FormatBase58Check, bf)
	_, err = ParseBinaryFormat("base32")
	assert.Error(t, err)
}

// jsonFmt is implemented by the byte fields with a selectable binary format.
type jsonFmt interface {
	ToJSONFmt(BinaryFormat) []byte
}

func TestFieldJSONRoundTrip(t *testing.T) {
	var f16 Fixed16
	var f33 Fixed33
	var f64 Fixed64
	for i := range f64 {
		f64[i] = byte(i * 7)
	}
	copy(f16[:], f64[:])
	copy(f33[:], f64[1:])

	formats := []BinaryFormat{FormatHex, FormatBase64, FormatBase58Check}
	tests := []struct {
		name  string
		value jsonFmt
		fresh func() any
	}{
		{"Fixed16", f16, func() any { return new(Fixed16) }},
		{"Fixed33", f33, func() any { return new(Fixed33) }},
		{"Fixed64", f64, func() any { return new(Fixed64) }},
		{"BytesW1", BytesW1("hacash"), func() any { return new(BytesW1) }},
		{"BytesW2", BytesW2{0, 1, 2, 250}, func() any { return new(BytesW2) }},
		{"BytesW4", BytesW4{}, func() any { return new(BytesW4) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, bf := range formats {
				js := tt.value.ToJSONFmt(bf)
				back := tt.fresh()
				require.NoError(t, json.Unmarshal(js, back), string(js))
				assert.Equal(t, string(js), string(back.(jsonFmt).ToJSONFmt(bf)))
			}
			js, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.Contains(t, string(js), `"0x`)
		})
	}

	// a wrong length is refused by fixed arrays
	assert.Error(t, json.Unmarshal([]byte(`"0x0102"`), new(Fixed16)))

	amt := NewAmountSmall(125, 247)
	js, err := json.Marshal(amt)
	require.NoError(t, err)
	var back Amount
	require.NoError(t, json.Unmarshal(js, &back))
	assert.True(t, back.Equal(amt))
}
