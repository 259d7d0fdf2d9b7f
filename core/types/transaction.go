package types

import (
	"fmt"

	mapset "github.com/deckarep/golang-set"
	"golang.org/x/crypto/sha3"

	"github.com/hacash/node/common"
	"github.com/hacash/node/params"
)

// Transaction types.
const (
	TxTypeCoinbase uint8 = 0
	TxType1        uint8 = 1
	TxType2        uint8 = 2
	TxType3        uint8 = 3
)

// Transaction is the closed set of transaction shapes: *CoinbaseTx in the
// first slot of a block, *NormalTx everywhere else.
type Transaction interface {
	Field
	Type() uint8
	Hash() common.Hash
	HashWithFee() common.Hash
	Main() common.Address
	Addrs() []common.Address
	Timestamp() uint64
	Fee() Amount
	FeeGot() Amount
	Actions() []Action
	Signs() []Sign
	Burn90() bool

	isTransaction()
}

// Sha3 is the chain's content hash.
func Sha3(data ...[]byte) common.Hash {
	h := sha3.New256()
	for _, d := range data {
		h.Write(d)
	}
	var r common.Hash
	copy(r[:], h.Sum(nil))
	return r
}

// ParseTransaction reads one transaction of any type from buf.
func ParseTransaction(reg *ActionRegistry, buf []byte) (Transaction, int, error) {
	if len(buf) < 1 {
		return nil, 0, fmt.Errorf("%w: transaction type", ErrBufTooShort)
	}
	switch ty := buf[0]; ty {
	case TxTypeCoinbase:
		tx := new(CoinbaseTx)
		n, err := tx.Parse(buf)
		if err != nil {
			return nil, 0, err
		}
		return tx, n, nil
	case TxType1, TxType2, TxType3:
		tx := &NormalTx{registry: reg}
		n, err := tx.Parse(buf)
		if err != nil {
			return nil, 0, err
		}
		return tx, n, nil
	default:
		return nil, 0, fmt.Errorf("%w: transaction type %d not support", ErrUnknownTag, ty)
	}
}

// CoinbaseExtend is the optional miner data of a coinbase.
type CoinbaseExtend struct {
	MinerNonce   common.Hash
	WitnessCount Uint1
}

func (c *CoinbaseExtend) Parse(buf []byte) (int, error) {
	n, err := c.MinerNonce.Parse(buf)
	if err != nil {
		return 0, err
	}
	m, err := c.WitnessCount.Parse(buf[n:])
	if err != nil {
		return 0, err
	}
	return n + m, nil
}

func (c CoinbaseExtend) Serialize() []byte {
	return append(c.MinerNonce.Serialize(), c.WitnessCount.Serialize()...)
}

func (c CoinbaseExtend) Size() int { return common.HashLength + 1 }

// CoinbaseTx issues the block reward.
type CoinbaseTx struct {
	Address common.Address
	Reward  Amount
	Message Fixed16
	Extend  Optional[CoinbaseExtend, *CoinbaseExtend]
}

func (*CoinbaseTx) isTransaction() {}

func (tx *CoinbaseTx) Parse(buf []byte) (int, error) {
	if len(buf) < 1 {
		return 0, ErrBufTooShort
	}
	if buf[0] != TxTypeCoinbase {
		return 0, fmt.Errorf("coinbase type need 0 but got %d", buf[0])
	}
	seek := 1
	for _, f := range []Field{&tx.Address, &tx.Reward, &tx.Message, &tx.Extend} {
		n, err := f.Parse(buf[seek:])
		if err != nil {
			return 0, err
		}
		seek += n
	}
	return seek, nil
}

func (tx *CoinbaseTx) Serialize() []byte {
	out := make([]byte, 0, tx.Size())
	out = append(out, TxTypeCoinbase)
	out = append(out, tx.Address.Serialize()...)
	out = append(out, tx.Reward.Serialize()...)
	out = append(out, tx.Message.Serialize()...)
	return append(out, tx.Extend.Serialize()...)
}

func (tx *CoinbaseTx) Size() int {
	return 1 + common.AddressLength + tx.Reward.Size() + 16 + tx.Extend.Size()
}

func (tx *CoinbaseTx) Type() uint8              { return TxTypeCoinbase }
func (tx *CoinbaseTx) Hash() common.Hash        { return Sha3(tx.Serialize()) }
func (tx *CoinbaseTx) HashWithFee() common.Hash { return tx.Hash() }
func (tx *CoinbaseTx) Main() common.Address     { return tx.Address }
func (tx *CoinbaseTx) Addrs() []common.Address  { return []common.Address{tx.Address} }
func (tx *CoinbaseTx) Timestamp() uint64        { return 0 }
func (tx *CoinbaseTx) Fee() Amount              { return Amount{} }
func (tx *CoinbaseTx) FeeGot() Amount           { return Amount{} }
func (tx *CoinbaseTx) Actions() []Action        { return nil }
func (tx *CoinbaseTx) Signs() []Sign            { return nil }
func (tx *CoinbaseTx) Burn90() bool             { return false }

// SetNonce writes the miner nonce when the extend data is present.
func (tx *CoinbaseTx) SetNonce(nonce common.Hash) {
	if tx.Extend.Value != nil {
		tx.Extend.Value.MinerNonce = nonce
	}
}

// NormalTx is a signed transaction of type 1, 2 or 3.
type NormalTx struct {
	Ty       uint8
	MainAddr common.Address
	Time     Timestamp
	FeeAmt   Amount
	AddrList AddressListW1 // type 3 only
	GasMax   Uint1         // type 3 only
	ActList  []Action
	SignList []Sign

	registry *ActionRegistry
}

// NewNormalTx creates an unsigned transaction whose actions are parsed
// with reg.
func NewNormalTx(reg *ActionRegistry, ty uint8, main common.Address, fee Amount, timestamp uint64) *NormalTx {
	return &NormalTx{
		Ty:       ty,
		MainAddr: main,
		Time:     Timestamp(timestamp),
		FeeAmt:   fee,
		registry: reg,
	}
}

func (*NormalTx) isTransaction() {}

func (tx *NormalTx) Parse(buf []byte) (int, error) {
	if len(buf) < 1 {
		return 0, ErrBufTooShort
	}
	tx.Ty = buf[0]
	if tx.Ty < TxType1 || tx.Ty > TxType3 {
		return 0, fmt.Errorf("%w: transaction type %d not support", ErrUnknownTag, tx.Ty)
	}
	seek := 1
	fields := []Field{&tx.MainAddr, &tx.Time, &tx.FeeAmt}
	if tx.Ty >= TxType3 {
		fields = append(fields, &tx.AddrList, &tx.GasMax)
	}
	for _, f := range fields {
		n, err := f.Parse(buf[seek:])
		if err != nil {
			return 0, err
		}
		seek += n
	}
	var count Uint2
	n, err := count.Parse(buf[seek:])
	if err != nil {
		return 0, err
	}
	seek += n
	acts, n, err := ParseActionList(tx.registry, buf[seek:], int(count))
	if err != nil {
		return 0, err
	}
	tx.ActList = acts
	seek += n
	var signs ListW2[Sign, *Sign]
	n, err = signs.Parse(buf[seek:])
	if err != nil {
		return 0, err
	}
	tx.SignList = signs.Items
	return seek + n, nil
}

// body serializes everything except the signatures, with or without the fee.
func (tx *NormalTx) body(withFee bool) []byte {
	out := []byte{tx.Ty}
	out = append(out, tx.MainAddr.Serialize()...)
	out = append(out, tx.Time.Serialize()...)
	if withFee {
		out = append(out, tx.FeeAmt.Serialize()...)
	}
	if tx.Ty >= TxType3 {
		out = append(out, tx.AddrList.Serialize()...)
		out = append(out, tx.GasMax.Serialize()...)
	}
	out = append(out, Uint2(len(tx.ActList)).Serialize()...)
	return append(out, SerializeActionList(tx.ActList)...)
}

func (tx *NormalTx) Serialize() []byte {
	signs := ListW2[Sign, *Sign]{Items: tx.SignList}
	return append(tx.body(true), signs.Serialize()...)
}

func (tx *NormalTx) Size() int {
	sz := 1 + common.AddressLength + 5 + tx.FeeAmt.Size()
	if tx.Ty >= TxType3 {
		sz += tx.AddrList.Size() + 1
	}
	sz += 2 + ActionListSize(tx.ActList)
	return sz + 2 + len(tx.SignList)*(33+64)
}

func (tx *NormalTx) Type() uint8              { return tx.Ty }
func (tx *NormalTx) Hash() common.Hash        { return Sha3(tx.body(false)) }
func (tx *NormalTx) HashWithFee() common.Hash { return Sha3(tx.body(true)) }
func (tx *NormalTx) Main() common.Address     { return tx.MainAddr }
func (tx *NormalTx) Timestamp() uint64        { return uint64(tx.Time) }
func (tx *NormalTx) Fee() Amount              { return tx.FeeAmt }
func (tx *NormalTx) Actions() []Action        { return tx.ActList }
func (tx *NormalTx) Signs() []Sign            { return tx.SignList }

// Addrs is the address table AddrOrPtr values index into; the main address
// is entry 0.
func (tx *NormalTx) Addrs() []common.Address {
	addrs := make([]common.Address, 0, 1+len(tx.AddrList.Items))
	addrs = append(addrs, tx.MainAddr)
	return append(addrs, tx.AddrList.Items...)
}

func (tx *NormalTx) Burn90() bool {
	for _, a := range tx.ActList {
		if a.Burn90() {
			return true
		}
	}
	return false
}

// FeeGot is the part of the fee the miner receives.
func (tx *NormalTx) FeeGot() Amount {
	fee := tx.FeeAmt.Clone()
	if tx.Burn90() && fee.Unit > 1 {
		if f, err := fee.UnitSub(1); err == nil {
			return f
		}
	}
	return fee
}

// FeePurity is the received fee in 238 units per GSCU bytes.
func (tx *NormalTx) FeePurity() uint64 {
	sz := uint64(tx.Size())
	if sz < params.GSCU {
		sz = params.GSCU
	}
	return tx.FeeGot().To238Uint64() / (sz / params.GSCU)
}

// FeeExtend is the gas allowance bought by the fee: gas_max squared times
// the received fee.
func (tx *NormalTx) FeeExtend() (uint16, Amount, error) {
	par := uint16(tx.GasMax)
	bei := par * par
	fee, err := tx.FeeGot().DistMul(uint64(bei))
	if err != nil {
		return 0, Amount{}, err
	}
	return bei, fee, nil
}

// PushAction appends an action.
func (tx *NormalTx) PushAction(act Action) error {
	if len(tx.ActList) >= params.TxActionsMax {
		return fmt.Errorf("one transaction max actions is %d", params.TxActionsMax)
	}
	tx.ActList = append(tx.ActList, act)
	return nil
}

// ReqSign returns every private key address that must sign: the main
// address first, then the action signers in order.
func (tx *NormalTx) ReqSign() ([]common.Address, error) {
	addrs := tx.Addrs()
	seen := mapset.NewThreadUnsafeSet()
	seen.Add(tx.MainAddr)
	res := []common.Address{tx.MainAddr}
	for _, act := range tx.ActList {
		for _, ptr := range act.ReqSign() {
			adr, err := ptr.Real(addrs)
			if err != nil {
				return nil, err
			}
			if adr.IsPrivakey() && seen.Add(adr) {
				res = append(res, adr)
			}
		}
	}
	return res, nil
}

// SignHashFor is the digest addr must sign: the main address of type 2 and
// 3 signs the hash with fee, everyone else the hash without.
func (tx *NormalTx) SignHashFor(addr common.Address) common.Hash {
	if addr == tx.MainAddr && tx.Ty != TxType1 {
		return tx.HashWithFee()
	}
	return tx.Hash()
}

// VerifySignature checks one valid signature per required signer.
func (tx *NormalTx) VerifySignature() error {
	req, err := tx.ReqSign()
	if err != nil {
		return err
	}
	hx, hxwf := tx.Hash(), tx.HashWithFee()
	for _, adr := range req {
		ck := hx
		if adr == tx.MainAddr && tx.Ty != TxType1 {
			ck = hxwf
		}
		if err := VerifyOneSign(ck, adr, tx.SignList); err != nil {
			return err
		}
	}
	return nil
}

// FillSign signs with acc, replacing an earlier signature by the same key.
func (tx *NormalTx) FillSign(acc *Account) (Sign, error) {
	s := acc.SignHash(tx.SignHashFor(acc.Address))
	return s, tx.PushSign(s)
}

// PushSign inserts a signature and verifies it.
func (tx *NormalTx) PushSign(s Sign) error {
	if len(tx.SignList) >= 65535-1 {
		return fmt.Errorf("sign object too much")
	}
	replaced := false
	for i := range tx.SignList {
		if tx.SignList[i].PubKey == s.PubKey {
			tx.SignList[i] = s
			replaced = true
			break
		}
	}
	if !replaced {
		tx.SignList = append(tx.SignList, s)
	}
	adr := s.Address()
	if !s.Verify(tx.SignHashFor(adr)) {
		return fmt.Errorf("address %s verify signature failed", adr.Readable())
	}
	return nil
}
