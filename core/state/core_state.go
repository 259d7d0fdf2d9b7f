package state

import (
	"fmt"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/types"
)

// State slots. Every key is the slot byte followed by the serialized key.
const (
	SlotTotalCount    byte = 1
	SlotLatestDiamond byte = 2
	SlotFinalized     byte = 3
	SlotTxExist       byte = 10
	SlotBalance       byte = 11
	SlotDiamond       byte = 13
	SlotDiamondName   byte = 14
	SlotDiamondSmelt  byte = 15
	SlotDiamondOwned  byte = 16
	SlotAsset         byte = 17
	SlotContractStore byte = 20
)

// SlotKey builds the state key of slot and key.
func SlotKey(slot byte, key []byte) []byte {
	return append([]byte{slot}, key...)
}

// BalanceKey is the state key of an address balance.
func BalanceKey(addr common.Address) []byte {
	return SlotKey(SlotBalance, addr[:])
}

func getValue[T any, PT types.FieldPtr[T]](s types.State, key []byte) (T, bool) {
	var v T
	data, ok := s.Get(key)
	if !ok {
		return v, false
	}
	if _, err := PT(&v).Parse(data); err != nil {
		panic(fmt.Sprintf("state value of key %x corrupted: %v", key, err))
	}
	return v, true
}

func setValue(s types.State, key []byte, v types.Field) {
	s.Set(key, v.Serialize())
}

// CoreState gives typed access to the chain slots of a state overlay.
type CoreState struct {
	s types.State
}

// Wrap adapts s.
func Wrap(s types.State) CoreState {
	return CoreState{s: s}
}

// Inner returns the wrapped overlay.
func (c CoreState) Inner() types.State { return c.s }

func (c CoreState) TotalCount() TotalCount {
	v, _ := getValue[TotalCount](c.s, []byte{SlotTotalCount})
	return v
}

func (c CoreState) SetTotalCount(v *TotalCount) {
	setValue(c.s, []byte{SlotTotalCount}, v)
}

func (c CoreState) LatestDiamond() (DiamondSmelt, bool) {
	return getValue[DiamondSmelt](c.s, []byte{SlotLatestDiamond})
}

func (c CoreState) SetLatestDiamond(v *DiamondSmelt) {
	setValue(c.s, []byte{SlotLatestDiamond}, v)
}

// FinalizedHeight is the root height the state on disk was flushed at.
func (c CoreState) FinalizedHeight() (uint64, bool) {
	v, ok := getValue[types.BlockHeight](c.s, []byte{SlotFinalized})
	return uint64(v), ok
}

func (c CoreState) SetFinalizedHeight(height uint64) {
	h := types.BlockHeight(height)
	setValue(c.s, []byte{SlotFinalized}, &h)
}

// TxExist returns the height a transaction was mined at.
func (c CoreState) TxExist(hx common.Hash) (uint64, bool) {
	v, ok := getValue[types.BlockHeight](c.s, SlotKey(SlotTxExist, hx[:]))
	return uint64(v), ok
}

func (c CoreState) SetTxExist(hx common.Hash, height uint64) {
	h := types.BlockHeight(height)
	setValue(c.s, SlotKey(SlotTxExist, hx[:]), &h)
}

func (c CoreState) Balance(addr common.Address) (Balance, bool) {
	return getValue[Balance](c.s, BalanceKey(addr))
}

func (c CoreState) SetBalance(addr common.Address, b *Balance) {
	setValue(c.s, BalanceKey(addr), b)
}

func (c CoreState) DelBalance(addr common.Address) {
	c.s.Del(BalanceKey(addr))
}

func (c CoreState) Diamond(name types.DiamondName) (DiamondSto, bool) {
	return getValue[DiamondSto](c.s, SlotKey(SlotDiamond, name[:]))
}

func (c CoreState) SetDiamond(name types.DiamondName, d *DiamondSto) {
	setValue(c.s, SlotKey(SlotDiamond, name[:]), d)
}

func (c CoreState) DelDiamond(name types.DiamondName) {
	c.s.Del(SlotKey(SlotDiamond, name[:]))
}

// DiamondName resolves a diamond serial number.
func (c CoreState) DiamondName(num uint32) (types.DiamondName, bool) {
	n := types.DiamondNumber(num)
	return getValue[types.DiamondName](c.s, SlotKey(SlotDiamondName, n.Serialize()))
}

func (c CoreState) SetDiamondName(num uint32, name types.DiamondName) {
	n := types.DiamondNumber(num)
	setValue(c.s, SlotKey(SlotDiamondName, n.Serialize()), &name)
}

func (c CoreState) DiamondSmelt(name types.DiamondName) (DiamondSmelt, bool) {
	return getValue[DiamondSmelt](c.s, SlotKey(SlotDiamondSmelt, name[:]))
}

func (c CoreState) SetDiamondSmelt(name types.DiamondName, d *DiamondSmelt) {
	setValue(c.s, SlotKey(SlotDiamondSmelt, name[:]), d)
}

func (c CoreState) DiamondOwned(addr common.Address) (DiamondOwnedForm, bool) {
	return getValue[DiamondOwnedForm](c.s, SlotKey(SlotDiamondOwned, addr[:]))
}

func (c CoreState) SetDiamondOwned(addr common.Address, f *DiamondOwnedForm) {
	setValue(c.s, SlotKey(SlotDiamondOwned, addr[:]), f)
}

func (c CoreState) Asset(serial types.Fold64) (AssetSmelt, bool) {
	return getValue[AssetSmelt](c.s, SlotKey(SlotAsset, serial.Serialize()))
}

func (c CoreState) SetAsset(serial types.Fold64, a *AssetSmelt) {
	setValue(c.s, SlotKey(SlotAsset, serial.Serialize()), a)
}

func (c CoreState) DelDiamondOwned(addr common.Address) {
	c.s.Del(SlotKey(SlotDiamondOwned, addr[:]))
}
