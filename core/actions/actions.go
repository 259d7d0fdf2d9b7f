// Package actions implements the built-in action kinds of Hacash
// transactions and assembles them into an action registry.
package actions

import (
	"github.com/hacash/node/common"
	"github.com/hacash/node/core/tex"
	"github.com/hacash/node/core/types"
)

// Action kinds.
const (
	KindHacToTrs                uint16 = 1
	KindDiamondMint             uint16 = 4
	KindDiaSingleTrs            uint16 = 5
	KindDiaFromToTrs            uint16 = 6
	KindDiaToTrs                uint16 = 7
	KindDiaFromTrs              uint16 = 8
	KindSatToTrs                uint16 = 10
	KindSatFromTrs              uint16 = 11
	KindSatFromToTrs            uint16 = 12
	KindHacFromTrs              uint16 = 13
	KindHacFromToTrs            uint16 = 14
	KindAssetCreate             uint16 = 16
	KindAssetToTrs              uint16 = 17
	KindAssetFromTrs            uint16 = 18
	KindAssetFromToTrs          uint16 = 19
	KindAstSelect               uint16 = 21
	KindAstIf                   uint16 = 22
	KindSubmitHeightLimit       uint16 = 29
	KindSubChainID              uint16 = 30
	KindDiamondInscription      uint16 = 32
	KindDiamondInscriptionClear uint16 = 33
	KindTxMessage               uint16 = 40
	KindTxBlob                  uint16 = 41
	KindHeightScope             uint16 = 0x0411
	KindChainAllow              uint16 = 0x0412
	KindContractCall            uint16 = 0x0501
)

// DiamondHasher verifies diamond mints. The PoW hasher implements it.
type DiamondHasher interface {
	MineDiamond(number uint32, prev common.Hash, nonce [8]byte, addr common.Address, custom []byte) (common.Hash, common.Hash, [16]byte)
	DiamondName(res [16]byte) (types.DiamondName, bool)
	CheckDifficulty(number uint32, sshash, medium common.Hash) bool
}

// entry binds kind to a parser that fills the action made by create.
func entry(kind uint16, name string, create func(reg *types.ActionRegistry) types.Action) types.ActionEntry {
	return types.ActionEntry{
		Kind: kind,
		Name: name,
		Parser: func(reg *types.ActionRegistry, buf []byte) (types.Action, int, error) {
			act := create(reg)
			n, err := act.Parse(buf)
			if err != nil {
				return nil, 0, err
			}
			return act, n, nil
		},
	}
}

// Entries lists every built-in kind. dh verifies diamond mints.
func Entries(dh DiamondHasher) []types.ActionEntry {
	return []types.ActionEntry{
		entry(KindHacToTrs, "HacToTrs", func(*types.ActionRegistry) types.Action { return new(HacToTrs) }),
		entry(KindHacFromTrs, "HacFromTrs", func(*types.ActionRegistry) types.Action { return new(HacFromTrs) }),
		entry(KindHacFromToTrs, "HacFromToTrs", func(*types.ActionRegistry) types.Action { return new(HacFromToTrs) }),
		entry(KindSatToTrs, "SatToTrs", func(*types.ActionRegistry) types.Action { return new(SatToTrs) }),
		entry(KindSatFromTrs, "SatFromTrs", func(*types.ActionRegistry) types.Action { return new(SatFromTrs) }),
		entry(KindSatFromToTrs, "SatFromToTrs", func(*types.ActionRegistry) types.Action { return new(SatFromToTrs) }),
		entry(KindDiaSingleTrs, "DiaSingleTrs", func(*types.ActionRegistry) types.Action { return new(DiaSingleTrs) }),
		entry(KindDiaFromToTrs, "DiaFromToTrs", func(*types.ActionRegistry) types.Action { return new(DiaFromToTrs) }),
		entry(KindDiaToTrs, "DiaToTrs", func(*types.ActionRegistry) types.Action { return new(DiaToTrs) }),
		entry(KindDiaFromTrs, "DiaFromTrs", func(*types.ActionRegistry) types.Action { return new(DiaFromTrs) }),
		entry(KindAssetCreate, "AssetCreate", func(*types.ActionRegistry) types.Action { return new(AssetCreate) }),
		entry(KindAssetToTrs, "AssetToTrs", func(*types.ActionRegistry) types.Action { return new(AssetToTrs) }),
		entry(KindAssetFromTrs, "AssetFromTrs", func(*types.ActionRegistry) types.Action { return new(AssetFromTrs) }),
		entry(KindAssetFromToTrs, "AssetFromToTrs", func(*types.ActionRegistry) types.Action { return new(AssetFromToTrs) }),
		entry(KindAstSelect, "AstSelect", func(reg *types.ActionRegistry) types.Action { return NewAstSelect(reg) }),
		entry(KindAstIf, "AstIf", func(reg *types.ActionRegistry) types.Action { return NewAstIf(reg) }),
		entry(KindSubmitHeightLimit, "SubmitHeightLimit", func(*types.ActionRegistry) types.Action { return new(SubmitHeightLimit) }),
		entry(KindSubChainID, "SubChainID", func(*types.ActionRegistry) types.Action { return new(SubChainID) }),
		entry(KindHeightScope, "HeightScope", func(*types.ActionRegistry) types.Action { return new(HeightScope) }),
		entry(KindChainAllow, "ChainAllow", func(*types.ActionRegistry) types.Action { return new(ChainAllow) }),
		entry(KindDiamondMint, "DiamondMint", func(*types.ActionRegistry) types.Action { return &DiamondMint{hasher: dh} }),
		entry(KindDiamondInscription, "DiamondInscription", func(*types.ActionRegistry) types.Action { return new(DiamondInscription) }),
		entry(KindDiamondInscriptionClear, "DiamondInscriptionClear", func(*types.ActionRegistry) types.Action { return new(DiamondInscriptionClear) }),
		entry(KindTxMessage, "TxMessage", func(*types.ActionRegistry) types.Action { return new(TxMessage) }),
		entry(KindTxBlob, "TxBlob", func(*types.ActionRegistry) types.Action { return new(TxBlob) }),
		entry(KindContractCall, "ContractCall", func(*types.ActionRegistry) types.Action { return new(ContractCall) }),
	}
}

// NewRegistry builds the registry of the built-in kinds, the tex cell
// action and any extra groups.
func NewRegistry(dh DiamondHasher, extra ...[]types.ActionEntry) (*types.ActionRegistry, error) {
	groups := append([][]types.ActionEntry{Entries(dh), tex.Actions()}, extra...)
	return types.NewActionRegistry(groups...)
}

// DefaultRegistry is NewRegistry without extra kinds. It panics on a
// duplicate kind, which is a programming error.
func DefaultRegistry(dh DiamondHasher) *types.ActionRegistry {
	reg, err := NewRegistry(dh)
	if err != nil {
		panic(err)
	}
	return reg
}

// addr resolves p against the address table of the current transaction.
func addr(ctx types.Context, p types.AddrOrPtr) (common.Address, error) {
	return p.Real(ctx.Env().Tx.Addrs)
}

func height(ctx types.Context) uint64 {
	return ctx.Env().Block.Height
}
