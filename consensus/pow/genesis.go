package pow

import (
	"fmt"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
)

const (
	genesisTimestamp = 1549250700
	genesisMessage   = "hardertodobetter"
)

// genesisAllocs are the balances credited when the chain state is created.
var genesisAllocs = []struct {
	addr string
	hac  types.Amount
}{
	{"12vi7DEZjh6KrK5PVmmqSgvuJPCsZMmpfi", types.NewAmountSmall(12, 244)},
	{"1LsQLqkd8FQDh3R7ZhxC5fndNf92WfhM19", types.NewAmountSmall(1, 244)},
	{"1NUgKsTgM6vQ5nxFHGz1C4METaYTPgiihh", types.NewAmountSmall(1, 244)},
}

// GenesisBlock builds the fixed block at height 0.
func GenesisBlock(reg *types.ActionRegistry) *types.Block {
	cb := &types.CoinbaseTx{
		Address: common.MustParseAddress(genesisAllocs[0].addr),
		Reward:  BlockReward(0),
	}
	copy(cb.Message[:], genesisMessage)
	blk := types.NewBlock(reg)
	blk.Height = 0
	blk.Timestamp = genesisTimestamp
	if err := blk.PushTx(cb); err != nil {
		panic(err)
	}
	blk.UpdateMrklRoot()
	return blk
}

// InitializeState writes the genesis balances.
func InitializeState(st types.State) error {
	cs := state.Wrap(st)
	for _, a := range genesisAllocs {
		addr, err := common.ParseAddress(a.addr)
		if err != nil {
			return fmt.Errorf("genesis address %s: %w", a.addr, err)
		}
		bls := state.Balance{Hacash: a.hac}
		cs.SetBalance(addr, &bls)
	}
	return nil
}

// VerifyCoinbase checks the coinbase type and reward of a block at height.
func VerifyCoinbase(height uint64, cb *types.CoinbaseTx) error {
	if cb.Type() != types.TxTypeCoinbase {
		return fmt.Errorf("block coinbase type error")
	}
	want := BlockReward(height)
	if !cb.Reward.Equal(want) {
		return fmt.Errorf("block coinbase reward need %s but got %s", want, cb.Reward)
	}
	return nil
}
