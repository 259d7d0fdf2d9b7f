package pow

import (
	"github.com/hacash/node/core/types"
)

const rewardStageBlocks = 100000

// rewardStages is the mei reward of each stage of rewardStageBlocks blocks.
// Every later block is rewarded one mei.
var rewardStages = []uint64{1, 1, 2, 3, 5, 8, 8, 5, 3, 2, 1, 1}

// BlockRewardMei is the coinbase reward of height in mei.
func BlockRewardMei(height uint64) uint64 {
	stage := height / rewardStageBlocks
	if stage < uint64(len(rewardStages)) {
		return rewardStages[stage]
	}
	return 1
}

// BlockReward is the coinbase reward of height.
func BlockReward(height uint64) types.Amount {
	return types.NewAmountMei(BlockRewardMei(height))
}

// CumulativeBlockReward is the mei issued by the coinbases of blocks 1 to
// height.
func CumulativeBlockReward(height uint64) uint64 {
	total := uint64(0)
	for i := 0; i < len(rewardStages); i++ {
		lo := uint64(i)*rewardStageBlocks + 1
		if lo > height {
			return total
		}
		hi := uint64(i+1) * rewardStageBlocks
		if hi > height {
			hi = height
		}
		total += (hi - lo + 1) * rewardStages[i]
	}
	tail := uint64(len(rewardStages)) * rewardStageBlocks
	if height > tail {
		total += height - tail
	}
	return total
}
