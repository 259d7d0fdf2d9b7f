package pow

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/holiman/uint256"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/params"
)

// LowestDifficulty is the compact form of the easiest target.
const LowestDifficulty uint32 = 4294967294

const compactZerosMax = common.HashLength - 3

// DifficultyToHash expands a compact difficulty: the top byte is 255 minus
// the leading zero bytes of the target, the low three bytes are its
// significant bytes, the rest of the target is filled with 0xff.
func DifficultyToHash(d uint32) common.Hash {
	zeros := 255 - int(d>>24)
	if zeros > compactZerosMax {
		zeros = compactZerosMax
	}
	var h common.Hash
	h[zeros] = byte(d >> 16)
	h[zeros+1] = byte(d >> 8)
	h[zeros+2] = byte(d)
	for i := zeros + 3; i < common.HashLength; i++ {
		h[i] = 0xff
	}
	return h
}

// HashToDifficulty is the compact form of a target.
func HashToDifficulty(h common.Hash) uint32 {
	zeros := 0
	for zeros < compactZerosMax && h[zeros] == 0 {
		zeros++
	}
	return uint32(255-zeros)<<24 | uint32(h[zeros])<<16 | uint32(h[zeros+1])<<8 | uint32(h[zeros+2])
}

// cycleBlock is the time and difficulty of the first block of a cycle.
type cycleBlock struct {
	time       uint64
	difficulty uint32
	target     common.Hash
}

// difficulty retargets once per cycle of DifficultyAdjustBlocks blocks.
type difficulty struct {
	config      params.MintConfig
	genesis     *types.Block
	cycleBlocks *lru.Cache[uint64, cycleBlock]
}

func newDifficulty(config params.MintConfig, genesis *types.Block) *difficulty {
	size := int(config.DifficultyAdjustBlocks)
	if size < 16 {
		size = 16
	}
	cache, _ := lru.New[uint64, cycleBlock](size)
	return &difficulty{config: config, genesis: genesis, cycleBlocks: cache}
}

// cycleBlock returns the first block of the cycle height belongs to.
func (d *difficulty) cycleBlock(height uint64, sto types.BlockStore) (cycleBlock, error) {
	cyl := d.config.DifficultyAdjustBlocks
	if height < cyl {
		diff := uint32(d.genesis.Difficulty)
		return cycleBlock{time: uint64(d.genesis.Timestamp), difficulty: diff, target: DifficultyToHash(diff)}, nil
	}
	start := height / cyl * cyl
	if cb, ok := d.cycleBlocks.Get(start); ok {
		return cb, nil
	}
	_, data, ok := sto.BlockDataByHeight(start)
	if !ok {
		return cycleBlock{}, fmt.Errorf("cannot find block data of height %d", start)
	}
	var intro types.BlockIntro
	if _, err := intro.Parse(data); err != nil {
		return cycleBlock{}, err
	}
	diff := uint32(intro.Difficulty)
	cb := cycleBlock{time: uint64(intro.Timestamp), difficulty: diff, target: DifficultyToHash(diff)}
	d.cycleBlocks.Add(start, cb)
	return cb, nil
}

// target computes the difficulty of the block at height from its parent.
func (d *difficulty) target(prevDiff uint32, prevTime, height uint64, sto types.BlockStore) (uint32, common.Hash, error) {
	cyl := d.config.DifficultyAdjustBlocks
	if height < cyl*2 {
		return LowestDifficulty, DifficultyToHash(LowestDifficulty), nil
	}
	if height%cyl != 0 {
		return prevDiff, DifficultyToHash(prevDiff), nil
	}
	span := d.config.EachBlockTargetTime
	targetSpan := cyl * span
	prevCycle, err := d.cycleBlock(height-cyl, sto)
	if err != nil {
		return 0, common.Hash{}, err
	}
	realSpan := span + prevTime - prevCycle.time
	if d.config.IsMainnet() && height < cyl*450 {
		realSpan -= span // mainnet history counts 287 blocks
	}
	if lo := targetSpan / 4; realSpan < lo {
		realSpan = lo
	} else if hi := targetSpan * 4; realSpan > hi {
		realSpan = hi
	}
	prev := DifficultyToHash(prevDiff)
	big := new(uint256.Int).SetBytes32(prev[:])
	res, overflow := new(uint256.Int).MulDivOverflow(big, uint256.NewInt(realSpan), uint256.NewInt(targetSpan))
	if overflow {
		res = new(uint256.Int).SetAllOne()
	}
	tar := common.Hash(res.Bytes32())
	num := HashToDifficulty(tar)
	return num, DifficultyToHash(num), nil
}
