package pow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/params"
)

type introStore struct {
	intros map[uint64]*types.BlockIntro
}

func (s *introStore) Status() types.ChainStatus            { return types.ChainStatus{} }
func (s *introStore) BlockData(common.Hash) ([]byte, bool) { return nil, false }
func (s *introStore) BlockHash(uint64) (common.Hash, bool) { return common.Hash{}, false }
func (s *introStore) BlockDataByHeight(h uint64) (common.Hash, []byte, bool) {
	intro, ok := s.intros[h]
	if !ok {
		return common.Hash{}, nil, false
	}
	return common.Hash{}, intro.Serialize(), true
}

func testMintConfig() params.MintConfig {
	c := params.DefaultMintConfig
	c.ChainID = 1
	return c
}

func TestCompactDifficulty(t *testing.T) {
	assert.Equal(t, LowestDifficulty, HashToDifficulty(DifficultyToHash(LowestDifficulty)))

	d := uint32(0xf0123456)
	h := DifficultyToHash(d)
	assert.Equal(t, byte(0), h[14])
	assert.Equal(t, []byte{0x12, 0x34, 0x56}, h[15:18])
	assert.Equal(t, byte(0xff), h[31])
	assert.Equal(t, d, HashToDifficulty(h))

	// more leading zeros is a harder target and a smaller number
	harder := DifficultyToHash(0xef123456)
	assert.True(t, HashBigThan(h, harder))
}

func TestDifficultyTarget(t *testing.T) {
	cnf := testMintConfig()
	genesis := GenesisBlock(nil)
	d := newDifficulty(cnf, genesis)
	cyl := cnf.DifficultyAdjustBlocks
	span := cyl * cnf.EachBlockTargetTime
	prev := uint32(0xf0123456)

	store := &introStore{intros: map[uint64]*types.BlockIntro{
		cyl * 2: {Version: 1, Height: types.BlockHeight(cyl * 2), Timestamp: 1000000, Difficulty: types.Uint4(prev)},
	}}

	num, _, err := d.target(prev, 0, cyl*2-1, store)
	require.NoError(t, err)
	assert.Equal(t, LowestDifficulty, num)

	num, _, err = d.target(prev, 0, cyl*2+1, store)
	require.NoError(t, err)
	assert.Equal(t, prev, num)

	// the cycle took exactly the target time
	num, tar, err := d.target(prev, 1000000+span-cnf.EachBlockTargetTime, cyl*3, store)
	require.NoError(t, err)
	assert.Equal(t, prev, num)
	assert.Equal(t, DifficultyToHash(prev), tar)

	// half the time: the target halves and gets harder
	num, _, err = d.target(prev, 1000000+span/2-cnf.EachBlockTargetTime, cyl*3, store)
	require.NoError(t, err)
	assert.Less(t, num, prev)
	assert.Equal(t, uint32(0xf0091a2b), num)

	// far too fast is clamped to a quarter
	fast, _, err := d.target(prev, 1000000, cyl*3, store)
	require.NoError(t, err)
	quarter, _, err := d.target(prev, 1000000+span/4-cnf.EachBlockTargetTime, cyl*3, store)
	require.NoError(t, err)
	assert.Equal(t, quarter, fast)
}

func TestDifficultyMissingCycleBlock(t *testing.T) {
	cnf := testMintConfig()
	d := newDifficulty(cnf, GenesisBlock(nil))
	_, _, err := d.target(LowestDifficulty, 0, cnf.DifficultyAdjustBlocks*5, &introStore{})
	assert.Error(t, err)
}
