package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/types"
)

func testChunk(height uint64, tag byte) *Chunk {
	hash := common.Hash{byte(height), tag}
	return newChunk(&types.BlockPkg{Height: height, Hash: hash}, nil, nil, nil)
}

func TestRollerHeadFirstSeen(t *testing.T) {
	root := testChunk(0, 0)
	r := NewRoller(root, 4)

	a := testChunk(1, 'a')
	_, head := r.Insert(root, a)
	assert.Same(t, a, head)

	b := testChunk(1, 'b')
	nr, head := r.Insert(root, b)
	assert.Nil(t, nr)
	assert.Nil(t, head)
	assert.Same(t, a, r.Head())
	assert.Equal(t, 3, r.Len())

	// a longer fork takes the head
	c := testChunk(2, 'b')
	_, head = r.Insert(b, c)
	assert.Same(t, c, head)
	found, ok := r.Find(b.Hash)
	require.True(t, ok)
	assert.Same(t, b, found)
	assert.Len(t, root.Children(), 2)
}

func TestRollerFinalizesAboveLevel(t *testing.T) {
	root := testChunk(0, 0)
	r := NewRoller(root, 4)

	// a short fork off height 1 that the root will cut away
	var main []*Chunk
	prev := root
	for h := uint64(1); h <= 4; h++ {
		c := testChunk(h, 'm')
		nr, _ := r.Insert(prev, c)
		assert.Nil(t, nr, "height %d", h)
		main = append(main, c)
		prev = c
	}
	fork := testChunk(1, 'f')
	r.Insert(root, fork)
	forkChild := testChunk(2, 'f')
	r.Insert(fork, forkChild)
	assert.Equal(t, 7, r.Len())

	c5 := testChunk(5, 'm')
	nr, head := r.Insert(prev, c5)
	require.NotNil(t, nr)
	assert.Same(t, main[0], nr)
	assert.Same(t, c5, head)
	assert.Same(t, main[0], r.Root())
	assert.Nil(t, nr.Parent())

	// forks off the old root are gone
	_, ok := r.Find(fork.Hash)
	assert.False(t, ok)
	_, ok = r.Find(forkChild.Hash)
	assert.False(t, ok)
	_, ok = r.Find(root.Hash)
	assert.False(t, ok)
	assert.Equal(t, 5, r.Len())
}

func TestRollerKeepsForksAboveRoot(t *testing.T) {
	root := testChunk(0, 0)
	r := NewRoller(root, 2)
	a1 := testChunk(1, 'a')
	r.Insert(root, a1)
	a2 := testChunk(2, 'a')
	r.Insert(a1, a2)
	b2 := testChunk(2, 'b')
	r.Insert(a1, b2)

	a3 := testChunk(3, 'a')
	nr, _ := r.Insert(a2, a3)
	require.NotNil(t, nr)
	assert.Same(t, a1, nr)
	_, ok := r.Find(b2.Hash)
	assert.True(t, ok)
}

func TestCanonicalPath(t *testing.T) {
	root := testChunk(3, 0)
	r := NewRoller(root, 10)
	prev := root
	for h := uint64(4); h <= 6; h++ {
		c := testChunk(h, 'x')
		r.Insert(prev, c)
		prev = c
	}
	path := canonicalPath(r.Head(), r.Root().Height)
	assert.Len(t, path, 4)
	assert.Equal(t, root.Hash, path[3])
	assert.Equal(t, prev.Hash, path[6])
}
