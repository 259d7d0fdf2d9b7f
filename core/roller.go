package core

import (
	"fmt"
	"sync"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/rawdb"
	"github.com/hacash/node/core/types"
)

// Chunk is a node of the unstable block tree: a block with the state and
// logs produced by executing it on top of its parent.
type Chunk struct {
	Height uint64
	Hash   common.Hash
	Block  *types.BlockPkg
	State  types.State // state after the block
	Logs   *rawdb.BlockLogs

	parent *Chunk // nil on the root

	mu       sync.RWMutex
	children []*Chunk
}

func newChunk(pkg *types.BlockPkg, st types.State, logs *rawdb.BlockLogs, parent *Chunk) *Chunk {
	return &Chunk{
		Height: pkg.Height,
		Hash:   pkg.Hash,
		Block:  pkg,
		State:  st,
		Logs:   logs,
		parent: parent,
	}
}

// Parent returns the parent chunk, nil on the root.
func (c *Chunk) Parent() *Chunk { return c.parent }

// Children returns a copy of the child list.
func (c *Chunk) Children() []*Chunk {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Chunk(nil), c.children...)
}

func (c *Chunk) hasChild(hash common.Hash) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ch := range c.children {
		if ch.Hash == hash {
			return true
		}
	}
	return false
}

func (c *Chunk) append(child *Chunk) {
	c.mu.Lock()
	c.children = append(c.children, child)
	c.mu.Unlock()
}

// Roller is the tree of unstable blocks above the last finalized root.
// The head is the first seen chunk of the greatest height; once the head
// is more than level blocks above the root, the root moves one block
// toward the head and every fork off the new root is dropped.
type Roller struct {
	level uint64
	root  *Chunk
	head  *Chunk
	tree  map[common.Hash]*Chunk
}

// NewRoller creates a tree holding only root.
func NewRoller(root *Chunk, level uint64) *Roller {
	return &Roller{
		level: level,
		root:  root,
		head:  root,
		tree:  map[common.Hash]*Chunk{root.Hash: root},
	}
}

func (r *Roller) Root() *Chunk { return r.root }
func (r *Roller) Head() *Chunk { return r.head }
func (r *Roller) Len() int     { return len(r.tree) }

// Find looks a chunk up by hash.
func (r *Roller) Find(hash common.Hash) (*Chunk, bool) {
	if r.head.Hash == hash {
		return r.head, true
	}
	c, ok := r.tree[hash]
	return c, ok
}

// Insert links child under parent. It returns the new root and the new
// head when they moved, nil otherwise.
func (r *Roller) Insert(parent, child *Chunk) (newRoot, newHead *Chunk) {
	child.parent = parent
	r.tree[child.Hash] = child
	parent.append(child)
	if child.Height <= r.head.Height {
		return nil, nil
	}
	r.head = child
	newHead = child
	if r.head.Height > r.root.Height+r.level {
		height := r.root.Height + 1
		nr := traceParent(r.head, height)
		if nr == nil {
			panic(fmt.Sprintf("cannot trace root height %d from head %d", height, r.head.Height))
		}
		nr.parent = nil
		r.root = nr
		r.reindex()
		newRoot = nr
	}
	return newRoot, newHead
}

// reindex rebuilds the hash index from the root, which drops every chunk
// that is no longer a descendant of it.
func (r *Roller) reindex() {
	tree := make(map[common.Hash]*Chunk, len(r.tree))
	stack := []*Chunk{r.root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		tree[node.Hash] = node
		stack = append(stack, node.Children()...)
	}
	r.tree = tree
}

func traceParent(seek *Chunk, height uint64) *Chunk {
	if height > seek.Height {
		return nil
	}
	for seek != nil && seek.Height != height {
		seek = seek.parent
	}
	return seek
}
