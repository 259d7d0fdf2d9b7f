package types

import (
	"fmt"

	"github.com/hacash/node/common"
)

// BlockVersion1 is the only canonical block version.
const BlockVersion1 uint8 = 1

// BlockIntroSize is the serialized length of BlockIntro.
const BlockIntroSize = 1 + 5 + 5 + 32 + 32 + 4 + 4 + 4

// BlockHasher computes the PoW hash of a block from its intro bytes.
type BlockHasher interface {
	BlockHash(height uint64, intro []byte) common.Hash
}

// BlockIntro is the header part of a block, the PoW preimage.
type BlockIntro struct {
	Version    Uint1
	Height     BlockHeight
	Timestamp  Timestamp
	PrevHash   common.Hash
	MrklRoot   common.Hash
	Nonce      Uint4
	Difficulty Uint4
	TxCount    Uint4
}

func (b *BlockIntro) fields() []Field {
	return []Field{&b.Version, &b.Height, &b.Timestamp, &b.PrevHash, &b.MrklRoot, &b.Nonce, &b.Difficulty, &b.TxCount}
}

func (b *BlockIntro) Parse(buf []byte) (int, error) {
	seek := 0
	for _, f := range b.fields() {
		n, err := f.Parse(buf[seek:])
		if err != nil {
			return 0, err
		}
		seek += n
	}
	if uint8(b.Version) != BlockVersion1 {
		return 0, fmt.Errorf("block version %d not support", b.Version)
	}
	return seek, nil
}

func (b *BlockIntro) Serialize() []byte {
	out := make([]byte, 0, BlockIntroSize)
	for _, f := range b.fields() {
		out = append(out, f.Serialize()...)
	}
	return out
}

func (b *BlockIntro) Size() int { return BlockIntroSize }

// Hash computes the block hash with h.
func (b *BlockIntro) Hash(h BlockHasher) common.Hash {
	return h.BlockHash(uint64(b.Height), b.Serialize())
}

// Block is an intro followed by its transactions, the coinbase first.
type Block struct {
	BlockIntro
	Txs []Transaction

	registry *ActionRegistry
}

// NewBlock creates an empty block whose actions are parsed with reg.
func NewBlock(reg *ActionRegistry) *Block {
	return &Block{BlockIntro: BlockIntro{Version: Uint1(BlockVersion1)}, registry: reg}
}

// Registry is the action registry the block parses with.
func (b *Block) Registry() *ActionRegistry { return b.registry }

// ParseBlock reads a block from the front of buf.
func ParseBlock(reg *ActionRegistry, buf []byte) (*Block, int, error) {
	blk := &Block{registry: reg}
	seek, err := blk.BlockIntro.Parse(buf)
	if err != nil {
		return nil, 0, err
	}
	count := int(blk.TxCount)
	// every tx takes at least one byte, so a forged count cannot force a
	// huge allocation
	blk.Txs = make([]Transaction, 0, min(count, len(buf)-seek))
	for i := 0; i < count; i++ {
		tx, n, err := ParseTransaction(reg, buf[seek:])
		if err != nil {
			return nil, 0, fmt.Errorf("block tx %d: %w", i, err)
		}
		seek += n
		blk.Txs = append(blk.Txs, tx)
	}
	return blk, seek, nil
}

func (b *Block) Parse(buf []byte) (int, error) {
	blk, n, err := ParseBlock(b.registry, buf)
	if err != nil {
		return 0, err
	}
	*b = *blk
	return n, nil
}

func (b *Block) Serialize() []byte {
	out := b.BlockIntro.Serialize()
	for _, tx := range b.Txs {
		out = append(out, tx.Serialize()...)
	}
	return out
}

func (b *Block) Size() int {
	sz := BlockIntroSize
	for _, tx := range b.Txs {
		sz += tx.Size()
	}
	return sz
}

// Coinbase returns the first transaction, which must be a coinbase.
func (b *Block) Coinbase() (*CoinbaseTx, error) {
	if len(b.Txs) < 1 {
		return nil, fmt.Errorf("block must have coinbase tx")
	}
	cb, ok := b.Txs[0].(*CoinbaseTx)
	if !ok {
		return nil, fmt.Errorf("block first tx must be coinbase")
	}
	return cb, nil
}

// PushTx appends tx and keeps the count in sync.
func (b *Block) PushTx(tx Transaction) error {
	if uint64(b.TxCount)+1 >= 1<<32-1 {
		return fmt.Errorf("transaction overflow")
	}
	b.Txs = append(b.Txs, tx)
	b.TxCount = Uint4(len(b.Txs))
	return nil
}

// TxHashes lists the transaction hashes, with or without fee.
func (b *Block) TxHashes(withFee bool) []common.Hash {
	hs := make([]common.Hash, len(b.Txs))
	for i, tx := range b.Txs {
		if withFee {
			hs[i] = tx.HashWithFee()
		} else {
			hs[i] = tx.Hash()
		}
	}
	return hs
}

// UpdateMrklRoot recomputes the root over the hashes with fee.
func (b *Block) UpdateMrklRoot() {
	b.MrklRoot = MrklRoot(b.TxHashes(true))
}

// MrklRoot folds the list pairwise with sha3; an odd tail moves up as is.
func MrklRoot(hs []common.Hash) common.Hash {
	if len(hs) == 0 {
		return common.Hash{}
	}
	level := append([]common.Hash(nil), hs...)
	for len(level) > 1 {
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, Sha3(level[i][:], level[i+1][:]))
			} else {
				next = append(next, level[i])
			}
		}
		level = next
	}
	return level[0]
}

// BlkOrigin tells where a block package came from.
type BlkOrigin uint8

const (
	BlkOriginUnknown BlkOrigin = iota
	BlkOriginDiscover
	BlkOriginSync
	BlkOriginRebuild
	BlkOriginMint
)

func (o BlkOrigin) String() string {
	switch o {
	case BlkOriginDiscover:
		return "discover"
	case BlkOriginSync:
		return "sync"
	case BlkOriginRebuild:
		return "rebuild"
	case BlkOriginMint:
		return "mint"
	}
	return "unknown"
}

// BlockPkg is a parsed block with its raw bytes and hash.
type BlockPkg struct {
	Height uint64
	Hash   common.Hash
	Data   []byte
	Block  *Block
	Origin BlkOrigin
}

// NewBlockPkg parses data completely and hashes it.
func NewBlockPkg(reg *ActionRegistry, hasher BlockHasher, data []byte, origin BlkOrigin) (*BlockPkg, error) {
	blk, n, err := ParseBlock(reg, data)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("block data length need %d but got %d", n, len(data))
	}
	return &BlockPkg{
		Height: uint64(blk.Height),
		Hash:   blk.Hash(hasher),
		Data:   data,
		Block:  blk,
		Origin: origin,
	}, nil
}

// BlockPkgFrom packs an already built block.
func BlockPkgFrom(hasher BlockHasher, blk *Block, origin BlkOrigin) *BlockPkg {
	return &BlockPkg{
		Height: uint64(blk.Height),
		Hash:   blk.Hash(hasher),
		Data:   blk.Serialize(),
		Block:  blk,
		Origin: origin,
	}
}

// TxPkg is a parsed transaction with its raw bytes and pool fee purity.
type TxPkg struct {
	Hash      common.Hash
	Data      []byte
	Tx        *NormalTx
	FeePurity uint64 // received fee in 238 units per byte
}

// NewTxPkg wraps tx.
func NewTxPkg(tx *NormalTx) *TxPkg {
	data := tx.Serialize()
	pkg := &TxPkg{Hash: tx.Hash(), Data: data, Tx: tx}
	if len(data) > 0 {
		pkg.FeePurity = tx.FeeGot().To238Uint64() / uint64(len(data))
	}
	return pkg
}

// ParseTxPkg parses a complete non-coinbase transaction.
func ParseTxPkg(reg *ActionRegistry, data []byte) (*TxPkg, error) {
	tx, n, err := ParseTransaction(reg, data)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("transaction data length need %d but got %d", n, len(data))
	}
	ntx, ok := tx.(*NormalTx)
	if !ok {
		return nil, fmt.Errorf("cannot submit coinbase transaction")
	}
	return NewTxPkg(ntx), nil
}

// ChainStatus is the persisted progress of the block store.
type ChainStatus struct {
	RootHeight BlockHeight
	LastHeight BlockHeight
}

func (s *ChainStatus) Parse(buf []byte) (int, error) {
	n, err := s.RootHeight.Parse(buf)
	if err != nil {
		return 0, err
	}
	m, err := s.LastHeight.Parse(buf[n:])
	if err != nil {
		return 0, err
	}
	return n + m, nil
}

func (s ChainStatus) Serialize() []byte {
	return append(s.RootHeight.Serialize(), s.LastHeight.Serialize()...)
}

func (s ChainStatus) Size() int { return 10 }
