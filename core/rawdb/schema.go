package rawdb

import (
	"encoding/binary"

	"github.com/hacash/node/common"
)

// The block store keeps three kinds of keys in one keyspace: the status
// key, 32 byte block hashes and 5 byte heights.
var chainStatusKey = []byte("chain_status")

// blockDataKey = hash
func blockDataKey(hash common.Hash) []byte {
	return hash.Bytes()
}

// blockHashKey = height (uint40 big endian)
func blockHashKey(height uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], height)
	return append([]byte(nil), buf[3:]...)
}

// logItemKey = height (uint64 big endian) + index (uint64 big endian)
func logItemKey(height uint64, idx int) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key, height)
	binary.BigEndian.PutUint64(key[8:], uint64(idx))
	return key
}

// logCountKey = height (uint64 big endian) + "n"
func logCountKey(height uint64) []byte {
	key := make([]byte, 9)
	binary.BigEndian.PutUint64(key, height)
	key[8] = 'n'
	return key
}
