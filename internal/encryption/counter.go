package encryption

import (
	"encoding/binary"
	"fmt"
)

// InitialCounter returns the CTR block counter for a chunk starting at offset.
// Keystream block i depends only on (key, nonce, i), so a chunk starting at block
// offset/BlockSize reproduces exactly its slice of the serial keystream.
func InitialCounter(offset int) (uint64, error) {
	if offset < 0 || offset%BlockSize != 0 {
		return 0, fmt.Errorf("%w: offset %d is not a multiple of %d", ErrAlignment, offset, BlockSize)
	}

	return uint64(offset / BlockSize), nil //nolint:gosec // offset is non-negative
}

// counterBlock lays out the initial CTR block as nonce(8) || big-endian counter(8).
func counterBlock(nonce []byte, counter uint64) []byte {
	block := make([]byte, BlockSize)
	copy(block, nonce[:NonceSize])
	binary.BigEndian.PutUint64(block[NonceSize:], counter)

	return block
}
