package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

type direction bool

const (
	encrypting direction = true
	decrypting direction = false
)

func (d direction) String() string {
	if d == encrypting {
		return "encrypt"
	}

	return "decrypt"
}

// Job is one partition of an operation, handed to exactly one worker.
// Src is a read-only view of the input; Dst is the worker's exclusive output range.
type Job struct {
	Index   int
	Chunk   Chunk
	Mode    Mode
	Key     []byte
	Nonce   []byte
	Counter uint64
	Src     []byte
	Dst     []byte

	dir direction
}

// transform applies the block cipher to the job's input, writing into Dst.
// It holds no state beyond its arguments and is safe to run concurrently with other jobs.
func (j *Job) transform() error {
	if len(j.Dst) != len(j.Src) {
		return fmt.Errorf("output range has %d bytes, input has %d", len(j.Dst), len(j.Src))
	}

	block, err := aes.NewCipher(j.Key)
	if err != nil {
		return fmt.Errorf("creating cipher: %w", err)
	}

	switch j.Mode {
	case ModeECB:
		return cryptECB(block, j.dir, j.Dst, j.Src)
	case ModeCTR:
		if len(j.Nonce) != NonceSize {
			return fmt.Errorf("%w: nonce has %d bytes", ErrPayloadFormat, len(j.Nonce))
		}

		cipher.NewCTR(block, counterBlock(j.Nonce, j.Counter)).XORKeyStream(j.Dst, j.Src)

		return nil
	default:
		return fmt.Errorf("%w: %v", ErrInvalidMode, j.Mode)
	}
}

// cryptECB transforms src block by block into dst.
func cryptECB(block cipher.Block, dir direction, dst, src []byte) error {
	size := block.BlockSize()

	if len(src)%size != 0 {
		return fmt.Errorf("%w: ECB input of %d bytes", ErrAlignment, len(src))
	}

	for i := 0; i < len(src); i += size {
		if dir == encrypting {
			block.Encrypt(dst[i:i+size], src[i:i+size])
		} else {
			block.Decrypt(dst[i:i+size], src[i:i+size])
		}
	}

	return nil
}
