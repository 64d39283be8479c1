package encryption

import (
	"crypto/aes"
	"fmt"
	"strings"
)

// Mode is the block cipher mode of operation.
type Mode byte

const (
	// ModeECB encrypts every block independently.
	ModeECB Mode = iota + 1
	// ModeCTR XORs the input with a keystream of encrypted counter blocks.
	ModeCTR
	// ModeCBC chains blocks; supported by the serial path only.
	ModeCBC
)

const (
	// BlockSize is the AES block width in bytes.
	BlockSize = aes.BlockSize
	// KeySize is the required AES-256 key length in bytes.
	KeySize = 32
	// NonceSize is the CTR nonce prefix length in bytes.
	NonceSize = 8
)

// ParseMode converts a case-insensitive mode name into a Mode.
func ParseMode(name string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ECB":
		return ModeECB, nil
	case "CTR":
		return ModeCTR, nil
	case "CBC":
		return ModeCBC, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, name)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeECB:
		return "ECB"
	case ModeCTR:
		return "CTR"
	case ModeCBC:
		return "CBC"
	default:
		return fmt.Sprintf("Mode(%d)", byte(m))
	}
}

// Parallel reports whether the mode can be split into independently processed chunks.
func (m Mode) Parallel() bool {
	return m == ModeECB || m == ModeCTR
}

// HeaderSize returns the payload header length for the mode.
func (m Mode) HeaderSize() int {
	switch m {
	case ModeCTR:
		return NonceSize
	case ModeECB, ModeCBC:
		return BlockSize
	default:
		return 0
	}
}

func (m Mode) valid() bool {
	return m == ModeECB || m == ModeCTR || m == ModeCBC
}

func checkParallel(mode Mode) error {
	if !mode.Parallel() {
		return fmt.Errorf("%w: %v is not supported by the parallel path", ErrInvalidMode, mode)
	}

	return nil
}

func checkKey(key []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrKeyLength, len(key), KeySize)
	}

	return nil
}
