package encryption

import (
	"bytes"
	"context"
	"errors"
	"fmt"
)

const (
	envelopeMagic   = "PCRY"
	envelopeVersion = byte(1)

	envelopeFlagExec = 0x01
)

// EnvelopeHeaderSize is the length of the file envelope preceding the payload.
const EnvelopeHeaderSize = len(envelopeMagic) + 3

// ErrEnvelope indicates a file that does not carry a valid envelope.
var ErrEnvelope = errors.New("invalid file envelope")

// newEnvelopeHeader lays out magic, version, flags and mode.
func newEnvelopeHeader(mode Mode, executable bool) []byte {
	header := make([]byte, EnvelopeHeaderSize)
	copy(header, envelopeMagic)

	header[len(envelopeMagic)] = envelopeVersion

	var flags byte

	if executable {
		flags |= envelopeFlagExec
	}

	header[len(envelopeMagic)+1] = flags
	header[len(envelopeMagic)+2] = byte(mode)

	return header
}

// parseEnvelopeHeader returns the payload mode and the executable flag.
func parseEnvelopeHeader(header []byte) (Mode, bool, error) {
	if len(header) < EnvelopeHeaderSize {
		return 0, false, fmt.Errorf("%w: header too short", ErrEnvelope)
	}

	if !bytes.Equal(header[:len(envelopeMagic)], []byte(envelopeMagic)) {
		return 0, false, fmt.Errorf("%w: bad magic", ErrEnvelope)
	}

	version := header[len(envelopeMagic)]
	if version != envelopeVersion {
		return 0, false, fmt.Errorf("%w: unsupported version %d", ErrEnvelope, version)
	}

	flags := header[len(envelopeMagic)+1]

	mode := Mode(header[len(envelopeMagic)+2])
	if !mode.valid() {
		return 0, false, fmt.Errorf("%w: unsupported mode %d", ErrEnvelope, byte(mode))
	}

	return mode, flags&envelopeFlagExec != 0, nil
}

// Seal wraps an in-memory buffer into an enveloped file image.
// ECB and CTR run on the parallel path; CBC runs serially.
func (e *Engine) Seal(ctx context.Context, buf, key []byte, mode Mode, workers int, executable bool) ([]byte, error) {
	var (
		payload []byte
		err     error
	)

	if mode.Parallel() {
		payload, err = e.Encrypt(ctx, buf, key, mode, workers)
	} else {
		payload, err = e.EncryptSerial(buf, key, mode)
	}

	if err != nil {
		return nil, err
	}

	return append(newEnvelopeHeader(mode, executable), payload...), nil
}

// Open reverses Seal, returning the plaintext and the executable flag.
func (e *Engine) Open(ctx context.Context, image, key []byte, workers int) ([]byte, bool, error) {
	mode, executable, err := parseEnvelopeHeader(image)
	if err != nil {
		return nil, false, err
	}

	payload := image[EnvelopeHeaderSize:]

	var plain []byte

	if mode.Parallel() {
		plain, err = e.Decrypt(ctx, payload, key, mode, workers)
	} else {
		plain, err = e.DecryptSerial(payload, key, mode)
	}

	if err != nil {
		return nil, false, err
	}

	return plain, executable, nil
}
