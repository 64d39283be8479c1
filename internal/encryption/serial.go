package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/tink-crypto/tink-go/v2/subtle/random"
)

// EncryptSerial encrypts buf in a single pass. It is the reference the parallel
// path must match byte for byte, and the only path supporting CBC.
func (e *Engine) EncryptSerial(buf, key []byte, mode Mode) ([]byte, error) {
	if !mode.valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMode, mode)
	}

	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeECB:
		padded := pkcs7Pad(buf, BlockSize)
		payload, body := newPayload(mode, Params{}, len(padded))

		if err := cryptECB(block, encrypting, body, padded); err != nil {
			return nil, err
		}

		return payload, nil
	case ModeCBC:
		iv := random.GetRandomBytes(BlockSize)
		padded := pkcs7Pad(buf, BlockSize)
		payload, body := newPayload(mode, Params{Nonce: iv}, len(padded))

		cipher.NewCBCEncrypter(block, iv).CryptBlocks(body, padded)

		return payload, nil
	case ModeCTR:
		nonce, err := e.newNonce()
		if err != nil {
			return nil, err
		}

		payload, body := newPayload(mode, Params{Nonce: nonce}, len(buf))

		cipher.NewCTR(block, counterBlock(nonce, 0)).XORKeyStream(body, buf)

		return payload, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidMode, mode)
	}
}

// DecryptSerial decrypts a payload produced by EncryptSerial or Encrypt in a single pass.
func (e *Engine) DecryptSerial(payload, key []byte, mode Mode) ([]byte, error) {
	if !mode.valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMode, mode)
	}

	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}

	params, body, err := disassemble(mode, payload)
	if err != nil {
		return nil, err
	}

	if len(body) == 0 {
		return []byte{}, nil
	}

	plain := make([]byte, len(body))

	switch mode {
	case ModeCTR:
		cipher.NewCTR(block, counterBlock(params.Nonce, 0)).XORKeyStream(plain, body)

		return plain, nil
	case ModeECB:
		if err := cryptECB(block, decrypting, plain, body); err != nil {
			return nil, err
		}
	case ModeCBC:
		cipher.NewCBCDecrypter(block, params.Nonce).CryptBlocks(plain, body)
	}

	unpadded, err := pkcs7Unpad(plain)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPayloadFormat, err)
	}

	return unpadded, nil
}

func newBlock(key []byte) (cipher.Block, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	return block, nil
}
