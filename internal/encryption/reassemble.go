package encryption

import (
	"fmt"
)

// Params holds the mode-specific parameters carried in a payload header.
type Params struct {
	// Nonce is the CTR nonce prefix, or the CBC IV on the serial path.
	Nonce []byte
}

// header returns the payload header for the mode.
func header(mode Mode, params Params) []byte {
	out := make([]byte, mode.HeaderSize())

	if mode == ModeCTR || mode == ModeCBC {
		copy(out, params.Nonce)
	}

	return out
}

// newPayload allocates the output arena: the header followed by bodyLen bytes
// into which the workers write their disjoint ranges.
func newPayload(mode Mode, params Params, bodyLen int) (payload, body []byte) {
	head := header(mode, params)

	payload = make([]byte, len(head)+bodyLen)
	copy(payload, head)

	return payload, payload[len(head):]
}

// disassemble splits a payload into its mode parameters and body.
func disassemble(mode Mode, payload []byte) (Params, []byte, error) {
	size := mode.HeaderSize()
	if size == 0 {
		return Params{}, nil, fmt.Errorf("%w: %v", ErrInvalidMode, mode)
	}

	if len(payload) < size {
		return Params{}, nil, fmt.Errorf("%w: %d-byte payload shorter than %d-byte %v header",
			ErrPayloadFormat, len(payload), size, mode)
	}

	body := payload[size:]

	var params Params

	switch mode {
	case ModeCTR, ModeCBC:
		params.Nonce = payload[:size]
	case ModeECB:
	}

	if mode != ModeCTR && len(body)%BlockSize != 0 {
		return Params{}, nil, fmt.Errorf("%w: %v body of %d bytes is not a multiple of %d",
			ErrPayloadFormat, mode, len(body), BlockSize)
	}

	return params, body, nil
}
