package bench

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/idelchi/pcrypt/internal/encryption"
)

// ErrOpenSSLMissing is returned when the openssl binary is not on PATH.
var ErrOpenSSLMissing = errors.New("openssl not found on PATH")

// zeroIV is passed to openssl for modes that take an IV.
const zeroIV = "00000000000000000000000000000000"

// OpenSSL times `openssl enc` encrypting the file at path with key in mode.
// The ciphertext is written to a temporary file and discarded.
func OpenSSL(ctx context.Context, path string, mode encryption.Mode, key []byte) (time.Duration, error) {
	binary, err := exec.LookPath("openssl")
	if err != nil {
		return 0, ErrOpenSSLMissing
	}

	out, err := os.CreateTemp("", "pcrypt-openssl-*")
	if err != nil {
		return 0, fmt.Errorf("creating openssl output: %w", err)
	}

	out.Close()

	defer os.Remove(out.Name())

	args := []string{
		"enc", "-aes-256-" + strings.ToLower(mode.String()),
		"-in", path,
		"-out", out.Name(),
		"-K", hex.EncodeToString(key),
	}

	if mode != encryption.ModeECB {
		args = append(args, "-iv", zeroIV)
	}

	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec // arguments are not shell-interpreted

	start := time.Now()

	if output, err := cmd.CombinedOutput(); err != nil {
		return 0, fmt.Errorf("running openssl: %w: %s", err, strings.TrimSpace(string(output)))
	}

	return time.Since(start), nil
}
