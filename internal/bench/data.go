package bench

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tink-crypto/tink-go/v2/subtle/random"

	"github.com/idelchi/pcrypt/internal/fileutil"
)

// MiB is one mebibyte, the unit of data file sizes.
const MiB = 1024 * 1024

// ErrDataMissing is returned when a benchmark data file has not been generated.
var ErrDataMissing = errors.New("data file missing, generate it first")

// ErrInvalidSize is returned for a non-positive data size.
var ErrInvalidSize = errors.New("size must be a positive number of MB")

// DataName returns the file name used for a data file of sizeMB.
func DataName(sizeMB int) string {
	return fmt.Sprintf("sample_%dMB.bin", sizeMB)
}

// DataPath returns the path of the data file of sizeMB under dir.
func DataPath(dir string, sizeMB int) string {
	return filepath.Join(dir, DataName(sizeMB))
}

// GenerateFile writes sizeMB MiB of random bytes to dir and returns the path.
func GenerateFile(dir string, sizeMB int) (string, error) {
	if sizeMB <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidSize, sizeMB)
	}

	path := DataPath(dir, sizeMB)

	//nolint:gosec // sizeMB is bounded by the caller's configuration
	if err := fileutil.WriteAtomic(path, random.GetRandomBytes(uint32(sizeMB * MiB))); err != nil {
		return "", fmt.Errorf("generating %q: %w", path, err)
	}

	return path, nil
}

// LoadData reads the data file of sizeMB from dir.
func LoadData(dir string, sizeMB int) ([]byte, error) {
	if sizeMB <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, sizeMB)
	}

	path := DataPath(dir, sizeMB)

	data, err := os.ReadFile(path) //nolint:gosec // path is built from a configured directory
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDataMissing, path)
	}

	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	return data, nil
}
