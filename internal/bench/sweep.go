package bench

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/idelchi/pcrypt/internal/encryption"
)

// DefaultThreads is the worker sweep used when none is configured.
//
//nolint:gochecknoglobals
var DefaultThreads = []int{1, 2, 4, 8, 16, 32, 64}

// Sweep is a grid of benchmark runs.
type Sweep struct {
	SizesMB []int    `json:"sizes_mb"`
	Modes   []string `json:"modes"`
	Workers []int    `json:"workers"`
}

// DefaultSweep returns the grid run when no sweep file is given.
func DefaultSweep() Sweep {
	return Sweep{
		SizesMB: []int{10, 50, 100},
		Modes:   []string{"ECB", "CTR"},
		Workers: []int{1, 2, 4, 8},
	}
}

// LoadSweep reads a JSONC sweep file. Omitted fields keep their DefaultSweep value.
func LoadSweep(path string) (Sweep, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from user-supplied config
	if err != nil {
		return Sweep{}, fmt.Errorf("reading sweep file %q: %w", path, err)
	}

	sweep := DefaultSweep()

	if err := json.Unmarshal(jsonc.ToJSONInPlace(data), &sweep); err != nil {
		return Sweep{}, fmt.Errorf("parsing sweep file %q: %w", path, err)
	}

	if err := sweep.Validate(); err != nil {
		return Sweep{}, fmt.Errorf("sweep file %q: %w", path, err)
	}

	return sweep, nil
}

// Validate checks every size, mode and worker count in the grid.
func (s Sweep) Validate() error {
	for _, size := range s.SizesMB {
		if size <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidSize, size)
		}
	}

	for _, name := range s.Modes {
		mode, err := encryption.ParseMode(name)
		if err != nil {
			return err
		}

		if !mode.Parallel() {
			return fmt.Errorf("%w: %v has no parallel path to benchmark", encryption.ErrInvalidMode, mode)
		}
	}

	for _, w := range s.Workers {
		if w <= 0 {
			return fmt.Errorf("worker count must be positive, got %d", w)
		}
	}

	return nil
}
