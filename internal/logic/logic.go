// Package logic implements the bodies of the pcrypt commands.
package logic

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"
	"github.com/sirupsen/logrus"

	"github.com/idelchi/pcrypt/internal/config"
	"github.com/idelchi/pcrypt/internal/encryption"
	"github.com/idelchi/pcrypt/internal/metrics"
)

// Run encrypts or decrypts the configured files.
func Run(ctx context.Context, cfg *config.Config) error {
	logger, err := NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	start := time.Now()

	proc, err := encryption.NewProcessor(cfg, newEngine(cfg, logger, nil), logger)
	if err != nil {
		return fmt.Errorf("creating processor: %w", err)
	}

	processed, errored, totalSize, err := proc.ProcessFiles(ctx)

	if cfg.Stats {
		printStats(os.Stderr, len(cfg.Files), processed, errored, totalSize, time.Since(start))
	}

	if err != nil {
		return fmt.Errorf("running logic: %w", err)
	}

	return nil
}

// RunKey writes a new hex-encoded AES-256 key to w.
func RunKey(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%x\n", encryption.NewKey())

	return err
}

// Show writes the resolved configuration as YAML.
func Show(w io.Writer, cfg *config.Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}

	_, err = w.Write(out)

	return err
}

// newEngine builds an engine whose pool honours the benchmark timeout and synthetic load.
func newEngine(cfg *config.Config, logger *logrus.Logger, m *metrics.Metrics) *encryption.Engine {
	pool := &encryption.Pool{
		Timeout:             cfg.Bench.Timeout,
		SyntheticIterations: cfg.Bench.Synthetic,
	}

	return encryption.NewEngine(
		encryption.WithPool(pool),
		encryption.WithLogger(logger),
		encryption.WithMetrics(m),
	)
}

func printStats(w io.Writer, files, processed, errored int, totalSize int64, duration time.Duration) {
	fmt.Fprintf(w, "\nStats\n")
	fmt.Fprintf(w, "  Files:     %d\n", files)
	fmt.Fprintf(w, "  Processed: %d\n", processed)
	fmt.Fprintf(w, "  Errors:    %d\n", errored)
	//nolint:gosec // totalSize is always non-negative (sum of file sizes)
	fmt.Fprintf(w, "  Size:      %s\n", humanize.IBytes(uint64(max(0, totalSize))))
	fmt.Fprintf(w, "  Duration:  %s\n", duration.Round(time.Millisecond))
}
