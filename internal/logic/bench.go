package logic

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/idelchi/pcrypt/internal/bench"
	"github.com/idelchi/pcrypt/internal/config"
	"github.com/idelchi/pcrypt/internal/metrics"
	"github.com/idelchi/pcrypt/internal/server"
)

// RunData generates one random data file per size into the data directory.
func RunData(cfg *config.Config, sizes []int) error {
	logger, err := NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	for _, size := range sizes {
		path, err := bench.GenerateFile(cfg.Bench.DataDir, size)
		if err != nil {
			return err
		}

		if !cfg.Quiet {
			logger.WithFields(logrus.Fields{
				"path": path,
				//nolint:gosec // size is validated positive
				"size": humanize.IBytes(uint64(size) * bench.MiB),
			}).Info("generated data file")
		}
	}

	return nil
}

// RunBench runs the configured sweep, saves the records and prints a summary table.
func RunBench(ctx context.Context, cfg *config.Config) error {
	logger, err := NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	sweep, err := resolveSweep(cfg)
	if err != nil {
		return err
	}

	runner := newRunner(cfg, logger, nil)

	records, err := runner.Grid(ctx, cfg.Bench.DataDir, sweep)
	if err != nil {
		return fmt.Errorf("running benchmarks: %w", err)
	}

	store := bench.NewStore(cfg.Bench.ResultsDir, logger)
	if err := store.Append(records...); err != nil {
		return fmt.Errorf("saving results: %w", err)
	}

	if !cfg.Quiet {
		printRecords(os.Stdout, records)
	}

	logger.WithFields(logrus.Fields{
		"records": len(records),
		"json":    store.JSONPath(),
		"csv":     store.CSVPath(),
	}).Info("benchmarks saved")

	return nil
}

// RunServe serves the benchmark API until ctx is cancelled.
func RunServe(ctx context.Context, cfg *config.Config) error {
	logger, err := NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	m := metrics.NewMetrics()

	srv := &server.Server{
		Runner:  newRunner(cfg, logger, m),
		Store:   bench.NewStore(cfg.Bench.ResultsDir, logger),
		Metrics: m,
		Logger:  logger,
		DataDir: cfg.Bench.DataDir,
		Threads: cfg.Bench.Threads,
	}

	return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
}

func newRunner(cfg *config.Config, logger *logrus.Logger, m *metrics.Metrics) *bench.Runner {
	runner := bench.NewRunner(newEngine(cfg, logger, m), m, logger)
	runner.OpenSSL = cfg.Bench.OpenSSL

	return runner
}

// resolveSweep prefers a sweep file and falls back to the size, mode and thread flags.
func resolveSweep(cfg *config.Config) (bench.Sweep, error) {
	if cfg.Bench.Sweep != "" {
		return bench.LoadSweep(cfg.Bench.Sweep)
	}

	sweep := bench.DefaultSweep()

	if len(cfg.Bench.Sizes) > 0 {
		sweep.SizesMB = cfg.Bench.Sizes
	}

	if len(cfg.Bench.Modes) > 0 {
		sweep.Modes = cfg.Bench.Modes
	}

	if len(cfg.Bench.Threads) > 0 {
		sweep.Workers = cfg.Bench.Threads
	}

	return sweep, sweep.Validate()
}

func printRecords(w io.Writer, records []bench.Record) {
	table := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(table, "FILE\tSIZE\tMODE\tTHREADS\tSERIAL\tPARALLEL\tSPEEDUP\tCPU\tTHROUGHPUT")

	for _, r := range records {
		var throughput string
		if r.ParallelTotal > 0 {
			//nolint:gosec // byte counts are non-negative
			throughput = humanize.IBytes(uint64(float64(r.Bytes)/r.ParallelTotal)) + "/s"
		}

		//nolint:gosec // byte counts are non-negative
		fmt.Fprintf(table, "%s\t%s\t%s\t%d\t%.4fs\t%.4fs\t%.2fx\t%.1f%%\t%s\n",
			r.File, humanize.IBytes(uint64(r.Bytes)), r.Mode, r.Threads,
			r.SerialTotal, r.ParallelTotal, r.Speedup, r.CPUPercent, throughput)
	}

	table.Flush()
}
