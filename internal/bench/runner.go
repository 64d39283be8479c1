package bench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/idelchi/pcrypt/internal/encryption"
	"github.com/idelchi/pcrypt/internal/metrics"
)

// ErrVerification is returned when a decrypted buffer differs from its input.
var ErrVerification = errors.New("decrypted output differs from input")

// Input is the data a benchmark run encrypts.
type Input struct {
	// Name labels the record, usually the data file name.
	Name string
	// Path is the file on disk, used by the openssl baseline.
	Path string
	Data []byte
}

// Runner times the serial and parallel paths of an engine.
type Runner struct {
	Engine  *encryption.Engine
	Sampler *Sampler
	Metrics *metrics.Metrics
	Logger  *logrus.Logger

	// OpenSSL adds an openssl CLI baseline to each record.
	OpenSSL bool

	now func() time.Time
}

// NewRunner returns a runner over engine with a gopsutil sampler.
func NewRunner(engine *encryption.Engine, m *metrics.Metrics, logger *logrus.Logger) *Runner {
	return &Runner{
		Engine:  engine,
		Sampler: NewSampler(),
		Metrics: m,
		Logger:  logger,
		now:     time.Now,
	}
}

// RunOne measures serial encrypt and decrypt, then parallel encrypt and decrypt with
// workers partitions, and verifies that both paths reproduce the input.
//
//nolint:funlen
func (r *Runner) RunOne(ctx context.Context, in Input, mode encryption.Mode, workers int) (Record, error) {
	if !mode.Parallel() {
		return Record{}, fmt.Errorf("%w: %v has no parallel path to benchmark", encryption.ErrInvalidMode, mode)
	}

	key := encryption.NewKey()

	start := time.Now()

	sealed, err := r.Engine.EncryptSerial(in.Data, key, mode)
	if err != nil {
		return Record{}, fmt.Errorf("serial encrypt: %w", err)
	}

	serialEncrypt := time.Since(start)
	start = time.Now()

	opened, err := r.Engine.DecryptSerial(sealed, key, mode)
	if err != nil {
		return Record{}, fmt.Errorf("serial decrypt: %w", err)
	}

	serialDecrypt := time.Since(start)

	if !bytes.Equal(opened, in.Data) {
		return Record{}, fmt.Errorf("%w: serial %v", ErrVerification, mode)
	}

	var parallelEncrypt, parallelDecrypt time.Duration

	parallelTotal, cpuAvg, err := r.sampler().Measure(ctx, func() error {
		start := time.Now()

		payload, err := r.Engine.Encrypt(ctx, in.Data, key, mode, workers)
		if err != nil {
			return fmt.Errorf("parallel encrypt: %w", err)
		}

		parallelEncrypt = time.Since(start)
		start = time.Now()

		plain, err := r.Engine.Decrypt(ctx, payload, key, mode, workers)
		if err != nil {
			return fmt.Errorf("parallel decrypt: %w", err)
		}

		parallelDecrypt = time.Since(start)

		if !bytes.Equal(plain, in.Data) {
			return fmt.Errorf("%w: parallel %v with %d workers", ErrVerification, mode, workers)
		}

		return nil
	})
	if err != nil {
		return Record{}, err
	}

	serialTotal := serialEncrypt + serialDecrypt

	record := Record{
		ID:              uuid.NewString(),
		Timestamp:       r.clock().UTC(),
		File:            in.Name,
		Bytes:           len(in.Data),
		Mode:            mode.String(),
		Threads:         workers,
		SerialEncrypt:   serialEncrypt.Seconds(),
		SerialDecrypt:   serialDecrypt.Seconds(),
		SerialTotal:     serialTotal.Seconds(),
		ParallelEncrypt: parallelEncrypt.Seconds(),
		ParallelDecrypt: parallelDecrypt.Seconds(),
		ParallelTotal:   parallelTotal.Seconds(),
		CPUPercent:      cpuAvg,
	}

	if parallelTotal > 0 {
		record.Speedup = serialTotal.Seconds() / parallelTotal.Seconds()
	}

	if r.OpenSSL && in.Path != "" {
		r.addOpenSSL(ctx, &record, in.Path, mode, key)
	}

	r.Metrics.RecordSpeedup(record.Mode, workers, record.Speedup)

	r.logger().WithFields(logrus.Fields{
		"file":     record.File,
		"mode":     record.Mode,
		"threads":  workers,
		"serial":   serialTotal,
		"parallel": parallelTotal,
		"speedup":  fmt.Sprintf("%.2fx", record.Speedup),
		"cpu":      fmt.Sprintf("%.1f%%", cpuAvg),
	}).Info("benchmark complete")

	return record, nil
}

func (r *Runner) addOpenSSL(ctx context.Context, record *Record, path string, mode encryption.Mode, key []byte) {
	elapsed, err := OpenSSL(ctx, path, mode, key)

	switch {
	case errors.Is(err, ErrOpenSSLMissing):
		r.logger().Warn("openssl baseline skipped: binary not found")
	case err != nil:
		r.logger().WithError(err).Warn("openssl baseline failed")
	default:
		record.OpenSSL = elapsed.Seconds()
	}
}

// Sweep runs RunOne once per worker count, in order. A nil list uses DefaultThreads.
func (r *Runner) Sweep(ctx context.Context, in Input, mode encryption.Mode, workers []int) ([]Record, error) {
	if len(workers) == 0 {
		workers = DefaultThreads
	}

	records := make([]Record, 0, len(workers))

	for _, w := range workers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := r.RunOne(ctx, in, mode, w)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}

// Grid runs the sweep for every size and mode, reading data files from dataDir.
func (r *Runner) Grid(ctx context.Context, dataDir string, sweep Sweep) ([]Record, error) {
	if err := sweep.Validate(); err != nil {
		return nil, err
	}

	var records []Record

	for _, size := range sweep.SizesMB {
		data, err := LoadData(dataDir, size)
		if err != nil {
			return nil, err
		}

		in := Input{Name: DataName(size), Path: DataPath(dataDir, size), Data: data}

		for _, name := range sweep.Modes {
			mode, err := encryption.ParseMode(name)
			if err != nil {
				return nil, err
			}

			batch, err := r.Sweep(ctx, in, mode, sweep.Workers)
			if err != nil {
				return nil, err
			}

			records = append(records, batch...)
		}
	}

	return records, nil
}

func (r *Runner) sampler() *Sampler {
	if r.Sampler != nil {
		return r.Sampler
	}

	return NewSampler()
}

func (r *Runner) clock() time.Time {
	if r.now != nil {
		return r.now()
	}

	return time.Now()
}

func (r *Runner) logger() *logrus.Logger {
	if r.Logger != nil {
		return r.Logger
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logger
}
