package encryption

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/idelchi/pcrypt/internal/config"
	"github.com/idelchi/pcrypt/internal/fileutil"
)

// FileResult represents the outcome of processing a single file.
type FileResult struct {
	// Input file path
	Input string

	// Output file path
	Output string

	// Output file size in bytes
	OutputSize int64

	// Any error that occurred during processing
	Error error
}

// ErrSameFile is returned when the output path would overwrite the input.
var ErrSameFile = errors.New("output path equals input path")

// Processor handles the encryption and decryption of files.
type Processor struct {
	cfg    *config.Config
	engine *Engine
	logger *logrus.Logger

	key  []byte
	mode Mode

	// results channels processing outcomes to the reporting goroutine
	results chan FileResult
}

// NewProcessor creates a Processor for the files in cfg.
func NewProcessor(cfg *config.Config, engine *Engine, logger *logrus.Logger) (*Processor, error) {
	key, err := cfg.KeyBytes()
	if err != nil {
		return nil, fmt.Errorf("reading key: %w", err)
	}

	if err := checkKey(key); err != nil {
		return nil, err
	}

	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	return &Processor{
		cfg:     cfg,
		engine:  engine,
		logger:  logger,
		key:     key,
		mode:    mode,
		results: make(chan FileResult, len(cfg.Files)),
	}, nil
}

// ProcessFiles concurrently encrypts or decrypts every configured file.
// Returns the number of successfully processed files and the number of errors.
//
//nolint:cyclop
func (p *Processor) ProcessFiles(ctx context.Context) (processed, errored int, totalSize int64, err error) {
	group := errgroup.Group{}
	group.SetLimit(p.cfg.Concurrency)

	done := make(chan struct{})

	go func() {
		defer close(done)

		for result := range p.results {
			if result.Error != nil {
				errored++

				p.logger.WithField("file", result.Input).WithError(result.Error).Error("processing failed")

				continue
			}

			processed++

			totalSize += result.OutputSize

			if !p.cfg.Quiet {
				p.logger.WithFields(logrus.Fields{
					"input":  result.Input,
					"output": result.Output,
				}).Info("processed")
			}

			if p.cfg.Delete {
				if err := os.Remove(result.Input); err != nil {
					p.logger.WithField("file", result.Input).WithError(err).Error("deleting source failed")
				} else if !p.cfg.Quiet {
					p.logger.WithField("file", result.Input).Info("deleted")
				}
			}
		}
	}()

	for _, file := range p.cfg.Files {
		group.Go(func() error {
			outPath := p.outputPath(file)

			size, err := p.processFile(ctx, file, outPath)
			if err != nil {
				p.results <- FileResult{Input: file, Error: err}

				return err
			}

			p.results <- FileResult{Input: file, Output: outPath, OutputSize: size}

			return nil
		})
	}

	err = group.Wait()

	close(p.results)

	<-done

	if err != nil {
		return processed, errored, totalSize, fmt.Errorf("processing files: %w", err)
	}

	return processed, errored, totalSize, nil
}

// processFile seals or opens one file and writes the result atomically.
func (p *Processor) processFile(ctx context.Context, filename, outPath string) (size int64, err error) {
	if filepath.Clean(filename) == filepath.Clean(outPath) {
		return 0, fmt.Errorf("%w: %q", ErrSameFile, filename)
	}

	tc, err := fileutil.NewTempContext(filename, outPath)
	if err != nil {
		return 0, fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	data, err := os.ReadFile(filepath.Clean(filename))
	if err != nil {
		return 0, fmt.Errorf("reading input file: %w", err)
	}

	var (
		out        []byte
		executable = tc.IsExec
	)

	if p.cfg.Decrypt {
		out, executable, err = p.engine.Open(ctx, data, p.key, p.cfg.Workers)
		if err != nil {
			return 0, fmt.Errorf("decrypting file: %w", err)
		}
	} else {
		out, err = p.engine.Seal(ctx, data, p.key, p.mode, p.cfg.Workers, executable)
		if err != nil {
			return 0, fmt.Errorf("encrypting file: %w", err)
		}
	}

	if err := tc.Commit(out, outPath, executable); err != nil {
		return 0, err
	}

	size, err = fileutil.FinalizeOutput(outPath, p.cfg.PreserveTimestamps, tc.SrcInfo.ModTime())
	if err != nil {
		return 0, fmt.Errorf("finalizing output: %w", err)
	}

	return size, nil
}

// outputPath derives the output name from the configured suffixes.
func (p *Processor) outputPath(filename string) string {
	ext := p.cfg.Suffixes.Encrypt

	if p.cfg.Decrypt {
		filename = strings.TrimSuffix(filename, p.cfg.Suffixes.Encrypt)
		ext = p.cfg.Suffixes.Decrypt
	}

	return filepath.Join(filepath.Dir(filename), filepath.Base(filename)+ext)
}
