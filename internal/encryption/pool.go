package encryption

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/idelchi/pcrypt/internal/metrics"
)

// minSyntheticIterations is the per-job floor of the synthetic workload.
const minSyntheticIterations = 100

// Result describes a completed job. Results are indexed by Job.Index.
type Result struct {
	Index   int
	Chunk   Chunk
	Bytes   int
	Elapsed time.Duration
}

// Pool runs jobs concurrently with an all-or-nothing completion barrier.
// The zero value runs one goroutine per job without a timeout.
type Pool struct {
	// Limit bounds the number of concurrently running jobs; zero means unbounded.
	Limit int
	// Timeout bounds the wait for all jobs; zero waits until completion or failure.
	Timeout time.Duration
	// SyntheticIterations is the total synthetic workload split across the jobs of one run.
	// It only burns CPU and has no effect on output.
	SyntheticIterations int

	Logger  *logrus.Entry
	Metrics *metrics.Metrics

	// beforeJob runs ahead of each transform; a non-nil error fails the job.
	beforeJob func(*Job) error
}

// Run executes every job and returns their results in job index order.
// The first failing job aborts the run: jobs not yet started are skipped and no
// results are returned. Each job writes only to its own Dst range.
//
//nolint:cyclop,funlen
func (p *Pool) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	if err := checkIndices(jobs); err != nil {
		return nil, err
	}

	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results, nil
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	group, gctx := errgroup.WithContext(ctx)
	if p.Limit > 0 {
		group.SetLimit(p.Limit)
	}

	iterations := p.iterationsPerJob(len(jobs))
	logger := p.logger()

	done := make(chan error, 1)

	go func() {
		for i := range jobs {
			job := &jobs[i]

			group.Go(func() error {
				if err := gctx.Err(); err != nil {
					return &WorkerError{Index: job.Index, Cause: context.Cause(gctx)}
				}

				start := time.Now()

				if p.beforeJob != nil {
					if err := p.beforeJob(job); err != nil {
						return p.fail(job, err)
					}
				}

				runtime.KeepAlive(syntheticLoad(iterations))

				if err := job.transform(); err != nil {
					return p.fail(job, err)
				}

				elapsed := time.Since(start)

				p.Metrics.RecordJob(job.Mode.String(), job.dir.String(), elapsed)

				results[job.Index] = Result{
					Index:   job.Index,
					Chunk:   job.Chunk,
					Bytes:   len(job.Dst),
					Elapsed: elapsed,
				}

				return nil
			})
		}

		done <- group.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}

		logger.WithField("jobs", len(jobs)).Debug("all workers completed")

		return results, nil
	case <-ctx.Done():
		cause := ctx.Err()
		if errors.Is(cause, context.DeadlineExceeded) {
			cause = fmt.Errorf("%w after %s: %w", ErrTimeout, p.Timeout, cause)
		}

		logger.WithError(cause).Warn("abandoning outstanding workers")

		return nil, &WorkerError{Index: -1, Cause: cause}
	}
}

// fail wraps a job error and records it.
func (p *Pool) fail(job *Job, err error) error {
	p.Metrics.RecordWorkerFailure(job.Mode.String(), job.dir.String())

	p.logger().WithFields(logrus.Fields{
		"job":    job.Index,
		"offset": job.Chunk.Offset,
		"length": job.Chunk.Length,
	}).WithError(err).Debug("worker failed")

	return &WorkerError{Index: job.Index, Cause: err}
}

func (p *Pool) iterationsPerJob(jobs int) int {
	if p.SyntheticIterations <= 0 {
		return 0
	}

	return max(minSyntheticIterations, p.SyntheticIterations/jobs)
}

func (p *Pool) logger() *logrus.Entry {
	if p.Logger != nil {
		return p.Logger
	}

	return discardLogger
}

// checkIndices ensures every job index is unique and within [0, len(jobs)).
func checkIndices(jobs []Job) error {
	seen := make([]bool, len(jobs))

	for _, job := range jobs {
		if job.Index < 0 || job.Index >= len(jobs) || seen[job.Index] {
			return fmt.Errorf("%w: job index %d out of range or repeated", ErrInvalidPlan, job.Index)
		}

		seen[job.Index] = true
	}

	return nil
}

// syntheticLoad burns CPU for the given number of iterations.
func syntheticLoad(iterations int) uint64 {
	var dummy uint64

	for range iterations {
		dummy = (dummy*1234567 + 89123) % 999999937
	}

	return dummy
}

//nolint:gochecknoglobals
var discardLogger = func() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logrus.NewEntry(logger)
}()
