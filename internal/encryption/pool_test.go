package encryption

import (
	"bytes"
	"context"
	"crypto/cipher"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInjected = errors.New("injected failure")

func poolKey() []byte {
	return bytes.Repeat([]byte{0x42}, KeySize)
}

// ctrJobs builds CTR jobs over plan with src and dst slices of a shared arena.
func ctrJobs(t *testing.T, plan Plan, src, dst []byte) []Job {
	t.Helper()

	nonce := []byte("01234567")
	jobs := make([]Job, len(plan))

	for i, chunk := range plan {
		counter, err := InitialCounter(chunk.Offset)
		require.NoError(t, err)

		jobs[i] = Job{
			Index:   i,
			Chunk:   chunk,
			Mode:    ModeCTR,
			Key:     poolKey(),
			Nonce:   nonce,
			Counter: counter,
			Src:     src[chunk.Offset:chunk.End()],
			Dst:     dst[chunk.Offset:chunk.End()],
			dir:     encrypting,
		}
	}

	return jobs
}

func TestPoolResultsInIndexOrder(t *testing.T) {
	t.Parallel()

	plan := evenPlan(16*8, 8)
	src := bytes.Repeat([]byte{0xaa}, plan.Total())
	dst := make([]byte, len(src))

	var (
		mu    sync.Mutex
		order []int
	)

	// Later jobs finish first.
	pool := &Pool{
		beforeJob: func(job *Job) error {
			time.Sleep(time.Duration(len(plan)-job.Index) * 2 * time.Millisecond)

			mu.Lock()
			order = append(order, job.Index)
			mu.Unlock()

			return nil
		},
	}

	results, err := pool.Run(context.Background(), ctrJobs(t, plan, src, dst))
	require.NoError(t, err)
	require.Len(t, results, len(plan))

	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, plan[i], r.Chunk)
		assert.Equal(t, plan[i].Length, r.Bytes)
	}

	assert.Len(t, order, len(plan))

	block, err := newBlock(poolKey())
	require.NoError(t, err)

	want := make([]byte, len(src))
	cipher.NewCTR(block, counterBlock([]byte("01234567"), 0)).XORKeyStream(want, src)

	assert.Equal(t, want, dst)
}

func TestPoolFailureIsAllOrNothing(t *testing.T) {
	t.Parallel()

	plan := evenPlan(64, 4)
	src := make([]byte, 64)
	dst := make([]byte, 64)

	pool := &Pool{
		beforeJob: func(job *Job) error {
			if job.Index == 1 {
				return errInjected
			}

			return nil
		},
	}

	results, err := pool.Run(context.Background(), ctrJobs(t, plan, src, dst))
	require.Error(t, err)
	assert.Nil(t, results)

	require.ErrorIs(t, err, ErrWorkerFailure)
	require.ErrorIs(t, err, errInjected)

	var workerErr *WorkerError
	require.ErrorAs(t, err, &workerErr)
	assert.Equal(t, 1, workerErr.Index)
}

func TestPoolTransformFailure(t *testing.T) {
	t.Parallel()

	src := make([]byte, 32)
	jobs := []Job{{
		Index: 0,
		Chunk: Chunk{Offset: 0, Length: 32},
		Mode:  ModeCTR,
		Key:   poolKey(),
		Nonce: []byte("01234567"),
		Src:   src,
		Dst:   make([]byte, 16),
		dir:   encrypting,
	}}

	_, err := (&Pool{}).Run(context.Background(), jobs)
	require.ErrorIs(t, err, ErrWorkerFailure)
}

func TestPoolTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	plan := evenPlan(32, 2)
	src := make([]byte, 32)
	dst := make([]byte, 32)

	pool := &Pool{
		Timeout: 20 * time.Millisecond,
		beforeJob: func(job *Job) error {
			if job.Index == 0 {
				<-release
			}

			return nil
		},
	}

	results, err := pool.Run(context.Background(), ctrJobs(t, plan, src, dst))
	assert.Nil(t, results)
	require.ErrorIs(t, err, ErrTimeout)
	require.ErrorIs(t, err, ErrWorkerFailure)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	var workerErr *WorkerError
	require.ErrorAs(t, err, &workerErr)
	assert.Equal(t, -1, workerErr.Index)
}

func TestPoolCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan := evenPlan(64, 4)
	src := make([]byte, 64)
	dst := make([]byte, 64)

	results, err := (&Pool{Limit: 1}).Run(ctx, ctrJobs(t, plan, src, dst))
	assert.Nil(t, results)
	require.ErrorIs(t, err, ErrWorkerFailure)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPoolLimit(t *testing.T) {
	t.Parallel()

	plan := evenPlan(16*6, 6)
	src := make([]byte, plan.Total())
	dst := make([]byte, len(src))

	var (
		mu      sync.Mutex
		running int
		peak    int
	)

	pool := &Pool{
		Limit: 2,
		beforeJob: func(*Job) error {
			mu.Lock()
			running++
			peak = max(peak, running)
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()

			return nil
		},
	}

	_, err := pool.Run(context.Background(), ctrJobs(t, plan, src, dst))
	require.NoError(t, err)
	assert.LessOrEqual(t, peak, 2)
}

func TestPoolSyntheticLoadKeepsOutput(t *testing.T) {
	t.Parallel()

	plan := evenPlan(16*4, 4)
	src := bytes.Repeat([]byte{0x5a}, plan.Total())

	plain := make([]byte, len(src))
	_, err := (&Pool{}).Run(context.Background(), ctrJobs(t, plan, src, plain))
	require.NoError(t, err)

	loaded := make([]byte, len(src))
	_, err = (&Pool{SyntheticIterations: 100_000}).Run(context.Background(), ctrJobs(t, plan, src, loaded))
	require.NoError(t, err)

	assert.Equal(t, plain, loaded)
}

func TestIterationsPerJob(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, (&Pool{}).iterationsPerJob(4))
	assert.Equal(t, 250, (&Pool{SyntheticIterations: 1000}).iterationsPerJob(4))
	assert.Equal(t, minSyntheticIterations, (&Pool{SyntheticIterations: 10}).iterationsPerJob(4))
}

func TestPoolEmpty(t *testing.T) {
	t.Parallel()

	results, err := (&Pool{}).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCheckIndices(t *testing.T) {
	t.Parallel()

	require.NoError(t, checkIndices([]Job{{Index: 1}, {Index: 0}}))
	require.ErrorIs(t, checkIndices([]Job{{Index: 0}, {Index: 0}}), ErrInvalidPlan)
	require.ErrorIs(t, checkIndices([]Job{{Index: 2}, {Index: 0}}), ErrInvalidPlan)
	require.ErrorIs(t, checkIndices([]Job{{Index: -1}}), ErrInvalidPlan)
}

func TestWorkerErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "worker failure: job 3: injected failure", (&WorkerError{Index: 3, Cause: errInjected}).Error())
}
