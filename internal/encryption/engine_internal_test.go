package encryption

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingEngine returns an engine whose pool fails the job with the given index.
func failingEngine(index int) *Engine {
	pool := &Pool{
		beforeJob: func(job *Job) error {
			if job.Index == index {
				return errInjected
			}

			return nil
		},
	}

	return NewEngine(
		WithPlanner(Planner{MinChunkBytes: 1, MaxWorkers: 8}),
		WithPool(pool),
	)
}

func TestEngineWorkerFailureReturnsNoPayload(t *testing.T) {
	t.Parallel()

	plain := ramp(100)

	for _, mode := range []Mode{ModeECB, ModeCTR} {
		t.Run(mode.String()+"/encrypt", func(t *testing.T) {
			t.Parallel()

			payload, err := failingEngine(2).Encrypt(context.Background(), plain, poolKey(), mode, 4)
			assert.Nil(t, payload)
			require.ErrorIs(t, err, ErrWorkerFailure)
			require.ErrorIs(t, err, errInjected)

			var workerErr *WorkerError
			require.ErrorAs(t, err, &workerErr)
			assert.Equal(t, 2, workerErr.Index)
		})

		t.Run(mode.String()+"/decrypt", func(t *testing.T) {
			t.Parallel()

			payload, err := NewEngine().Encrypt(context.Background(), plain, poolKey(), mode, 4)
			require.NoError(t, err)

			got, err := failingEngine(0).Decrypt(context.Background(), payload, poolKey(), mode, 4)
			assert.Nil(t, got)
			require.ErrorIs(t, err, ErrWorkerFailure)
			require.ErrorIs(t, err, errInjected)
		})
	}
}

func ramp(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 64)
	}

	return data
}
