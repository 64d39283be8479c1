package encryption

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyData is returned when attempting to unpad empty input data.
	ErrEmptyData = errors.New("empty data")
	// ErrInvalidPadding is returned when PKCS7 padding is malformed.
	ErrInvalidPadding = errors.New("invalid padding")
	// ErrInvalidMode is returned for a mode the requested path does not support.
	ErrInvalidMode = errors.New("invalid cipher mode")
	// ErrKeyLength is returned when the key is not exactly KeySize bytes.
	ErrKeyLength = errors.New("invalid key length")
	// ErrAlignment is returned when a chunk boundary is not a multiple of the block size.
	ErrAlignment = errors.New("chunk boundary not block-aligned")
	// ErrInvalidPlan is returned when a chunk plan does not exactly cover its buffer.
	ErrInvalidPlan = errors.New("invalid chunk plan")
	// ErrWorkerFailure is matched by every error returned from a failed worker.
	ErrWorkerFailure = errors.New("worker failure")
	// ErrTimeout is the cause of a WorkerError when the pool's bounded wait expires.
	ErrTimeout = errors.New("timed out waiting for workers")
	// ErrPayloadFormat is returned when an encrypted payload cannot be parsed.
	ErrPayloadFormat = errors.New("malformed payload")
)

// WorkerError reports the failure of a single execution unit.
// Index is -1 when the failure is not attributable to one job (timeout, cancellation).
type WorkerError struct {
	Index int
	Cause error
}

func (e *WorkerError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v: %v", ErrWorkerFailure, e.Cause)
	}

	return fmt.Sprintf("%v: job %d: %v", ErrWorkerFailure, e.Index, e.Cause)
}

// Unwrap exposes both ErrWorkerFailure and the underlying cause to errors.Is / errors.As.
func (e *WorkerError) Unwrap() []error {
	return []error{ErrWorkerFailure, e.Cause}
}
