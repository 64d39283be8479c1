package encryption

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tink-crypto/tink-go/v2/subtle/random"

	"github.com/idelchi/pcrypt/internal/metrics"
)

// NonceSource returns a fresh CTR nonce of NonceSize bytes.
type NonceSource func() ([]byte, error)

// RandomNonce draws a nonce from the system CSPRNG.
func RandomNonce() ([]byte, error) {
	return random.GetRandomBytes(NonceSize), nil
}

// NewKey returns a random AES-256 key.
func NewKey() []byte {
	return random.GetRandomBytes(KeySize)
}

// Engine runs the plan, fan-out and reassembly cycle for parallel encryption and decryption.
type Engine struct {
	planner Planner
	pool    *Pool
	nonce   NonceSource
	logger  *logrus.Entry
	metrics *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithPlanner sets the chunk planner.
func WithPlanner(planner Planner) Option {
	return func(e *Engine) {
		e.planner = planner
	}
}

// WithPool sets the worker pool.
func WithPool(pool *Pool) Option {
	return func(e *Engine) {
		e.pool = pool
	}
}

// WithNonceSource sets the CTR nonce source.
func WithNonceSource(source NonceSource) Option {
	return func(e *Engine) {
		e.nonce = source
	}
}

// WithLogger sets the logger for the engine and its pool.
func WithLogger(logger *logrus.Logger) Option {
	return func(e *Engine) {
		e.logger = logrus.NewEntry(logger).WithField("component", "engine")
	}
}

// WithMetrics sets the metrics recorder for the engine and its pool.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates an Engine with the default planner and an unbounded pool.
func NewEngine(opts ...Option) *Engine {
	engine := &Engine{
		planner: DefaultPlanner(),
		pool:    &Pool{},
		nonce:   RandomNonce,
		logger:  discardLogger,
	}

	for _, opt := range opts {
		opt(engine)
	}

	if engine.pool.Logger == nil {
		engine.pool.Logger = engine.logger.WithField("component", "pool")
	}

	if engine.pool.Metrics == nil {
		engine.pool.Metrics = engine.metrics
	}

	return engine
}

// Planner returns the engine's chunk planner.
func (e *Engine) Planner() Planner {
	return e.planner
}

// Encrypt encrypts buf with key in mode, split over up to parallelism workers.
// The result is header || body as described by the mode; see HeaderSize.
func (e *Engine) Encrypt(ctx context.Context, buf, key []byte, mode Mode, parallelism int) ([]byte, error) {
	return e.encrypt(ctx, buf, key, mode, func(size int) Plan {
		return e.planner.Plan(size, parallelism, mode)
	})
}

// EncryptWithPlan encrypts like Encrypt but with a caller-forced plan over the body
// (the padded buffer for ECB). The plan is validated before any work is dispatched.
func (e *Engine) EncryptWithPlan(ctx context.Context, buf, key []byte, mode Mode, plan Plan) ([]byte, error) {
	return e.encrypt(ctx, buf, key, mode, func(int) Plan {
		return plan
	})
}

func (e *Engine) encrypt(ctx context.Context, buf, key []byte, mode Mode, planFor func(int) Plan) ([]byte, error) {
	return e.observe(mode, encrypting, len(buf), func() ([]byte, error) {
		if err := checkParallel(mode); err != nil {
			return nil, err
		}

		if err := checkKey(key); err != nil {
			return nil, err
		}

		var params Params

		body := buf

		switch mode {
		case ModeECB:
			body = pkcs7Pad(buf, BlockSize)
		case ModeCTR:
			nonce, err := e.newNonce()
			if err != nil {
				return nil, err
			}

			params.Nonce = nonce
		case ModeCBC:
		}

		payload, out := newPayload(mode, params, len(body))

		if _, err := e.run(ctx, encrypting, mode, key, params, planFor(len(body)), body, out); err != nil {
			return nil, err
		}

		return payload, nil
	})
}

func (e *Engine) newNonce() ([]byte, error) {
	nonce, err := e.nonce()
	if err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("nonce source returned %d bytes, want %d", len(nonce), NonceSize)
	}

	return nonce, nil
}

// Decrypt reverses Encrypt for a payload produced by either the parallel or the serial path.
func (e *Engine) Decrypt(ctx context.Context, payload, key []byte, mode Mode, parallelism int) ([]byte, error) {
	return e.observe(mode, decrypting, len(payload), func() ([]byte, error) {
		if err := checkParallel(mode); err != nil {
			return nil, err
		}

		if err := checkKey(key); err != nil {
			return nil, err
		}

		params, body, err := disassemble(mode, payload)
		if err != nil {
			return nil, err
		}

		if len(body) == 0 {
			return []byte{}, nil
		}

		out := make([]byte, len(body))

		plan := e.planner.Plan(len(body), parallelism, mode)

		if _, err := e.run(ctx, decrypting, mode, key, params, plan, body, out); err != nil {
			return nil, err
		}

		if mode == ModeECB {
			out, err = pkcs7Unpad(out)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrPayloadFormat, err)
			}
		}

		return out, nil
	})
}

// run validates the plan, derives per-chunk parameters and fans the jobs out to the pool.
func (e *Engine) run(
	ctx context.Context,
	dir direction,
	mode Mode,
	key []byte,
	params Params,
	plan Plan,
	src, dst []byte,
) ([]Result, error) {
	if err := plan.Validate(len(src), BlockSize); err != nil {
		return nil, err
	}

	jobs := make([]Job, len(plan))

	for i, chunk := range plan {
		job := Job{
			Index: i,
			Chunk: chunk,
			Mode:  mode,
			Key:   key,
			Src:   src[chunk.Offset:chunk.End()],
			Dst:   dst[chunk.Offset:chunk.End()],
			dir:   dir,
		}

		if mode == ModeCTR {
			counter, err := InitialCounter(chunk.Offset)
			if err != nil {
				return nil, err
			}

			job.Nonce = params.Nonce
			job.Counter = counter
		}

		jobs[i] = job
	}

	e.logger.WithFields(logrus.Fields{
		"mode":       mode,
		"direction":  dir,
		"bytes":      len(src),
		"partitions": len(plan),
	}).Debug("dispatching partitions")

	e.metrics.RecordPartitions(mode.String(), len(plan))

	return e.pool.Run(ctx, jobs)
}

// observe times an operation and records its outcome.
func (e *Engine) observe(mode Mode, dir direction, size int, operation func() ([]byte, error)) ([]byte, error) {
	start := time.Now()

	out, err := operation()
	if err != nil {
		e.metrics.RecordOperationError(mode.String(), dir.String(), errorType(err))

		return nil, err
	}

	e.metrics.RecordOperation(mode.String(), dir.String(), time.Since(start), size)

	return out, nil
}

// errorType maps an error onto a short metrics label.
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrWorkerFailure):
		return "worker_failure"
	case errors.Is(err, ErrInvalidMode):
		return "invalid_mode"
	case errors.Is(err, ErrKeyLength):
		return "key_length"
	case errors.Is(err, ErrAlignment):
		return "alignment"
	case errors.Is(err, ErrInvalidPlan):
		return "invalid_plan"
	case errors.Is(err, ErrPayloadFormat):
		return "payload_format"
	default:
		return "other"
	}
}

//nolint:gochecknoglobals
var defaultEngine = NewEngine()

// ParallelEncrypt encrypts buf with a default engine.
func ParallelEncrypt(ctx context.Context, buf, key []byte, mode Mode, parallelism int) ([]byte, error) {
	return defaultEngine.Encrypt(ctx, buf, key, mode, parallelism)
}

// ParallelDecrypt decrypts payload with a default engine.
func ParallelDecrypt(ctx context.Context, payload, key []byte, mode Mode, parallelism int) ([]byte, error) {
	return defaultEngine.Decrypt(ctx, payload, key, mode, parallelism)
}
