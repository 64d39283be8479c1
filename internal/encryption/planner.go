package encryption

import (
	"fmt"
	"runtime"
)

// DefaultMinChunkBytes is the smallest partition the planner creates before
// collapsing to fewer workers.
const DefaultMinChunkBytes = 32 * 1024 * 1024

// Chunk is a contiguous byte range assigned to one execution unit.
type Chunk struct {
	Offset int `yaml:"offset"`
	Length int `yaml:"length"`
}

// End returns the exclusive end offset of the chunk.
func (c Chunk) End() int {
	return c.Offset + c.Length
}

// Plan is an ordered partition of [0, total) into disjoint chunks.
type Plan []Chunk

// Total returns the number of bytes covered by the plan.
func (p Plan) Total() int {
	var total int

	for _, c := range p {
		total += c.Length
	}

	return total
}

// Validate checks that the plan exactly covers [0, totalLen) with contiguous,
// non-empty chunks whose offsets are multiples of align.
func (p Plan) Validate(totalLen, align int) error {
	next := 0

	for i, c := range p {
		if c.Length <= 0 {
			return fmt.Errorf("%w: chunk %d has length %d", ErrInvalidPlan, i, c.Length)
		}

		if c.Offset != next {
			return fmt.Errorf("%w: chunk %d starts at %d, want %d", ErrInvalidPlan, i, c.Offset, next)
		}

		if align > 1 && c.Offset%align != 0 {
			return fmt.Errorf("%w: chunk %d offset %d is not a multiple of %d", ErrAlignment, i, c.Offset, align)
		}

		next = c.End()
	}

	if next != totalLen {
		return fmt.Errorf("%w: plan covers %d bytes, want %d", ErrInvalidPlan, next, totalLen)
	}

	return nil
}

// Planner partitions buffers into chunks for the worker pool.
type Planner struct {
	// MinChunkBytes bounds the number of partitions to floor(total / MinChunkBytes).
	MinChunkBytes int
	// MaxWorkers caps the number of partitions; zero means the host's available parallelism.
	MaxWorkers int
}

// DefaultPlanner returns a planner using the host's parallelism and DefaultMinChunkBytes.
func DefaultPlanner() Planner {
	return Planner{MinChunkBytes: DefaultMinChunkBytes}
}

// Workers returns the number of partitions a buffer of totalLen bytes is split into
// before block alignment is applied.
func (p Planner) Workers(totalLen, requested int) int {
	limit := p.MaxWorkers
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	minChunk := max(1, p.MinChunkBytes)

	workers := min(max(1, requested), limit)

	if totalLen < minChunk {
		return 1
	}

	return max(1, min(workers, totalLen/minChunk))
}

// Plan partitions totalLen bytes across at most requested workers.
// Partition sizes differ by at most one byte unless block alignment is required,
// in which case whole blocks are distributed and the final partition absorbs the tail.
// Both ECB and CTR plans have every offset on a BlockSize boundary.
func (p Planner) Plan(totalLen, requested int, mode Mode) Plan {
	if totalLen <= 0 {
		return Plan{}
	}

	workers := p.Workers(totalLen, requested)

	plan := evenPlan(totalLen, workers)

	if !mode.Parallel() || plan.Validate(totalLen, BlockSize) == nil {
		return plan
	}

	return alignedPlan(totalLen, workers, BlockSize)
}

// evenPlan distributes total bytes over n partitions, adding the remainder
// one byte at a time to the first partitions.
func evenPlan(total, n int) Plan {
	base := total / n
	extra := total % n

	plan := make(Plan, 0, n)

	offset := 0

	for i := range n {
		length := base
		if i < extra {
			length++
		}

		plan = append(plan, Chunk{Offset: offset, Length: length})
		offset += length
	}

	return plan
}

// alignedPlan distributes whole blocks over at most n partitions.
// The final partition also receives the total%align tail bytes.
func alignedPlan(total, n, align int) Plan {
	blocks := total / align
	if blocks == 0 {
		return Plan{{Offset: 0, Length: total}}
	}

	n = min(n, blocks)

	plan := make(Plan, 0, n)

	base := blocks / n
	extra := blocks % n
	offset := 0

	for i := range n {
		count := base
		if i < extra {
			count++
		}

		length := count * align
		if i == n-1 {
			length = total - offset
		}

		plan = append(plan, Chunk{Offset: offset, Length: length})
		offset += length
	}

	return plan
}
