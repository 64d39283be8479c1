package encryption_test

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/idelchi/pcrypt/internal/encryption"
)

// PlanCase is a single planner case from the YAML golden file.
type PlanCase struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description,omitempty"`
	Total       int                `yaml:"total"`
	Requested   int                `yaml:"requested"`
	MinChunk    int                `yaml:"min_chunk"`
	MaxWorkers  int                `yaml:"max_workers"`
	Mode        string             `yaml:"mode"`
	Want        []encryption.Chunk `yaml:"want"`
}

func loadPlanCases(t *testing.T) []PlanCase {
	t.Helper()

	data, err := os.ReadFile("testdata/plans.yml")
	if err != nil {
		t.Fatalf("reading testdata: %v", err)
	}

	var cases []PlanCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		t.Fatalf("parsing testdata: %v", err)
	}

	if len(cases) == 0 {
		t.Fatal("no plan cases found")
	}

	return cases
}

func TestPlanGolden(t *testing.T) {
	t.Parallel()

	for _, tc := range loadPlanCases(t) {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			mode, err := encryption.ParseMode(tc.Mode)
			if err != nil {
				t.Fatalf("parsing mode: %v", err)
			}

			planner := encryption.Planner{MinChunkBytes: tc.MinChunk, MaxWorkers: tc.MaxWorkers}

			got := planner.Plan(tc.Total, tc.Requested, mode)

			want := encryption.Plan(tc.Want)
			if want == nil {
				want = encryption.Plan{}
			}

			if !reflect.DeepEqual(got, want) {
				t.Errorf("Plan(%d, %d, %v) = %v, want %v", tc.Total, tc.Requested, mode, got, want)
			}
		})
	}
}

func TestPlanAlwaysCoversBuffer(t *testing.T) {
	t.Parallel()

	totals := []int{0, 1, 15, 16, 17, 31, 32, 33, 100, 1000, 4097, 1 << 16}
	requested := []int{0, 1, 2, 3, 4, 8, 16, 64, 1000, 100000}
	minChunks := []int{0, 1, 16, 64, 4096}

	for _, mode := range []encryption.Mode{encryption.ModeECB, encryption.ModeCTR} {
		for _, total := range totals {
			for _, req := range requested {
				for _, minChunk := range minChunks {
					planner := encryption.Planner{MinChunkBytes: minChunk, MaxWorkers: 64}
					plan := planner.Plan(total, req, mode)

					name := fmt.Sprintf("%v/total=%d/req=%d/min=%d", mode, total, req, minChunk)

					if err := plan.Validate(total, encryption.BlockSize); err != nil {
						t.Fatalf("%s: invalid plan %v: %v", name, plan, err)
					}

					if plan.Total() != total {
						t.Fatalf("%s: plan covers %d bytes", name, plan.Total())
					}

					if len(plan) > max(1, req) {
						t.Fatalf("%s: %d partitions exceed %d requested", name, len(plan), req)
					}

					if total > 0 && len(plan) == 0 {
						t.Fatalf("%s: empty plan for non-empty buffer", name)
					}
				}
			}
		}
	}
}

func TestPlanEvenSizesDifferByAtMostOneByte(t *testing.T) {
	t.Parallel()

	planner := encryption.Planner{MinChunkBytes: 1, MaxWorkers: 64}

	// CBC is never re-aligned, so the generic distribution is observable directly.
	for total := 1; total < 300; total++ {
		plan := planner.Plan(total, 7, encryption.ModeCBC)

		smallest, largest := plan[0].Length, plan[0].Length
		for _, c := range plan {
			smallest = min(smallest, c.Length)
			largest = max(largest, c.Length)
		}

		if largest-smallest > 1 {
			t.Fatalf("total=%d: partition sizes range from %d to %d", total, smallest, largest)
		}
	}
}

func TestPlanValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		plan  encryption.Plan
		total int
		want  error
	}{
		{
			name:  "valid",
			plan:  encryption.Plan{{Offset: 0, Length: 16}, {Offset: 16, Length: 20}},
			total: 36,
		},
		{
			name:  "misaligned boundary",
			plan:  encryption.Plan{{Offset: 0, Length: 8}, {Offset: 8, Length: 24}},
			total: 32,
			want:  encryption.ErrAlignment,
		},
		{
			name:  "gap",
			plan:  encryption.Plan{{Offset: 0, Length: 16}, {Offset: 32, Length: 16}},
			total: 48,
			want:  encryption.ErrInvalidPlan,
		},
		{
			name:  "overlap",
			plan:  encryption.Plan{{Offset: 0, Length: 32}, {Offset: 16, Length: 16}},
			total: 32,
			want:  encryption.ErrInvalidPlan,
		},
		{
			name:  "empty chunk",
			plan:  encryption.Plan{{Offset: 0, Length: 16}, {Offset: 16, Length: 0}},
			total: 16,
			want:  encryption.ErrInvalidPlan,
		},
		{
			name:  "short coverage",
			plan:  encryption.Plan{{Offset: 0, Length: 16}},
			total: 32,
			want:  encryption.ErrInvalidPlan,
		},
		{
			name:  "not starting at zero",
			plan:  encryption.Plan{{Offset: 16, Length: 16}},
			total: 16,
			want:  encryption.ErrInvalidPlan,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.plan.Validate(tt.total, encryption.BlockSize)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				return
			}

			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}
