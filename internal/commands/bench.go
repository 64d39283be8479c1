package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/pcrypt/internal/config"
	"github.com/idelchi/pcrypt/internal/logic"
)

// NewBenchCommand creates a command running the benchmark sweep.
func NewBenchCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench [flags]",
		Short: "Benchmark the parallel engine against the serial path",
		Long: `Runs serial and parallel encryption and decryption over the generated data files
for every size, mode and worker count, and appends the measurements to
benchmarks.json and benchmarks.csv in the results directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, cfg, func() error {
				return logic.RunBench(cmd.Context(), cfg)
			})
		},
	}

	addBenchFlags(cmd)
	cmd.Flags().String("sweep", "", "JSONC file with sizes_mb, modes and workers; overrides the flags below")
	cmd.Flags().IntSlice("sizes", nil, "Data file sizes in MB")
	cmd.Flags().StringSlice("modes", nil, "Cipher modes (ecb, ctr)")

	return cmd
}
