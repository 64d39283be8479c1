package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/idelchi/pcrypt/internal/config"
	"github.com/idelchi/pcrypt/internal/logic"
)

// NewDataCommand creates a command generating random benchmark data files.
func NewDataCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data [flags] size-mb...",
		Short: "Generate random sample_<N>MB.bin data files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sizes := make([]int, 0, len(args))

			for _, arg := range args {
				size, err := strconv.Atoi(arg)
				if err != nil || size <= 0 {
					return fmt.Errorf("invalid size %q: must be a positive integer", arg)
				}

				sizes = append(sizes, size)
			}

			return run(cmd, cfg, func() error {
				return logic.RunData(cfg, sizes)
			})
		},
	}

	addDataDirFlag(cmd)

	return cmd
}
