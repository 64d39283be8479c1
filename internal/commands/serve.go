package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/pcrypt/internal/config"
	"github.com/idelchi/pcrypt/internal/logic"
)

// NewServeCommand creates a command serving the benchmark HTTP API.
func NewServeCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [flags]",
		Short: "Serve the benchmark API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, cfg, func() error {
				return logic.RunServe(cmd.Context(), cfg)
			})
		},
	}

	addBenchFlags(cmd)
	cmd.Flags().String("addr", defaultAddr, "Listen address")
	cmd.Flags().Duration("shutdown-timeout", defaultShutdown, "Grace period for in-flight requests on shutdown")

	return cmd
}
