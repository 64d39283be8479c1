package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/pcrypt/internal/config"
	"github.com/idelchi/pcrypt/internal/logic"
)

// NewEncryptCommand creates a new cobra command for the encrypt subcommand.
func NewEncryptCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "encrypt [flags] files...",
		Aliases: []string{"enc"},
		Short:   "Encrypt files",
		Args:    cobra.MinimumNArgs(1),
		PreRun: func(_ *cobra.Command, args []string) {
			cfg.Files = args
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, cfg, func() error {
				return logic.Run(cmd.Context(), cfg)
			})
		},
	}

	addKeyFlags(cmd)
	addFileFlags(cmd)
	cmd.Flags().StringP("mode", "m", defaultMode, "Cipher mode (ecb, ctr, cbc); cbc runs serially")

	return cmd
}
