package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/pcrypt/internal/config"
	"github.com/idelchi/pcrypt/internal/logic"
)

// NewDecryptCommand creates a new cobra command for the decrypt subcommand.
// The cipher mode is read from each file's envelope.
func NewDecryptCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "decrypt [flags] files...",
		Aliases: []string{"dec"},
		Short:   "Decrypt files",
		Args:    cobra.MinimumNArgs(1),
		PreRun: func(_ *cobra.Command, args []string) {
			cfg.Files = args
			cfg.Decrypt = true
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, cfg, func() error {
				return logic.Run(cmd.Context(), cfg)
			})
		},
	}

	addKeyFlags(cmd)
	addFileFlags(cmd)
	cmd.Flags().String("decrypt-ext", "", "Suffix to append to decrypted files, after stripping the encrypted suffix")

	return cmd
}
