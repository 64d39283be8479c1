package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/pcrypt/internal/config"
	"github.com/idelchi/pcrypt/internal/logic"
)

// NewKeyCommand creates a command printing a fresh hex-encoded AES-256 key.
func NewKeyCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "key",
		Aliases: []string{"gen"},
		Short:   "Generate a new encryption key",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, cfg, func() error {
				return logic.RunKey(cmd.OutOrStdout())
			})
		},
	}
}
