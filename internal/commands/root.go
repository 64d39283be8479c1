package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/pcrypt/internal/config"
	"github.com/idelchi/pcrypt/internal/logic"
)

// envPrefix prefixes every environment variable, e.g. PCRYPT_KEY or PCRYPT_LOG_LEVEL.
const envPrefix = "PCRYPT"

// NewRootCommand creates the root command with common configuration.
// Flags, environment variables and an optional YAML file are merged by viper
// and unmarshalled into cfg before any subcommand runs.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "pcrypt [flags] command [flags]",
		Short: "Parallel AES encryption and benchmarking",
		Long: `A file encryption utility that splits buffers into block-aligned chunks
and encrypts them concurrently with AES-256 in ECB or CTR mode.
Provides commands for key generation, encryption, decryption and benchmarking.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return load(v, cmd, cfg)
		},
	}

	root.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	root.PersistentFlags().BoolP("show", "s", false, "Show the configuration and exit")
	root.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-error output")
	root.PersistentFlags().String("log-level", defaultLogLevel, "Log level (trace, debug, info, warn, error)")
	root.PersistentFlags().String("log-format", defaultLogFormat, "Log format (text, json)")

	root.AddCommand(
		NewEncryptCommand(cfg),
		NewDecryptCommand(cfg),
		NewKeyCommand(cfg),
		NewDataCommand(cfg),
		NewBenchCommand(cfg),
		NewServeCommand(cfg),
	)

	return root
}

// load merges defaults, config file, environment and flags into cfg and validates it.
func load(v *viper.Viper, cmd *cobra.Command, cfg *config.Config) error {
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	return cfg.Validate()
}

// run wraps a command body so that --show prints the configuration instead.
func run(cmd *cobra.Command, cfg *config.Config, body func() error) error {
	if cfg.Show {
		return logic.Show(cmd.OutOrStdout(), cfg)
	}

	return body()
}
