package commands

import (
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultLogLevel   = "info"
	defaultLogFormat  = "text"
	defaultMode       = "ctr"
	defaultEncryptExt = ".enc"
	defaultDataDir    = "data"
	defaultResultsDir = "results/benchmarks"
	defaultAddr       = ":8080"
	defaultShutdown   = 30 * time.Second
)

// setDefaults gives every configuration key a value, so that commands
// which do not declare a flag still validate.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("log-format", defaultLogFormat)
	v.SetDefault("concurrency", runtime.NumCPU())
	v.SetDefault("workers", runtime.GOMAXPROCS(0))
	v.SetDefault("mode", defaultMode)
	v.SetDefault("encrypt-ext", defaultEncryptExt)
	v.SetDefault("data-dir", defaultDataDir)
	v.SetDefault("results-dir", defaultResultsDir)
	v.SetDefault("addr", defaultAddr)
	v.SetDefault("shutdown-timeout", defaultShutdown)
}

func addKeyFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("key", "k", "", "Encryption key (32 bytes, hex-encoded)")
	cmd.Flags().StringP("key-file", "f", "", "Path to the key file with the encryption key (32 bytes, hex-encoded)")
}

func addFileFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("concurrency", "j", runtime.NumCPU(), "Number of files processed in parallel")
	cmd.Flags().IntP("workers", "w", runtime.GOMAXPROCS(0), "Number of partitions each file is split into")
	cmd.Flags().BoolP("delete", "d", false, "Delete the original file after successful encryption/decryption")
	cmd.Flags().Bool("preserve-timestamps", false, "Copy the source modification time to the output")
	cmd.Flags().Bool("stats", false, "Print a summary after processing")
	cmd.Flags().String("encrypt-ext", defaultEncryptExt, "Suffix to append to encrypted files")
}

func addDataDirFlag(cmd *cobra.Command) {
	cmd.Flags().String("data-dir", defaultDataDir, "Directory holding sample_<N>MB.bin data files")
}

func addBenchFlags(cmd *cobra.Command) {
	addDataDirFlag(cmd)
	cmd.Flags().String("results-dir", defaultResultsDir, "Directory for benchmarks.json and benchmarks.csv")
	cmd.Flags().Int("synthetic", 0, "Synthetic work iterations split across workers (0 disables)")
	cmd.Flags().Duration("timeout", 0, "Bound on the wait for all workers (0 waits indefinitely)")
	cmd.Flags().Bool("openssl", false, "Add an openssl CLI timing baseline")
	cmd.Flags().IntSlice("threads", nil, "Worker counts to sweep")
}
