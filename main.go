// Command pcrypt encrypts files with AES-256 split across parallel workers,
// and benchmarks the parallel engine against a serial reference.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/idelchi/pcrypt/internal/commands"
	"github.com/idelchi/pcrypt/internal/config"
)

// Global variable for CI stamping.
var version = "unknown - unofficial & generated by unknown"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cfg := &config.Config{}

	err := commands.NewRootCommand(cfg, version).ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}
