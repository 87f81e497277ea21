// Package main is the entry point for the xrope CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"

	"github.com/dshills/xrope/internal/cli"
	"github.com/dshills/xrope/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Interrupts cancel running scripts.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCommand(cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Self-test failures are already reported line by line.
		if !errors.Is(err, cli.ErrSelfTestFailed) {
			logging.FromContext(ctx).Error("command failed", logging.FieldError, err)
		}
		return 1
	}
	return 0
}
