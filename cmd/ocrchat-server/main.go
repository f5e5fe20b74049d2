package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kailas-cloud/ocrchat/internal/app"
	"github.com/kailas-cloud/ocrchat/internal/config"
	"github.com/kailas-cloud/ocrchat/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration based on ENV
	if err := app.Run(ctx, config.GetEnv(), version.Version, version.Commit); err != nil {
		fmt.Fprintln(os.Stderr, "ocrchat-server:", err)
		os.Exit(1)
	}
}
