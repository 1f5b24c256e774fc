package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ricoeriii/pengelola-bansos/internal/cli"
	"github.com/ricoeriii/pengelola-bansos/pkg/config"
	appErrors "github.com/ricoeriii/pengelola-bansos/pkg/errors"
	"github.com/ricoeriii/pengelola-bansos/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	logr, err := logger.NewCLI(cfg, os.Getenv("LAPORAN_VERBOSE") != "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		return 1
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(cfg, logr, os.Stdin, os.Stdout, os.Stderr)
	if err := cli.NewRootCommand(app).ExecuteContext(ctx); err != nil {
		appErr := appErrors.FromError(err)
		fmt.Fprintf(os.Stderr, "error: %s (%s)\n", appErr.Message, appErr.Code)
		return 1
	}
	return 0
}
