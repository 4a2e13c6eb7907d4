// Package main is the entry point for quotectl, the operational CLI for
// the quote store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/jsamuelsen/quote-machine/internal/platform/config"
	"github.com/jsamuelsen/quote-machine/internal/platform/logging"
)

// Version is the semantic version of the CLI, injected via ldflags.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Console logging only. A one-shot tool should not write to the
	// service's rotated log file.
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	})
	slog.SetDefault(logger)

	runner := NewRunner(RunnerOpts{
		Config: cfg,
		Logger: logger,
	})

	cmd := &cli.Command{
		Name:     "quotectl",
		Usage:    "Manage the quote store",
		Version:  Version,
		Commands: runner.register(),
	}

	return cmd.Run(ctx, os.Args)
}
