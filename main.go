package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/stupside/prism/cmd"
	"github.com/stupside/prism/internal/version"
)

// newLogger writes to stderr so stdout carries only the JSON output.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("prism", version.Version)
}

func run(ctx context.Context, args []string) int {
	err := cmd.Root().Run(ctx, args)
	if err == nil {
		return 0
	}
	if cause := context.Cause(ctx); cause != nil {
		slog.InfoContext(ctx, "shutting down", "cause", cause)
		return 0
	}
	slog.ErrorContext(ctx, "application error", "error", err)
	return 1
}

func main() {
	slog.SetDefault(newLogger(slices.Contains(os.Args, "--debug")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args)
	stop()
	os.Exit(code)
}
