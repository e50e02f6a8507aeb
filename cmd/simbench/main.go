// Package main provides the CLI entry point for simbench, a tool that
// defines simulated-network benchmark experiments, drives the simulation
// runner over them and summarises the timings they produce.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Environment variables that supply flag defaults.
const (
	envOutDir   = "SIMBENCH_OUTDIR"
	envTimeout  = "SIMBENCH_TIMEOUT"
	envLogLevel = "SIMBENCH_LOG_LEVEL"
)

func main() {
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level := new(slog.LevelVar)
	if err := level.UnmarshalText([]byte(envOr(envLogLevel, "info"))); err != nil {
		fmt.Fprintf(os.Stderr, "invalid %s: %v\n", envLogLevel, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	root := newRootCmd(logger, level)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "simbench",
		Short: "Simulated-network benchmark experiment tool",
		Long: `Simbench describes simulated-network benchmark experiments (networks,
NICs, hosts and the applications they run), hands them to the simulation
runner, and summarises the timing files each run leaves behind.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				level.Set(slog.LevelDebug)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	root.AddCommand(
		newExperimentsCmd(logger),
		newRunCmd(logger),
		newReportCmd(logger),
		newSweepCmd(logger),
	)

	return root
}

// loadDotEnv loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an
// error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load %s: %w", path, err)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}

	return fallback
}

func envDuration(key string) (time.Duration, error) {
	v := envOr(key, "")
	if v == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return d, nil
}
