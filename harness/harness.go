package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/weiihann/simbench/experiment"
	"github.com/weiihann/simbench/results"
)

// RunConfig holds parameters for a single experiment execution.
type RunConfig struct {
	OutDir string
	Run    int
	// Timeout overrides the experiment's own timeout when positive.
	Timeout time.Duration
}

// Runner launches the simulation runner for one experiment at a time.
type Runner struct {
	BinaryPath string
	ExtraArgs  []string
	Env        []string
	Logger     *slog.Logger
}

// NewRunner creates a Runner. For runners that need a wrapper (e.g.
// python3 for a script), pass the wrapper as binaryPath and the script in
// extraArgs. Env is appended to the inherited environment.
func NewRunner(
	binaryPath string,
	extraArgs, env []string,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		BinaryPath: binaryPath,
		ExtraArgs:  extraArgs,
		Env:        env,
		Logger:     logger,
	}
}

// Run hands e to the runner and returns the timing it recorded in
// <OutDir>/<name>-<run>.json.
func (r *Runner) Run(
	ctx context.Context,
	e *experiment.Experiment,
	cfg RunConfig,
) (*Result, error) {
	logger := r.Logger.With(
		slog.String("experiment", e.Name),
		slog.Int("run", cfg.Run),
	)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = e.Timeout.Std()
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", cfg.OutDir, err)
	}

	outPath := results.ExperimentPath(cfg.OutDir, e.Name, cfg.Run)
	if err := os.Remove(outPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("remove stale output %s: %w", outPath, err)
	}

	descPath, err := writeDescriptor(e)
	if err != nil {
		return nil, err
	}
	defer os.Remove(descPath)

	args := make([]string, 0, len(r.ExtraArgs)+5)
	args = append(args, r.ExtraArgs...)
	args = append(args,
		"--outdir", cfg.OutDir,
		"--run", strconv.Itoa(cfg.Run),
		descPath,
	)

	cmd := exec.CommandContext(ctx, r.BinaryPath, args...)

	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Info("starting runner",
		slog.String("binary", r.BinaryPath),
		slog.String("out_dir", cfg.OutDir),
		slog.Duration("timeout", timeout),
	)

	wallStart := time.Now()

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf(
			"runner failed for %s: %w\nstderr: %s",
			e.Name, err, stderr.String(),
		)
	}

	wallElapsed := time.Since(wallStart)

	logger.Info("runner finished",
		slog.Duration("wall_time", wallElapsed),
	)
	logger.Debug("runner output", slog.String("stdout", stdout.String()))

	return collect(e.Name, outPath, cfg.Run, wallElapsed)
}

func writeDescriptor(e *experiment.Experiment) (string, error) {
	f, err := os.CreateTemp("", "simbench-"+e.Name+"-*.json")
	if err != nil {
		return "", fmt.Errorf("create descriptor file: %w", err)
	}

	if err := experiment.Encode(f, e, experiment.FormatJSON); err != nil {
		f.Close()
		os.Remove(f.Name())

		return "", fmt.Errorf("write descriptor: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())

		return "", fmt.Errorf("close descriptor file: %w", err)
	}

	return f.Name(), nil
}

func collect(
	name, path string,
	run int,
	wall time.Duration,
) (*Result, error) {
	out, err := results.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("runner left no output for %s at %s", name, path)
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Experiment: name,
		Run:        run,
		SimMinutes: out.SimTime().Minutes(),
		WallTime:   wall,
		Success:    out.Success == nil || *out.Success,
		Path:       path,
	}, nil
}
