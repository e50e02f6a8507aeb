package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/weiihann/simbench/experiment"
	"github.com/weiihann/simbench/harness"
	"github.com/weiihann/simbench/report"
)

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		experiments []string
		files       []string
		outDir      string
		run         int
		repeat      int
		schedule    string
		runner      string
		timeout     time.Duration
		outputJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run experiments through the simulation runner",
		Long: `Hand one or more experiment descriptors to the simulation runner,
collect the timing each run records, and print a summary.

With --schedule the batch is repeated on a cron schedule (standard five
field syntax or descriptors such as @hourly), incrementing the run index
each time, until --repeat batches have completed or the command is
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("timeout") {
				var err error
				if timeout, err = envDuration(envTimeout); err != nil {
					return err
				}
			}

			return runExperiments(cmd.Context(), logger, runConfig{
				experiments: experiments,
				files:       files,
				outDir:      outDir,
				run:         run,
				repeat:      repeat,
				schedule:    schedule,
				runner:      runner,
				timeout:     timeout,
				outputJSON:  outputJSON,
				out:         cmd.OutOrStdout(),
			})
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&experiments, "experiments", nil,
		"Built-in experiments to run (e.g. qemu-nopaxos-swseq)")
	flags.StringSliceVar(&files, "file", nil,
		"Experiment descriptor files (yaml or json) to run")
	flags.StringVar(&outDir, "outdir", envOr(envOutDir, "out"),
		"Directory the runner writes results to")
	flags.IntVar(&run, "run", 1,
		"Run index of the first batch")
	flags.IntVar(&repeat, "repeat", 1,
		"Number of batches to run (0 = until interrupted, with --schedule)")
	flags.StringVar(&schedule, "schedule", "",
		"Cron expression to repeat batches on")
	flags.StringVar(&runner, "runner", "",
		"Simulation runner binary (default: $SIMBENCH_RUNNER or simbricks-run)")
	flags.DurationVar(&timeout, "timeout", 0,
		"Per-experiment timeout (default: the experiment's own)")
	flags.BoolVar(&outputJSON, "json", false,
		"Output results as JSON instead of table")

	return cmd
}

type runConfig struct {
	experiments []string
	files       []string
	outDir      string
	run         int
	repeat      int
	schedule    string
	runner      string
	timeout     time.Duration
	outputJSON  bool
	out         io.Writer
}

func runExperiments(
	ctx context.Context,
	logger *slog.Logger,
	cfg runConfig,
) error {
	if len(cfg.experiments) == 0 && len(cfg.files) == 0 {
		return fmt.Errorf(
			"at least one experiment must be specified via --experiments or --file",
		)
	}
	if cfg.run < 1 {
		return fmt.Errorf("--run must be at least 1, got %d", cfg.run)
	}
	if cfg.repeat < 0 || (cfg.repeat == 0 && cfg.schedule == "") {
		return fmt.Errorf("--repeat must be positive without --schedule")
	}

	// Step 1: Resolve and validate descriptors.
	exps, err := loadExperiments(cfg)
	if err != nil {
		return err
	}

	// Step 2: Resolve the runner.
	bin, err := harness.ResolveRunner(cfg.runner)
	if err != nil {
		return err
	}

	cmdCfg := harness.WrapCommand(bin)
	runner := harness.NewRunner(
		cmdCfg.Binary, cmdCfg.ExtraArgs, cmdCfg.Env, logger,
	)

	logger.InfoContext(ctx, "starting experiments",
		slog.Int("experiments", len(exps)),
		slog.String("runner", bin),
		slog.String("out_dir", cfg.outDir),
		slog.Int("first_run", cfg.run),
		slog.Int("repeat", cfg.repeat),
		slog.String("schedule", cfg.schedule),
	)

	batch := func(run int) ([]harness.Result, error) {
		results := make([]harness.Result, 0, len(exps))

		for _, e := range exps {
			result, runErr := runner.Run(ctx, e, harness.RunConfig{
				OutDir:  cfg.outDir,
				Run:     run,
				Timeout: cfg.timeout,
			})
			if runErr != nil {
				return nil, fmt.Errorf("run %s: %w", e.Name, runErr)
			}

			results = append(results, *result)
		}

		return results, nil
	}

	// Step 3: Run batches, either back to back or on a schedule.
	if cfg.schedule != "" {
		return runScheduled(ctx, logger, cfg, batch)
	}

	var all []harness.Result

	for i := 0; i < cfg.repeat; i++ {
		results, err := batch(cfg.run + i)
		if err != nil {
			return err
		}

		all = append(all, results...)
	}

	// Step 4: Generate report.
	if err := writeResults(cfg.out, cfg.outputJSON, all); err != nil {
		return err
	}

	logger.InfoContext(ctx, "experiments complete")

	return nil
}

func loadExperiments(cfg runConfig) ([]*experiment.Experiment, error) {
	exps := make([]*experiment.Experiment, 0,
		len(cfg.experiments)+len(cfg.files))

	for _, name := range cfg.experiments {
		e, err := experiment.Builtin(name)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, experiment.Names())
		}

		exps = append(exps, e)
	}

	for _, path := range cfg.files {
		e, err := experiment.Load(path)
		if err != nil {
			return nil, err
		}

		exps = append(exps, e)
	}

	seen := make(map[string]bool, len(exps))

	for _, e := range exps {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("experiment %s: %w", e.Name, err)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("experiment %s given twice", e.Name)
		}
		seen[e.Name] = true
	}

	return exps, nil
}

func runScheduled(
	ctx context.Context,
	logger *slog.Logger,
	cfg runConfig,
	batch func(run int) ([]harness.Result, error),
) error {
	// Unbuffered: a tick that fires while a batch runs is dropped.
	ticks := make(chan struct{})

	c := cron.New()
	if _, err := c.AddFunc(cfg.schedule, func() {
		select {
		case ticks <- struct{}{}:
		default:
			logger.Warn("previous batch still running, skipping tick")
		}
	}); err != nil {
		return fmt.Errorf("parse schedule %q: %w", cfg.schedule, err)
	}

	c.Start()
	defer c.Stop()

	for done := 0; cfg.repeat == 0 || done < cfg.repeat; done++ {
		select {
		case <-ctx.Done():
			logger.Info("schedule interrupted", slog.Int("batches", done))

			return nil
		case <-ticks:
		}

		run := cfg.run + done

		results, err := batch(run)
		if err != nil {
			return err
		}

		if err := writeResults(cfg.out, cfg.outputJSON, results); err != nil {
			return err
		}

		logger.InfoContext(ctx, "batch complete", slog.Int("run", run))
	}

	return nil
}

func writeResults(w io.Writer, asJSON bool, results []harness.Result) error {
	if asJSON {
		if err := report.GenerateJSON(w, results); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}

		return nil
	}

	if err := report.Generate(w, results); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	return nil
}
