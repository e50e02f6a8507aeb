package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/weiihann/simbench/sweep"
)

func newSweepCmd(logger *slog.Logger) *cobra.Command {
	var (
		modes []string
		cmds  []string
		run   int
		dir   string
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Print the mode x cmd result matrix as JSONL",
		Long: `Print one JSON line per (mode, cmd) cell with the result file the
report command will look for, so that external scripts can name their
outputs consistently.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := sweep.Config{Modes: modes, Cmds: cmds, Run: run, Dir: dir}

			summary, err := cfg.Generate(cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("generate matrix: %w", err)
			}

			logger.DebugContext(cmd.Context(), "matrix generated",
				slog.Int("modes", summary.Modes),
				slog.Int("cmds", summary.Cmds),
				slog.Int("cells", summary.Cells),
			)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&modes, "modes", sweep.DefaultModes, "Modes, in order")
	flags.StringSliceVar(&cmds, "cmds", sweep.DefaultCmds, "Commands, in order")
	flags.IntVar(&run, "run", sweep.DefaultRun, "Run index")
	flags.StringVar(&dir, "dir", envOr(envOutDir, "out"), "Results directory")

	return cmd
}
