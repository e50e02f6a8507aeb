package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/weiihann/simbench/report"
	"github.com/weiihann/simbench/sweep"
)

func newReportCmd(logger *slog.Logger) *cobra.Command {
	var (
		modes        []string
		cmds         []string
		run          int
		format       string
		promTextfile string
	)

	cmd := &cobra.Command{
		Use:   "report [outdir]",
		Short: "Summarise simulated times from a results directory",
		Long: `Read <outdir>/<mode>-<cmd>-<run>.json for every mode and cmd and print
the simulated time of each, in minutes, one line per mode. Cells whose file
is absent are left empty.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := envOr(envOutDir, "")
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return fmt.Errorf("results directory required (argument or %s)", envOutDir)
			}

			return reportOverhead(cmd.OutOrStdout(), logger, reportConfig{
				matrix: sweep.Config{
					Modes: modes,
					Cmds:  cmds,
					Run:   run,
					Dir:   dir,
				},
				format:       format,
				promTextfile: promTextfile,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&modes, "modes", sweep.DefaultModes,
		"Modes, one output line each, in order")
	flags.StringSliceVar(&cmds, "cmds", sweep.DefaultCmds,
		"Commands, one column each, in order")
	flags.IntVar(&run, "run", sweep.DefaultRun,
		"Run index of the result files")
	flags.StringVar(&format, "format", "text",
		"Output format: text, markdown, json")
	flags.StringVar(&promTextfile, "prom-textfile", "",
		"Also write the times as Prometheus gauges to this file")

	return cmd
}

type reportConfig struct {
	matrix       sweep.Config
	format       string
	promTextfile string
}

func reportOverhead(w io.Writer, logger *slog.Logger, cfg reportConfig) error {
	rows, err := report.Collect(cfg.matrix)
	if err != nil {
		return fmt.Errorf("collect results: %w", err)
	}

	switch cfg.format {
	case "text":
		err = report.SyncOverhead(w, cfg.matrix.Cmds, rows)
	case "markdown", "md":
		err = report.SyncOverheadMarkdown(w, cfg.matrix.Cmds, rows)
	case "json":
		err = report.SyncOverheadJSON(w, rows)
	default:
		return fmt.Errorf("unsupported format %q (want text, markdown or json)", cfg.format)
	}

	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if cfg.promTextfile != "" {
		if err := report.WriteTextfile(cfg.promTextfile, rows); err != nil {
			return err
		}

		logger.Debug("wrote prometheus textfile",
			slog.String("path", cfg.promTextfile))
	}

	return nil
}
