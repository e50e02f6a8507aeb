package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/weiihann/simbench/experiment"
)

func newExperimentsCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "experiments",
		Aliases: []string{"exp"},
		Short:   "Inspect and validate experiment descriptors",
	}

	cmd.AddCommand(
		newExperimentsListCmd(),
		newExperimentsShowCmd(),
		newExperimentsValidateCmd(logger),
	)

	return cmd
}

func newExperimentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in experiments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			for _, name := range experiment.Names() {
				e, err := experiment.Builtin(name)
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "%s\t%d networks, %d nics, %d hosts\n",
					name, len(e.Networks), len(e.NICs), len(e.Hosts))
			}

			return nil
		},
	}
}

func newExperimentsShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <name|file>",
		Short: "Print an experiment descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := experiment.Format(format)
			if f != experiment.FormatYAML && f != experiment.FormatJSON {
				return fmt.Errorf("unsupported format %q (want yaml or json)", format)
			}

			e, err := experiment.Resolve(args[0])
			if err != nil {
				return err
			}

			return experiment.Encode(cmd.OutOrStdout(), e, f)
		},
	}

	cmd.Flags().StringVar(&format, "format", string(experiment.FormatYAML),
		"Output format: yaml, json")

	return cmd
}

func newExperimentsValidateCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <name|file>...",
		Short: "Check experiment descriptors for structural errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs []error

			for _, ref := range args {
				e, err := experiment.Resolve(ref)
				if err != nil {
					errs = append(errs, err)

					continue
				}

				if err := e.Validate(); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", ref, err))

					continue
				}

				logger.InfoContext(cmd.Context(), "experiment valid",
					slog.String("ref", ref),
					slog.String("name", e.Name),
					slog.Int("hosts", len(e.Hosts)),
				)
			}

			return errors.Join(errs...)
		},
	}
}
