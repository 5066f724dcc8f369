package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ExperimentsCmd returns the `elog experiments` command.
func ExperimentsCmd() *cobra.Command {
	var current bool
	cmd := &cobra.Command{
		Use:   "experiments",
		Short: "List experiments you can post to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, client, err := loadSession()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if current {
				name, err := client.CurrentExperiment(cfg.Instrument, cfg.Station)
				if err != nil {
					return fmt.Errorf("current experiment: %w", err)
				}
				fmt.Fprintln(out, name)
				return nil
			}

			experiments, err := client.ExperimentsForInstrument(cfg.Instrument)
			if err != nil {
				return fmt.Errorf("list experiments: %w", err)
			}
			if len(experiments) == 0 {
				fmt.Fprintf(out, "no experiments on %s\n", cfg.Instrument)
				return nil
			}
			for _, e := range experiments {
				marker := " "
				if e.Name == cfg.Experiment {
					marker = "*"
				}
				line := fmt.Sprintf("%s %-12s %-4s", marker, e.Name, e.Instrument)
				if e.Description != "" {
					line += "  " + e.Description
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&current, "current", false, "print the active experiment for the instrument")
	return cmd
}
