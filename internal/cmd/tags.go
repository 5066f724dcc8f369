package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// TagsCmd returns the `elog tags` command.
func TagsCmd() *cobra.Command {
	var experiment string
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List the tags used in an experiment's logbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, client, err := loadSession()
			if err != nil {
				return err
			}
			exp, err := resolveExperiment(client, cfg, experiment)
			if err != nil {
				return err
			}

			known, err := client.ListTags(exp)
			if err != nil {
				return fmt.Errorf("list tags: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(known) == 0 {
				fmt.Fprintf(out, "no tags in %s\n", exp)
				return nil
			}
			known = slices.Clone(known)
			slices.Sort(known)
			for _, tag := range known {
				fmt.Fprintf(out, "#%s\n", tag)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&experiment, "experiment", "e", "", "experiment to list tags for")
	return cmd
}
