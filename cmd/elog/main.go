package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gravitrone/elog/cli/internal/api"
	"github.com/gravitrone/elog/cli/internal/cmd"
	"github.com/gravitrone/elog/cli/internal/config"
	"github.com/gravitrone/elog/cli/internal/ui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var experiment string
	root := &cobra.Command{
		Use:   "elog",
		Short: "elog - electronic logbook client",
		Long:  "elog: write logbook entries with #tag completion, attach files, and post them to an experiment.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(experiment)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Flags().StringVarP(&experiment, "experiment", "e", "", "experiment to post to")

	root.AddCommand(cmd.LoginCmd())
	root.AddCommand(cmd.PostCmd())
	root.AddCommand(cmd.TagsCmd())
	root.AddCommand(cmd.ExperimentsCmd())
	return root
}

func runTUI(experiment string) error {
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("not logged in. run 'elog login' first.")
		}
		return err
	}
	if !isInteractiveTerminal(os.Stdin) || !isInteractiveTerminal(os.Stdout) {
		return fmt.Errorf("the composer needs a terminal, use 'elog post' instead")
	}
	if experiment != "" {
		cfg.Experiment = experiment
	}

	logger, closer, err := config.OpenLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	// Hex colors need truecolor; set before any style renders.
	lipgloss.SetColorProfile(termenv.TrueColor)

	client := api.NewClient(cfg.URL, cfg.Username, cfg.Password)
	logger.Debug().Str("config", config.Path()).Str("url", client.BaseURL()).Msg("starting composer")
	app := ui.NewApp(client, cfg, logger)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error().Err(err).Msg("tui exited")
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func isInteractiveTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
