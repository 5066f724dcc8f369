package cmd

import (
	"fmt"
	"strings"

	"github.com/gravitrone/elog/cli/internal/api"
	"github.com/gravitrone/elog/cli/internal/config"
)

// loadSession reads the config and builds a client for it.
func loadSession() (*config.Config, *api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("not logged in, run 'elog login' first: %w", err)
	}
	return cfg, clientFor(cfg), nil
}

func clientFor(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.URL, cfg.Username, cfg.Password)
}

// resolveExperiment picks the experiment to use: the flag, then the
// configured one, then whatever is active on the configured instrument.
func resolveExperiment(client *api.Client, cfg *config.Config, flag string) (string, error) {
	if exp := strings.TrimSpace(flag); exp != "" {
		return exp, nil
	}
	if exp := strings.TrimSpace(cfg.Experiment); exp != "" {
		return exp, nil
	}
	exp, err := client.CurrentExperiment(cfg.Instrument, cfg.Station)
	if err != nil {
		return "", fmt.Errorf("resolve experiment: %w", err)
	}
	return exp, nil
}
