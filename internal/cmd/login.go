package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gravitrone/elog/cli/internal/api"
	"github.com/gravitrone/elog/cli/internal/config"
)

// loginTimeout bounds the verification request so a wrong url fails fast.
var loginTimeout = 10 * time.Second

// RunInteractiveLogin prompts for the logbook connection, checks it by
// listing the instrument's experiments, and persists config.
func RunInteractiveLogin(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	cfg := &config.Config{}
	if existing, err := config.Load(); err == nil {
		cfg = existing
	}

	url := prompt(reader, out, "logbook url", firstNonEmpty(cfg.URL, api.DefaultBaseURL))
	username := prompt(reader, out, "username", cfg.Username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	instrument := strings.ToUpper(prompt(reader, out, "instrument", cfg.Instrument))
	if instrument == "" {
		return fmt.Errorf("instrument is required")
	}
	station := prompt(reader, out, "station", cfg.Station)

	fmt.Fprint(out, "password (empty for none): ")
	password, err := readPassword(in, reader)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	fmt.Fprintln(out)

	client := api.NewClient(url, username, password).WithTimeout(loginTimeout)
	experiments, err := client.ExperimentsForInstrument(instrument)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cfg.URL = url
	cfg.Username = username
	cfg.Password = password
	cfg.Instrument = instrument
	cfg.Station = station
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(out, "logged in as %s (%d experiments on %s)\n", username, len(experiments), instrument)
	fmt.Fprintf(out, "config saved to %s\n", config.Path())
	return nil
}

// prompt reads one line, returning def when the answer is empty.
func prompt(reader *bufio.Reader, out io.Writer, label, def string) string {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

// readPassword reads without echo on a terminal and falls back to a plain
// line otherwise.
func readPassword(in io.Reader, reader *bufio.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// LoginCmd returns the `elog login` command.
func LoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Connect to a logbook server",
		RunE: func(_ *cobra.Command, _ []string) error {
			return RunInteractiveLogin(os.Stdin, os.Stdout)
		},
	}
}
