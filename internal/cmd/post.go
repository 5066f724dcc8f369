package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/gravitrone/elog/cli/internal/api"
	"github.com/gravitrone/elog/cli/internal/tags"
)

const editorTemplate = `
#
# Write the log message above. Lines starting with '# ' are ignored and an
# empty message aborts the post. Write #tag to tag the entry.
#
`

// errEmptyMessage is returned when the editor is closed without a message.
var errEmptyMessage = errors.New("empty message, nothing posted")

type postOptions struct {
	message     string
	tags        []string
	attachments []string
	run         string
	parent      string
	emails      []string
	experiment  string
	facilities  bool
}

// PostCmd returns the `elog post` command.
func PostCmd() *cobra.Command {
	var opts postOptions
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post an entry to the logbook",
		Long: "Post an entry to the experiment logbook. Without --message the entry is\n" +
			"written in $EDITOR. Words written as #tag are added to the entry's tags.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("message") {
				text, err := messageFromEditor()
				if err != nil {
					return err
				}
				opts.message = text
			}
			return runPost(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "entry text")
	cmd.Flags().StringArrayVarP(&opts.tags, "tag", "t", nil, "tag the entry (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.attachments, "attach", "a", nil, "attach a file (repeatable)")
	cmd.Flags().StringVarP(&opts.run, "run", "r", "", "run number, or 'current' for the latest run")
	cmd.Flags().StringVar(&opts.parent, "parent", "", "id of the entry to follow up")
	cmd.Flags().StringSliceVar(&opts.emails, "emails", nil, "comma separated addresses to notify")
	cmd.Flags().StringVarP(&opts.experiment, "experiment", "e", "", "experiment to post to")
	cmd.Flags().BoolVar(&opts.facilities, "facilities", false, "also post to the instrument's facilities logbook (default from config)")
	return cmd
}

func runPost(cmd *cobra.Command, opts postOptions) error {
	if strings.TrimSpace(opts.message) == "" && len(opts.attachments) == 0 {
		return errEmptyMessage
	}

	cfg, client, err := loadSession()
	if err != nil {
		return err
	}
	experiment, err := resolveExperiment(client, cfg, opts.experiment)
	if err != nil {
		return err
	}
	logbooks := []string{experiment}
	facilities := cfg.Facilities
	if cmd.Flags().Changed("facilities") {
		facilities = opts.facilities
	}
	if facilities {
		name, err := client.FacilitiesLogbook(cfg.Instrument)
		if err != nil {
			return fmt.Errorf("facilities logbook: %w", err)
		}
		if name != experiment {
			logbooks = append(logbooks, name)
		}
	}

	run := strings.TrimSpace(opts.run)
	if strings.EqualFold(run, "current") {
		current, err := client.CurrentRun(experiment)
		if err != nil {
			return fmt.Errorf("current run: %w", err)
		}
		if current == nil {
			return fmt.Errorf("no runs in %s yet", experiment)
		}
		run = strconv.Itoa(current.Num)
	}

	entryTags := cfg.DefaultTags()
	entryTags = append(entryTags, opts.tags...)
	entryTags = append(entryTags, tags.Extract(opts.message)...)

	entry := api.Entry{
		Text:        opts.message,
		Tags:        entryTags,
		Attachments: opts.attachments,
		Run:         run,
		Parent:      opts.parent,
		Emails:      opts.emails,
	}
	posted, postErr := client.SubmitEntries(logbooks, entry)

	out := cmd.OutOrStdout()
	for _, p := range posted {
		if p.Result != nil && p.Result.ID != "" {
			fmt.Fprintf(out, "posted entry %s to %s\n", p.Result.ID, p.Logbook)
		} else {
			fmt.Fprintf(out, "posted entry to %s\n", p.Logbook)
		}
	}
	if postErr != nil {
		return fmt.Errorf("post entry: %w", postErr)
	}
	return nil
}

// editorArgs splits $VISUAL or $EDITOR into a command line.
func editorArgs() ([]string, error) {
	editor := firstNonEmpty(os.Getenv("VISUAL"), os.Getenv("EDITOR"), "vi")
	args, err := shlex.Split(editor)
	if err != nil {
		return nil, fmt.Errorf("parse editor %q: %w", editor, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("no editor configured")
	}
	return args, nil
}

// messageFromEditor opens the editor on a temp file and returns what was
// written, minus comment lines.
func messageFromEditor() (string, error) {
	args, err := editorArgs()
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", "elog-*.txt")
	if err != nil {
		return "", fmt.Errorf("create message file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(editorTemplate); err != nil {
		f.Close()
		return "", fmt.Errorf("write message file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write message file: %w", err)
	}

	c := exec.Command(args[0], append(args[1:], path)...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return "", fmt.Errorf("run editor: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read message file: %w", err)
	}
	text := stripComments(string(data))
	if text == "" {
		return "", errEmptyMessage
	}
	return text, nil
}

// stripComments drops lines that are '#' alone or '# ...'. A line that
// starts with a #tag is kept.
func stripComments(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "#" || strings.HasPrefix(trimmed, "# ") || strings.HasPrefix(trimmed, "#\t") {
			continue
		}
		kept = append(kept, strings.TrimRight(line, "\r"))
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
