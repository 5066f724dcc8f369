package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/gravitrone/elog/cli/internal/api"
	"github.com/gravitrone/elog/cli/internal/config"
	"github.com/gravitrone/elog/cli/internal/tags"
	"github.com/gravitrone/elog/cli/internal/ui/components"
)

// --- Messages ---

type experimentResolvedMsg struct {
	name string
	err  error
}

type tagsLoadedMsg struct {
	experiment string
	tags       []string
	err        error
}

type runLoadedMsg struct {
	experiment string
	run        *api.Run
	err        error
}

type submitDoneMsg struct {
	posted []api.Posted
	err    error
}

type clearToastMsg struct{}

type appToast struct {
	level string
	text  string
}

type focusArea int

const (
	focusEditor focusArea = iota
	focusTags
)

// --- App Model ---

// App is the root TUI model: a composer for one logbook entry at a time.
type App struct {
	client *api.Client
	config *config.Config
	log    zerolog.Logger
	keys   keyMap

	width  int
	height int
	err    string
	toast  *appToast

	experiment string
	resolving  bool
	run        *api.Run
	facilities bool

	engine      *tags.Engine
	editor      MessageEditor
	tags        []string
	attachments []string

	focus  focusArea
	tagIdx int

	attachOpen    bool
	attachInput   string
	submitConfirm bool
	submitting    bool
	quitConfirm   bool
}

// NewApp creates the composer. client may be nil, in which case nothing is
// fetched or posted.
func NewApp(client *api.Client, cfg *config.Config, logger zerolog.Logger) App {
	engine := tags.NewEngine(nil)
	experiment := ""
	if cfg != nil {
		experiment = strings.TrimSpace(cfg.Experiment)
	}
	return App{
		client:     client,
		config:     cfg,
		log:        logger.With().Str("component", "composer").Logger(),
		keys:       defaultKeyMap(),
		experiment: experiment,
		resolving:  client != nil && cfg != nil && experiment == "",
		facilities: cfg != nil && cfg.Facilities,
		engine:     engine,
		editor:     NewMessageEditor(engine),
		tags:       cfg.DefaultTags(),
	}
}

func (a App) Init() tea.Cmd {
	if a.client == nil {
		return nil
	}
	if a.resolving {
		return resolveExperimentCmd(a.client, a.config.Instrument, a.config.Station)
	}
	if a.experiment == "" {
		return nil
	}
	return loadTagsCmd(a.client, a.experiment)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case clearToastMsg:
		a.toast = nil
		return a, nil

	case experimentResolvedMsg:
		a.resolving = false
		if msg.err != nil {
			a.log.Warn().Err(msg.err).Msg("resolve current experiment")
			a.err = fmt.Sprintf("no experiment: %v", msg.err)
			return a, nil
		}
		a.experiment = msg.name
		a.log.Info().Str("experiment", msg.name).Msg("using current experiment")
		return a, loadTagsCmd(a.client, msg.name)

	case tagsLoadedMsg:
		if msg.experiment != a.experiment {
			return a, nil
		}
		if msg.err != nil {
			a.log.Warn().Err(msg.err).Str("experiment", msg.experiment).Msg("load tags")
			cmd := a.setToast("warning", "Tag list unavailable, completion is off: "+msg.err.Error())
			return a, cmd
		}
		a.engine.SetTagSet(msg.tags)
		a.log.Debug().Int("count", len(msg.tags)).Str("experiment", msg.experiment).Msg("tags loaded")
		return a, nil

	case runLoadedMsg:
		if msg.experiment != a.experiment {
			return a, nil
		}
		if msg.err != nil {
			a.log.Warn().Err(msg.err).Str("experiment", msg.experiment).Msg("load current run")
			return a, nil
		}
		a.run = msg.run
		return a, nil

	case submitDoneMsg:
		a.submitting = false
		if msg.err != nil && len(msg.posted) == 0 {
			a.log.Error().Err(msg.err).Str("experiment", a.experiment).Msg("post entry")
			a.err = fmt.Sprintf("post failed: %v", msg.err)
			return a, nil
		}
		for _, p := range msg.posted {
			ev := a.log.Info().Str("logbook", p.Logbook)
			if p.Result != nil {
				ev = ev.Str("id", p.Result.ID)
			}
			ev.Msg("entry posted")
		}
		a.resetEntry()
		if msg.err != nil {
			a.log.Error().Err(msg.err).Msg("post entry")
			a.err = fmt.Sprintf("posted to %s, but %v", msg.posted[0].Logbook, msg.err)
			return a, nil
		}
		cmd := a.setToast("success", postedText(msg.posted))
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.quitConfirm {
		switch {
		case isConfirm(msg):
			return a, tea.Quit
		case isDeny(msg):
			a.quitConfirm = false
		}
		return a, nil
	}
	if a.submitConfirm {
		switch {
		case isConfirm(msg):
			a.submitConfirm = false
			a.submitting = true
			return a, submitCmd(a.client, a.logbooks(), a.entry())
		case isDeny(msg):
			a.submitConfirm = false
		}
		return a, nil
	}
	if a.attachOpen {
		return a.handleAttachKeys(msg)
	}
	a.err = ""

	switch {
	case key.Matches(msg, a.keys.Quit):
		if a.dirty() {
			a.quitConfirm = true
			return a, nil
		}
		return a, tea.Quit
	case key.Matches(msg, a.keys.Submit):
		return a.beginSubmit()
	case key.Matches(msg, a.keys.Attach):
		a.attachOpen = true
		a.attachInput = ""
		return a, nil
	case key.Matches(msg, a.keys.Facilities):
		a.facilities = !a.facilities
		return a, nil
	case key.Matches(msg, a.keys.FocusTags):
		if a.focus == focusTags || len(a.tags) == 0 {
			a.focus = focusEditor
			return a, nil
		}
		a.focus = focusTags
		a.tagIdx = len(a.tags) - 1
		return a, nil
	}

	if a.focus == focusTags {
		return a.handleTagKeys(msg)
	}
	events := a.editor.HandleKey(msg)
	cmd := a.handleEvents(events)
	return a, cmd
}

func (a *App) handleEvents(events []tags.Event) tea.Cmd {
	var cmds []tea.Cmd
	for _, ev := range events {
		switch ev.Kind {
		case tags.EventTagCompleted:
			a.addTag(ev.Tag)
		case tags.EventFirstInteraction:
			if a.client == nil || a.experiment == "" {
				continue
			}
			a.log.Debug().Str("experiment", a.experiment).Msg("new entry started")
			cmds = append(cmds, loadTagsCmd(a.client, a.experiment), loadRunCmd(a.client, a.experiment))
		}
	}
	return tea.Batch(cmds...)
}

func (a App) handleTagKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case isKey(msg, "left"):
		if a.tagIdx > 0 {
			a.tagIdx--
		}
	case isKey(msg, "right"):
		if a.tagIdx < len(a.tags)-1 {
			a.tagIdx++
		}
	case isKey(msg, "backspace", "delete"):
		if a.tagIdx >= 0 && a.tagIdx < len(a.tags) {
			a.tags = append(a.tags[:a.tagIdx:a.tagIdx], a.tags[a.tagIdx+1:]...)
		}
		if a.tagIdx >= len(a.tags) {
			a.tagIdx = len(a.tags) - 1
		}
		if len(a.tags) == 0 {
			a.focus = focusEditor
			a.tagIdx = 0
		}
	case isBack(msg), isEnter(msg):
		a.focus = focusEditor
	}
	return a, nil
}

func (a App) handleAttachKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case isBack(msg):
		a.attachOpen = false
	case isEnter(msg):
		a.attachOpen = false
		path := strings.TrimSpace(a.attachInput)
		if path == "" {
			return a, nil
		}
		info, err := os.Stat(path)
		if err != nil {
			a.err = fmt.Sprintf("attach %s: %v", path, err)
			return a, nil
		}
		if info.IsDir() {
			a.err = fmt.Sprintf("attach %s: is a directory", path)
			return a, nil
		}
		for _, existing := range a.attachments {
			if existing == path {
				return a, nil
			}
		}
		a.attachments = append(a.attachments, path)
		cmd := a.setToast("info", "Attached "+filepath.Base(path))
		return a, cmd
	case isKey(msg, "backspace"):
		a.attachInput = dropLastRune(a.attachInput)
	case isKey(msg, "ctrl+u"):
		a.attachInput = ""
	case msg.Type == tea.KeySpace:
		a.attachInput += " "
	case msg.Type == tea.KeyRunes:
		a.attachInput += string(msg.Runes)
	}
	return a, nil
}

func (a App) beginSubmit() (tea.Model, tea.Cmd) {
	if a.submitting || a.client == nil {
		return a, nil
	}
	if a.experiment == "" {
		a.err = "no experiment selected; set one with elog login or --experiment"
		return a, nil
	}
	if err := a.entry().Normalize().Validate(); err != nil {
		a.err = err.Error()
		return a, nil
	}
	a.submitConfirm = true
	return a, nil
}

func (a App) entry() api.Entry {
	entry := api.Entry{
		Text:        a.editor.Value(),
		Tags:        append([]string(nil), a.tags...),
		Attachments: append([]string(nil), a.attachments...),
	}
	if a.run != nil {
		entry.Run = strconv.Itoa(a.run.Num)
	}
	return entry
}

func (a *App) addTag(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	for _, existing := range a.tags {
		if existing == tag {
			return
		}
	}
	a.tags = append(a.tags, tag)
}

// resetEntry starts a new entry after a successful post.
func (a *App) resetEntry() {
	a.editor.Reset()
	a.engine.ResetFirstInteraction()
	a.tags = a.config.DefaultTags()
	a.attachments = nil
	a.run = nil
	a.focus = focusEditor
	a.tagIdx = 0
}

func (a App) dirty() bool {
	return a.editor.Dirty() || len(a.attachments) > 0
}

// --- Commands ---

func resolveExperimentCmd(client *api.Client, instrument, station string) tea.Cmd {
	return func() tea.Msg {
		name, err := client.CurrentExperiment(instrument, station)
		return experimentResolvedMsg{name: name, err: err}
	}
}

func loadTagsCmd(client *api.Client, experiment string) tea.Cmd {
	return func() tea.Msg {
		items, err := client.ListTags(experiment)
		return tagsLoadedMsg{experiment: experiment, tags: items, err: err}
	}
}

func loadRunCmd(client *api.Client, experiment string) tea.Cmd {
	return func() tea.Msg {
		run, err := client.CurrentRun(experiment)
		return runLoadedMsg{experiment: experiment, run: run, err: err}
	}
}

// logbookTargets says where an entry goes. The facilities logbook is
// resolved when the entry is posted.
type logbookTargets struct {
	experiment string
	instrument string
	facilities bool
}

func (a App) logbooks() logbookTargets {
	t := logbookTargets{experiment: a.experiment, facilities: a.facilities}
	if a.config != nil {
		t.instrument = a.config.Instrument
	}
	return t
}

func submitCmd(client *api.Client, targets logbookTargets, entry api.Entry) tea.Cmd {
	return func() tea.Msg {
		names := []string{targets.experiment}
		if targets.facilities {
			name, err := client.FacilitiesLogbook(targets.instrument)
			if err != nil {
				return submitDoneMsg{err: fmt.Errorf("facilities logbook: %w", err)}
			}
			if name != targets.experiment {
				names = append(names, name)
			}
		}
		posted, err := client.SubmitEntries(names, entry)
		return submitDoneMsg{posted: posted, err: err}
	}
}

// --- View ---

func (a App) View() string {
	sections := []string{centerBlockUniform(a.renderHeader(), a.width)}
	if a.height == 0 || a.height >= bannerHeight()+24 {
		sections = append([]string{centerBlockUniform(RenderBanner(), a.width)}, sections...)
	}

	var content string
	switch {
	case a.quitConfirm:
		content = components.ConfirmDialog("Quit", "Discard the unsent entry?")
	case a.submitConfirm:
		content = a.renderSubmitConfirm()
	case a.attachOpen:
		content = components.InputDialog("Attach file", a.attachInput)
	default:
		content = a.renderComposer()
	}
	sections = append(sections, centerBlockUniform(content, a.width))
	sections = append(sections, components.StatusBar(a.statusHints(), a.width))

	if a.err != "" {
		sections = append(sections, centerBlockUniform(components.ErrorBox("Error", a.err, a.width), a.width))
	} else if a.toast != nil {
		sections = append(sections, centerBlockUniform(a.renderToast(), a.width))
	}
	return strings.Join(sections, "\n\n")
}

func (a App) renderHeader() string {
	parts := []string{HeaderStyle.Render("elog")}
	switch {
	case a.experiment != "":
		parts = append(parts, ExperimentBadgeStyle.Render(components.SanitizeOneLine(a.experiment)))
	case a.resolving:
		parts = append(parts, MutedStyle.Render("finding current experiment…"))
	default:
		parts = append(parts, WarningStyle.Render("no experiment"))
	}
	if a.run != nil {
		parts = append(parts, RunBadgeStyle.Render(fmt.Sprintf("run %d", a.run.Num)))
	}
	if a.config != nil && a.config.Username != "" {
		parts = append(parts, MutedStyle.Render(components.SanitizeOneLine(a.config.Username)))
	}
	if a.facilities {
		parts = append(parts, AccentStyle.Render("+ facilities"))
	}
	if a.submitting {
		parts = append(parts, AccentStyle.Render("posting…"))
	}
	return strings.Join(parts, "  ")
}

func (a App) renderComposer() string {
	width := a.width
	var b strings.Builder
	b.WriteString(a.editor.Render(width, a.focus == focusEditor))
	b.WriteString("\n")

	active := -1
	if a.focus == focusTags {
		active = a.tagIdx
	}
	tagLine := MutedStyle.Render("Tags  ")
	if len(a.tags) == 0 {
		tagLine += MutedStyle.Render("none yet")
	} else {
		tagLine += components.Pills(a.tags, active, components.BoxContentWidth(width))
	}
	b.WriteString(components.Indent(tagLine, 2))

	if len(a.attachments) > 0 {
		names := make([]string, 0, len(a.attachments))
		for _, path := range a.attachments {
			names = append(names, filepath.Base(path))
		}
		b.WriteString("\n")
		b.WriteString(components.Indent(components.InfoRow("Files", strings.Join(names, ", ")), 2))
	}
	return b.String()
}

func (a App) renderSubmitConfirm() string {
	entry := a.entry().Normalize()
	run := "-"
	if entry.Run != "" {
		run = entry.Run
	}
	tagText := "-"
	if len(entry.Tags) > 0 {
		tagText = "#" + strings.Join(entry.Tags, " #")
	}
	facilitiesText := "no"
	if a.facilities {
		facilitiesText = "yes, " + a.logbooks().instrument + " Instrument"
	}
	rows := []components.TableRow{
		{Label: "Experiment", Value: a.experiment},
		{Label: "Facilities", Value: facilitiesText},
		{Label: "Run", Value: run},
		{Label: "Tags", Value: tagText},
		{Label: "Files", Value: strconv.Itoa(len(entry.Attachments))},
	}
	return components.ConfirmPreviewDialog("Post entry", rows, previewLines(entry.Text, 8), a.width)
}

func (a App) statusHints() []string {
	if a.editor.PopupOpen() {
		return components.KeyHints(a.keys.PopupUp, a.keys.PopupDown, a.keys.Complete)
	}
	if a.focus == focusTags {
		return []string{
			components.Hint("←/→", "Select"),
			components.Hint("backspace", "Remove"),
			components.Hint("esc", "Back"),
		}
	}
	return components.KeyHints(a.keys.Submit, a.keys.Complete, a.keys.FocusTags, a.keys.Attach, a.keys.Facilities, a.keys.Quit)
}

func (a *App) setToast(level, text string) tea.Cmd {
	a.toast = &appToast{
		level: level,
		text:  components.SanitizeOneLine(text),
	}
	return tea.Tick(2500*time.Millisecond, func(time.Time) tea.Msg {
		return clearToastMsg{}
	})
}

func (a App) renderToast() string {
	if a.toast == nil {
		return ""
	}
	title := "Info"
	switch a.toast.level {
	case "success":
		title = "Success"
	case "warning":
		title = "Warning"
	case "error":
		return components.ErrorBox("Error", a.toast.text, a.width)
	}
	return components.TitledBox(title, a.toast.text, a.width)
}

// --- Helpers ---

func postedText(posted []api.Posted) string {
	text := "Entry posted."
	if len(posted) == 0 {
		return text
	}
	if r := posted[0].Result; r != nil && r.ID != "" {
		text = "Entry " + r.ID + " posted."
	}
	if len(posted) > 1 {
		names := make([]string, 0, len(posted)-1)
		for _, p := range posted[1:] {
			names = append(names, p.Logbook)
		}
		text += " Also in " + strings.Join(names, ", ") + "."
	}
	return text
}

func previewLines(text string, limit int) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= limit {
		return text
	}
	return strings.Join(lines[:limit], "\n") + "\n…"
}

func dropLastRune(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	return string(runes[:len(runes)-1])
}

func centerBlockUniform(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	maxWidth := 0
	for _, line := range lines {
		maxWidth = max(maxWidth, lipgloss.Width(line))
	}
	if maxWidth <= 0 || maxWidth >= width {
		return s
	}
	pad := (width - maxWidth) / 2
	if pad <= 0 {
		return s
	}
	prefix := strings.Repeat(" ", pad)
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
