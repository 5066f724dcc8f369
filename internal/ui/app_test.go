package ui

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/elog/cli/internal/api"
	"github.com/gravitrone/elog/cli/internal/config"
	"github.com/gravitrone/elog/cli/internal/tags"
	"github.com/gravitrone/elog/cli/internal/ui/components"
)

// fakeLogbook serves the handful of logbook endpoints the composer uses.
type fakeLogbook struct {
	mu       sync.Mutex
	tags     []string
	run      any
	failTags bool
	failPost bool
	// failFacilities rejects posts to the shared instrument logbook.
	failFacilities bool
	posted         []map[string]string
}

func (f *fakeLogbook) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.URL.Path {
		case "/lgbk/ws/activeexperiments":
			writeValue(w, []map[string]any{
				{"_id": "1", "name": "mfxp5678", "instrument": "MFX", "station": 0},
				{"_id": "2", "name": "xppx1234", "instrument": "XPP", "station": 0},
			})
		case "/lgbk/ws/postable_experiments":
			writeValue(w, []map[string]any{
				{"_id": "2", "name": "xppx1234", "instrument": "XPP"},
				{"_id": "9", "name": "XPP Instrument", "instrument": "NEH"},
			})
		case "/lgbk/xppx1234/ws/get_elog_tags":
			if f.failTags {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"success":false,"errormsg":"tag index offline"}`))
				return
			}
			writeValue(w, f.tags)
		case "/lgbk/xppx1234/ws/current_run":
			writeValue(w, f.run)
		case "/lgbk/xppx1234/ws/new_elog_entry", "/lgbk/XPP Instrument/ws/new_elog_entry":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			logbook := strings.Split(r.URL.Path, "/")[2]
			if f.failPost || (f.failFacilities && logbook != "xppx1234") {
				w.Write([]byte(`{"success":false,"message":"logbook is read only"}`))
				return
			}
			f.posted = append(f.posted, map[string]string{
				"logbook":  logbook,
				"log_text": r.FormValue("log_text"),
				"log_tags": r.FormValue("log_tags"),
				"run_num":  r.FormValue("run_num"),
			})
			writeValue(w, map[string]any{"_id": "entry-7"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func writeValue(w http.ResponseWriter, value any) {
	json.NewEncoder(w).Encode(map[string]any{"success": true, "value": value})
}

func testClient(t *testing.T, lb *fakeLogbook) *api.Client {
	srv := httptest.NewServer(lb.handler(t))
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL, "opr", "")
}

func testConfig() *config.Config {
	return &config.Config{
		Username:   "opr",
		Instrument: "XPP",
		Experiment: "xppx1234",
		Tags:       []string{"shift"},
	}
}

func update(t *testing.T, app App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	model, cmd := app.Update(msg)
	updated, ok := model.(App)
	require.True(t, ok)
	return updated, cmd
}

func typeApp(t *testing.T, app App, s string) App {
	t.Helper()
	for _, r := range s {
		msg := keyRunes(string(r))
		if r == ' ' {
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		}
		app, _ = update(t, app, msg)
	}
	return app
}

// runCmd executes cmd and flattens batches into their messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestNewAppUsesConfigDefaults(t *testing.T) {
	app := NewApp(nil, testConfig(), zerolog.Nop())

	assert.Equal(t, "xppx1234", app.experiment)
	assert.Equal(t, []string{"shift"}, app.tags)
	assert.False(t, app.resolving)
	assert.Nil(t, app.Init())
}

func TestNewAppWithoutConfig(t *testing.T) {
	app := NewApp(nil, nil, zerolog.Nop())

	assert.Empty(t, app.experiment)
	assert.Empty(t, app.tags)
	assert.NotPanics(t, func() { _ = app.View() })
}

func TestInitLoadsTagsForConfiguredExperiment(t *testing.T) {
	lb := &fakeLogbook{tags: []string{"vacuum", "laser"}}
	app := NewApp(testClient(t, lb), testConfig(), zerolog.Nop())

	msgs := runCmd(app.Init())
	require.Len(t, msgs, 1)
	loaded, ok := msgs[0].(tagsLoadedMsg)
	require.True(t, ok)
	require.NoError(t, loaded.err)

	app, _ = update(t, app, loaded)
	assert.Equal(t, []string{"vacuum", "laser"}, app.engine.Tags())
}

func TestInitResolvesCurrentExperiment(t *testing.T) {
	lb := &fakeLogbook{tags: []string{"vacuum"}}
	cfg := testConfig()
	cfg.Experiment = ""
	app := NewApp(testClient(t, lb), cfg, zerolog.Nop())
	require.True(t, app.resolving)
	assert.Contains(t, components.SanitizeText(app.renderHeader()), "finding current experiment")

	msgs := runCmd(app.Init())
	require.Len(t, msgs, 1)
	resolved, ok := msgs[0].(experimentResolvedMsg)
	require.True(t, ok)
	assert.Equal(t, "xppx1234", resolved.name)

	app, cmd := update(t, app, resolved)
	assert.Equal(t, "xppx1234", app.experiment)
	assert.False(t, app.resolving)

	msgs = runCmd(cmd)
	require.Len(t, msgs, 1)
	app, _ = update(t, app, msgs[0])
	assert.Equal(t, []string{"vacuum"}, app.engine.Tags())
}

func TestResolveExperimentFailureShowsError(t *testing.T) {
	lb := &fakeLogbook{}
	cfg := testConfig()
	cfg.Experiment = ""
	cfg.Instrument = "CXI"
	app := NewApp(testClient(t, lb), cfg, zerolog.Nop())

	msgs := runCmd(app.Init())
	require.Len(t, msgs, 1)
	app, cmd := update(t, app, msgs[0])

	assert.Nil(t, cmd)
	assert.Contains(t, app.err, "no current experiment for CXI")
	assert.Contains(t, components.SanitizeText(app.renderHeader()), "no experiment")
}

func TestTagsLoadFailureLogsAndToasts(t *testing.T) {
	var logs bytes.Buffer
	lb := &fakeLogbook{failTags: true}
	app := NewApp(testClient(t, lb), testConfig(), zerolog.New(&logs))

	msgs := runCmd(app.Init())
	require.Len(t, msgs, 1)
	app, cmd := update(t, app, msgs[0])

	assert.NotNil(t, cmd)
	require.NotNil(t, app.toast)
	assert.Equal(t, "warning", app.toast.level)
	assert.Contains(t, app.toast.text, "tag index offline")
	assert.Empty(t, app.engine.Tags())
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), `"message":"load tags"`)
	assert.Contains(t, logs.String(), `"component":"composer"`)

	// Completion is off but typing still works.
	app = typeApp(t, app, "#vac")
	assert.Equal(t, "#vac", app.editor.Value())
}

func TestStaleTagListIsIgnored(t *testing.T) {
	app := NewApp(nil, testConfig(), zerolog.Nop())

	app, _ = update(t, app, tagsLoadedMsg{experiment: "other", tags: []string{"vacuum"}})
	assert.Empty(t, app.engine.Tags())
}

func TestTypingCompletesTagIntoEntry(t *testing.T) {
	app := NewApp(nil, testConfig(), zerolog.Nop())
	app.engine.SetTagSet([]string{"vacuum", "laser"})

	app = typeApp(t, app, "pump #vac")
	assert.Equal(t, "pump #vacuum ", app.editor.Value())
	assert.Equal(t, []string{"shift", "vacuum"}, app.tags)

	app = typeApp(t, app, "#beam ")
	assert.Equal(t, []string{"shift", "vacuum", "beam"}, app.tags)

	app = typeApp(t, app, "#vac")
	assert.Equal(t, []string{"shift", "vacuum", "beam"}, app.tags)
}

func TestFirstInteractionFetchesTagsAndRun(t *testing.T) {
	lb := &fakeLogbook{tags: []string{"vacuum"}, run: map[string]any{"num": 42, "type": "DATA"}}
	app := NewApp(testClient(t, lb), testConfig(), zerolog.Nop())

	app, cmd := update(t, app, keyRunes("a"))
	msgs := runCmd(cmd)
	require.Len(t, msgs, 2)
	for _, msg := range msgs {
		app, _ = update(t, app, msg)
	}

	require.NotNil(t, app.run)
	assert.Equal(t, 42, app.run.Num)
	assert.Equal(t, "42", app.entry().Run)
	assert.Equal(t, []string{"vacuum"}, app.engine.Tags())
	assert.Contains(t, components.SanitizeText(app.renderHeader()), "run 42")

	_, cmd = update(t, app, keyRunes("b"))
	assert.Nil(t, cmd)
}

func TestSubmitFlowPostsAndStartsNewEntry(t *testing.T) {
	lb := &fakeLogbook{tags: []string{"vacuum"}, run: map[string]any{"num": 7}}
	app := NewApp(testClient(t, lb), testConfig(), zerolog.Nop())
	app, _ = update(t, app, tea.WindowSizeMsg{Width: 120, Height: 40})

	app, cmd := update(t, app, keyRunes("#"))
	for _, msg := range runCmd(cmd) {
		app, _ = update(t, app, msg)
	}
	app = typeApp(t, app, "vac")
	app = typeApp(t, app, "pumped down")

	app, cmd = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	require.True(t, app.submitConfirm)
	view := components.SanitizeText(app.View())
	assert.Contains(t, view, "Post entry")
	assert.Contains(t, view, "#shift #vacuum")

	app, cmd = update(t, app, keyRunes("y"))
	require.NotNil(t, cmd)
	assert.True(t, app.submitting)
	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)

	app, _ = update(t, app, msgs[0])
	require.Len(t, lb.posted, 1)
	assert.Equal(t, "#vacuum pumped down", lb.posted[0]["log_text"])
	assert.Equal(t, "shift vacuum", lb.posted[0]["log_tags"])
	assert.Equal(t, "7", lb.posted[0]["run_num"])

	assert.False(t, app.submitting)
	assert.Equal(t, "", app.editor.Value())
	assert.Equal(t, []string{"shift"}, app.tags)
	assert.Nil(t, app.run)
	assert.False(t, app.engine.FirstInteractionDone())
	require.NotNil(t, app.toast)
	assert.Contains(t, app.toast.text, "entry-7")
}

func TestSubmitCancelKeepsEntry(t *testing.T) {
	app := NewApp(testClient(t, &fakeLogbook{}), testConfig(), zerolog.Nop())
	app = typeApp(t, app, "note")

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.True(t, app.submitConfirm)
	app, cmd := update(t, app, keyRunes("n"))

	assert.Nil(t, cmd)
	assert.False(t, app.submitConfirm)
	assert.Equal(t, "note", app.editor.Value())
}

func TestSubmitRejectsEmptyEntry(t *testing.T) {
	app := NewApp(testClient(t, &fakeLogbook{}), testConfig(), zerolog.Nop())

	app, cmd := update(t, app, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.False(t, app.submitConfirm)
	assert.Contains(t, app.err, "invalid entry")
	assert.Contains(t, components.SanitizeText(app.View()), "Error")
}

func TestSubmitWithoutExperiment(t *testing.T) {
	cfg := testConfig()
	cfg.Experiment = ""
	app := NewApp(testClient(t, &fakeLogbook{}), cfg, zerolog.Nop())
	app.resolving = false
	app = typeApp(t, app, "note")

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.False(t, app.submitConfirm)
	assert.Contains(t, app.err, "no experiment selected")
}

func TestSubmitFailureKeepsEntry(t *testing.T) {
	var logs bytes.Buffer
	lb := &fakeLogbook{failPost: true}
	app := NewApp(testClient(t, lb), testConfig(), zerolog.New(&logs))
	app = typeApp(t, app, "note")

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlS})
	app, cmd := update(t, app, keyRunes("y"))
	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	app, _ = update(t, app, msgs[0])

	assert.Contains(t, app.err, "logbook is read only")
	assert.Equal(t, "note", app.editor.Value())
	assert.Contains(t, logs.String(), `"level":"error"`)

	// Any key clears the error.
	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyEnd})
	assert.Empty(t, app.err)
}

func TestFacilitiesToggleShowsInHeaderAndConfirm(t *testing.T) {
	app := NewApp(nil, testConfig(), zerolog.Nop())
	app, _ = update(t, app, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.False(t, app.facilities)

	app, cmd := update(t, app, tea.KeyMsg{Type: tea.KeyCtrlF})
	assert.Nil(t, cmd)
	assert.True(t, app.facilities)
	assert.Equal(t, "", app.editor.Value())
	assert.Contains(t, components.SanitizeText(app.renderHeader()), "+ facilities")

	app = typeApp(t, app, "note")
	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.True(t, app.submitConfirm)
	assert.Contains(t, components.SanitizeText(app.View()), "yes, XPP Instrument")

	app, _ = update(t, app, keyRunes("n"))
	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlF})
	assert.False(t, app.facilities)
	assert.NotContains(t, components.SanitizeText(app.renderHeader()), "+ facilities")
}

func TestFacilitiesDefaultFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Facilities = true
	app := NewApp(nil, cfg, zerolog.Nop())
	assert.True(t, app.facilities)
}

func TestSubmitWithFacilitiesPostsToBothLogbooks(t *testing.T) {
	lb := &fakeLogbook{run: map[string]any{"num": 7}}
	app := NewApp(testClient(t, lb), testConfig(), zerolog.Nop())
	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlF})
	app = typeApp(t, app, "beam back")
	app.run = &api.Run{Num: 7}

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlS})
	app, cmd := update(t, app, keyRunes("y"))
	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	app, _ = update(t, app, msgs[0])

	require.Len(t, lb.posted, 2)
	assert.Equal(t, "xppx1234", lb.posted[0]["logbook"])
	assert.Equal(t, "7", lb.posted[0]["run_num"])
	assert.Equal(t, "XPP Instrument", lb.posted[1]["logbook"])
	assert.Equal(t, "", lb.posted[1]["run_num"])
	assert.Equal(t, "beam back", lb.posted[1]["log_text"])

	assert.Empty(t, app.err)
	assert.Equal(t, "", app.editor.Value())
	require.NotNil(t, app.toast)
	assert.Contains(t, app.toast.text, "entry-7")
	assert.Contains(t, app.toast.text, "Also in XPP Instrument")
	assert.True(t, app.facilities)
}

func TestSubmitFacilitiesFailureReportsPartialPost(t *testing.T) {
	var logs bytes.Buffer
	lb := &fakeLogbook{failFacilities: true}
	app := NewApp(testClient(t, lb), testConfig(), zerolog.New(&logs))
	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlF})
	app = typeApp(t, app, "note")

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlS})
	app, cmd := update(t, app, keyRunes("y"))
	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	app, _ = update(t, app, msgs[0])

	require.Len(t, lb.posted, 1)
	assert.Contains(t, app.err, "posted to xppx1234")
	assert.Contains(t, app.err, "logbook is read only")
	// The experiment has the entry, so the composer starts over.
	assert.Equal(t, "", app.editor.Value())
	assert.Contains(t, logs.String(), `"logbook":"xppx1234"`)
}

func TestQuitConfirmWhenDirty(t *testing.T) {
	app := NewApp(nil, testConfig(), zerolog.Nop())
	app = typeApp(t, app, "x")

	app, cmd := update(t, app, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, cmd)
	require.True(t, app.quitConfirm)
	assert.Contains(t, components.SanitizeText(app.View()), "Discard the unsent entry?")

	app, _ = update(t, app, keyRunes("n"))
	assert.False(t, app.quitConfirm)
	assert.Equal(t, "x", app.editor.Value())

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlC})
	_, cmd = update(t, app, keyRunes("y"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestQuitImmediatelyWhenClean(t *testing.T) {
	app := NewApp(nil, testConfig(), zerolog.Nop())

	_, cmd := update(t, app, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestQuestionMarkIsLiteralText(t *testing.T) {
	app := NewApp(nil, testConfig(), zerolog.Nop())

	app = typeApp(t, app, "why?")
	assert.Equal(t, "why?", app.editor.Value())
}

func TestTagFocusSelectsAndRemoves(t *testing.T) {
	cfg := testConfig()
	cfg.Tags = []string{"shift", "vacuum", "laser"}
	app := NewApp(nil, cfg, zerolog.Nop())

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlT})
	require.Equal(t, focusTags, app.focus)
	assert.Equal(t, 2, app.tagIdx)

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 1, app.tagIdx)
	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, []string{"shift", "laser"}, app.tags)
	assert.Equal(t, 1, app.tagIdx)

	// Keys do not reach the editor while the pills have focus.
	app = typeApp(t, app, "z")
	assert.Equal(t, "", app.editor.Value())

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, focusEditor, app.focus)
	assert.Equal(t, []string{"shift", "vacuum", "laser"}, cfg.Tags)
}

func TestTagFocusLeavesWhenLastTagRemoved(t *testing.T) {
	cfg := testConfig()
	cfg.Tags = []string{"shift"}
	app := NewApp(nil, cfg, zerolog.Nop())

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlT})
	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyBackspace})

	assert.Empty(t, app.tags)
	assert.Equal(t, focusEditor, app.focus)
}

func TestTagFocusIgnoredWithoutTags(t *testing.T) {
	cfg := testConfig()
	cfg.Tags = nil
	app := NewApp(nil, cfg, zerolog.Nop())

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, focusEditor, app.focus)
}

func TestAttachFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scope.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o600))
	app := NewApp(nil, testConfig(), zerolog.Nop())

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlA})
	require.True(t, app.attachOpen)
	app, _ = update(t, app, keyRunes(path))
	assert.Contains(t, components.SanitizeText(app.View()), "Attach file")
	app, cmd := update(t, app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.NotNil(t, cmd)
	assert.False(t, app.attachOpen)
	assert.Equal(t, []string{path}, app.attachments)
	assert.True(t, app.dirty())
	assert.Contains(t, components.SanitizeText(app.renderComposer()), "scope.png")

	// Attaching the same file twice keeps one copy.
	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlA})
	app, _ = update(t, app, keyRunes(path))
	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Len(t, app.attachments, 1)
}

func TestAttachMissingFileShowsError(t *testing.T) {
	app := NewApp(nil, testConfig(), zerolog.Nop())

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlA})
	app, _ = update(t, app, keyRunes("/no/such/file.png"))
	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Empty(t, app.attachments)
	assert.Contains(t, app.err, "attach /no/such/file.png")
}

func TestAttachEscapeCancels(t *testing.T) {
	app := NewApp(nil, testConfig(), zerolog.Nop())

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlA})
	app, _ = update(t, app, keyRunes("abc"))
	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "ab", app.attachInput)
	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, app.attachOpen)
	assert.Empty(t, app.attachments)
}

func TestPopupHintsReplaceComposerHints(t *testing.T) {
	app := NewApp(nil, testConfig(), zerolog.Nop())
	app.engine.SetTagSet([]string{"laser", "laser_timing"})

	app = typeApp(t, app, "#las")
	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyTab})
	require.True(t, app.editor.PopupOpen())

	hints := components.SanitizeText(components.StatusBar(app.statusHints(), 0))
	assert.Contains(t, hints, "Next")
	assert.NotContains(t, hints, "Submit")

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "#laser ", app.editor.Value())
	assert.Contains(t, app.tags, "laser")
}

func TestViewRendersHeaderComposerAndHints(t *testing.T) {
	app := NewApp(nil, testConfig(), zerolog.Nop())
	app, _ = update(t, app, tea.WindowSizeMsg{Width: 100, Height: 30})

	out := components.SanitizeText(app.View())
	assert.Contains(t, out, "xppx1234")
	assert.Contains(t, out, "Message")
	assert.Contains(t, out, "#shift")
	assert.Contains(t, out, "Submit")
	assert.NotContains(t, out, "Electronic Logbook")

	app, _ = update(t, app, tea.WindowSizeMsg{Width: 100, Height: 60})
	assert.Contains(t, components.SanitizeText(app.View()), "Electronic Logbook")
}

func TestToastSanitizesTextAndClears(t *testing.T) {
	app := NewApp(nil, testConfig(), zerolog.Nop())
	app.width = 80

	_ = app.setToast("success", "\x1b[2Jok")
	require.NotNil(t, app.toast)
	assert.NotContains(t, app.toast.text, "\x1b")
	assert.Contains(t, components.SanitizeText(app.renderToast()), "Success")

	_ = app.setToast("error", "bad")
	assert.Contains(t, components.SanitizeText(app.renderToast()), "Error")

	app, _ = update(t, app, clearToastMsg{})
	assert.Nil(t, app.toast)
	assert.Equal(t, "", app.renderToast())
}

func TestEntryCarriesAttachmentsAndRun(t *testing.T) {
	app := NewApp(nil, testConfig(), zerolog.Nop())
	app.editor.SetValue("text")
	app.attachments = []string{"a.png"}
	app.run = &api.Run{Num: 3}

	entry := app.entry()
	assert.Equal(t, api.Entry{
		Text:        "text",
		Tags:        []string{"shift"},
		Attachments: []string{"a.png"},
		Run:         "3",
	}, entry)
}

func TestHandleEventsIgnoresFirstInteractionWithoutClient(t *testing.T) {
	app := NewApp(nil, testConfig(), zerolog.Nop())

	cmd := app.handleEvents([]tags.Event{{Kind: tags.EventFirstInteraction}})
	assert.Nil(t, cmd)
}

func TestCenterBlockPadsShortLines(t *testing.T) {
	out := centerBlockUniform("ab\nc", 10)
	assert.Equal(t, "    ab\n    c", out)
	assert.Equal(t, "abc", centerBlockUniform("abc", 0))
}

func TestPreviewLinesTruncates(t *testing.T) {
	assert.Equal(t, "a\nb", previewLines("a\nb", 2))
	assert.Equal(t, "a\nb\n…", previewLines("a\nb\nc", 2))
}
