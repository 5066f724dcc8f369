package ui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"

	"github.com/gravitrone/elog/cli/internal/tags"
	"github.com/gravitrone/elog/cli/internal/ui/components"
)

const popupPageSize = 6

var hashtagPattern = regexp.MustCompile(`#[^\s#]+`)

// MessageEditor is the multi-line entry buffer. Every key is shown to the
// completion engine before the default edit is applied.
type MessageEditor struct {
	engine *tags.Engine
	keys   keyMap

	buf    []rune
	cursor int
	popup  *components.List
}

// NewMessageEditor creates an empty editor driven by engine.
func NewMessageEditor(engine *tags.Engine) MessageEditor {
	return MessageEditor{
		engine: engine,
		keys:   defaultKeyMap(),
		popup:  components.NewList(popupPageSize),
	}
}

// Value returns the buffer text.
func (m MessageEditor) Value() string {
	return string(m.buf)
}

// Cursor returns the cursor as a rune offset.
func (m MessageEditor) Cursor() int {
	return m.cursor
}

// SetValue replaces the buffer and moves the cursor to the end.
func (m *MessageEditor) SetValue(text string) {
	m.buf = []rune(text)
	m.cursor = len(m.buf)
	m.closePopup()
}

// Reset clears the buffer for a new entry.
func (m *MessageEditor) Reset() {
	m.buf = nil
	m.cursor = 0
	m.closePopup()
}

// Dirty reports whether the buffer holds anything worth keeping.
func (m MessageEditor) Dirty() bool {
	return strings.TrimSpace(string(m.buf)) != ""
}

// PopupOpen reports whether the candidate popup is shown.
func (m MessageEditor) PopupOpen() bool {
	return m.engine.PopupVisible() && m.popup.Len() > 0
}

// HandleKey applies one key and returns the engine events it produced.
func (m *MessageEditor) HandleKey(msg tea.KeyMsg) []tags.Event {
	open := m.PopupOpen()
	if open {
		switch {
		case key.Matches(msg, m.keys.PopupUp):
			m.popup.Up()
			return nil
		case key.Matches(msg, m.keys.PopupDown):
			m.popup.Down()
			return nil
		}
	}

	ev := keyEvent(msg)
	out := m.engine.OnKeystroke(ev, m.Value(), m.cursor)
	events := out.Events

	switch out.Decision.Kind {
	case tags.PassThrough:
		m.apply(msg)
	case tags.Suppress:
		if open {
			events = append(events, m.popupKey(ev)...)
		}
	case tags.InsertAndEmit:
		m.insert([]rune(out.Decision.Text))
	case tags.OpenPopup:
		if ev.Printable() {
			m.apply(msg)
		}
		if open {
			m.popup.Retain(out.Decision.Candidates)
		} else {
			m.popup.SetItems(out.Decision.Candidates)
		}
	}

	if !m.engine.PopupVisible() {
		m.popup.SetItems(nil)
	}
	return events
}

// popupKey handles a key the engine held back for the popup.
func (m *MessageEditor) popupKey(ev tags.KeyEvent) []tags.Event {
	switch ev.Key {
	case tags.KeyBacktab:
		m.popup.Up()
	case tags.KeyEnter, tags.KeyReturn, tags.KeyTab:
		candidate, ok := m.popup.Current()
		if !ok {
			m.closePopup()
			return nil
		}
		out := m.engine.Accept(candidate, m.Value(), m.cursor)
		if out.Decision.Kind == tags.InsertAndEmit {
			m.insert([]rune(out.Decision.Text))
		}
		m.popup.SetItems(nil)
		return out.Events
	}
	return nil
}

func (m *MessageEditor) closePopup() {
	if m.engine != nil {
		m.engine.DismissPopup()
	}
	if m.popup != nil {
		m.popup.SetItems(nil)
	}
}

// --- Default editing ---

func (m *MessageEditor) apply(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyRunes:
		if !msg.Alt {
			m.insert(msg.Runes)
		}
	case tea.KeySpace:
		m.insert([]rune{' '})
	case tea.KeyEnter, tea.KeyCtrlJ:
		m.insert([]rune{'\n'})
	case tea.KeyTab:
		m.insert([]rune("  "))
	case tea.KeyBackspace:
		m.deleteBackward()
	case tea.KeyDelete:
		m.deleteForward()
	case tea.KeyLeft:
		if m.cursor == 0 {
			break
		}
		if m.buf[m.cursor-1] == '\n' {
			m.cursor--
			break
		}
		m.cursor -= lastGraphemeLen(m.buf[m.lineStart(m.cursor):m.cursor])
	case tea.KeyRight:
		if m.cursor >= len(m.buf) {
			break
		}
		if m.buf[m.cursor] == '\n' {
			m.cursor++
			break
		}
		m.cursor += firstGraphemeLen(m.buf[m.cursor:m.lineEnd(m.cursor)])
	case tea.KeyHome:
		m.cursor = m.lineStart(m.cursor)
	case tea.KeyEnd:
		m.cursor = m.lineEnd(m.cursor)
	case tea.KeyUp:
		m.moveLine(-1)
	case tea.KeyDown:
		m.moveLine(1)
	case tea.KeyCtrlU:
		start := m.lineStart(m.cursor)
		m.buf = append(m.buf[:start:start], m.buf[m.cursor:]...)
		m.cursor = start
	}
}

func (m *MessageEditor) insert(runes []rune) {
	if len(runes) == 0 {
		return
	}
	next := make([]rune, 0, len(m.buf)+len(runes))
	next = append(next, m.buf[:m.cursor]...)
	next = append(next, runes...)
	next = append(next, m.buf[m.cursor:]...)
	m.buf = next
	m.cursor += len(runes)
}

func (m *MessageEditor) deleteBackward() {
	if m.cursor == 0 {
		return
	}
	n := 1
	if m.buf[m.cursor-1] != '\n' {
		n = lastGraphemeLen(m.buf[m.lineStart(m.cursor):m.cursor])
	}
	m.buf = append(m.buf[:m.cursor-n:m.cursor-n], m.buf[m.cursor:]...)
	m.cursor -= n
}

func (m *MessageEditor) deleteForward() {
	if m.cursor >= len(m.buf) {
		return
	}
	n := 1
	if m.buf[m.cursor] != '\n' {
		n = firstGraphemeLen(m.buf[m.cursor:m.lineEnd(m.cursor)])
	}
	m.buf = append(m.buf[:m.cursor:m.cursor], m.buf[m.cursor+n:]...)
}

// moveLine moves the cursor to the same grapheme column of an adjacent line.
func (m *MessageEditor) moveLine(dir int) {
	start := m.lineStart(m.cursor)
	col := graphemeCount(m.buf[start:m.cursor])
	var target int
	switch {
	case dir < 0:
		if start == 0 {
			m.cursor = 0
			return
		}
		target = m.lineStart(start - 1)
	default:
		end := m.lineEnd(m.cursor)
		if end >= len(m.buf) {
			m.cursor = len(m.buf)
			return
		}
		target = end + 1
	}
	m.cursor = target + graphemeOffset(m.buf[target:m.lineEnd(target)], col)
}

func (m MessageEditor) lineStart(pos int) int {
	for pos > 0 && m.buf[pos-1] != '\n' {
		pos--
	}
	return pos
}

func (m MessageEditor) lineEnd(pos int) int {
	for pos < len(m.buf) && m.buf[pos] != '\n' {
		pos++
	}
	return pos
}

// --- Grapheme helpers ---

func lastGraphemeLen(runes []rune) int {
	n := 0
	g := uniseg.NewGraphemes(string(runes))
	for g.Next() {
		n = len(g.Runes())
	}
	return n
}

func firstGraphemeLen(runes []rune) int {
	g := uniseg.NewGraphemes(string(runes))
	if g.Next() {
		return len(g.Runes())
	}
	return 0
}

func graphemeCount(runes []rune) int {
	return uniseg.GraphemeClusterCount(string(runes))
}

// graphemeOffset returns the rune offset after n grapheme clusters.
func graphemeOffset(runes []rune, n int) int {
	offset := 0
	g := uniseg.NewGraphemes(string(runes))
	for i := 0; i < n && g.Next(); i++ {
		offset += len(g.Runes())
	}
	return offset
}

// --- Rendering ---

// Render draws the buffer with its cursor and, when open, the popup.
func (m MessageEditor) Render(width int, focused bool) string {
	var body string
	if len(m.buf) == 0 {
		body = AccentStyle.Render("█") + MutedStyle.Render(" Write the entry. Type #tag to tag it.")
	} else {
		before := highlightTags(components.SanitizeText(string(m.buf[:m.cursor])))
		after := highlightTags(components.SanitizeText(string(m.buf[m.cursor:])))
		body = before + AccentStyle.Render("█") + after
	}

	box := components.TitledBox("Message", body, width)
	if focused {
		box = components.ActiveTitledBox("Message", body, width)
	}
	if m.PopupOpen() {
		box += "\n" + renderPopup(m.popup, m.currentPrefix(), width)
	}
	return box
}

func (m MessageEditor) currentPrefix() string {
	tok, ok := tags.TokenAt(m.Value(), m.cursor)
	if !ok {
		return ""
	}
	return tok.Text
}

func highlightTags(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	last := 0
	for _, loc := range hashtagPattern.FindAllStringIndex(text, -1) {
		b.WriteString(renderLines(NormalStyle, text[last:loc[0]]))
		b.WriteString(TagStyle.Render(text[loc[0]:loc[1]]))
		last = loc[1]
	}
	b.WriteString(renderLines(NormalStyle, text[last:]))
	return b.String()
}

// renderLines styles each line on its own so lipgloss does not pad the
// block to a common width.
func renderLines(style lipgloss.Style, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
