package tags

import (
	"strings"
	"sync/atomic"
	"unicode/utf8"
)

// minAutoPrefix is the shortest prefix, in runes, that may trigger an
// automatic single-match completion while typing.
const minAutoPrefix = 3

// --- State ---

// Mode is the completion mode of the engine.
type Mode uint8

const (
	ModeInactive Mode = iota
	ModeInline
	ModePopup
)

func (m Mode) String() string {
	switch m {
	case ModeInline:
		return "inline"
	case ModePopup:
		return "popup"
	default:
		return "inactive"
	}
}

// State is the current completion state. Candidates always start with
// Prefix (case-insensitive); an inactive state has neither.
type State struct {
	Mode       Mode
	Prefix     string
	Candidates []string
}

// --- Decisions and events ---

// DecisionKind tells the editor what to do with a keystroke.
type DecisionKind uint8

const (
	// PassThrough applies the default text insertion unmodified.
	PassThrough DecisionKind = iota
	// Suppress drops the keystroke entirely.
	Suppress
	// InsertAndEmit inserts Text in place of the keystroke's natural effect.
	InsertAndEmit
	// OpenPopup shows Candidates in a selection list.
	OpenPopup
)

func (k DecisionKind) String() string {
	switch k {
	case Suppress:
		return "suppress"
	case InsertAndEmit:
		return "insert"
	case OpenPopup:
		return "popup"
	default:
		return "pass"
	}
}

// Decision is the engine's verdict for one keystroke.
type Decision struct {
	Kind       DecisionKind
	Text       string
	Tag        string
	Candidates []string
}

// EventKind identifies a high-level editor event.
type EventKind uint8

const (
	EventFirstInteraction EventKind = iota + 1
	EventTagCompleted
)

// Event is emitted alongside a decision. Tag is set for EventTagCompleted.
type Event struct {
	Kind EventKind
	Tag  string
}

// Outcome carries a decision and the events it produced, in emission order.
type Outcome struct {
	Decision Decision
	Events   []Event
}

func (o *Outcome) emit(ev Event) {
	o.Events = append(o.Events, ev)
}

// --- Engine ---

// Engine decides, keystroke by keystroke, whether a '#tag' being typed
// should be completed inline, offered in a popup, or left alone.
//
// Keystrokes must be fed from a single goroutine. SetTagSet may be called
// from anywhere.
type Engine struct {
	tags atomic.Pointer[Set]

	state        State
	popupVisible bool
	firstDone    bool
}

// NewEngine creates an engine with an initial tag set, which may be empty.
func NewEngine(tags []string) *Engine {
	e := &Engine{}
	e.SetTagSet(tags)
	return e
}

// SetTagSet replaces the known tags. The completion state is left alone
// until the next keystroke.
func (e *Engine) SetTagSet(tags []string) {
	e.tags.Store(NewSet(tags))
}

// Tags returns the known tags.
func (e *Engine) Tags() []string {
	return e.tags.Load().Items()
}

// State returns a copy of the completion state.
func (e *Engine) State() State {
	st := e.state
	st.Candidates = append([]string(nil), e.state.Candidates...)
	return st
}

// PopupVisible reports whether a popup selection is currently shown.
func (e *Engine) PopupVisible() bool {
	return e.popupVisible
}

// FirstInteractionDone reports whether visible text has been typed since
// the engine was created or last reset.
func (e *Engine) FirstInteractionDone() bool {
	return e.firstDone
}

// ResetFirstInteraction re-arms the first interaction event, typically
// when a new entry begins.
func (e *Engine) ResetFirstInteraction() {
	e.firstDone = false
}

// DismissPopup hides the popup. The mode drops back to inactive on the
// next keystroke.
func (e *Engine) DismissPopup() {
	e.popupVisible = false
}

// OnKeystroke processes a key before the editor applies it. text and cursor
// describe the buffer before the key; cursor is a rune offset.
func (e *Engine) OnKeystroke(ev KeyEvent, text string, cursor int) Outcome {
	var out Outcome
	if !e.firstDone && ev.Visible() {
		e.firstDone = true
		out.emit(Event{Kind: EventFirstInteraction})
	}

	// Inline completion is one-shot and a dismissed popup leaves stale state.
	if e.state.Mode == ModeInline || (e.state.Mode == ModePopup && !e.popupVisible) {
		e.reset()
	}

	if e.popupVisible && isPopupKey(ev.Key) {
		if ev.Key == KeyEscape {
			e.popupVisible = false
		}
		out.Decision = Decision{Kind: Suppress}
		return out
	}

	tok, ok := e.tokenFor(ev, text, cursor)
	if !ok {
		e.reset()
		out.Decision = Decision{Kind: PassThrough}
		return out
	}

	switch {
	case ev.Key == KeySpace:
		e.reset()
		if tok.Text != "" {
			out.emit(Event{Kind: EventTagCompleted, Tag: tok.Text})
		}
		out.Decision = Decision{Kind: PassThrough}
	case ev.Printable():
		e.onCharacter(&out, ev, tok)
	case ev.Key == KeyTab:
		e.onTab(&out, tok)
	default:
		if e.popupVisible {
			e.reset()
		}
		out.Decision = Decision{Kind: PassThrough}
	}
	return out
}

// Accept completes the token under the cursor with a candidate picked from
// the popup. A candidate that no longer fits the token is ignored.
func (e *Engine) Accept(candidate, text string, cursor int) Outcome {
	var out Outcome
	tok, ok := TokenAt(text, cursor)
	if !ok || !hasPrefixFold(candidate, tok.Text) {
		e.reset()
		out.Decision = Decision{Kind: Suppress}
		return out
	}
	e.complete(&out, candidate, tok.Text, "")
	return out
}

func (e *Engine) onCharacter(out *Outcome, ev KeyEvent, tok Token) {
	set := e.tags.Load()
	prefix := tok.Text
	if utf8.RuneCountInString(prefix) >= minAutoPrefix {
		if matches := set.Match(prefix); len(matches) == 1 {
			e.complete(out, matches[0], prefix, ev.Text)
			return
		}
	}
	if !e.popupVisible {
		out.Decision = Decision{Kind: PassThrough}
		return
	}

	matches := set.Match(prefix)
	if len(matches) == 0 {
		e.reset()
		out.Decision = Decision{Kind: PassThrough}
		return
	}
	e.state = State{Mode: ModePopup, Prefix: prefix, Candidates: matches}
	out.Decision = Decision{Kind: OpenPopup, Candidates: append([]string(nil), matches...)}
}

func (e *Engine) onTab(out *Outcome, tok Token) {
	matches := e.tags.Load().Match(tok.Text)
	switch len(matches) {
	case 0:
		e.reset()
		out.Decision = Decision{Kind: Suppress}
	case 1:
		e.complete(out, matches[0], tok.Text, "")
	default:
		e.state = State{Mode: ModePopup, Prefix: tok.Text, Candidates: matches}
		e.popupVisible = true
		out.Decision = Decision{Kind: OpenPopup, Candidates: append([]string(nil), matches...)}
	}
}

// complete finalizes candidate. typed is the keystroke text that the
// insertion replaces and is already counted in prefix.
func (e *Engine) complete(out *Outcome, candidate, prefix, typed string) {
	runes := []rune(candidate)
	n := min(utf8.RuneCountInString(prefix), len(runes))
	rest := string(runes[n:])
	e.state = State{Mode: ModeInline, Prefix: prefix, Candidates: []string{candidate}}
	e.popupVisible = false
	out.Decision = Decision{
		Kind: InsertAndEmit,
		Text: typed + rest + " ",
		Tag:  candidate,
	}
	out.emit(Event{Kind: EventTagCompleted, Tag: candidate})
}

// tokenFor evaluates the token as it will be after the key's natural effect
// for plain characters, and before the key otherwise.
func (e *Engine) tokenFor(ev KeyEvent, text string, cursor int) (Token, bool) {
	if !ev.Printable() {
		return TokenAt(text, cursor)
	}
	runes := []rune(text)
	if cursor < 0 || cursor > len(runes) {
		return Token{}, false
	}
	typed := []rune(ev.Text)
	after := make([]rune, 0, len(runes)+len(typed))
	after = append(after, runes[:cursor]...)
	after = append(after, typed...)
	after = append(after, runes[cursor:]...)
	return TokenAt(string(after), cursor+len(typed))
}

func (e *Engine) reset() {
	e.state = State{}
	e.popupVisible = false
}

func hasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}
