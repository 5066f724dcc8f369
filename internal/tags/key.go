package tags

import "unicode"

// Key identifies the keys the engine treats specially.
type Key uint8

const (
	KeyOther Key = iota
	KeyRunes
	KeySpace
	KeyTab
	KeyBacktab
	KeyEnter
	KeyReturn
	KeyEscape
	KeyBackspace
)

func (k Key) String() string {
	switch k {
	case KeyRunes:
		return "runes"
	case KeySpace:
		return "space"
	case KeyTab:
		return "tab"
	case KeyBacktab:
		return "backtab"
	case KeyEnter:
		return "enter"
	case KeyReturn:
		return "return"
	case KeyEscape:
		return "escape"
	case KeyBackspace:
		return "backspace"
	default:
		return "other"
	}
}

// KeyEvent is one keystroke as seen by the engine. Text is what the key
// would insert by default, empty for keys that insert nothing.
type KeyEvent struct {
	Key  Key
	Text string
}

// Runes builds a plain character keystroke.
func Runes(s string) KeyEvent {
	return KeyEvent{Key: KeyRunes, Text: s}
}

// Press builds a keystroke for a non-character key.
func Press(k Key) KeyEvent {
	switch k {
	case KeySpace:
		return KeyEvent{Key: k, Text: " "}
	case KeyTab:
		return KeyEvent{Key: k, Text: "\t"}
	case KeyEnter, KeyReturn:
		return KeyEvent{Key: k, Text: "\n"}
	}
	return KeyEvent{Key: k}
}

// Printable reports whether the key is a plain character insertion.
func (e KeyEvent) Printable() bool {
	return e.Key == KeyRunes && e.Text != ""
}

// Visible reports whether the key inserts at least one visible character.
func (e KeyEvent) Visible() bool {
	for _, r := range e.Text {
		if unicode.IsGraphic(r) {
			return true
		}
	}
	return false
}

func isPopupKey(k Key) bool {
	switch k {
	case KeyEnter, KeyReturn, KeyEscape, KeyTab, KeyBacktab:
		return true
	}
	return false
}
