package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/elog/cli/internal/tags"
)

// --- Key Map ---

type keyMap struct {
	Submit     key.Binding
	Attach     key.Binding
	FocusTags  key.Binding
	Facilities key.Binding
	Quit       key.Binding
	PopupUp    key.Binding
	PopupDown  key.Binding
	Complete   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "Submit")),
		Attach:     key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "Attach")),
		FocusTags:  key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "Tags")),
		Facilities: key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "Facilities")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "Quit")),
		PopupUp:    key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "Prev")),
		PopupDown:  key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "Next")),
		Complete:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "Complete #tag")),
	}
}

// --- Key Helpers ---

func isKey(msg tea.KeyMsg, keys ...string) bool {
	for _, k := range keys {
		if msg.String() == k {
			return true
		}
	}
	return false
}

func isBack(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyEsc {
		return true
	}
	return isKey(msg, "esc", "escape", "ctrl+[")
}

func isEnter(msg tea.KeyMsg) bool {
	return isKey(msg, "enter", "return")
}

func isConfirm(msg tea.KeyMsg) bool {
	return isKey(msg, "y", "Y")
}

func isDeny(msg tea.KeyMsg) bool {
	return isKey(msg, "n", "N") || isBack(msg)
}

// keyEvent translates a terminal key into the completion engine's terms.
func keyEvent(msg tea.KeyMsg) tags.KeyEvent {
	switch msg.Type {
	case tea.KeyRunes:
		// Alt chords insert nothing, so the engine must not see a character.
		if len(msg.Runes) == 0 || msg.Alt {
			return tags.KeyEvent{Key: tags.KeyOther}
		}
		return tags.Runes(string(msg.Runes))
	case tea.KeySpace:
		return tags.Press(tags.KeySpace)
	case tea.KeyTab:
		return tags.Press(tags.KeyTab)
	case tea.KeyShiftTab:
		return tags.Press(tags.KeyBacktab)
	case tea.KeyEnter:
		return tags.Press(tags.KeyEnter)
	case tea.KeyCtrlJ:
		return tags.Press(tags.KeyReturn)
	case tea.KeyEsc:
		return tags.Press(tags.KeyEscape)
	case tea.KeyBackspace:
		return tags.Press(tags.KeyBackspace)
	}
	return tags.KeyEvent{Key: tags.KeyOther}
}
