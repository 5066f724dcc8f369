package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/gravitrone/elog/cli/internal/ui/components"
)

const popupMaxCells = 40

// renderPopup draws the tag candidates under the editor. The typed prefix
// of each candidate is underlined and the selection is marked.
func renderPopup(list *components.List, prefix string, width int) string {
	visible := list.Visible()
	if len(visible) == 0 {
		return ""
	}

	cells := 0
	for _, item := range visible {
		cells = max(cells, runewidth.StringWidth(components.SanitizeOneLine(item)))
	}
	cells = min(cells, popupMaxCells)

	rows := make([]string, 0, len(visible)+1)
	for i, item := range visible {
		abs := list.RelToAbs(i)
		text := runewidth.FillRight(components.ClampTextWidth(item, cells), cells)
		if list.IsSelected(abs) {
			rows = append(rows, SelectedStyle.Render("› #"+text))
			continue
		}
		rows = append(rows, "  "+MutedStyle.Render("#")+splitPrefix(text, prefix))
	}
	if list.Len() > len(visible) {
		rows = append(rows, MutedStyle.Render(fmt.Sprintf("  %d/%d", list.Selected()+1, list.Len())))
	}
	rows = append(rows, "", MutedStyle.Render("↑/↓ select  enter accept  esc close"))

	content := strings.Join(rows, "\n")
	if width > 0 {
		content = PopupStyle.MaxWidth(width - 2).Render(content)
	} else {
		content = PopupStyle.Render(content)
	}
	return components.Indent(content, 2)
}

// splitPrefix styles the part of item already typed apart from the rest.
func splitPrefix(item, prefix string) string {
	n := utf8.RuneCountInString(prefix)
	runes := []rune(item)
	if n == 0 || n > len(runes) {
		return NormalStyle.Render(item)
	}
	return TagPrefixStyle.Render(string(runes[:n])) + NormalStyle.Render(string(runes[n:]))
}
