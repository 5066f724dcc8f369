package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2b3a42")).
			Padding(1, 2).
			Width(44)

	dialogTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3fa7a0")).
				Bold(true)

	dialogHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ba0bf"))
)

// ConfirmDialog renders a yes/no confirmation.
func ConfirmDialog(title, message string) string {
	body := dialogHintStyle.Render(SanitizeText(message))
	hint := dialogHintStyle.Render("\ny: confirm | n: cancel")
	return dialogStyle.Render(dialogTitleStyle.Render(title) + "\n\n" + body + hint)
}

// InputDialog renders a single-line text prompt.
func InputDialog(title, input string) string {
	field := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#5f8f99")).
		Render("> " + SanitizeOneLine(input) + "█")
	hint := dialogHintStyle.Render("\nenter: submit | esc: cancel")
	return dialogStyle.Render(dialogTitleStyle.Render(title) + "\n\n" + field + hint)
}

// ConfirmPreviewDialog renders a confirmation with summary rows and a
// preview of the text about to be sent.
func ConfirmPreviewDialog(title string, summary []TableRow, preview string, width int) string {
	sections := make([]string, 0, 3)
	if len(summary) > 0 {
		sections = append(sections, Table("Summary", summary, width))
	}
	if preview = strings.TrimSpace(SanitizeText(preview)); preview != "" {
		sections = append(sections, TitledBox("Preview", boxValueStyle.Render(preview), width))
	}
	sections = append(sections, dialogHintStyle.Render("y: confirm | n: cancel"))

	return TitledBox(title, strings.Join(sections, "\n\n"), width)
}
