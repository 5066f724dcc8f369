package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const bannerArt = `
 ██████████ █████          ███████      █████████
░░███░░░░░█░░███         ███░░░░░███   ███░░░░░███
 ░███  █ ░  ░███        ███     ░░███ ███     ░░░
 ░██████    ░███       ░███      ░███░███
 ░███░░█    ░███       ░███      ░███░███    █████
 ░███ ░   █ ░███      █░░███     ███ ░░███  ░░███
 ██████████ ███████████ ░░░███████░   ░░█████████
░░░░░░░░░░ ░░░░░░░░░░░    ░░░░░░░      ░░░░░░░░░`

const bannerSubtitle = "Electronic Logbook • Command-Line Interface"

// RenderBanner returns the styled banner with its subtitle.
func RenderBanner() string {
	lines := splitLines(bannerArt)
	baseStyle := lipgloss.NewStyle().Foreground(ColorPrimary)

	var rendered strings.Builder
	maxWidth := 0
	for _, line := range lines {
		if line == "" {
			continue
		}
		maxWidth = max(maxWidth, lipgloss.Width(line))
		rendered.WriteString(baseStyle.Render(line) + "\n")
	}

	subtitleWidth := lipgloss.Width(bannerSubtitle)
	blockWidth := max(maxWidth, subtitleWidth)

	subtitle := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Width(blockWidth).
		Align(lipgloss.Center).
		Render(bannerSubtitle)
	underline := lipgloss.NewStyle().
		Foreground(ColorBorder).
		Width(blockWidth).
		Align(lipgloss.Center).
		Render(strings.Repeat("─", subtitleWidth))

	return "\n" + rendered.String() + "\n" + subtitle + "\n" + underline + "\n"
}

// bannerHeight is the number of rows RenderBanner occupies.
func bannerHeight() int {
	return strings.Count(RenderBanner(), "\n") + 1
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimPrefix(s, "\n"), "\n")
}
