package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderRow draws one result row at the given width.
func renderRow(r row, selected bool, width int) string {
	if r.kind == rowHeader {
		return HeaderStyle.Render(truncateEnd(r.title, width))
	}

	title := r.title
	if r.kind == rowNotificationAction {
		title = "  ↳ " + title
		if r.action.RequiresTextInput {
			title += " …"
		}
	}
	if r.live {
		title = "● " + title
	}

	line := truncateEnd(title, width-4)
	if r.subtitle != "" {
		room := width - 6 - lipgloss.Width(line)
		if room > 8 {
			line += "  " + SubtitleStyle.Render(truncateEnd(oneLine(r.subtitle), room))
		}
	}

	if selected {
		return SelectedItemStyle.Width(width).Render(line)
	}
	return ItemStyle.Render(line)
}

// renderInputFrame draws a rounded bordered container around a rendered input view.
func renderInputFrame(inputView string, focused bool, contentWidth int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 4).
		Render(inputView)
}

// renderCentered centers the provided content within the given width/height box.
func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// renderHelp renders help/instructional text consistently.
func renderHelp(text string) string {
	return HelpStyle.Render(text)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
