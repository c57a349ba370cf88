package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	primaryColor   = lipgloss.Color("#FF79C6") // Pink
	secondaryColor = lipgloss.Color("#8BE9FD") // Cyan
	accentColor    = lipgloss.Color("#50FA7B") // Green
	warningColor   = lipgloss.Color("#FFB86C") // Orange
	dangerColor    = lipgloss.Color("#FF5555") // Red
	mutedColor     = lipgloss.Color("#6272A4") // Comment
	bgLightColor   = lipgloss.Color("#44475A") // Current Line
	fgColor        = lipgloss.Color("#F8F8F2") // Foreground

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(24)

	valueStyle = lipgloss.NewStyle().
			Foreground(fgColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	dangerStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondaryColor).
			Background(bgLightColor).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

func createPanel(title, content string) string {
	full := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", content)
	return panelStyle.Render(full)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(bgLightColor)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return rowStyle
		}).
		Headers(headers...)
}

func field(label, value string) string {
	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return mutedStyle.Render("  (none)")
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  - " + item)
	}
	return b.String()
}

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successStyle.Render("✓")+" "+fmt.Sprintf(format, args...))
}
