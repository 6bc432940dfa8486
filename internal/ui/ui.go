// Package ui renders tables and status lines for terminal output.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	muted  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	alert  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	accent = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
)

// Table renders headers and rows as aligned columns.
func Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var b strings.Builder
	for i, h := range headers {
		b.WriteString(header.Render(pad(h, widths[i])))
		if i < len(headers)-1 {
			b.WriteString("  ")
		}
	}
	b.WriteString("\n")
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			b.WriteString(pad(cell, widths[i]))
			if i < len(row)-1 {
				b.WriteString("  ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// Muted renders secondary text (empty states, hints).
func Muted(s string) string { return muted.Render(s) }

// Alert renders a blocking error message, e.g. a dependency conflict.
func Alert(s string) string { return alert.Render(s) }

// Accent renders an emphasised value.
func Accent(s string) string { return accent.Render(s) }
