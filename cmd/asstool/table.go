package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Faultbox/asstex/pkg/assfile"
	"github.com/Faultbox/asstex/pkg/texmodel"
)

var (
	styleHeader  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "5", Dark: "5"}).Bold(true)
	styleBorder  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "8", Dark: "8"})
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "8", Dark: "8"}).Italic(true)
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "3", Dark: "3"}).Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "2"}).Bold(true)
)

const unassigned = "(unassigned)"

// renderTable draws the model as an aligned two-column table.
func renderTable(w io.Writer, m *texmodel.Model) {
	headers := m.Headers()
	rows := m.Rows()

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cell == "" {
				cell = unassigned
			}
			if cw := lipgloss.Width(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	headerParts := make([]string, len(headers))
	sepParts := make([]string, len(headers))
	for i, h := range headers {
		headerParts[i] = pad(h, widths[i])
		sepParts[i] = strings.Repeat("─", widths[i])
	}
	fmt.Fprintln(w, styleHeader.Render(strings.Join(headerParts, "  ")))
	fmt.Fprintln(w, styleBorder.Render(strings.Join(sepParts, "  ")))

	for _, row := range rows {
		slot := pad(row[texmodel.ColumnSlot], widths[texmodel.ColumnSlot])
		path := row[texmodel.ColumnPath]
		if path == "" {
			path = styleMuted.Render(unassigned)
		}
		fmt.Fprintf(w, "%s  %s\n", slot, path)
	}

	fmt.Fprintln(w, styleMuted.Render(fmt.Sprintf("%d slots", len(rows))))
}

// renderPlain writes the canonical serialization, suitable for piping.
func renderPlain(w io.Writer, m *texmodel.Model) {
	for _, row := range m.Rows() {
		fmt.Fprintln(w, assfile.Entry{Slot: row[texmodel.ColumnSlot], Path: row[texmodel.ColumnPath]})
	}
}

func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
