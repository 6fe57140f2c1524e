package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/refcell/refc"
	"github.com/wippyai/refcell/scenario"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	opStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#98FB98"))

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	teardownStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFD700"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func useColor() bool {
	return !noColor && term.IsTerminal(int(os.Stdout.Fd()))
}

func paint(color bool, style lipgloss.Style, s string) string {
	if !color {
		return s
	}
	return style.Render(s)
}

// formatResult renders one executed step and the cell events it caused.
func formatResult(color bool, res scenario.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%3d  %s\n", res.Index, paint(color, opStyle, res.Step.String()))
	for _, rec := range res.Records {
		line := fmt.Sprintf("       %s %s (count %d)", rec.Resource, rec.Event, rec.Count)
		style := eventStyle
		if rec.Event == refc.EventTornDown {
			style = teardownStyle
		}
		b.WriteString(paint(color, style, line))
		b.WriteByte('\n')
	}
	return b.String()
}
