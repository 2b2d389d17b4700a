package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"drift/internal/driver"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	cachedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// RenderSummary renders one line per analyzed artifact plus a totals
// footer. Width bounds the composite column; 0 means a default of 80.
func RenderSummary(results []driver.Result, width int) string {
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("interior analysis"))
	b.WriteString("\n\n")

	failed := 0
	for _, res := range results {
		status, style := statusOf(res)
		if status != "ok" && status != "cached" {
			failed++
		}

		name := res.Body
		if name == "" {
			name = res.Path
		}
		line := fmt.Sprintf("  %s %-20s", style.Render(fmt.Sprintf("%8s", status)), truncate(name, 20))
		if res.Err == nil && !res.Bag.HasErrors() {
			detail := fmt.Sprintf("live=%d %s", res.LiveCount, res.Composite)
			line += " " + dimStyle.Render(truncate(detail, width-32))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d analyzed, %d failed\n", len(results), failed))
	return b.String()
}

func statusOf(res driver.Result) (string, lipgloss.Style) {
	switch {
	case res.Err != nil:
		return "error", failStyle
	case res.Bag != nil && res.Bag.HasErrors():
		return "invalid", failStyle
	case res.Cached:
		return "cached", cachedStyle
	default:
		return "ok", okStyle
	}
}

func truncate(value string, width int) string {
	if width <= 3 {
		width = 3
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	return runewidth.Truncate(value, width-3, "...")
}
