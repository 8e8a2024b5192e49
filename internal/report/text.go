package report

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// truncate shortens a string to maxLen runes, adding "..." if truncated.
// It does not account for ANSI escape codes or wide characters; use
// truncateANSI for styled terminal output.
func truncate(s string, maxLen int) string {
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// truncateANSI shortens a string to maxWidth visual columns, adding "..."
// if truncated. Escape sequences are preserved, so styled text stays styled
// after the cut.
func truncateANSI(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, "...")
}
