package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TruncateString truncates a string to fit within maxWidth, adding ellipsis if needed.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}

	if lipgloss.Width(s) <= maxWidth {
		return s
	}

	// Need to truncate - leave room for ellipsis
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}

	// Truncate rune by rune
	result := ""
	for _, r := range s {
		test := result + string(r)
		if lipgloss.Width(test) > maxWidth-3 {
			break
		}
		result = test
	}
	return result + "..."
}

// FormatVisibility renders a public/private badge for an artifact row.
func FormatVisibility(isPublic bool) string {
	if isPublic {
		return lipgloss.NewStyle().Foreground(StatusSuccessColor).Render("◉ public")
	}
	return lipgloss.NewStyle().Foreground(TextSecondaryColor).Render("○ private")
}
