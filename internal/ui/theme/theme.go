package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/eddge/learnengine/internal/learnpath"
)

// Palette. Calm study colours on a dark background.
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#0EA5E9") // Sky
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#EF4444")
	Text      = lipgloss.Color("#F1F5F9")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Status returns the style for a node status on the path map.
func Status(s learnpath.NodeStatus) lipgloss.Style {
	switch s {
	case learnpath.StatusCompleted:
		return lipgloss.NewStyle().Foreground(Success)
	case learnpath.StatusPartial:
		return lipgloss.NewStyle().Foreground(Accent)
	case learnpath.StatusAvailable:
		return lipgloss.NewStyle().Foreground(Secondary).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(TextDim)
	}
}
