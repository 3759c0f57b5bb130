// Package render turns controller and panel state into terminal text. Every
// function is pure: same state in, same string out.
package render

import (
	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/charmbracelet/lipgloss"
)

var (
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
	Warning     = lipgloss.Color("#FFC107")
	Info        = lipgloss.Color("#2196F3")
	Muted       = lipgloss.Color("#6b7280")
)

// sourceColors mirrors the badge palette per upstream.
var sourceColors = map[models.SourceName]lipgloss.Color{
	models.SourceGitHub:     lipgloss.Color("#f2f2f2"),
	models.SourceHackerNews: lipgloss.Color("#ff8a65"),
	models.SourceRSS:        lipgloss.Color("#4db6ac"),
}

type Styles struct {
	Title    lipgloss.Style
	Subtle   lipgloss.Style
	Bold     lipgloss.Style
	Card     lipgloss.Style
	Fatal    lipgloss.Style
	Warnings lipgloss.Style
	Active   lipgloss.Style
	Inactive lipgloss.Style
	OK       lipgloss.Style
	Down     lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(Success),
		Subtle: lipgloss.NewStyle().Foreground(Muted),
		Bold:   lipgloss.NewStyle().Bold(true),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Padding(0, 1),
		Fatal: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(Destructive).
			Foreground(Destructive).
			Padding(0, 1),
		Warnings: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(Warning).
			Foreground(Warning).
			Padding(0, 1),
		Active:   lipgloss.NewStyle().Bold(true).Foreground(Info),
		Inactive: lipgloss.NewStyle().Foreground(Muted),
		OK:       lipgloss.NewStyle().Foreground(Success),
		Down:     lipgloss.NewStyle().Foreground(Destructive),
	}
}

// Badge renders a source name in its own color.
func (s Styles) Badge(src models.SourceName) string {
	color, ok := sourceColors[src]
	if !ok {
		color = Muted
	}
	return lipgloss.NewStyle().Foreground(color).Render("[" + string(src) + "]")
}

// SourceLabel is the human label for a source.
func SourceLabel(src models.SourceName) string {
	switch src {
	case models.SourceGitHub:
		return "GitHub"
	case models.SourceHackerNews:
		return "Hacker News"
	case models.SourceRSS:
		return "RSS"
	default:
		return string(src)
	}
}
