package tui

import "github.com/charmbracelet/lipgloss"

// Palette colours.
var (
	colourPrimary   = lipgloss.Color("#7C3AED")
	colourSecondary = lipgloss.Color("#06B6D4")
	colourMuted     = lipgloss.Color("#6C7086")
	colourText      = lipgloss.Color("#CDD6F4")
	colourError     = lipgloss.Color("#F38BA8")
	colourBorder    = lipgloss.Color("#45475A")
)

// Styles holds the lipgloss styles used by the views.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Score    lipgloss.Style
	Error    lipgloss.Style
	Input    lipgloss.Style
	Status   lipgloss.Style
}

// DefaultStyles returns the default theme.
func DefaultStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(colourPrimary),
		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(colourSecondary),
		Normal: lipgloss.NewStyle().
			Foreground(colourText),
		Muted: lipgloss.NewStyle().
			Foreground(colourMuted),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(colourText).
			Background(colourPrimary),
		Score: lipgloss.NewStyle().
			Foreground(colourSecondary),
		Error: lipgloss.NewStyle().
			Foreground(colourError),
		Input: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colourBorder).
			Padding(0, 1),
		Status: lipgloss.NewStyle().
			Foreground(colourMuted).
			Padding(0, 1),
	}
}
