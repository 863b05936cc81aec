// Package theme centralizes Lip Gloss styles for the dashboard TUI.
package theme

import (
	"github.com/charmbracelet/lipgloss/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

// Theme groups the styles used across the dashboard UI.
type Theme struct {
	Section SectionTheme
	Widget  WidgetTheme
	Habit   HabitTheme
	Footer  FooterTheme
}

// SectionTheme styles section headers and frames.
type SectionTheme struct {
	Title    lipgloss.Style
	Selected lipgloss.Style
	Frame    lipgloss.Style
}

// WidgetTheme styles individual widget panes.
type WidgetTheme struct {
	Title       lipgloss.Style
	Body        lipgloss.Style
	Faint       lipgloss.Style
	Error       lipgloss.Style
	Placeholder lipgloss.Style
}

// HabitTheme styles the habit completion grid.
type HabitTheme struct {
	Done    lipgloss.Style
	Missed  lipgloss.Style
	Today   lipgloss.Style
	Cursor  lipgloss.Style
	Pending lipgloss.Style
}

// FooterTheme styles the bottom status bar.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
}

// Default returns the built-in theme. The habit "done" color is blended
// toward the terminal background so completed cells read as filled
// rather than glaring on light terminals.
func Default() Theme {
	dark := termenv.HasDarkBackground()

	base := colorful.Color{R: 0.25, G: 0.75, B: 0.45}
	blend := colorful.Color{R: 1, G: 1, B: 1}
	if dark {
		blend = colorful.Color{R: 0, G: 0, B: 0}
	}
	done := base.BlendLab(blend, 0.15)

	faint := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	return Theme{
		Section: SectionTheme{
			Title:    lipgloss.NewStyle().Bold(true).Underline(true),
			Selected: lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("212")),
			Frame:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		},
		Widget: WidgetTheme{
			Title:       lipgloss.NewStyle().Bold(true),
			Body:        lipgloss.NewStyle(),
			Faint:       faint,
			Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		},
		Habit: HabitTheme{
			Done:    lipgloss.NewStyle().Foreground(lipgloss.Color(done.Hex())),
			Missed:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
			Today:   lipgloss.NewStyle().Bold(true),
			Cursor:  lipgloss.NewStyle().Reverse(true),
			Pending: lipgloss.NewStyle().Faint(true),
		},
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: faint,
			Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		},
	}
}
