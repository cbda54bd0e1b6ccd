package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	colorRed      lipgloss.Color = "#f38ba8"
	colorPink     lipgloss.Color = "#f5c2e7"
	colorSubtext1 lipgloss.Color = "#bac2de"
	colorSurface0 lipgloss.Color = "#313244"
)

var (
	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorSubtext1).
			Background(colorSurface0).
			Padding(0, 2)

	statusErrStyle = statusBarStyle.Foreground(colorRed).Bold(true)

	statusAppStyle = lipgloss.NewStyle().
			Foreground(colorPink).
			Background(colorSurface0).
			Bold(true)
)

func (a *App) renderStatusBar(width int) string {
	style := statusBarStyle
	if a.statusErr {
		style = statusErrStyle
	}
	text := statusAppStyle.Render("sceneflow")
	if a.status != "" {
		text += style.UnsetPadding().Render("  " + a.status)
	}
	inner := max(0, width-style.GetHorizontalPadding())
	text = ansi.Truncate(text, inner, "…")
	return style.Width(width).MaxWidth(width).Render(text)
}
