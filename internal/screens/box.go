package screens

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// box is a titled panel centred on a width x height canvas.
type box struct {
	Title   string
	Content string
	Focused bool
}

func (b box) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	style := boxStyle
	if b.Focused {
		style = focusBoxStyle
	}
	inner := titleStyle.Render(b.Title) + "\n\n" + strings.TrimRight(b.Content, "\n")
	panel := style.Render(inner)
	if w := lipgloss.Width(panel); w > width {
		panel = style.Width(max(1, width-2)).Render(inner)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
}
