// Package screens holds the concrete scenes: the splash placeholder, the
// login form and the signed-in home area.
package screens

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Splash is the placeholder mounted while the first real scene is chosen.
type Splash struct {
	message string
	spinner spinner.Model
	running bool
}

func NewSplash(message string) *Splash {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = infoStyle
	return &Splash{message: message, spinner: sp}
}

func (s *Splash) Title() string { return "splash" }

// Running reports whether the spinner is animating.
func (s *Splash) Running() bool { return s.running }

func (s *Splash) WillAttach() tea.Cmd { return nil }

func (s *Splash) DidAttach() tea.Cmd {
	s.running = true
	return s.spinner.Tick
}

// WillDetach stops the spinner so it does not keep ticking under the fade.
func (s *Splash) WillDetach() tea.Cmd {
	s.running = false
	return nil
}

func (s *Splash) DidDetach() tea.Cmd { return nil }

func (s *Splash) Update(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(spinner.TickMsg)
	if !ok || !s.running {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(tick)
	return cmd
}

func (s *Splash) View(width, height int) string {
	content := s.spinner.View() + " " + mutedStyle.Render(s.message)
	return box{Title: "sceneflow", Content: content}.Render(width, height)
}
