// Package scene hosts the top-level scene of the application.
//
// A Container owns exactly one active scene. Replacing it runs a short
// cross-fade during which the outgoing scene stays rendered beneath the
// incoming one. Scenes observe the handoff through four lifecycle hooks:
//
//	mount:  WillAttach(in) -> DidAttach(in)
//	swap:   WillDetach(out) -> WillAttach(in) -> fade -> DidDetach(out) -> DidAttach(in)
//
// A scene is never active without DidAttach and never discarded without
// DidDetach. All methods must be called from the Bubble Tea update loop.
package scene

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Lifecycle is notified when a scene starts or stops being the active one.
// Returned commands are batched into the runtime; nil is fine.
type Lifecycle interface {
	WillAttach() tea.Cmd
	DidAttach() tea.Cmd
	WillDetach() tea.Cmd
	DidDetach() tea.Cmd
}

// Scene is a displayable top-level unit.
type Scene interface {
	Lifecycle
	Update(msg tea.Msg) tea.Cmd
	View(width, height int) string
}

// NopLifecycle can be embedded by scenes that ignore some hooks.
type NopLifecycle struct{}

func (NopLifecycle) WillAttach() tea.Cmd { return nil }
func (NopLifecycle) DidAttach() tea.Cmd  { return nil }
func (NopLifecycle) WillDetach() tea.Cmd { return nil }
func (NopLifecycle) DidDetach() tea.Cmd  { return nil }

// Titled scenes report a human readable name used in logs and the status bar.
type Titled interface {
	Title() string
}

// Title returns the scene title, falling back to its type name.
func Title(s Scene) string {
	if s == nil {
		return "<none>"
	}
	if t, ok := s.(Titled); ok {
		return t.Title()
	}
	return fmt.Sprintf("%T", s)
}
