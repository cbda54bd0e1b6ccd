package flow

import tea "github.com/charmbracelet/bubbletea"

// LoginMsg is emitted by the handler given to unauthenticated scenes.
type LoginMsg struct{}

// LogoutMsg is emitted by the handler given to authenticated scenes.
type LogoutMsg struct{}

// SessionChangedMsg carries a session notification from outside the UI,
// for example an expiry or a logout from another process.
type SessionChangedMsg struct {
	Reason string
}

type ErrorMsg struct {
	Err error
}

func ErrorCmd(err error) tea.Cmd {
	return func() tea.Msg { return ErrorMsg{Err: err} }
}
