package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jask/sceneflow/internal/flow"
	"github.com/jask/sceneflow/internal/session"
)

// Authenticator checks credentials and starts a session.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*session.Session, error)
}

// loginResultMsg carries the outcome of a submit back to the scene that
// started it.
type loginResultMsg struct {
	scene   string
	session *session.Session
	err     error
}

const (
	fieldUsername = iota
	fieldPassword
)

// Login is the unauthenticated scene.
type Login struct {
	ctx     context.Context
	auth    Authenticator
	onLogin flow.Handler

	id     string
	inputs []textinput.Model
	focus  int
	busy   bool
	errMsg string
	keys   loginKeyMap
	help   help.Model
}

func NewLogin(ctx context.Context, auth Authenticator, onLogin flow.Handler, username string) *Login {
	user := textinput.New()
	user.Prompt = "username "
	user.Placeholder = "demo"
	user.CharLimit = 64
	user.Width = 24
	user.SetValue(username)

	pass := textinput.New()
	pass.Prompt = "password "
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 128
	pass.Width = 24

	l := &Login{
		ctx:     ctx,
		auth:    auth,
		onLogin: onLogin,
		id:      uuid.NewString(),
		inputs:  []textinput.Model{user, pass},
		keys:    newLoginKeyMap(),
		help:    help.New(),
	}
	if username != "" {
		l.focus = fieldPassword
	}
	return l
}

func (l *Login) Title() string { return "login" }

// Busy reports whether a submit is in flight.
func (l *Login) Busy() bool { return l.busy }

// Err is the message shown under the form, if any.
func (l *Login) Err() string { return l.errMsg }

func (l *Login) WillAttach() tea.Cmd { return nil }

func (l *Login) DidAttach() tea.Cmd {
	return tea.Batch(l.focusField(l.focus), textinput.Blink)
}

func (l *Login) WillDetach() tea.Cmd {
	for i := range l.inputs {
		l.inputs[i].Blur()
	}
	return nil
}

func (l *Login) DidDetach() tea.Cmd { return nil }

func (l *Login) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loginResultMsg:
		if msg.scene != l.id {
			return nil
		}
		return l.handleResult(msg)
	case tea.KeyMsg:
		if l.busy {
			return nil
		}
		switch {
		case key.Matches(msg, l.keys.Next):
			return l.focusField((l.focus + 1) % len(l.inputs))
		case key.Matches(msg, l.keys.Prev):
			return l.focusField((l.focus + len(l.inputs) - 1) % len(l.inputs))
		case key.Matches(msg, l.keys.Submit):
			if l.focus == fieldUsername {
				return l.focusField(fieldPassword)
			}
			return l.submit()
		}
	}

	var cmd tea.Cmd
	l.inputs[l.focus], cmd = l.inputs[l.focus].Update(msg)
	return cmd
}

func (l *Login) submit() tea.Cmd {
	username := strings.TrimSpace(l.inputs[fieldUsername].Value())
	password := l.inputs[fieldPassword].Value()
	if username == "" {
		l.errMsg = "enter a username"
		return l.focusField(fieldUsername)
	}
	if password == "" {
		l.errMsg = "enter a password"
		return nil
	}
	l.busy = true
	l.errMsg = ""

	ctx, auth, id := l.ctx, l.auth, l.id
	return func() tea.Msg {
		s, err := auth.Login(ctx, username, password)
		return loginResultMsg{scene: id, session: s, err: err}
	}
}

func (l *Login) handleResult(msg loginResultMsg) tea.Cmd {
	l.busy = false
	if msg.err != nil {
		l.errMsg = describeLoginError(msg.err)
		l.inputs[fieldPassword].Reset()
		var unknown *session.UnknownUserError
		if errors.As(msg.err, &unknown) {
			return l.focusField(fieldUsername)
		}
		return l.focusField(fieldPassword)
	}
	if l.onLogin == nil {
		return nil
	}
	return l.onLogin()
}

func (l *Login) focusField(i int) tea.Cmd {
	l.focus = i
	var cmd tea.Cmd
	for j := range l.inputs {
		if j == i {
			cmd = l.inputs[j].Focus()
			continue
		}
		l.inputs[j].Blur()
	}
	return cmd
}

func describeLoginError(err error) string {
	var unknown *session.UnknownUserError
	switch {
	case errors.As(err, &unknown):
		if unknown.Suggestion != "" {
			return fmt.Sprintf("no user %q, did you mean %q?", unknown.Username, unknown.Suggestion)
		}
		return fmt.Sprintf("no user %q", unknown.Username)
	case errors.Is(err, session.ErrInvalidCredentials):
		return "wrong password"
	default:
		return "sign in failed: " + err.Error()
	}
}

func (l *Login) View(width, height int) string {
	var b strings.Builder
	for i := range l.inputs {
		b.WriteString(l.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	switch {
	case l.busy:
		b.WriteString(warningStyle.Render("signing in..."))
	case l.errMsg != "":
		b.WriteString(errorStyle.Render(l.errMsg))
	default:
		b.WriteString(labelStyle.Render("sign in to continue"))
	}
	b.WriteString("\n\n")
	b.WriteString(l.help.View(l.keys))
	return box{Title: "sign in", Content: b.String(), Focused: !l.busy}.Render(width, height)
}
