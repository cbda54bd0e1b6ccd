package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jask/sceneflow/internal/flow"
	"github.com/jask/sceneflow/internal/session"
)

var ErrNoSession = errors.New("screens: no active session")

// Sessions is what the home scene needs from the session manager.
type Sessions interface {
	Current(ctx context.Context) (*session.Session, error)
	Logout(ctx context.Context) error
}

type clockTickMsg struct {
	scene string
	at    time.Time
}

type logoutResultMsg struct {
	scene string
	err   error
}

// Home is the authenticated scene.
type Home struct {
	ctx      context.Context
	sessions Sessions
	onLogout flow.Handler
	now      func() time.Time
	interval time.Duration

	id       string
	username string
	expires  time.Time
	clock    time.Time
	ticking  bool
	busy     bool
	errMsg   string
	keys     homeKeyMap
	help     help.Model
}

type HomeOption func(*Home)

// WithClock sets the time source and tick interval of the on-screen clock.
func WithClock(now func() time.Time, interval time.Duration) HomeOption {
	return func(h *Home) {
		if now != nil {
			h.now = now
		}
		if interval > 0 {
			h.interval = interval
		}
	}
}

// NewHome builds the home scene for the current session. It fails with
// ErrNoSession when nobody is signed in.
func NewHome(ctx context.Context, sessions Sessions, onLogout flow.Handler, opts ...HomeOption) (*Home, error) {
	s, err := sessions.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("screens: load session: %w", err)
	}
	if s == nil {
		return nil, ErrNoSession
	}
	h := &Home{
		ctx:      ctx,
		sessions: sessions,
		onLogout: onLogout,
		now:      time.Now,
		interval: time.Second,
		id:       uuid.NewString(),
		username: s.Username,
		expires:  s.ExpiresAt,
		keys:     newHomeKeyMap(),
		help:     help.New(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.clock = h.now()
	return h, nil
}

func (h *Home) Title() string { return "home" }

func (h *Home) Username() string { return h.username }

// Ticking reports whether the clock is running.
func (h *Home) Ticking() bool { return h.ticking }

func (h *Home) Err() string { return h.errMsg }

func (h *Home) WillAttach() tea.Cmd { return nil }

func (h *Home) DidAttach() tea.Cmd {
	h.ticking = true
	h.clock = h.now()
	return h.tick()
}

func (h *Home) WillDetach() tea.Cmd { return nil }

// DidDetach stops the clock; a tick already scheduled is dropped on arrival.
func (h *Home) DidDetach() tea.Cmd {
	h.ticking = false
	return nil
}

func (h *Home) tick() tea.Cmd {
	id, now := h.id, h.now
	return tea.Tick(h.interval, func(time.Time) tea.Msg {
		return clockTickMsg{scene: id, at: now()}
	})
}

func (h *Home) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case clockTickMsg:
		if msg.scene != h.id || !h.ticking {
			return nil
		}
		h.clock = msg.at
		return h.tick()
	case logoutResultMsg:
		if msg.scene != h.id {
			return nil
		}
		h.busy = false
		if msg.err != nil {
			h.errMsg = "log out failed: " + msg.err.Error()
			return nil
		}
		if h.onLogout == nil {
			return nil
		}
		return h.onLogout()
	case tea.KeyMsg:
		if key.Matches(msg, h.keys.Logout) && !h.busy {
			h.busy = true
			h.errMsg = ""
			ctx, sessions, id := h.ctx, h.sessions, h.id
			return func() tea.Msg {
				return logoutResultMsg{scene: id, err: sessions.Logout(ctx)}
			}
		}
	}
	return nil
}

func (h *Home) View(width, height int) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("signed in as ") + successStyle.Render(h.username) + "\n")
	b.WriteString(labelStyle.Render("local time   ") + valueStyle.Render(h.clock.Format("15:04:05")) + "\n")
	b.WriteString(labelStyle.Render("session      ") + h.remaining() + "\n\n")
	switch {
	case h.busy:
		b.WriteString(warningStyle.Render("signing out..."))
	case h.errMsg != "":
		b.WriteString(errorStyle.Render(h.errMsg))
	default:
		b.WriteString(mutedStyle.Render(h.help.View(h.keys)))
	}
	return box{Title: "home", Content: b.String()}.Render(width, height)
}

func (h *Home) remaining() string {
	left := h.expires.Sub(h.clock)
	if left <= 0 {
		return errorStyle.Render("expired")
	}
	text := fmt.Sprintf("expires in %s (%s)", left.Truncate(time.Second), h.expires.Local().Format("15:04"))
	if left < 5*time.Minute {
		return warningStyle.Render(text)
	}
	return valueStyle.Render(text)
}
