package screens

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/sceneflow/internal/flow"
	"github.com/jask/sceneflow/internal/session"
)

type fakeSessions struct {
	mu       sync.Mutex
	current  *session.Session
	password string
	loginErr error
	logouts  int
	logoutFn func() error
}

func (f *fakeSessions) Login(_ context.Context, username, password string) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if username != "demo" {
		return nil, &session.UnknownUserError{Username: username, Suggestion: "demo"}
	}
	if password != f.password {
		return nil, session.ErrInvalidCredentials
	}
	f.current = &session.Session{Username: username, ExpiresAt: time.Now().Add(time.Hour)}
	return f.current, nil
}

func (f *fakeSessions) Current(context.Context) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, nil
}

func (f *fakeSessions) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	if f.logoutFn != nil {
		if err := f.logoutFn(); err != nil {
			return err
		}
	}
	f.current = nil
	return nil
}

// countingHandler mimics a flow handler: the first call emits marker.
func countingHandler(n *int) flow.Handler {
	return func() tea.Cmd {
		*n++
		if *n > 1 {
			return nil
		}
		return func() tea.Msg { return flow.LoginMsg{} }
	}
}

func typeText(l *Login, s string) {
	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func TestSplashSpinnerFollowsLifecycle(t *testing.T) {
	s := NewSplash("loading")
	if s.Update(spinner.TickMsg{}) != nil {
		t.Fatalf("detached splash should not tick")
	}
	if cmd := s.DidAttach(); cmd == nil || !s.Running() {
		t.Fatalf("DidAttach should start the spinner")
	}
	s.WillDetach()
	if s.Running() {
		t.Fatalf("WillDetach should stop the spinner")
	}
	if s.Update(spinner.TickMsg{}) != nil {
		t.Fatalf("stopped spinner should not schedule ticks")
	}
	if !strings.Contains(s.View(40, 10), "loading") {
		t.Fatalf("view should show the message")
	}
}

func TestLoginRequiresUsername(t *testing.T) {
	var fired int
	l := NewLogin(context.Background(), &fakeSessions{}, countingHandler(&fired), "")
	l.DidAttach()
	l.Update(enter()) // move to password
	typeText(l, "secret")
	l.Update(enter())
	if l.Busy() {
		t.Fatalf("empty username should not submit")
	}
	if l.Err() != "enter a username" || l.focus != fieldUsername {
		t.Fatalf("err = %q", l.Err())
	}
}

func TestLoginSuccessInvokesHandlerOnce(t *testing.T) {
	var fired int
	auth := &fakeSessions{password: "pw"}
	l := NewLogin(context.Background(), auth, countingHandler(&fired), "")
	l.DidAttach()
	typeText(l, "demo")
	l.Update(enter())
	typeText(l, "pw")

	submit := l.Update(enter())
	if submit == nil || !l.Busy() {
		t.Fatalf("enter on the password field should submit")
	}
	if l.Update(enter()) != nil {
		t.Fatalf("keys are ignored while a submit is in flight")
	}
	res, ok := submit().(loginResultMsg)
	if !ok || res.err != nil {
		t.Fatalf("result = %+v", res)
	}
	next := l.Update(res)
	if fired != 1 || next == nil {
		t.Fatalf("handler calls = %d", fired)
	}
	if _, ok := next().(flow.LoginMsg); !ok {
		t.Fatalf("handler should emit LoginMsg")
	}
	if l.Busy() {
		t.Fatalf("busy flag should clear")
	}
}

func TestLoginShowsErrors(t *testing.T) {
	var fired int
	l := NewLogin(context.Background(), &fakeSessions{password: "pw"}, countingHandler(&fired), "")
	l.DidAttach()
	typeText(l, "dmeo")
	l.Update(enter())
	typeText(l, "pw")
	l.Update(l.Update(enter())())
	if !strings.Contains(l.Err(), `did you mean "demo"`) {
		t.Fatalf("err = %q", l.Err())
	}
	if l.focus != fieldUsername {
		t.Fatalf("unknown user should refocus the username")
	}

	l2 := NewLogin(context.Background(), &fakeSessions{password: "pw"}, countingHandler(&fired), "demo")
	l2.DidAttach()
	typeText(l2, "nope")
	l2.Update(l2.Update(enter())())
	if l2.Err() != "wrong password" {
		t.Fatalf("err = %q", l2.Err())
	}
	if l2.inputs[fieldPassword].Value() != "" {
		t.Fatalf("password should be cleared after a failure")
	}
	if fired != 0 {
		t.Fatalf("handler must not fire on failure")
	}
	if !strings.Contains(l2.View(60, 20), "wrong password") {
		t.Fatalf("view should render the error")
	}
}

func TestLoginIgnoresOtherScenesResults(t *testing.T) {
	var fired int
	l := NewLogin(context.Background(), &fakeSessions{}, countingHandler(&fired), "")
	if cmd := l.Update(loginResultMsg{scene: "someone-else"}); cmd != nil || fired != 0 {
		t.Fatalf("foreign result should be ignored")
	}
}

func TestDescribeLoginError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&session.UnknownUserError{Username: "x"}, `no user "x"`},
		{session.ErrInvalidCredentials, "wrong password"},
		{errors.New("disk full"), "sign in failed: disk full"},
	}
	for _, tc := range cases {
		if got := describeLoginError(tc.err); got != tc.want {
			t.Fatalf("describeLoginError(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func newTestHome(t *testing.T, sessions *fakeSessions, fired *int) *Home {
	t.Helper()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	h, err := NewHome(context.Background(), sessions, countingHandler(fired), WithClock(func() time.Time { return now }, time.Hour))
	if err != nil {
		t.Fatalf("new home: %v", err)
	}
	return h
}

func TestNewHomeRequiresSession(t *testing.T) {
	var fired int
	if _, err := NewHome(context.Background(), &fakeSessions{}, countingHandler(&fired)); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
}

func TestHomeClockRunsWhileAttached(t *testing.T) {
	var fired int
	sessions := &fakeSessions{current: &session.Session{Username: "demo", ExpiresAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}}
	h := newTestHome(t, sessions, &fired)

	if h.DidAttach() == nil || !h.Ticking() {
		t.Fatalf("DidAttach should start the clock")
	}
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	if h.Update(clockTickMsg{scene: "other", at: at}) != nil {
		t.Fatalf("ticks for another scene are ignored")
	}
	if h.Update(clockTickMsg{scene: h.id, at: at}) == nil {
		t.Fatalf("tick should schedule the next one")
	}
	if view := h.View(80, 20); !strings.Contains(view, "09:30:00") || !strings.Contains(view, "expires in 30m0s") {
		t.Fatalf("view = %q", view)
	}

	h.DidDetach()
	if h.Ticking() || h.Update(clockTickMsg{scene: h.id, at: at}) != nil {
		t.Fatalf("clock should stop after DidDetach")
	}
}

func TestHomeLogout(t *testing.T) {
	var fired int
	sessions := &fakeSessions{current: &session.Session{Username: "demo", ExpiresAt: time.Now().Add(time.Hour)}}
	h := newTestHome(t, sessions, &fired)
	h.DidAttach()

	cmd := h.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	if cmd == nil {
		t.Fatalf("ctrl+l should start a logout")
	}
	if h.Update(tea.KeyMsg{Type: tea.KeyCtrlL}) != nil {
		t.Fatalf("second ctrl+l while busy is ignored")
	}
	h.Update(cmd())
	if sessions.logouts != 1 || fired != 1 {
		t.Fatalf("logouts=%d handler=%d", sessions.logouts, fired)
	}
}

func TestHomeLogoutFailureKeepsScene(t *testing.T) {
	var fired int
	sessions := &fakeSessions{
		current:  &session.Session{Username: "demo", ExpiresAt: time.Now().Add(time.Hour)},
		logoutFn: func() error { return errors.New("redis down") },
	}
	h := newTestHome(t, sessions, &fired)
	h.Update(h.Update(tea.KeyMsg{Type: tea.KeyCtrlL})())
	if fired != 0 {
		t.Fatalf("handler must not fire when logout fails")
	}
	if !strings.Contains(h.Err(), "redis down") {
		t.Fatalf("err = %q", h.Err())
	}
}
