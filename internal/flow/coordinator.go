// Package flow decides which top-level scene is visible from the
// authentication state and drives a scene.Container accordingly.
//
// The coordinator keeps no session state of its own. Each decision is
// re-derived from the injected SessionState, and scenes report login or
// logout through the Handler they were built with.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/sceneflow/internal/scene"
)

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// SessionState answers whether a user is currently signed in.
type SessionState interface {
	HasSession(ctx context.Context) (bool, error)
}

// Handler is handed to a scene so it can report login or logout. A handler
// fires once; later calls return nil.
type Handler func() tea.Cmd

// Factory builds the scene for one state, wiring h into it.
type Factory func(h Handler) (scene.Scene, error)

var (
	ErrSceneFactory = errors.New("flow: scene factory failed")
	ErrNotStarted   = errors.New("flow: coordinator not started")
)

// FactoryError reports which scene could not be built.
type FactoryError struct {
	State State
	Err   error
}

func (e *FactoryError) Error() string {
	return fmt.Sprintf("flow: build %s scene: %v", e.State, e.Err)
}

func (e *FactoryError) Unwrap() error { return e.Err }

func (e *FactoryError) Is(target error) bool { return target == ErrSceneFactory }

type Option func(*Coordinator)

func WithLogger(l *log.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// Coordinator maps session transitions to container swaps.
type Coordinator struct {
	session             SessionState
	makeAuthenticated   Factory
	makeUnauthenticated Factory
	logger              *log.Logger

	container *scene.Container
	shown     State
	known     bool
}

func New(session SessionState, makeAuthenticated, makeUnauthenticated Factory, opts ...Option) *Coordinator {
	c := &Coordinator{
		session:             session,
		makeAuthenticated:   makeAuthenticated,
		makeUnauthenticated: makeUnauthenticated,
		logger:              log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start mounts the placeholder and swaps to the scene matching the current
// session. If the first scene cannot be built the placeholder stays up and
// the error is returned alongside the mount command.
func (c *Coordinator) Start(ctx context.Context, container *scene.Container, placeholder scene.Scene) (tea.Cmd, error) {
	c.container = container
	mounted := container.Mount(placeholder)

	state := c.derive(ctx)
	var (
		cmd tea.Cmd
		err error
	)
	if state == Authenticated {
		cmd, err = c.HandleLogin()
	} else {
		cmd, err = c.HandleLogout()
	}
	return tea.Batch(mounted, cmd), err
}

// HandleLogin swaps to a freshly built authenticated scene.
func (c *Coordinator) HandleLogin() (tea.Cmd, error) {
	return c.show(Authenticated)
}

// HandleLogout swaps to a freshly built unauthenticated scene.
func (c *Coordinator) HandleLogout() (tea.Cmd, error) {
	return c.show(Unauthenticated)
}

// Sync re-reads the session and swaps only if the visible scene no longer
// matches it.
func (c *Coordinator) Sync(ctx context.Context) (tea.Cmd, error) {
	if c.container == nil {
		return nil, ErrNotStarted
	}
	has, err := c.session.HasSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("flow: read session: %w", err)
	}
	want := Unauthenticated
	if has {
		want = Authenticated
	}
	if c.known && want == c.shown {
		return nil, nil
	}
	return c.show(want)
}

// Shown is the state of the scene on screen, or being faded in. It is
// Unauthenticated until the first scene has been swapped in.
func (c *Coordinator) Shown() State { return c.shown }

// Update handles the coordinator's own messages. The bool reports whether
// msg was consumed.
func (c *Coordinator) Update(ctx context.Context, msg tea.Msg) (tea.Cmd, bool) {
	var (
		cmd tea.Cmd
		err error
	)
	switch msg.(type) {
	case LoginMsg:
		cmd, err = c.HandleLogin()
	case LogoutMsg:
		cmd, err = c.HandleLogout()
	case SessionChangedMsg:
		cmd, err = c.Sync(ctx)
	default:
		return nil, false
	}
	if err != nil {
		c.logger.Printf("flow: %v", err)
		return ErrorCmd(err), true
	}
	return cmd, true
}

func (c *Coordinator) show(state State) (tea.Cmd, error) {
	if c.container == nil {
		return nil, ErrNotStarted
	}
	if c.container.IsTransitioning() {
		// Avoid building a scene that Swap would reject anyway.
		return nil, scene.ErrConcurrentTransition
	}

	var (
		next scene.Scene
		err  error
	)
	if state == Authenticated {
		next, err = c.makeAuthenticated(once(LogoutMsg{}))
	} else {
		next, err = c.makeUnauthenticated(once(LoginMsg{}))
	}
	if err == nil && next == nil {
		err = errors.New("factory returned no scene")
	}
	if err != nil {
		return nil, &FactoryError{State: state, Err: err}
	}

	cmd, err := c.container.Swap(next)
	if err != nil {
		return nil, err
	}
	c.logger.Printf("flow: showing %s scene %s", state, scene.Title(next))
	c.shown = state
	c.known = true
	return cmd, nil
}

func (c *Coordinator) derive(ctx context.Context) State {
	has, err := c.session.HasSession(ctx)
	if err != nil {
		c.logger.Printf("flow: read session at start, assuming signed out: %v", err)
		return Unauthenticated
	}
	if has {
		return Authenticated
	}
	return Unauthenticated
}

func once(msg tea.Msg) Handler {
	fired := false
	return func() tea.Cmd {
		if fired {
			return nil
		}
		fired = true
		return func() tea.Msg { return msg }
	}
}
