package tui

import (
	"context"
	"errors"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/sceneflow/internal/flow"
	"github.com/jask/sceneflow/internal/scene"
	"github.com/jask/sceneflow/internal/screens"
)

// Sessions is everything the app needs from the session layer.
type Sessions interface {
	flow.SessionState
	screens.Authenticator
	screens.Sessions
}

type Options struct {
	Scene    scene.Options
	Logger   *log.Logger
	Username string // prefilled on the login form
	Splash   scene.Scene
	Home     []screens.HomeOption
}

// App is the root model: a scene container driven by the flow coordinator,
// plus a status bar.
type App struct {
	ctx         context.Context
	sessions    Sessions
	container   *scene.Container
	coordinator *flow.Coordinator
	splash      scene.Scene
	logger      *log.Logger
	username    string
	homeOpts    []screens.HomeOption

	status    string
	statusErr bool
	resync    bool
	width     int
	height    int
}

func New(ctx context.Context, sessions Sessions, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.Scene.Logger == nil {
		opts.Scene.Logger = logger
	}
	splash := opts.Splash
	if splash == nil {
		splash = screens.NewSplash("checking session...")
	}
	a := &App{
		ctx:       ctx,
		sessions:  sessions,
		container: scene.NewContainer(opts.Scene),
		splash:    splash,
		logger:    logger,
		username:  opts.Username,
		homeOpts:  opts.Home,
	}
	a.coordinator = flow.New(sessions, a.makeHome, a.makeLogin, flow.WithLogger(logger))
	return a
}

func (a *App) makeHome(h flow.Handler) (scene.Scene, error) {
	home, err := screens.NewHome(a.ctx, a.sessions, h, a.homeOpts...)
	if err != nil {
		return nil, err
	}
	a.username = home.Username()
	return home, nil
}

func (a *App) makeLogin(h flow.Handler) (scene.Scene, error) {
	return screens.NewLogin(a.ctx, a.sessions, h, a.username), nil
}

// Container exposes the scene container, mainly for tests.
func (a *App) Container() *scene.Container { return a.container }

// Status returns the status line and whether it reports an error.
func (a *App) Status() (string, bool) { return a.status, a.statusErr }

func (a *App) Init() tea.Cmd {
	cmd, err := a.coordinator.Start(a.ctx, a.container, a.splash)
	if err != nil {
		a.logger.Printf("tui: start: %v", err)
		return tea.Batch(cmd, flow.ErrorCmd(err))
	}
	return cmd
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
	case tea.KeyMsg:
		if m.String() == "ctrl+c" {
			return a, tea.Quit
		}
	case flow.ErrorMsg:
		a.setError(m.Err)
		return a, nil
	case scene.TransitionDoneMsg:
		a.status = "showing " + scene.Title(m.To)
		a.statusErr = false
		a.logger.Printf("tui: %s -> %s in %s", scene.Title(m.From), scene.Title(m.To), m.Elapsed)
		if a.resync {
			a.resync = false
			cmd, _ := a.coordinator.Update(a.ctx, flow.SessionChangedMsg{Reason: "resync"})
			return a, cmd
		}
		return a, nil
	case flow.SessionChangedMsg:
		if a.container.IsTransitioning() {
			// picked up again when the running transition finishes
			a.resync = true
			return a, nil
		}
		a.status = "session " + m.Reason
		a.statusErr = false
	}

	if cmd, handled := a.coordinator.Update(a.ctx, msg); handled {
		return a, cmd
	}
	return a, a.container.Update(msg)
}

func (a *App) setError(err error) {
	a.statusErr = true
	switch {
	case errors.Is(err, scene.ErrConcurrentTransition):
		a.status = "busy: a scene change is already running"
	default:
		a.status = "error: " + err.Error()
	}
}

func (a *App) View() string {
	width, height := a.width, a.height
	if width <= 0 || height <= 0 {
		width, height = 80, 24
	}
	body := a.container.View(width, max(1, height-1))
	return body + "\n" + a.renderStatusBar(width)
}
