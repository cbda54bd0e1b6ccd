package scene

import (
	"errors"
	"fmt"
	"log"
	"reflect"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	// ErrConcurrentTransition is returned by Swap while a cross-fade is still running.
	ErrConcurrentTransition = errors.New("scene: transition already in progress")
	// ErrPreconditionViolation marks API misuse; it is raised as a panic.
	ErrPreconditionViolation = errors.New("scene: precondition violation")
)

const (
	DefaultFadeDuration  = 200 * time.Millisecond
	DefaultFrameInterval = 16 * time.Millisecond
)

// Options configures a Container. Zero values pick the defaults.
type Options struct {
	FadeDuration  time.Duration
	FrameInterval time.Duration
	Now           func() time.Time
	// Debug logs rejected swaps as bugs and traces every transition.
	Debug  bool
	Logger *log.Logger
}

// FrameMsg advances the running cross-fade. Frames from an older
// transition are ignored.
type FrameMsg struct {
	Seq  uint64
	Time time.Time
}

// TransitionDoneMsg is emitted once a swap has fully completed.
type TransitionDoneMsg struct {
	From    Scene
	To      Scene
	Elapsed time.Duration
}

// Container keeps exactly one active scene and cross-fades replacements.
type Container struct {
	opts   Options
	logger *log.Logger

	mounted       bool
	active        Scene
	incoming      Scene
	transitioning bool
	seq           uint64
	started       time.Time
	opacity       float64
}

func NewContainer(opts Options) *Container {
	if opts.FadeDuration <= 0 {
		opts.FadeDuration = DefaultFadeDuration
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Container{opts: opts, logger: logger}
}

// Mount attaches the first scene without animation. It must be called
// exactly once, before any Swap.
func (c *Container) Mount(initial Scene) tea.Cmd {
	if c.mounted {
		c.violation("mount called twice")
	}
	if initial == nil {
		c.violation("mount with nil scene")
	}
	c.mounted = true
	will := initial.WillAttach()
	c.active = initial
	c.opacity = 1
	did := initial.DidAttach()
	if c.opts.Debug {
		c.logger.Printf("scene: mounted %s", Title(initial))
	}
	return tea.Batch(will, did)
}

// Swap starts a cross-fade from the active scene to next and returns the
// command that drives it. Completion is reported with TransitionDoneMsg.
// While a transition runs every further Swap returns ErrConcurrentTransition
// and changes nothing.
func (c *Container) Swap(next Scene) (tea.Cmd, error) {
	if !c.mounted {
		c.violation("swap before mount")
	}
	if next == nil {
		c.violation("swap to nil scene")
	}
	if c.transitioning {
		if c.opts.Debug {
			c.logger.Printf("BUG scene: swap to %s rejected, %s -> %s still running",
				Title(next), Title(c.active), Title(c.incoming))
		}
		return nil, ErrConcurrentTransition
	}
	if sameScene(next, c.active) {
		c.violation("swap to the active scene")
	}

	c.seq++
	c.transitioning = true
	c.started = c.opts.Now()

	out := c.active.WillDetach()
	c.incoming = next
	c.opacity = 0
	in := next.WillAttach()
	if c.opts.Debug {
		c.logger.Printf("scene: transition %d %s -> %s started", c.seq, Title(c.active), Title(next))
	}
	return tea.Batch(out, in, c.frame()), nil
}

// Update consumes animation frames and routes everything else to scenes.
// Input only reaches the active scene, and never during a transition.
func (c *Container) Update(msg tea.Msg) tea.Cmd {
	if f, ok := msg.(FrameMsg); ok {
		return c.advance(f)
	}
	if isInput(msg) {
		if c.transitioning || c.active == nil {
			return nil
		}
		return c.active.Update(msg)
	}
	var cmds []tea.Cmd
	if c.active != nil {
		cmds = append(cmds, c.active.Update(msg))
	}
	if c.incoming != nil {
		cmds = append(cmds, c.incoming.Update(msg))
	}
	return tea.Batch(cmds...)
}

func (c *Container) View(width, height int) string {
	if c.active == nil {
		return ""
	}
	under := c.active.View(width, height)
	if !c.transitioning {
		return under
	}
	return Crossfade(under, c.incoming.View(width, height), c.opacity, width, height)
}

func (c *Container) Active() Scene         { return c.active }
func (c *Container) Incoming() Scene       { return c.incoming }
func (c *Container) IsTransitioning() bool { return c.transitioning }

// Opacity of the incoming scene, or 1 when idle.
func (c *Container) Opacity() float64 { return c.opacity }

func (c *Container) frame() tea.Cmd {
	seq := c.seq
	return tea.Tick(c.opts.FrameInterval, func(t time.Time) tea.Msg {
		return FrameMsg{Seq: seq, Time: t}
	})
}

func (c *Container) advance(f FrameMsg) tea.Cmd {
	if !c.transitioning || f.Seq != c.seq {
		return nil
	}
	elapsed := f.Time.Sub(c.started)
	c.opacity = progress(elapsed, c.opts.FadeDuration)
	if c.opacity < 1 {
		return c.frame()
	}
	return c.finish(elapsed)
}

func (c *Container) finish(elapsed time.Duration) tea.Cmd {
	out, in := c.active, c.incoming
	c.incoming = nil
	detached := out.DidDetach()
	attached := in.DidAttach()
	c.active = in
	c.transitioning = false
	c.opacity = 1
	if c.opts.Debug {
		c.logger.Printf("scene: transition %d %s -> %s done in %s", c.seq, Title(out), Title(in), elapsed)
	}
	done := TransitionDoneMsg{From: out, To: in, Elapsed: elapsed}
	return tea.Batch(detached, attached, func() tea.Msg { return done })
}

func (c *Container) violation(what string) {
	err := fmt.Errorf("%w: %s", ErrPreconditionViolation, what)
	c.logger.Print(err)
	panic(err)
}

func progress(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	return clamp01(float64(elapsed) / float64(total))
}

func clamp01(v float64) float64 {
	if v >= 1 {
		return 1
	} else if v <= 0 {
		return 0
	}
	return v
}

func isInput(msg tea.Msg) bool {
	switch msg.(type) {
	case tea.KeyMsg, tea.MouseMsg:
		return true
	}
	return false
}

// sameScene compares scenes without panicking on uncomparable dynamic types.
func sameScene(a, b Scene) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
