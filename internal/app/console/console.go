package console

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/touchdeck/internal/app/gesture"
	"github.com/osa030/touchdeck/internal/app/notification"
	"github.com/osa030/touchdeck/internal/app/render"
	"github.com/osa030/touchdeck/internal/app/seek"
	"github.com/osa030/touchdeck/internal/app/stats"
	"github.com/osa030/touchdeck/internal/app/transport"
	"github.com/osa030/touchdeck/internal/domain/input"
	"github.com/osa030/touchdeck/internal/domain/screen"
	"github.com/osa030/touchdeck/internal/domain/widget"
	"github.com/osa030/touchdeck/internal/infra/clock"
	"github.com/osa030/touchdeck/internal/infra/prefs"
)

// DefaultStatsPeriod is the stats sampling period.
const DefaultStatsPeriod = time.Second

// PrefsSaver persists preferences without blocking.
type PrefsSaver interface {
	Save(prefs.Preferences)
}

// Deps holds the collaborators owned by the console.
type Deps struct {
	Machine  *transport.Machine
	Router   *gesture.Router
	Facade   *render.Facade
	Sampler  *stats.Sampler
	Screens  *screen.Context
	Queue    *Queue
	Clock    clock.Clock
	Layout   widget.Layout
	Notifier *notification.Manager // Optional
	Prefs    PrefsSaver            // Optional

	StatsPeriod time.Duration
}

// Console applies every event on a single goroutine. Producers reach it only
// through the Queue.
type Console struct {
	machine  *transport.Machine
	router   *gesture.Router
	facade   *render.Facade
	sampler  *stats.Sampler
	screens  *screen.Context
	queue    *Queue
	clock    clock.Clock
	layout   widget.Layout
	notifier *notification.Manager
	prefs    PrefsSaver

	statsPeriod time.Duration
	drag        seek.Drag
	committed   bool // The previous event released a drag on the bar at committedX
	committedX  int
	handled     uint64
}

// New creates a console.
func New(d Deps) *Console {
	if d.Clock == nil {
		d.Clock = clock.NewMonotonic()
	}
	if d.StatsPeriod <= 0 {
		d.StatsPeriod = DefaultStatsPeriod
	}
	if d.Sampler == nil {
		d.Sampler = stats.NewSampler()
	}
	return &Console{
		machine:     d.Machine,
		router:      d.Router,
		facade:      d.Facade,
		sampler:     d.Sampler,
		screens:     d.Screens,
		queue:       d.Queue,
		clock:       d.Clock,
		layout:      d.Layout,
		notifier:    d.Notifier,
		prefs:       d.Prefs,
		statsPeriod: d.StatsPeriod,
	}
}

// Init renders the initial state. Run calls it; tests driving Handle directly call it once.
func (c *Console) Init() {
	c.facade.Init(c.machine.Snapshot())
}

// Run processes queued events and stats ticks until ctx is done.
func (c *Console) Run(ctx context.Context) error {
	c.Init()

	ticker := time.NewTicker(c.statsPeriod)
	defer ticker.Stop()

	zlog.Info().Msgf("console: running stats_period=%s screen=%s", c.statsPeriod, c.screens.Active())

	for {
		select {
		case <-ctx.Done():
			zlog.Info().Msgf("console: stopped after %d events", c.handled)
			return nil
		case ev := <-c.queue.C():
			c.handleSafe(ctx, ev)
		case <-ticker.C:
			c.handleSafe(ctx, TickEvent{NowMicros: c.clock.NowMicros()})
		}
	}
}

// FlushCompleted records a completed frame. Safe to call from the render loop.
func (c *Console) FlushCompleted() {
	c.sampler.FlushCompleted()
}

// Handle applies ev. Errors are logged and never returned; the console keeps running.
func (c *Console) Handle(ctx context.Context, ev Event) {
	c.handled++
	if _, ok := ev.(TickEvent); !ok {
		zlog.Debug().Msgf("console: handle %s", Describe(ev))
	}

	switch e := ev.(type) {
	case InputEvent:
		c.handleInput(ctx, e.Input)
	case TickEvent:
		s := c.sampler.Sample(e.NowMicros)
		c.facade.ApplyStats(s.String())
	case LoadCompletedEvent:
		c.logResult("load completion", c.machine.CompleteLoad(e.Result))
	case AdjacentResolvedEvent:
		c.logResult("adjacent lookup", c.machine.ResolveAdjacent(e.Result))
	case ProgressEvent:
		c.logResult("progress", c.machine.ReportPosition(e.Generation, e.Seconds))
	case TrackFinishedEvent:
		c.logResult("track end", c.machine.FinishTrack(e.Generation))
	case TrackSelectedEvent:
		c.logResult("select", c.machine.Load(e.TrackID))
	case NavigateEvent:
		c.navigate(e.Screen)
	case CommandEvent:
		c.command(e)
	default:
		zlog.Warn().Msgf("console: unknown event %T", ev)
	}

	c.drainTransport()
}

// handleSafe keeps the loop alive when a handler panics.
func (c *Console) handleSafe(ctx context.Context, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("console: %s panicked: %v", Describe(ev), r)
		}
	}()
	c.Handle(ctx, ev)
}

// Handled returns the number of events handled.
func (c *Console) Handled() uint64 {
	return c.handled
}

func (c *Console) handleInput(ctx context.Context, ev input.Event) {
	// only the click reported for that same release was already seeked
	seeked := c.committed && ev.Kind == input.Click && ev.Target == widget.ProgressBar && ev.Point.X == c.committedX
	c.committed = false

	d := c.router.Route(ctx, ev)
	if !d.Accepted {
		if d.Class == gesture.ClassRelease && c.drag.Active() {
			c.drag.Cancel()
			c.facade.EndPreview()
		}
		return
	}

	if d.Command == gesture.CommandShowFileManager {
		c.drag.Cancel()
		c.facade.SwitchScreen(screen.FileManager)
		c.notifyScreen()
		return
	}

	switch d.Class {
	case gesture.ClassPress:
		if ev.Target == widget.ProgressBar {
			if p, ok := c.barPercent(ev.Point.X); ok {
				c.drag.Begin(p)
				c.facade.PreviewSeek(p)
			}
		}
	case gesture.ClassMove:
		if c.drag.Active() {
			if p, ok := c.barPercent(ev.Point.X); ok && c.drag.Move(p) {
				c.facade.PreviewSeek(p)
			}
		}
	case gesture.ClassRelease:
		if ev.Target == widget.ProgressBar && c.drag.Active() {
			// the release point is the final sample
			if p, ok := c.barPercent(ev.Point.X); ok {
				c.drag.Move(p)
			}
		}
		if p, ok := c.drag.Release(); ok {
			c.committed = true
			c.committedX = ev.Point.X
			c.logResult("seek", c.machine.SeekTo(p))
			c.facade.EndPreview()
		}
	case gesture.ClassClick:
		if !seeked {
			c.click(ev)
		}
	}
}

func (c *Console) click(ev input.Event) {
	switch ev.Target {
	case widget.ProgressBar:
		if p, ok := c.barPercent(ev.Point.X); ok {
			c.logResult("seek", c.machine.SeekTo(p))
		}
	case widget.PrevButton:
		c.logResult("previous", c.machine.Previous())
	case widget.PlayButton:
		c.logResult("play", c.machine.Play())
	case widget.PauseButton:
		c.logResult("pause", c.machine.Pause())
	case widget.StopButton:
		c.logResult("stop", c.machine.Stop())
	case widget.NextButton:
		c.logResult("next", c.machine.Next())
	case widget.AutoPlayCheckbox:
		c.machine.SetAutoPlay(!c.machine.Snapshot().AutoPlay)
	case widget.ContinueCheckbox:
		c.machine.SetContinuePlayback(!c.machine.Snapshot().ContinuePlayback)
	}
}

func (c *Console) command(e CommandEvent) {
	switch e.Command {
	case CommandPlay:
		c.logResult("play", c.machine.Play())
	case CommandPause:
		c.logResult("pause", c.machine.Pause())
	case CommandResume:
		c.logResult("resume", c.machine.Resume())
	case CommandStop:
		c.logResult("stop", c.machine.Stop())
	case CommandNext:
		c.logResult("next", c.machine.Next())
	case CommandPrevious:
		c.logResult("previous", c.machine.Previous())
	case CommandSeek:
		c.logResult("seek", c.machine.SeekTo(e.Arg))
	case CommandAutoPlay:
		c.machine.SetAutoPlay(e.Arg != 0)
	case CommandContinue:
		c.machine.SetContinuePlayback(e.Arg != 0)
	default:
		zlog.Warn().Msgf("console: unknown command %q", e.Command)
	}
}

func (c *Console) navigate(s screen.Screen) {
	if !c.router.Navigate(s) {
		return
	}
	c.drag.Cancel()
	c.facade.SwitchScreen(s)
	c.notifyScreen()
}

// barPercent maps x on the progress bar. ok is false without a usable bar geometry.
func (c *Console) barPercent(x int) (int, bool) {
	r, ok := c.layout[widget.ProgressBar]
	if !ok {
		return 0, false
	}
	p, err := seek.Percent(x, seek.Geometry{OriginX: r.X, Width: r.W})
	if err != nil {
		zlog.Warn().Msgf("console: progress bar: %v", err)
		return 0, false
	}
	return p, true
}

// drainTransport publishes pending transport events and renders the latest snapshot once.
func (c *Console) drainTransport() {
	var (
		last    transport.Snapshot
		changed bool
	)
	for {
		select {
		case ev := <-c.machine.Events():
			changed = true
			last = ev.Snapshot
			if ev.Type == transport.EventPreferencesChanged && c.prefs != nil {
				c.prefs.Save(prefs.Preferences{
					AutoPlay:         ev.Snapshot.AutoPlay,
					ContinuePlayback: ev.Snapshot.ContinuePlayback,
				})
			}
			c.notify(notification.FromTransport(ev.Type), ev.Snapshot)
		default:
			if changed {
				c.facade.ApplyTransport(last)
			}
			return
		}
	}
}

func (c *Console) notify(kind notification.Kind, snap transport.Snapshot) {
	if c.notifier == nil {
		return
	}
	c.notifier.Broadcast(notification.Notification{
		Kind:      kind,
		Transport: snap,
		Screen:    c.screens.Active(),
	})
}

func (c *Console) notifyScreen() {
	c.notify(notification.KindScreenChanged, c.machine.Snapshot())
}

func (c *Console) logResult(op string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, transport.ErrStaleCompletion):
		zlog.Debug().Msgf("console: %s: %v", op, err)
	case errors.Is(err, transport.ErrTrackUnreadable), errors.Is(err, transport.ErrAdjacentNotFound):
		zlog.Warn().Msgf("console: %s: %v", op, err)
	default:
		zlog.Info().Msgf("console: %s ignored: %v", op, err)
	}
}
