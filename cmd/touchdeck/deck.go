package main

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/osa030/touchdeck/internal/app/console"
	"github.com/osa030/touchdeck/internal/app/filter"
	"github.com/osa030/touchdeck/internal/app/gesture"
	"github.com/osa030/touchdeck/internal/app/notification"
	"github.com/osa030/touchdeck/internal/app/render"
	"github.com/osa030/touchdeck/internal/app/transport"
	"github.com/osa030/touchdeck/internal/domain/screen"
	"github.com/osa030/touchdeck/internal/infra/audio"
	"github.com/osa030/touchdeck/internal/infra/catalog"
	"github.com/osa030/touchdeck/internal/infra/clock"
	"github.com/osa030/touchdeck/internal/infra/config"
	"github.com/osa030/touchdeck/internal/infra/display"
	"github.com/osa030/touchdeck/internal/infra/prefs"
	"github.com/osa030/touchdeck/internal/infra/script"
)

// deck wires the console to its collaborators.
type deck struct {
	cfg *config.Config

	clock    clock.Clock
	queue    *console.Queue
	audio    *audio.Service
	catalog  *catalog.Catalog
	prefs    *prefs.Store
	machine  *transport.Machine
	screens  *screen.Context
	router   *gesture.Router
	display  *display.Memory
	notifier *notification.Manager
	console  *console.Console
	parser   *script.Parser
}

func newDeck(cfg *config.Config) (*deck, error) {
	d := &deck{
		cfg:      cfg,
		clock:    clock.NewMonotonic(),
		queue:    console.NewQueue(cfg.QueueSize),
		screens:  screen.NewContext(),
		notifier: notification.NewManager(),
	}

	d.audio = audio.NewService(audio.FileProber{}, d.queue, cfg.ProgressInterval())
	d.catalog = catalog.New(cfg.Catalog.Tracks, cfg.WrapCatalog(), d.queue)
	d.prefs = prefs.NewStore(cfg.Preferences.Path)

	tcfg := transport.Config{
		AutoPlay:         cfg.Playback.AutoPlay,
		ContinuePlayback: cfg.Playback.ContinuePlayback,
	}
	p, ok, err := d.prefs.Load()
	switch {
	case err != nil:
		zlog.Warn().Msgf("Ignoring preferences: %v", err)
	case ok:
		tcfg.AutoPlay = p.AutoPlay
		tcfg.ContinuePlayback = p.ContinuePlayback
		zlog.Info().Msgf("Loaded preferences from %s: %+v", d.prefs.Path(), p)
	}
	d.machine = transport.NewMachine(tcfg, d.audio, d.catalog)

	guard := gesture.NewGuard(d.clock, cfg.Cooldown())
	chain, err := filter.Build(guard, filterSettings(cfg))
	if err != nil {
		d.Close()
		return nil, errors.Wrap(err, "invalid filter config")
	}

	layout := cfg.Layout()
	d.router = gesture.NewRouter(guard, d.screens, chain, layout)
	d.display = display.NewMemory(layout)
	facade := render.NewFacade(d.display, d.screens,
		render.RuneWidthMeasurer{CellPx: cfg.Title.GlyphWidthPx}, cfg.Title.ScrollSpeedPx)

	d.console = console.New(console.Deps{
		Machine:     d.machine,
		Router:      d.router,
		Facade:      facade,
		Screens:     d.screens,
		Queue:       d.queue,
		Clock:       d.clock,
		Layout:      layout,
		Notifier:    d.notifier,
		Prefs:       d.prefs,
		StatsPeriod: cfg.StatsPeriod(),
	})
	d.parser = script.NewParser(layout, d.clock)

	zlog.Info().Msgf("Console ready: tracks=%d filters=%d cooldown=%s", d.catalog.Len(), len(chain.Filters()), cfg.Cooldown())
	return d, nil
}

func filterSettings(cfg *config.Config) map[string]filter.Settings {
	out := make(map[string]filter.Settings, len(cfg.Filters))
	for name, fc := range cfg.Filters {
		out[name] = filter.Settings{Enabled: fc.Enabled, Settings: fc.Settings}
	}
	return out
}

// run drives the console and the render loop until ctx is done or either fails.
func (d *deck) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.console.Run(ctx)
	})
	g.Go(func() error {
		return d.display.RunLoop(ctx, d.cfg.Display.FPS, d.console.FlushCompleted)
	})
	return g.Wait()
}

// post queues the events of one command line.
func (d *deck) post(line string) error {
	evs, err := d.parser.Parse(line)
	if err != nil {
		return err
	}
	for _, ev := range evs {
		if !d.queue.Post(ev) {
			return errors.Newf("console busy, dropped %s", console.Describe(ev))
		}
	}
	return nil
}

// status summarises what the display currently shows.
func (d *deck) status() string {
	s := d.machine.Snapshot()
	return fmt.Sprintf("[%s] %s %s / %s (%d%%) state=%s autoplay=%v continue=%v",
		d.screens.Active(), render.TitleText(s), s.ElapsedText(), s.TotalText(), s.ProgressPercent(),
		s.State, s.AutoPlay, s.ContinuePlayback)
}

// Close releases every collaborator. Pending preferences are flushed.
func (d *deck) Close() {
	d.queue.Close()
	d.audio.Close()
	d.catalog.Wait()
	d.machine.Close()
	d.notifier.Close()
	if err := d.prefs.Close(); err != nil {
		zlog.Error().Msgf("Failed to save preferences: %v", err)
	}
}
