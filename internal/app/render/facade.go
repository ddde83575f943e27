package render

import (
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/touchdeck/internal/app/stats"
	"github.com/osa030/touchdeck/internal/app/transport"
	"github.com/osa030/touchdeck/internal/domain/screen"
	"github.com/osa030/touchdeck/internal/domain/widget"
)

// Title texts shown instead of a track title.
const (
	NoTrackText    = "No track"
	UnreadableText = "Track unreadable"
)

// Facade applies widget updates in exclusive batches. It is owned by the UI task.
type Facade struct {
	display     Display
	screens     *screen.Context
	measurer    Measurer
	scrollSpeed int

	snap      transport.Snapshot
	statsText string
	title     string
	titleSet  bool
	dragging  bool

	batches uint64
	skipped uint64
}

// NewFacade creates a facade. A nil measurer disables title scrolling.
func NewFacade(d Display, screens *screen.Context, m Measurer, scrollSpeed int) *Facade {
	if scrollSpeed <= 0 {
		scrollSpeed = DefaultScrollSpeed
	}
	return &Facade{
		display:     d,
		screens:     screens,
		measurer:    m,
		scrollSpeed: scrollSpeed,
		statsText:   stats.InitialLabel,
	}
}

// Batch runs fn inside the exclusive mutation section. The section is released
// on every exit path of fn, including a panic.
func (f *Facade) Batch(fn func(d Display)) {
	f.display.Lock()
	defer f.display.Unlock()
	f.batches++
	fn(f.display)
}

// Init renders the active screen and the full player state.
func (f *Facade) Init(snap transport.Snapshot) {
	f.snap = snap
	active := f.screens.Active()
	f.Batch(func(d Display) {
		d.ShowScreen(active)
		f.writePlayer(d)
	})
}

// ApplyTransport renders a transport snapshot. The update is skipped while the
// player screen is hidden; it is rendered when the player is shown again.
func (f *Facade) ApplyTransport(snap transport.Snapshot) bool {
	f.snap = snap
	if !f.screens.Is(screen.Player) {
		f.skipped++
		return false
	}
	f.Batch(f.writeTransport)
	return true
}

// ApplyStats renders the stats label.
func (f *Facade) ApplyStats(text string) bool {
	f.statsText = text
	if !f.screens.Is(screen.Player) {
		f.skipped++
		return false
	}
	f.Batch(func(d Display) {
		d.SetText(widget.StatsLabel, text)
	})
	return true
}

// PreviewSeek shows percent on the progress bar during a drag.
// Transport updates leave the bar alone until EndPreview.
func (f *Facade) PreviewSeek(percent int) {
	f.dragging = true
	if !f.screens.Is(screen.Player) {
		f.skipped++
		return
	}
	f.Batch(func(d Display) {
		d.SetValue(widget.ProgressBar, percent)
	})
}

// EndPreview hands the progress bar back to transport updates.
func (f *Facade) EndPreview() {
	if !f.dragging {
		return
	}
	f.dragging = false
	f.ApplyTransport(f.snap)
}

// SwitchScreen shows s. Showing the player re-renders its full state.
func (f *Facade) SwitchScreen(s screen.Screen) {
	f.Batch(func(d Display) {
		d.ShowScreen(s)
		if s == screen.Player {
			f.writePlayer(d)
		}
	})
}

// Batches returns the number of mutation batches issued.
func (f *Facade) Batches() uint64 {
	return f.batches
}

// Skipped returns the number of updates skipped because the player was hidden.
func (f *Facade) Skipped() uint64 {
	return f.skipped
}

func (f *Facade) writePlayer(d Display) {
	f.writeTransport(d)
	d.SetText(widget.StatsLabel, f.statsText)
}

func (f *Facade) writeTransport(d Display) {
	s := f.snap

	title := TitleText(s)
	if !f.titleSet || title != f.title {
		f.title = title
		f.titleSet = true
		d.SetText(widget.Title, title)
		d.SetScrollPeriod(widget.Title, f.scrollPeriod(title))
	}

	if !f.dragging {
		d.SetValue(widget.ProgressBar, s.ProgressPercent())
	}
	d.SetText(widget.Elapsed, s.ElapsedText())
	d.SetText(widget.Total, s.TotalText())
	d.SetChecked(widget.AutoPlayCheckbox, s.AutoPlay)
	d.SetChecked(widget.ContinueCheckbox, s.ContinuePlayback)
}

func (f *Facade) scrollPeriod(title string) int {
	if f.measurer == nil {
		return 0
	}
	period := ScrollPeriod(f.measurer.TextWidth(title), f.scrollSpeed)
	zlog.Debug().Msgf("render: title scroll period=%dms title=%q", period, title)
	return period
}

// TitleText returns the title label text for a snapshot.
func TitleText(s transport.Snapshot) string {
	switch {
	case s.Unreadable:
		return UnreadableText
	case !s.HasTrack():
		return NoTrackText
	default:
		return s.Title
	}
}
