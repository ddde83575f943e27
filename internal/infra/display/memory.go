// Package display provides a headless in-memory display with a simulated render loop.
package display

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/touchdeck/internal/domain/screen"
	"github.com/osa030/touchdeck/internal/domain/widget"
)

// ErrInvalidFPS is returned by RunLoop for a non-positive frame rate.
var ErrInvalidFPS = errors.New("invalid frame rate")

type widgetState struct {
	text         string
	value        int
	checked      bool
	scrollPeriod int
}

// Memory keeps widget state in memory. Mutations must happen between Lock and
// Unlock; mutations made without the lock are counted as violations.
type Memory struct {
	lock   chan struct{} // exclusive mutation lock
	locked bool

	layout  widget.Layout
	widgets map[widget.ID]*widgetState
	active  screen.Screen

	dirty      bool
	frames     uint64
	locks      uint64
	violations uint64
}

// NewMemory creates a display showing the player screen.
func NewMemory(layout widget.Layout) *Memory {
	return &Memory{
		lock:    make(chan struct{}, 1),
		layout:  layout,
		widgets: make(map[widget.ID]*widgetState),
		active:  screen.Player,
	}
}

// Lock begins an exclusive mutation batch.
func (m *Memory) Lock() {
	m.lock <- struct{}{}
	m.locked = true
	m.locks++
}

// acquire takes the lock for internal reads and rendering without counting a batch.
func (m *Memory) acquire() func() {
	m.lock <- struct{}{}
	return func() { <-m.lock }
}

// Unlock ends the mutation batch.
func (m *Memory) Unlock() {
	m.locked = false
	<-m.lock
}

func (m *Memory) widgetLocked(id widget.ID) *widgetState {
	if !m.locked {
		m.violations++
	}
	w, ok := m.widgets[id]
	if !ok {
		w = &widgetState{}
		m.widgets[id] = w
	}
	return w
}

// SetText sets a label text.
func (m *Memory) SetText(id widget.ID, text string) {
	w := m.widgetLocked(id)
	if w.text != text {
		w.text = text
		m.dirty = true
	}
}

// SetValue sets a bar value.
func (m *Memory) SetValue(id widget.ID, value int) {
	w := m.widgetLocked(id)
	if w.value != value {
		w.value = value
		m.dirty = true
	}
}

// SetChecked sets a checkbox state.
func (m *Memory) SetChecked(id widget.ID, checked bool) {
	w := m.widgetLocked(id)
	if w.checked != checked {
		w.checked = checked
		m.dirty = true
	}
}

// SetScrollPeriod sets the circular scroll period of a label in milliseconds.
func (m *Memory) SetScrollPeriod(id widget.ID, periodMs int) {
	w := m.widgetLocked(id)
	if w.scrollPeriod != periodMs {
		w.scrollPeriod = periodMs
		m.dirty = true
	}
}

// ShowScreen makes s the visible screen.
func (m *Memory) ShowScreen(s screen.Screen) {
	if !m.locked {
		m.violations++
	}
	if m.active != s {
		m.active = s
		m.dirty = true
	}
}

// Geometry returns the rectangle of a widget.
func (m *Memory) Geometry(id widget.ID) (widget.Rect, bool) {
	r, ok := m.layout[id]
	return r, ok
}

// Flush renders one frame if anything changed or a label is scrolling.
// Returns true when a frame was rendered.
func (m *Memory) Flush() bool {
	defer m.acquire()()

	animating := false
	if m.active == screen.Player {
		for _, w := range m.widgets {
			if w.scrollPeriod > 0 {
				animating = true
				break
			}
		}
	}
	if !m.dirty && !animating {
		return false
	}
	if m.dirty {
		zlog.Debug().Msgf("display: frame=%d screen=%s title=%q", m.frames+1, m.active, m.textLocked(widget.Title))
	}
	m.dirty = false
	m.frames++
	return true
}

// RunLoop renders at fps until ctx is done, calling onFlush after every rendered frame.
func (m *Memory) RunLoop(ctx context.Context, fps int, onFlush func()) error {
	if fps <= 0 {
		return errors.Wrapf(ErrInvalidFPS, "fps=%d", fps)
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	zlog.Info().Msgf("display: render loop started: fps=%d", fps)
	for {
		select {
		case <-ctx.Done():
			zlog.Info().Msgf("display: render loop stopped: frames=%d", m.Frames())
			return nil
		case <-ticker.C:
			if m.Flush() && onFlush != nil {
				onFlush()
			}
		}
	}
}

func (m *Memory) textLocked(id widget.ID) string {
	if w, ok := m.widgets[id]; ok {
		return w.text
	}
	return ""
}

func (m *Memory) read(fn func()) {
	defer m.acquire()()
	fn()
}

// Text returns a label text.
func (m *Memory) Text(id widget.ID) (text string) {
	m.read(func() { text = m.textLocked(id) })
	return text
}

// Value returns a bar value.
func (m *Memory) Value(id widget.ID) (value int) {
	m.read(func() {
		if w, ok := m.widgets[id]; ok {
			value = w.value
		}
	})
	return value
}

// Checked returns a checkbox state.
func (m *Memory) Checked(id widget.ID) (checked bool) {
	m.read(func() {
		if w, ok := m.widgets[id]; ok {
			checked = w.checked
		}
	})
	return checked
}

// ScrollPeriod returns the scroll period of a label.
func (m *Memory) ScrollPeriod(id widget.ID) (period int) {
	m.read(func() {
		if w, ok := m.widgets[id]; ok {
			period = w.scrollPeriod
		}
	})
	return period
}

// Screen returns the visible screen.
func (m *Memory) Screen() (s screen.Screen) {
	m.read(func() { s = m.active })
	return s
}

// Frames returns the number of rendered frames.
func (m *Memory) Frames() (n uint64) {
	m.read(func() { n = m.frames })
	return n
}

// Locks returns how many mutation batches were opened.
func (m *Memory) Locks() (n uint64) {
	m.read(func() { n = m.locks })
	return n
}

// Violations returns the number of mutations made outside a batch.
func (m *Memory) Violations() (n uint64) {
	m.read(func() { n = m.violations })
	return n
}
