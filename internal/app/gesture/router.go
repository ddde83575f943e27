package gesture

import (
	"context"
	"maps"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/touchdeck/internal/app/filter"
	"github.com/osa030/touchdeck/internal/domain/input"
	"github.com/osa030/touchdeck/internal/domain/screen"
	"github.com/osa030/touchdeck/internal/domain/widget"
)

// Class is the observed classification of an input event.
type Class int

const (
	ClassUnknown Class = iota
	ClassPress
	ClassMove
	ClassRelease
	ClassClick
	ClassSwipeLeft
	ClassSwipeRight
	ClassSwipeUp
	ClassSwipeDown
)

// String returns the string representation of the class.
func (c Class) String() string {
	switch c {
	case ClassPress:
		return "press"
	case ClassMove:
		return "move"
	case ClassRelease:
		return "release"
	case ClassClick:
		return "click"
	case ClassSwipeLeft:
		return "swipe_left"
	case ClassSwipeRight:
		return "swipe_right"
	case ClassSwipeUp:
		return "swipe_up"
	case ClassSwipeDown:
		return "swipe_down"
	default:
		return "unknown"
	}
}

// Classify returns the class of ev.
func Classify(ev input.Event) Class {
	switch ev.Kind {
	case input.PointerDown:
		return ClassPress
	case input.PointerMove:
		return ClassMove
	case input.PointerUp:
		return ClassRelease
	case input.Click:
		return ClassClick
	case input.Gesture:
		switch ev.Dir {
		case input.DirLeft:
			return ClassSwipeLeft
		case input.DirRight:
			return ClassSwipeRight
		case input.DirUp:
			return ClassSwipeUp
		case input.DirDown:
			return ClassSwipeDown
		}
	}
	return ClassUnknown
}

// Command is a navigation command derived by the router.
type Command int

const (
	CommandNone           Command = iota
	CommandShowFileManager        // Player was replaced by the file manager
)

// Decision is the outcome of routing one event.
type Decision struct {
	Event    input.Event
	Class    Class
	Accepted bool
	Code     string // Reject code when not accepted
	Command  Command
	Elapsed  int64 // Microseconds since the last transition, -1 when none
}

// Router classifies input events, runs them through the filter chain and
// switches screens for navigation gestures.
type Router struct {
	mu sync.Mutex

	guard   *Guard
	screens *screen.Context
	chain   *filter.Chain
	layout  widget.Layout

	classes    map[Class]uint64
	rejections map[string]uint64
}

// NewRouter creates a router. A nil chain admits events through the cooldown only.
func NewRouter(guard *Guard, screens *screen.Context, chain *filter.Chain, layout widget.Layout) *Router {
	if chain == nil {
		chain = filter.NewChain()
		chain.Add(filter.NewCooldownFilter(guard))
	}
	return &Router{
		guard:      guard,
		screens:    screens,
		chain:      chain,
		layout:     layout,
		classes:    make(map[Class]uint64),
		rejections: make(map[string]uint64),
	}
}

// Route routes a single event. Accepted clicks and pointer events are returned
// with CommandNone for the caller to dispatch to widgets.
func (r *Router) Route(ctx context.Context, ev input.Event) Decision {
	d := Decision{Event: ev, Class: Classify(ev)}
	// the cooldown filter admits at the same instant
	now := r.guard.Now()
	d.Elapsed, _ = r.guard.AdmitAt(now)

	zlog.Debug().Msgf("gesture: %s class=%s elapsed_us=%d", ev, d.Class, d.Elapsed)

	res := r.chain.Execute(ctx, ev, filter.Env{Active: r.screens.Active(), Layout: r.layout, Now: now})

	r.mu.Lock()
	r.classes[d.Class]++
	if !res.Accepted {
		r.rejections[res.Code]++
	}
	r.mu.Unlock()

	if !res.Accepted {
		d.Code = res.Code
		zlog.Debug().Msgf("gesture: discarded %s code=%s", d.Class, res.Code)
		return d
	}
	d.Accepted = true

	if d.Class == ClassSwipeLeft && r.screens.Is(screen.Player) {
		if r.Navigate(screen.FileManager) {
			d.Command = CommandShowFileManager
		}
	}
	return d
}

// Navigate activates s. Every actual change stamps the transition guard.
// Returns false when s was already active.
func (r *Router) Navigate(s screen.Screen) bool {
	prev, changed := r.screens.Set(s)
	if !changed {
		return false
	}
	now := r.guard.Stamp()
	zlog.Debug().Msgf("gesture: screen %s -> %s at=%d", prev, s, now)
	return true
}

// Classes returns the number of events observed per class, accepted or not.
func (r *Router) Classes() map[Class]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.classes)
}

// Rejections returns the number of discarded events per reject code.
func (r *Router) Rejections() map[string]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.rejections)
}
