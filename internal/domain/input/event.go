// Package input provides the raw input event model delivered by the touch controller.
package input

import (
	"fmt"

	"github.com/osa030/touchdeck/internal/domain/widget"
)

// Kind is the raw input event kind.
type Kind int

const (
	PointerDown Kind = iota // Finger touched the panel
	PointerMove             // Finger moved while pressed
	PointerUp               // Finger released
	Click                   // Press and release on the same widget
	Gesture                 // Swipe recognized by the input driver
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case PointerDown:
		return "pointer_down"
	case PointerMove:
		return "pointer_move"
	case PointerUp:
		return "pointer_up"
	case Click:
		return "click"
	case Gesture:
		return "gesture"
	default:
		return "unknown"
	}
}

// ParseKind parses a kind name as produced by String.
func ParseKind(name string) (Kind, bool) {
	for _, k := range []Kind{PointerDown, PointerMove, PointerUp, Click, Gesture} {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// Direction is the direction of a swipe gesture.
type Direction int

const (
	DirNone Direction = iota
	DirLeft
	DirRight
	DirUp
	DirDown
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	default:
		return "none"
	}
}

// ParseDirection parses a direction name as produced by String.
func ParseDirection(name string) (Direction, bool) {
	for _, d := range []Direction{DirLeft, DirRight, DirUp, DirDown} {
		if d.String() == name {
			return d, true
		}
	}
	return DirNone, false
}

// Point is a panel coordinate in pixels.
type Point struct {
	X, Y int
}

// Event is a single input event.
type Event struct {
	Kind      Kind
	Timestamp int64     // Monotonic microseconds from the input driver
	Target    widget.ID // Widget under the pointer, None for screen-level gestures
	Point     Point
	Dir       Direction // Only set for Gesture
}

// String returns a compact description for logging.
func (e Event) String() string {
	if e.Kind == Gesture {
		return fmt.Sprintf("%s(%s)", e.Kind, e.Dir)
	}
	return fmt.Sprintf("%s target=%s x=%d y=%d", e.Kind, e.Target, e.Point.X, e.Point.Y)
}
