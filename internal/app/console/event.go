// Package console provides the single-threaded owner of the player state and
// the event queue through which every producer reaches it.
package console

import (
	"fmt"

	"github.com/osa030/touchdeck/internal/app/transport"
	"github.com/osa030/touchdeck/internal/domain/input"
	"github.com/osa030/touchdeck/internal/domain/screen"
)

// Event is a console event. Handle is the only entry point that applies events.
type Event interface {
	eventName() string
}

// InputEvent carries a raw input event from the touch controller.
type InputEvent struct {
	Input input.Event
}

// TickEvent triggers a stats sample.
type TickEvent struct {
	NowMicros int64
}

// LoadCompletedEvent carries an audio load completion.
type LoadCompletedEvent struct {
	Result transport.LoadResult
}

// AdjacentResolvedEvent carries a catalog answer.
type AdjacentResolvedEvent struct {
	Result transport.AdjacentResult
}

// ProgressEvent carries a position report.
type ProgressEvent struct {
	Generation uint64
	Seconds    int
}

// TrackFinishedEvent reports the end of the current track.
type TrackFinishedEvent struct {
	Generation uint64
}

// TrackSelectedEvent is posted by the file manager when a track is picked.
type TrackSelectedEvent struct {
	TrackID string
}

// NavigateEvent is posted by collaborator screens when they show or hide themselves.
type NavigateEvent struct {
	Screen screen.Screen
}

// Command is a transport command injected without going through touch input.
type Command string

const (
	CommandPlay     Command = "play"
	CommandPause    Command = "pause"
	CommandResume   Command = "resume"
	CommandStop     Command = "stop"
	CommandNext     Command = "next"
	CommandPrevious Command = "prev"
	CommandSeek     Command = "seek"     // Arg is the percent
	CommandAutoPlay Command = "autoplay" // Arg 1 enables, 0 disables
	CommandContinue Command = "continue" // Arg 1 enables, 0 disables
)

// CommandEvent carries a transport command.
type CommandEvent struct {
	Command Command
	Arg     int
}

func (InputEvent) eventName() string            { return "input" }
func (TickEvent) eventName() string             { return "tick" }
func (LoadCompletedEvent) eventName() string    { return "load_completed" }
func (AdjacentResolvedEvent) eventName() string { return "adjacent_resolved" }
func (ProgressEvent) eventName() string         { return "progress" }
func (TrackFinishedEvent) eventName() string    { return "track_finished" }
func (TrackSelectedEvent) eventName() string    { return "track_selected" }
func (NavigateEvent) eventName() string         { return "navigate" }
func (CommandEvent) eventName() string          { return "command" }

// Describe returns a compact description of ev for logging.
func Describe(ev Event) string {
	switch e := ev.(type) {
	case InputEvent:
		return "input " + e.Input.String()
	case TrackSelectedEvent:
		return "track_selected " + e.TrackID
	case NavigateEvent:
		return "navigate " + e.Screen.String()
	case CommandEvent:
		return fmt.Sprintf("command %s %d", e.Command, e.Arg)
	default:
		return ev.eventName()
	}
}
