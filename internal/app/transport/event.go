package transport

import "github.com/osa030/touchdeck/internal/domain/track"

// EventType represents a transport event type.
type EventType int

const (
	EventStateChanged       EventType = iota // Playback state changed
	EventTrackChanged                        // A different track was loaded or the title became known
	EventPositionChanged                     // Position changed by seek or progress report
	EventLoadFailed                          // The audio service could not read the track
	EventPreferencesChanged                  // Auto-Play or Continue Playback toggled
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventStateChanged:
		return "state_changed"
	case EventTrackChanged:
		return "track_changed"
	case EventPositionChanged:
		return "position_changed"
	case EventLoadFailed:
		return "load_failed"
	case EventPreferencesChanged:
		return "preferences_changed"
	default:
		return "unknown"
	}
}

// Event represents a transport event.
type Event struct {
	Type     EventType
	Snapshot Snapshot
}

// Snapshot is a read-only copy of the transport state.
type Snapshot struct {
	State            State
	TrackID          string // Empty when no track is loaded
	Title            string
	PositionSeconds  int
	DurationSeconds  int
	DurationKnown    bool
	Unreadable       bool   // Last load failed; display a neutral indicator
	FailedTrackID    string // Track that could not be read
	AutoPlay         bool
	ContinuePlayback bool
	Generation       uint64
}

// HasTrack reports whether a track identity is held.
func (s Snapshot) HasTrack() bool {
	return s.TrackID != ""
}

// ProgressPercent returns the position as a percentage of the duration.
// Zero-length and unknown durations report 0.
func (s Snapshot) ProgressPercent() int {
	if !s.DurationKnown || s.DurationSeconds <= 0 {
		return 0
	}
	return s.PositionSeconds * 100 / s.DurationSeconds
}

// ElapsedText returns the elapsed time label text.
func (s Snapshot) ElapsedText() string {
	if s.Unreadable || !s.HasTrack() {
		return track.UnknownClock
	}
	return track.FormatClock(s.PositionSeconds)
}

// TotalText returns the total time label text.
func (s Snapshot) TotalText() string {
	if s.Unreadable || !s.DurationKnown {
		return track.UnknownClock
	}
	return track.FormatClock(s.DurationSeconds)
}
