// Package transport provides the playback state machine of the media console.
package transport

// State represents the playback state.
type State int

const (
	StateStopped State = iota // No playback; position is 0
	StateLoading              // A track is being prepared by the audio service
	StatePlaying              // Track is playing
	StatePaused               // Track is loaded and paused
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// IsActive returns true if a loaded track is playing or paused.
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// Direction selects the adjacent track.
type Direction int

const (
	Next Direction = iota
	Previous
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	if d == Previous {
		return "previous"
	}
	return "next"
}
