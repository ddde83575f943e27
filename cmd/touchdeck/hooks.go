package main

import (
	"os"
	"os/exec"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/touchdeck/internal/app/notification"
)

// Environment passed to track hooks.
const (
	envHookTrack = "TOUCHDECK_TRACK"
	envHookTitle = "TOUCHDECK_TITLE"
	envHookState = "TOUCHDECK_STATE"
)

// trackHooks runs the on_track_changed commands once per loaded track.
// It is a notification stream, so commands run on the subscriber goroutine.
type trackHooks struct {
	commands []string
	last     string
}

// Send implements notification.Stream.
func (h *trackHooks) Send(n notification.Notification) error {
	s := n.Transport
	// the title is final once the load completed
	if n.Kind != notification.KindTrackChanged || !s.DurationKnown || s.TrackID == h.last {
		return nil
	}
	h.last = s.TrackID

	executeHooks(h.commands, "on_track_changed",
		envHookTrack+"="+s.TrackID,
		envHookTitle+"="+s.Title,
		envHookState+"="+s.State.String(),
	)
	return nil
}

// executeHooks runs a list of shell commands with env appended to the process environment.
func executeHooks(hooks []string, stage string, env ...string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Debug().Msgf("Executing hook: %s", hook)
		cmd := exec.Command("sh", "-c", hook)
		cmd.Env = append(os.Environ(), env...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}

// logNotification is the stream that mirrors notifications into the log.
func logNotification(n notification.Notification) error {
	s := n.Transport
	zlog.Debug().Msgf("notification: #%d %s screen=%s state=%s track=%s position=%d/%d",
		n.SequenceNo, n.Kind, n.Screen, s.State, s.TrackID, s.PositionSeconds, s.DurationSeconds)
	return nil
}
