// Package track provides the Track domain entity.
package track

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Track represents a playable local audio file.
type Track struct {
	ID       string        // Track identifier (file path)
	Title    string        // Display title (tag title or file name)
	Artist   string        // Artist name, empty when untagged
	Duration time.Duration // Track duration
}

// DisplayTitle returns the title shown on the player screen.
// Falls back to the file name without extension when no title is known.
func (t *Track) DisplayTitle() string {
	if t.Title != "" {
		if t.Artist != "" {
			return t.Artist + " - " + t.Title
		}
		return t.Title
	}
	return NameFromID(t.ID)
}

// DurationSeconds returns the duration truncated to whole seconds.
func (t *Track) DurationSeconds() int {
	return int(t.Duration / time.Second)
}

// NameFromID derives a display name from a track identifier.
func NameFromID(id string) string {
	base := filepath.Base(id)
	if base == "." || base == string(filepath.Separator) {
		return id
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FormatClock formats whole seconds as MM:SS.
// Minutes are not wrapped into hours; 3725 seconds renders as 62:05.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// UnknownClock is displayed when a duration is not known yet.
const UnknownClock = "--:--"
