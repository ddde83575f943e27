// Package catalog provides the ordered track list and adjacent-track lookups.
package catalog

import (
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/osa030/touchdeck/internal/app/transport"
)

// Errors
var (
	ErrEmpty      = errors.New("catalog is empty")
	ErrNoAdjacent = errors.New("no adjacent track")
)

// Catalog is an ordered list of track ids. It implements transport.Catalog.
type Catalog struct {
	mu     sync.RWMutex
	tracks []string
	wrap   bool

	sink transport.Completions
	wg   sync.WaitGroup
}

// New creates a catalog over tracks. Duplicate ids are dropped.
func New(tracks []string, wrap bool, sink transport.Completions) *Catalog {
	return &Catalog{
		tracks: lo.Uniq(lo.Compact(tracks)),
		wrap:   wrap,
		sink:   sink,
	}
}

// Tracks returns a copy of the track list.
func (c *Catalog) Tracks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.tracks...)
}

// Len returns the number of tracks.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tracks)
}

// Adjacent returns the track next to current in dir. An unknown current track
// resolves to the first track going forward and the last going backward.
func (c *Catalog) Adjacent(current string, dir transport.Direction) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := len(c.tracks)
	if n == 0 {
		return "", ErrEmpty
	}

	idx := lo.IndexOf(c.tracks, current)
	if idx < 0 {
		if dir == transport.Previous {
			return c.tracks[n-1], nil
		}
		return c.tracks[0], nil
	}

	step := 1
	if dir == transport.Previous {
		step = -1
	}
	next := idx + step
	if next < 0 || next >= n {
		if !c.wrap {
			return "", errors.Wrapf(ErrNoAdjacent, "%s of %s", dir, current)
		}
		next = (next + n) % n
	}
	return c.tracks[next], nil
}

// RequestAdjacent resolves the adjacent track off the caller's goroutine and
// reports it with generation.
func (c *Catalog) RequestAdjacent(generation uint64, current string, dir transport.Direction) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		id, err := c.Adjacent(current, dir)
		if err != nil {
			zlog.Debug().Msgf("catalog: %v", err)
		}
		c.sink.AdjacentResolved(transport.AdjacentResult{Generation: generation, TrackID: id, Err: err})
	}()
}

// Wait blocks until pending lookups have been delivered.
func (c *Catalog) Wait() {
	c.wg.Wait()
}
