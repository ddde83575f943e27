// Package gesture provides the transition cooldown and the input event router.
package gesture

import (
	"sync"
	"time"

	"github.com/osa030/touchdeck/internal/infra/clock"
)

// DefaultCooldown is the input cooldown after a screen transition.
const DefaultCooldown = 300 * time.Millisecond

// Guard holds the timestamp of the last screen transition.
// An event is admitted only when at least the cooldown has elapsed since then.
type Guard struct {
	mu       sync.Mutex
	clock    clock.Clock
	cooldown int64 // microseconds
	last     int64
	armed    bool // false until the first transition
}

// NewGuard creates a guard with no transition recorded.
func NewGuard(c clock.Clock, cooldown time.Duration) *Guard {
	if cooldown < 0 {
		cooldown = 0
	}
	return &Guard{
		clock:    c,
		cooldown: cooldown.Microseconds(),
	}
}

// Now returns the current time of the guard's clock in microseconds.
func (g *Guard) Now() int64 {
	return g.clock.NowMicros()
}

// Admit reports whether the cooldown has elapsed at the current clock time.
// elapsed is -1 while no transition has been recorded.
func (g *Guard) Admit() (elapsed int64, ok bool) {
	return g.AdmitAt(g.clock.NowMicros())
}

// AdmitAt reports whether the cooldown has elapsed at now.
func (g *Guard) AdmitAt(now int64) (elapsed int64, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.armed {
		return -1, true
	}
	elapsed = now - g.last
	return elapsed, elapsed >= g.cooldown
}

// Stamp records a transition at the current clock time and re-arms the cooldown.
func (g *Guard) Stamp() int64 {
	now := g.clock.NowMicros()
	g.StampAt(now)
	return now
}

// StampAt records a transition at now. The timestamp never moves backwards.
func (g *Guard) StampAt(now int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.armed && now < g.last {
		return
	}
	g.last = now
	g.armed = true
}

// Last returns the last transition timestamp and whether one was recorded.
func (g *Guard) Last() (int64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last, g.armed
}

// Cooldown returns the cooldown window.
func (g *Guard) Cooldown() time.Duration {
	return time.Duration(g.cooldown) * time.Microsecond
}
