// Package clock provides monotonic microsecond time sources.
package clock

import (
	"sync"
	"time"
)

// Clock is a monotonic microsecond timestamp source.
type Clock interface {
	NowMicros() int64
}

// Monotonic reads the process monotonic clock.
type Monotonic struct {
	start time.Time
}

// NewMonotonic creates a clock whose zero is the moment of creation.
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

// NowMicros returns microseconds elapsed since the clock was created.
func (m *Monotonic) NowMicros() int64 {
	return time.Since(m.start).Microseconds()
}

// Manual is a clock that only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now int64
}

// NewManual creates a manual clock at the given microsecond timestamp.
func NewManual(startMicros int64) *Manual {
	return &Manual{now: startMicros}
}

// NowMicros returns the current manual timestamp.
func (m *Manual) NowMicros() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to micros. Moving backwards is ignored.
func (m *Manual) Set(micros int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if micros > m.now {
		m.now = micros
	}
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.now += d.Microseconds()
	}
}
