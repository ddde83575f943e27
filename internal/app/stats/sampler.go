// Package stats provides the frame-rate based load sampler.
//
// The reported load is an approximation derived from the render frame rate
// against a fixed reference rate. It is not a measured CPU or scheduler statistic.
package stats

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
)

const (
	// ReferenceFPS is the frame rate reported as 100% load.
	ReferenceFPS = 60.0
	// InitialLabel is shown until the first tick has a prior timestamp.
	InitialLabel = "CPU: --"
)

// Sample is the result of one sampling tick.
type Sample struct {
	Frames        uint64
	ElapsedMicros int64
	FPS           float64
	LoadPercent   float64
}

// String returns the stats label text.
func (s Sample) String() string {
	return fmt.Sprintf("CPU: %.1f%%", s.LoadPercent)
}

// ComputeFPS returns frames per second over elapsedMicros.
// A non-positive elapsed time yields 0.
func ComputeFPS(frames uint64, elapsedMicros int64) float64 {
	if elapsedMicros <= 0 {
		return 0
	}
	return float64(frames) * 1_000_000 / float64(elapsedMicros)
}

// LoadPercent maps a frame rate onto 0..100 against ReferenceFPS.
func LoadPercent(fps float64) float64 {
	return lo.Clamp(fps/ReferenceFPS*100, 0, 100)
}

// Sampler counts completed flushes and converts them to a load reading once per tick.
type Sampler struct {
	frames atomic.Uint64

	mu      sync.Mutex
	last    int64
	hasLast bool
	latest  Sample
}

// NewSampler creates a sampler with no prior tick.
func NewSampler() *Sampler {
	return &Sampler{}
}

// FlushCompleted records one completed render flush. Safe from any goroutine.
func (s *Sampler) FlushCompleted() {
	s.frames.Add(1)
}

// Pending returns the flushes counted since the last tick.
func (s *Sampler) Pending() uint64 {
	return s.frames.Load()
}

// Sample reads and resets the frame counter at nowMicros.
// The first tick, and a tick with no time elapsed, yield a zero reading.
func (s *Sampler) Sample(nowMicros int64) Sample {
	s.mu.Lock()
	defer s.mu.Unlock()

	// read-then-reset so a flush racing the tick lands in the next sample
	frames := s.frames.Swap(0)

	var elapsed int64
	if s.hasLast {
		elapsed = nowMicros - s.last
	}
	s.last = nowMicros
	s.hasLast = true

	fps := ComputeFPS(frames, elapsed)
	s.latest = Sample{
		Frames:        frames,
		ElapsedMicros: elapsed,
		FPS:           fps,
		LoadPercent:   LoadPercent(fps),
	}
	return s.latest
}

// Latest returns the most recent sample.
func (s *Sampler) Latest() Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}
