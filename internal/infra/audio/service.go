package audio

import (
	"context"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/touchdeck/internal/app/transport"
)

// DefaultProgressInterval is the position report interval.
const DefaultProgressInterval = time.Second

// Service implements transport.Audio. Loads are probed on a background
// goroutine; playback is a wall-clock playhead that reports position once per
// interval and the end of the track. Every result carries the load generation.
type Service struct {
	mu sync.Mutex

	prober   Prober
	sink     transport.Completions
	interval time.Duration

	generation uint64
	loaded     bool
	duration   time.Duration
	offset     time.Duration // position when the playhead last started, paused or seeked
	startTime  time.Time
	playing    bool

	tickCancel func()
	wg         sync.WaitGroup
}

// NewService creates an audio service delivering completions to sink.
func NewService(prober Prober, sink transport.Completions, interval time.Duration) *Service {
	if prober == nil {
		prober = FileProber{}
	}
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	return &Service{
		prober:   prober,
		sink:     sink,
		interval: interval,
	}
}

// RequestLoad probes trackID and reports the result. Playback of the previous
// track stops immediately.
func (s *Service) RequestLoad(generation uint64, trackID string) {
	s.mu.Lock()
	s.stopTickerLocked()
	s.generation = generation
	s.loaded = false
	s.duration = 0
	s.offset = 0
	s.playing = false
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		t, err := s.prober.Probe(trackID)
		if err != nil {
			zlog.Warn().Msgf("audio: load failed: track=%s generation=%d: %v", trackID, generation, err)
		} else {
			s.mu.Lock()
			if s.generation == generation {
				s.loaded = true
				s.duration = t.Duration
			}
			s.mu.Unlock()
			zlog.Debug().Msgf("audio: loaded track=%s generation=%d duration=%v", trackID, generation, t.Duration)
		}
		s.sink.LoadCompleted(transport.LoadResult{Generation: generation, Track: t, Err: err})
	}()
}

// RequestPlay starts or resumes the playhead.
func (s *Service) RequestPlay() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded || s.playing {
		return
	}
	if s.offset >= s.duration {
		s.offset = 0
	}
	s.playing = true
	s.startTime = time.Now()
	s.startTickerLocked()
}

// RequestPause freezes the playhead.
func (s *Service) RequestPause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing {
		return
	}
	s.offset = s.positionLocked()
	s.playing = false
	s.stopTickerLocked()
}

// RequestStop stops the playhead and rewinds.
func (s *Service) RequestStop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTickerLocked()
	s.playing = false
	s.offset = 0
}

// RequestSeek moves the playhead.
func (s *Service) RequestSeek(positionSeconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := time.Duration(positionSeconds) * time.Second
	s.offset = min(max(pos, 0), s.duration)
	if s.playing {
		s.startTime = time.Now()
	}
}

// Position returns the playhead position.
func (s *Service) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positionLocked()
}

// Playing reports whether the playhead is running.
func (s *Service) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Close stops the playhead and waits for pending probes.
func (s *Service) Close() {
	s.mu.Lock()
	s.stopTickerLocked()
	s.playing = false
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Service) positionLocked() time.Duration {
	pos := s.offset
	if s.playing {
		pos += time.Since(s.startTime)
	}
	return min(pos, s.duration)
}

// startTickerLocked starts the progress ticker for the current generation.
// Must be called with lock held.
func (s *Service) startTickerLocked() {
	s.stopTickerLocked()

	ctx, cancel := context.WithCancel(context.Background())
	s.tickCancel = cancel
	generation := s.generation

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			s.mu.Lock()
			if s.generation != generation || !s.playing {
				s.mu.Unlock()
				return
			}
			pos := s.positionLocked()
			if pos >= s.duration {
				s.playing = false
				s.offset = 0
				s.tickCancel = nil
				s.mu.Unlock()
				cancel()
				zlog.Debug().Msgf("audio: track finished generation=%d", generation)
				s.sink.TrackFinished(generation)
				return
			}
			s.mu.Unlock()
			s.sink.PositionReported(generation, int(pos/time.Second))
		}
	}()
}

// stopTickerLocked cancels the progress ticker.
// Must be called with lock held.
func (s *Service) stopTickerLocked() {
	if s.tickCancel != nil {
		s.tickCancel()
		s.tickCancel = nil
	}
}
