package transport

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/osa030/touchdeck/internal/domain/track"
)

// Errors
var (
	ErrNoTrack          = errors.New("no track loaded")
	ErrNotPlaying       = errors.New("not playing")
	ErrNotPaused        = errors.New("not paused")
	ErrNotSeekable      = errors.New("not seekable in current state")
	ErrNoCatalog        = errors.New("no catalog configured")
	ErrTrackUnreadable  = errors.New("track unreadable")
	ErrStaleCompletion  = errors.New("stale completion")
	ErrAdjacentNotFound = errors.New("no adjacent track")
)

// Audio is the external audio service. Every call must return without blocking;
// load completion is delivered later through Completions.
type Audio interface {
	RequestLoad(generation uint64, trackID string)
	RequestPlay()
	RequestPause()
	RequestStop()
	RequestSeek(positionSeconds int)
}

// Catalog resolves adjacent tracks. The call must return without blocking;
// the answer is delivered later through Completions.
type Catalog interface {
	RequestAdjacent(generation uint64, currentTrackID string, dir Direction)
}

// Completions receives asynchronous results from the audio and catalog services.
// Implementations marshal them into the UI task.
type Completions interface {
	LoadCompleted(LoadResult)
	AdjacentResolved(AdjacentResult)
	PositionReported(generation uint64, positionSeconds int)
	TrackFinished(generation uint64)
}

// LoadResult is the completion of RequestLoad.
type LoadResult struct {
	Generation uint64
	Track      track.Track
	Err        error
}

// AdjacentResult is the completion of RequestAdjacent.
type AdjacentResult struct {
	Generation uint64
	TrackID    string
	Err        error
}

// Config holds machine configuration.
type Config struct {
	AutoPlay         bool // Start playback as soon as an explicit load completes
	ContinuePlayback bool // Keep playing across next/previous and track end
}

// Machine owns playback state, track identity and position.
// All operations are expected to run on the UI task; the mutex only protects
// snapshot readers on other goroutines.
type Machine struct {
	mu sync.RWMutex

	audio   Audio
	catalog Catalog

	state         State
	trackID       string
	title         string
	position      int
	duration      int
	durationKnown bool
	unreadable    bool
	failedTrackID string

	// Load generation; a completion is applied only if it carries the current value.
	generation    uint64
	playAfterLoad bool

	// Adjacent lookup generation; superseded by any newer load or lookup.
	navGeneration   uint64
	playAfterLookup bool

	autoPlay         bool
	continuePlayback bool

	eventCh chan Event

	ctx    context.Context
	cancel context.CancelFunc
}

// NewMachine creates a stopped machine. catalog may be nil.
func NewMachine(cfg Config, audio Audio, catalog Catalog) *Machine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Machine{
		audio:            audio,
		catalog:          catalog,
		state:            StateStopped,
		autoPlay:         cfg.AutoPlay,
		continuePlayback: cfg.ContinuePlayback,
		eventCh:          make(chan Event, 32),
		ctx:              ctx,
		cancel:           cancel,
	}
}

// Events returns the event channel.
func (m *Machine) Events() <-chan Event {
	return m.eventCh
}

// Load starts preparing trackID without playing it. Playback starts on
// completion only when Auto-Play is enabled.
func (m *Machine) Load(trackID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if trackID == "" {
		return ErrNoTrack
	}
	// An explicit load supersedes any pending adjacent lookup.
	m.navGeneration++
	m.playAfterLookup = false
	m.loadLocked(trackID, m.autoPlay)
	return nil
}

// loadLocked issues a load request.
// Must be called with lock held.
func (m *Machine) loadLocked(trackID string, playAfter bool) {
	prevTrack := m.trackID

	m.generation++
	m.state = StateLoading
	m.trackID = trackID
	m.title = track.NameFromID(trackID)
	m.position = 0
	m.duration = 0
	m.durationKnown = false
	m.unreadable = false
	m.failedTrackID = ""
	m.playAfterLoad = playAfter

	zlog.Debug().Msgf("transport: load requested: track=%s generation=%d play_after=%v", trackID, m.generation, playAfter)

	m.audio.RequestLoad(m.generation, trackID)

	if prevTrack != trackID {
		m.sendEventLocked(EventTrackChanged)
	}
	m.sendEventLocked(EventStateChanged)
}

// CompleteLoad applies a load completion from the audio service.
// Returns ErrStaleCompletion for superseded requests and ErrTrackUnreadable when
// the service could not read the track; both are already handled when returned.
func (m *Machine) CompleteLoad(res LoadResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if res.Generation != m.generation || m.state != StateLoading {
		return errors.Wrapf(ErrStaleCompletion, "load generation=%d current=%d", res.Generation, m.generation)
	}

	if res.Err != nil {
		failed := m.trackID
		m.state = StateStopped
		m.trackID = ""
		m.title = ""
		m.position = 0
		m.duration = 0
		m.durationKnown = false
		m.unreadable = true
		m.failedTrackID = failed
		m.playAfterLoad = false
		m.sendEventLocked(EventLoadFailed)
		m.sendEventLocked(EventStateChanged)
		return errors.Mark(errors.Wrapf(res.Err, "track %s", failed), ErrTrackUnreadable)
	}

	m.duration = max(res.Track.DurationSeconds(), 0)
	m.durationKnown = true
	m.position = 0
	if title := res.Track.DisplayTitle(); title != "" {
		m.title = title
	}
	m.state = StatePaused
	m.sendEventLocked(EventTrackChanged)

	if m.playAfterLoad {
		m.playAfterLoad = false
		m.state = StatePlaying
		m.audio.RequestPlay()
	}
	m.sendEventLocked(EventStateChanged)
	return nil
}

// Play starts playback from Paused or from Stopped with a loaded track.
// Playing is a no-op. During Loading the request is remembered until the load completes.
func (m *Machine) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playLocked()
}

func (m *Machine) playLocked() error {
	switch m.state {
	case StatePlaying:
		return nil
	case StateLoading:
		m.playAfterLoad = true
		return nil
	case StatePaused:
		// resume below
	case StateStopped:
		if m.trackID == "" || !m.durationKnown {
			return ErrNoTrack
		}
	}

	m.state = StatePlaying
	m.audio.RequestPlay()
	m.sendEventLocked(EventStateChanged)
	return nil
}

// Pause pauses playback. Only valid while Playing; otherwise the state is unchanged.
func (m *Machine) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StatePlaying {
		return ErrNotPlaying
	}

	m.state = StatePaused
	// a pending next/previous loads without playing
	m.playAfterLookup = false
	m.audio.RequestPause()
	m.sendEventLocked(EventStateChanged)
	return nil
}

// Resume resumes paused playback.
func (m *Machine) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StatePaused {
		return ErrNotPaused
	}
	return m.playLocked()
}

// Stop stops playback and rewinds to 0. A pending load or adjacent lookup is abandoned.
func (m *Machine) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	return nil
}

func (m *Machine) stopLocked() {
	// the lookup issued by FinishTrack is pending while already Stopped
	m.navGeneration++
	m.playAfterLookup = false

	if m.state == StateStopped {
		return
	}

	if m.state == StateLoading {
		// invalidate the in-flight completion; nothing was loaded
		m.generation++
		m.trackID = ""
		m.title = ""
		m.durationKnown = false
		m.duration = 0
	}

	m.state = StateStopped
	m.position = 0
	m.playAfterLoad = false
	m.audio.RequestStop()
	m.sendEventLocked(EventStateChanged)
}

// Next requests the following track from the catalog and loads it.
func (m *Machine) Next() error {
	return m.step(Next)
}

// Previous requests the preceding track from the catalog and loads it.
func (m *Machine) Previous() error {
	return m.step(Previous)
}

func (m *Machine) step(dir Direction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.catalog == nil {
		return ErrNoCatalog
	}

	m.navGeneration++
	m.playAfterLookup = m.continuePlayback &&
		(m.state == StatePlaying || (m.state == StateLoading && m.playAfterLoad))

	zlog.Debug().Msgf("transport: adjacent requested: dir=%s current=%s generation=%d", dir, m.trackID, m.navGeneration)

	m.catalog.RequestAdjacent(m.navGeneration, m.trackID, dir)
	return nil
}

// ResolveAdjacent applies a catalog answer by loading the resolved track.
func (m *Machine) ResolveAdjacent(res AdjacentResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if res.Generation != m.navGeneration {
		return errors.Wrapf(ErrStaleCompletion, "adjacent generation=%d current=%d", res.Generation, m.navGeneration)
	}
	// consume the lookup so a duplicate answer is stale
	m.navGeneration++

	if res.Err != nil {
		m.playAfterLookup = false
		return errors.Mark(res.Err, ErrAdjacentNotFound)
	}
	if res.TrackID == "" {
		m.playAfterLookup = false
		return ErrAdjacentNotFound
	}

	playAfter := m.playAfterLookup
	m.playAfterLookup = false
	m.loadLocked(res.TrackID, playAfter)
	return nil
}

// SeekTo moves the position to percent of the duration. Only valid while Playing or Paused.
// The state is unchanged.
func (m *Machine) SeekTo(percent int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.IsActive() || !m.durationKnown {
		return ErrNotSeekable
	}

	percent = lo.Clamp(percent, 0, 100)
	pos := lo.Clamp(percent*m.duration/100, 0, m.duration)

	m.position = pos
	m.audio.RequestSeek(pos)
	m.sendEventLocked(EventPositionChanged)
	return nil
}

// ReportPosition applies a position report from the audio service.
func (m *Machine) ReportPosition(generation uint64, positionSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if generation != m.generation || !m.state.IsActive() {
		return errors.Wrapf(ErrStaleCompletion, "position generation=%d current=%d", generation, m.generation)
	}

	pos := lo.Clamp(positionSeconds, 0, m.duration)
	if pos == m.position {
		return nil
	}
	m.position = pos
	m.sendEventLocked(EventPositionChanged)
	return nil
}

// FinishTrack handles the end of the current track reported by the audio service.
// With Continue Playback the next track is requested and played after load.
func (m *Machine) FinishTrack(generation uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if generation != m.generation || !m.state.IsActive() {
		return errors.Wrapf(ErrStaleCompletion, "finish generation=%d current=%d", generation, m.generation)
	}

	m.state = StateStopped
	m.position = 0
	m.sendEventLocked(EventStateChanged)

	if m.continuePlayback && m.catalog != nil {
		m.navGeneration++
		m.playAfterLookup = true
		m.catalog.RequestAdjacent(m.navGeneration, m.trackID, Next)
	}
	return nil
}

// SetAutoPlay sets the Auto-Play preference.
func (m *Machine) SetAutoPlay(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.autoPlay != enabled {
		m.autoPlay = enabled
		m.sendEventLocked(EventPreferencesChanged)
	}
}

// SetContinuePlayback sets the Continue Playback preference.
func (m *Machine) SetContinuePlayback(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.continuePlayback != enabled {
		m.continuePlayback = enabled
		m.sendEventLocked(EventPreferencesChanged)
	}
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	return Snapshot{
		State:            m.state,
		TrackID:          m.trackID,
		Title:            m.title,
		PositionSeconds:  m.position,
		DurationSeconds:  m.duration,
		DurationKnown:    m.durationKnown,
		Unreadable:       m.unreadable,
		FailedTrackID:    m.failedTrackID,
		AutoPlay:         m.autoPlay,
		ContinuePlayback: m.continuePlayback,
		Generation:       m.generation,
	}
}

// GetState returns the current playback state.
func (m *Machine) GetState() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Close stops event delivery.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancel()
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (m *Machine) sendEventLocked(t EventType) {
	select {
	case m.eventCh <- Event{Type: t, Snapshot: m.snapshotLocked()}:
	case <-m.ctx.Done():
	default:
		// Channel full, drop event; consumers re-read Snapshot
	}
}
