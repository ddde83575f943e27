// Package prefs provides the YAML preference store.
package prefs

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Preferences are the user toggles persisted across restarts.
type Preferences struct {
	AutoPlay         bool `yaml:"auto_play"`
	ContinuePlayback bool `yaml:"continue_playback"`
}

// Store persists preferences to a YAML file. Save never blocks the caller;
// writes happen on a background goroutine and bursts are coalesced to the last value.
// An empty path keeps preferences in memory only.
type Store struct {
	path string

	mu      sync.Mutex
	pending *Preferences

	kick   chan struct{}
	stop   chan struct{}
	done   chan struct{}
	writes atomic.Uint64
	once   sync.Once
}

// NewStore creates a store and starts its writer.
func NewStore(path string) *Store {
	s := &Store{
		path: path,
		kick: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.run()
	return s
}

// Path returns the file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads preferences. ok is false when no file exists yet.
func (s *Store) Load() (p Preferences, ok bool, err error) {
	if s.path == "" {
		return p, false, nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return p, false, nil
	}
	if err != nil {
		return p, false, errors.Wrap(err, "failed to read preferences")
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preferences{}, false, errors.Wrap(err, "failed to parse preferences")
	}
	return p, true, nil
}

// Save queues p for writing.
func (s *Store) Save(p Preferences) {
	s.mu.Lock()
	s.pending = &p
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
		// writer already signalled; it will pick up the latest value
	}
}

// Writes returns the number of completed file writes.
func (s *Store) Writes() uint64 {
	return s.writes.Load()
}

// Close flushes any pending value and stops the writer.
func (s *Store) Close() error {
	s.once.Do(func() { close(s.stop) })
	<-s.done
	return s.flush()
}

func (s *Store) run() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case <-s.kick:
			if err := s.flush(); err != nil {
				zlog.Warn().Msgf("prefs: %v", err)
			}
		}
	}
}

func (s *Store) flush() error {
	s.mu.Lock()
	p := s.pending
	s.pending = nil
	s.mu.Unlock()

	if p == nil || s.path == "" {
		return nil
	}
	if err := s.write(*p); err != nil {
		return err
	}
	s.writes.Add(1)
	zlog.Debug().Msgf("prefs: saved %s auto_play=%v continue_playback=%v", s.path, p.AutoPlay, p.ContinuePlayback)
	return nil
}

// write replaces the file atomically.
func (s *Store) write(p Preferences) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "failed to encode preferences")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create preferences directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".prefs-*.yaml")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write preferences")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close preferences")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "failed to replace preferences")
}
