package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/touchdeck/internal/app/transport"
	"github.com/osa030/touchdeck/internal/domain/track"
)

// writeSilence writes a mono 16-bit WAV of the given length.
func writeSilence(t *testing.T, path string, d time.Duration) {
	t.Helper()
	format := beep.Format{SampleRate: 8000, NumChannels: 1, Precision: 2}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, wav.Encode(f, beep.Silence(format.SampleRate.N(d)), format))
}

func TestFileProber_WAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Song1.wav")
	writeSilence(t, path, 3*time.Second)

	got, err := FileProber{}.Probe(path)
	require.NoError(t, err)
	assert.Equal(t, path, got.ID)
	assert.Equal(t, 3, got.DurationSeconds())
	assert.Equal(t, "Song1", got.DisplayTitle(), "untagged files fall back to the file name")
}

func TestFileProber_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := FileProber{}.Probe(filepath.Join(dir, "notes.txt"))
		assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := FileProber{}.Probe(filepath.Join(dir, "missing.mp3"))
		assert.Error(t, err)
	})

	t.Run("corrupt header", func(t *testing.T) {
		path := filepath.Join(dir, "broken.wav")
		require.NoError(t, os.WriteFile(path, []byte("definitely not RIFF"), 0o644))
		_, err := FileProber{}.Probe(path)
		assert.Error(t, err)
	})
}

func TestIsAudioFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.mp3", true},
		{"b.FLAC", true},
		{"c.wav", true},
		{"d.ogg", true},
		{"e.m4a", false},
		{"f", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAudioFile(tt.path))
		})
	}
}

type fakeProber struct {
	tracks map[string]track.Track
}

func (p fakeProber) Probe(path string) (track.Track, error) {
	t, ok := p.tracks[path]
	if !ok {
		return track.Track{ID: path}, errors.New("unreadable")
	}
	return t, nil
}

type position struct {
	generation uint64
	seconds    int
}

type chanSink struct {
	loads     chan transport.LoadResult
	positions chan position
	finished  chan uint64
}

func newChanSink() *chanSink {
	return &chanSink{
		loads:     make(chan transport.LoadResult, 8),
		positions: make(chan position, 256),
		finished:  make(chan uint64, 8),
	}
}

func (s *chanSink) LoadCompleted(r transport.LoadResult)  { s.loads <- r }
func (s *chanSink) AdjacentResolved(transport.AdjacentResult) {}
func (s *chanSink) PositionReported(gen uint64, pos int) {
	select {
	case s.positions <- position{gen, pos}:
	default:
	}
}
func (s *chanSink) TrackFinished(gen uint64) { s.finished <- gen }

func waitLoad(t *testing.T, s *chanSink) transport.LoadResult {
	t.Helper()
	select {
	case r := <-s.loads:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("load completion not delivered")
		return transport.LoadResult{}
	}
}

func TestService_LoadCompletion(t *testing.T) {
	sink := newChanSink()
	svc := NewService(fakeProber{tracks: map[string]track.Track{
		"a": {ID: "a", Duration: 90 * time.Second},
	}}, sink, 10*time.Millisecond)
	defer svc.Close()

	svc.RequestLoad(7, "a")
	r := waitLoad(t, sink)
	assert.Equal(t, uint64(7), r.Generation)
	require.NoError(t, r.Err)
	assert.Equal(t, 90, r.Track.DurationSeconds())

	svc.RequestLoad(8, "missing")
	r = waitLoad(t, sink)
	assert.Equal(t, uint64(8), r.Generation)
	assert.Error(t, r.Err)

	svc.RequestPlay()
	assert.False(t, svc.Playing(), "nothing loaded after a failed probe")
}

func TestService_PlayPauseSeekStop(t *testing.T) {
	sink := newChanSink()
	svc := NewService(fakeProber{tracks: map[string]track.Track{
		"a": {ID: "a", Duration: 225 * time.Second},
	}}, sink, 10*time.Millisecond)
	defer svc.Close()

	svc.RequestLoad(1, "a")
	waitLoad(t, sink)

	svc.RequestSeek(78)
	assert.Equal(t, 78*time.Second, svc.Position())

	svc.RequestPlay()
	assert.True(t, svc.Playing())
	select {
	case p := <-sink.positions:
		assert.Equal(t, uint64(1), p.generation)
		assert.Equal(t, 78, p.seconds)
	case <-time.After(time.Second):
		t.Fatal("no position report")
	}

	svc.RequestPause()
	paused := svc.Position()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, paused, svc.Position())

	svc.RequestSeek(1000)
	assert.Equal(t, 225*time.Second, svc.Position(), "seek clamps to the duration")

	svc.RequestStop()
	assert.False(t, svc.Playing())
	assert.Equal(t, time.Duration(0), svc.Position())
}

func TestService_TrackFinished(t *testing.T) {
	sink := newChanSink()
	svc := NewService(fakeProber{tracks: map[string]track.Track{
		"short": {ID: "short", Duration: 50 * time.Millisecond},
	}}, sink, 5*time.Millisecond)
	defer svc.Close()

	svc.RequestLoad(3, "short")
	waitLoad(t, sink)
	svc.RequestPlay()

	select {
	case gen := <-sink.finished:
		assert.Equal(t, uint64(3), gen)
	case <-time.After(2 * time.Second):
		t.Fatal("track end not reported")
	}
	assert.False(t, svc.Playing())
}

func TestService_NewLoadStopsPlayhead(t *testing.T) {
	sink := newChanSink()
	svc := NewService(fakeProber{tracks: map[string]track.Track{
		"a": {ID: "a", Duration: time.Minute},
		"b": {ID: "b", Duration: time.Minute},
	}}, sink, 5*time.Millisecond)
	defer svc.Close()

	svc.RequestLoad(1, "a")
	waitLoad(t, sink)
	svc.RequestPlay()

	svc.RequestLoad(2, "b")
	assert.False(t, svc.Playing())
	waitLoad(t, sink)

	// drain reports from the first generation, then expect none for it
	time.Sleep(20 * time.Millisecond)
	for len(sink.positions) > 0 {
		<-sink.positions
	}
	time.Sleep(20 * time.Millisecond)
	for len(sink.positions) > 0 {
		p := <-sink.positions
		assert.NotEqual(t, uint64(1), p.generation)
	}
}
