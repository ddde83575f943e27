// Package audio provides the local-file audio service: stream probing and a
// simulated playhead that reports position and end of track.
package audio

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/osa030/touchdeck/internal/domain/track"
)

// ErrUnsupportedFormat is returned for files without a known audio extension.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

const (
	extMP3  = ".mp3"
	extWAV  = ".wav"
	extFLAC = ".flac"
	extOGG  = ".ogg"
)

// IsAudioFile reports whether path has a supported extension.
func IsAudioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case extMP3, extWAV, extFLAC, extOGG:
		return true
	}
	return false
}

// Prober reads track metadata and duration.
type Prober interface {
	Probe(path string) (track.Track, error)
}

// FileProber decodes the stream header of a local file.
type FileProber struct{}

// Probe returns the track at path with its duration and, when tagged, title and artist.
func (FileProber) Probe(path string) (track.Track, error) {
	t := track.Track{ID: path}

	d, err := duration(path)
	if err != nil {
		return t, err
	}
	t.Duration = d

	title, artist := readTags(path)
	t.Title = title
	t.Artist = artist
	return t, nil
}

func duration(path string) (time.Duration, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsAudioFile(path) {
		return 0, errors.Wrapf(ErrUnsupportedFormat, "%s", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "failed to open track")
	}
	defer f.Close()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext {
	case extMP3:
		streamer, format, err = mp3.Decode(f)
	case extWAV:
		streamer, format, err = wav.Decode(f)
	case extFLAC:
		streamer, format, err = flac.Decode(f)
	case extOGG:
		streamer, format, err = vorbis.Decode(f)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "failed to decode %s", filepath.Base(path))
	}
	defer streamer.Close()

	if format.SampleRate <= 0 {
		return 0, errors.Newf("invalid sample rate in %s", filepath.Base(path))
	}
	return format.SampleRate.D(streamer.Len()), nil
}

// readTags returns the tagged title and artist. Untagged files yield empty strings.
func readTags(path string) (title, artist string) {
	f, err := os.Open(path)
	if err != nil {
		return "", ""
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(m.Title()), strings.TrimSpace(m.Artist())
}
