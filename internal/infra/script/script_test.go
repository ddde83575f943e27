package script

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/touchdeck/internal/app/console"
	"github.com/osa030/touchdeck/internal/domain/input"
	"github.com/osa030/touchdeck/internal/domain/screen"
	"github.com/osa030/touchdeck/internal/domain/widget"
	"github.com/osa030/touchdeck/internal/infra/clock"
)

func newTestParser() *Parser {
	return NewParser(widget.DefaultLayout(800, 480), clock.NewManual(42))
}

func TestParser_Commands(t *testing.T) {
	tests := []struct {
		name string
		line string
		want console.Event
	}{
		{name: "play", line: "play", want: console.CommandEvent{Command: console.CommandPlay}},
		{name: "previous", line: "prev", want: console.CommandEvent{Command: console.CommandPrevious}},
		{name: "case insensitive", line: "  STOP ", want: console.CommandEvent{Command: console.CommandStop}},
		{name: "seek", line: "seek 35", want: console.CommandEvent{Command: console.CommandSeek, Arg: 35}},
		{name: "seek with percent sign", line: "seek 100%", want: console.CommandEvent{Command: console.CommandSeek, Arg: 100}},
		{name: "autoplay on", line: "autoplay on", want: console.CommandEvent{Command: console.CommandAutoPlay, Arg: 1}},
		{name: "continue off", line: "continue off", want: console.CommandEvent{Command: console.CommandContinue, Arg: 0}},
		{name: "load with spaces", line: "load /music/My Song.mp3", want: console.TrackSelectedEvent{TrackID: "/music/My Song.mp3"}},
		{name: "nav", line: "nav files", want: console.NavigateEvent{Screen: screen.FileManager}},
		{
			name: "swipe",
			line: "swipe left",
			want: console.InputEvent{Input: input.Event{Kind: input.Gesture, Dir: input.DirLeft, Timestamp: 42}},
		},
		{
			name: "click short name at center",
			line: "click play",
			want: console.InputEvent{Input: input.Event{Kind: input.Click, Target: widget.PlayButton, Point: input.Point{X: 275, Y: 310}, Timestamp: 42}},
		},
		{
			name: "click with coordinates",
			line: "click progress_bar 292 130",
			want: console.InputEvent{Input: input.Event{Kind: input.Click, Target: widget.ProgressBar, Point: input.Point{X: 292, Y: 130}, Timestamp: 42}},
		},
		{
			name: "press on the bar",
			line: "press 400",
			want: console.InputEvent{Input: input.Event{Kind: input.PointerDown, Target: widget.ProgressBar, Point: input.Point{X: 400, Y: 140}, Timestamp: 42}},
		},
	}

	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.line)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestParser_BlankAndComment(t *testing.T) {
	p := newTestParser()
	for _, line := range []string{"", "   ", "# comment"} {
		got, err := p.Parse(line)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		line    string
		wantErr error
	}{
		{"dance", ErrUnknownCommand},
		{"play now", ErrUsage},
		{"seek", ErrUsage},
		{"seek 101", ErrUsage},
		{"seek -1", ErrUsage},
		{"autoplay maybe", ErrUsage},
		{"load", ErrUsage},
		{"nav kitchen", ErrUsage},
		{"swipe sideways", ErrUsage},
		{"click nothing", ErrUsage},
		{"click play 1", ErrUsage},
		{"move x", ErrUsage},
		{"drag 10", ErrUsage},
	}

	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := p.Parse(tt.line)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestParser_Drag(t *testing.T) {
	got, err := newTestParser().Parse("drag 10 50")
	require.NoError(t, err)
	require.Len(t, got, 5)

	var kinds []input.Kind
	var xs []int
	for _, ev := range got {
		in := ev.(console.InputEvent).Input
		assert.Equal(t, widget.ProgressBar, in.Target)
		kinds = append(kinds, in.Kind)
		xs = append(xs, in.Point.X)
	}
	assert.Equal(t, []input.Kind{input.PointerDown, input.PointerMove, input.PointerMove, input.PointerUp, input.Click}, kinds)
	assert.Equal(t, []int{112, 256, 400, 400, 400}, xs)
}

func TestParse_Script(t *testing.T) {
	s, err := Parse([]byte(`
name: smoke
steps:
  - at_ms: 500
    do: swipe left
  - at_ms: 0
    do: load /music/Song1.mp3
  - at_ms: 500
    do: nav player
`))
	require.NoError(t, err)
	assert.Equal(t, "smoke", s.Name)
	require.Len(t, s.Steps, 3)
	assert.Equal(t, "load /music/Song1.mp3", s.Steps[0].Do)
	assert.Equal(t, "swipe left", s.Steps[1].Do, "equal offsets keep file order")
	assert.Equal(t, "nav player", s.Steps[2].Do)
	assert.Equal(t, 500*time.Millisecond, s.Duration())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "no steps", data: "name: empty\n"},
		{name: "negative offset", data: "steps:\n  - at_ms: -1\n    do: play\n"},
		{name: "missing command", data: "steps:\n  - at_ms: 10\n"},
		{name: "not yaml", data: "steps: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - at_ms: 0\n    do: play\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Steps, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	s := &Script{Steps: []Step{
		{AtMs: 0, Do: "load /music/Song1.mp3"},
		{AtMs: 20, Do: "play"},
		{AtMs: 40, Do: "drag 0 100"},
	}}

	var got []console.Event
	start := time.Now()
	err := Run(context.Background(), s, newTestParser(), func(ev console.Event) bool {
		got = append(got, ev)
		return true
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	require.Len(t, got, 7)
	assert.Equal(t, console.TrackSelectedEvent{TrackID: "/music/Song1.mp3"}, got[0])
	assert.Equal(t, console.CommandEvent{Command: console.CommandPlay}, got[1])
}

func TestRun_BrokenStepPostsNothing(t *testing.T) {
	s := &Script{Steps: []Step{{AtMs: 0, Do: "play"}, {AtMs: 10, Do: "fly"}}}

	posted := 0
	err := Run(context.Background(), s, newTestParser(), func(console.Event) bool {
		posted++
		return true
	})
	assert.True(t, errors.Is(err, ErrUnknownCommand))
	assert.Zero(t, posted)
}

func TestRun_Cancelled(t *testing.T) {
	s := &Script{Steps: []Step{{AtMs: 0, Do: "play"}, {AtMs: 10_000, Do: "stop"}}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	posted := 0
	err := Run(ctx, s, newTestParser(), func(console.Event) bool {
		posted++
		return true
	})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, 1, posted)
}
