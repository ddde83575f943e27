package gesture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/touchdeck/internal/app/filter"
	"github.com/osa030/touchdeck/internal/domain/input"
	"github.com/osa030/touchdeck/internal/domain/screen"
	"github.com/osa030/touchdeck/internal/domain/widget"
	"github.com/osa030/touchdeck/internal/infra/clock"
)

func newTestRouter(t *testing.T) (*Router, *clock.Manual, *screen.Context) {
	t.Helper()
	clk := clock.NewManual(0)
	guard := NewGuard(clk, DefaultCooldown)
	screens := screen.NewContext()
	chain, err := filter.Build(guard, map[string]filter.Settings{
		"hidden_widget_filter": {Enabled: true},
	})
	require.NoError(t, err)
	return NewRouter(guard, screens, chain, widget.DefaultLayout(800, 480)), clk, screens
}

func swipe(dir input.Direction) input.Event {
	return input.Event{Kind: input.Gesture, Dir: dir}
}

func TestGuard_Boundary(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    bool
	}{
		{name: "zero elapsed", elapsed: 0, want: false},
		{name: "one millisecond before cooldown", elapsed: 299 * time.Millisecond, want: false},
		{name: "one microsecond before cooldown", elapsed: 300*time.Millisecond - time.Microsecond, want: false},
		{name: "exactly cooldown", elapsed: 300 * time.Millisecond, want: true},
		{name: "after cooldown", elapsed: 2 * time.Second, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := clock.NewManual(1_000_000)
			g := NewGuard(clk, DefaultCooldown)
			g.Stamp()

			clk.Advance(tt.elapsed)
			elapsed, ok := g.Admit()
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.elapsed.Microseconds(), elapsed)
		})
	}
}

func TestGuard_InactiveUntilFirstStamp(t *testing.T) {
	g := NewGuard(clock.NewManual(0), DefaultCooldown)

	elapsed, ok := g.Admit()
	assert.True(t, ok)
	assert.Equal(t, int64(-1), elapsed)

	_, armed := g.Last()
	assert.False(t, armed)
}

func TestGuard_StampNeverMovesBackwards(t *testing.T) {
	g := NewGuard(clock.NewManual(0), DefaultCooldown)
	g.StampAt(500_000)
	g.StampAt(100_000)

	last, armed := g.Last()
	assert.True(t, armed)
	assert.Equal(t, int64(500_000), last)
	assert.Equal(t, DefaultCooldown, g.Cooldown())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		ev   input.Event
		want Class
	}{
		{input.Event{Kind: input.PointerDown}, ClassPress},
		{input.Event{Kind: input.PointerMove}, ClassMove},
		{input.Event{Kind: input.PointerUp}, ClassRelease},
		{input.Event{Kind: input.Click}, ClassClick},
		{swipe(input.DirLeft), ClassSwipeLeft},
		{swipe(input.DirRight), ClassSwipeRight},
		{swipe(input.DirUp), ClassSwipeUp},
		{swipe(input.DirDown), ClassSwipeDown},
		{swipe(input.DirNone), ClassUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.ev))
		})
	}
}

func TestRouter_TwoSwipesFiftyMillisecondsApart(t *testing.T) {
	r, clk, screens := newTestRouter(t)

	first := r.Route(context.Background(), swipe(input.DirLeft))
	assert.True(t, first.Accepted)
	assert.Equal(t, CommandShowFileManager, first.Command)
	assert.Equal(t, screen.FileManager, screens.Active())
	last, armed := r.guard.Last()
	assert.True(t, armed)
	assert.Equal(t, int64(0), last)

	clk.Advance(50 * time.Millisecond)
	second := r.Route(context.Background(), swipe(input.DirLeft))
	assert.False(t, second.Accepted)
	assert.Equal(t, filter.CodeCooldown, second.Code)
	assert.Equal(t, CommandNone, second.Command)
	assert.Equal(t, int64(50_000), second.Elapsed)
	assert.Equal(t, uint64(1), screens.Switches())
}

func TestRouter_ZeroElapsedDuplicate(t *testing.T) {
	r, _, screens := newTestRouter(t)

	first := r.Route(context.Background(), swipe(input.DirLeft))
	second := r.Route(context.Background(), swipe(input.DirLeft))

	assert.True(t, first.Accepted)
	assert.False(t, second.Accepted)
	assert.Equal(t, uint64(1), screens.Switches())
}

func TestRouter_ReleaseAfterTransitionIsDiscarded(t *testing.T) {
	r, clk, _ := newTestRouter(t)
	r.Route(context.Background(), swipe(input.DirLeft))

	clk.Advance(120 * time.Millisecond)
	d := r.Route(context.Background(), input.Event{Kind: input.PointerUp, Target: "file_list"})
	assert.False(t, d.Accepted)
	assert.Equal(t, ClassRelease, d.Class)

	clk.Advance(180 * time.Millisecond)
	d = r.Route(context.Background(), input.Event{Kind: input.Click, Target: "file_list"})
	assert.True(t, d.Accepted, "accepted at exactly the cooldown")
}

func TestRouter_OtherGesturesAreObservedOnly(t *testing.T) {
	r, _, screens := newTestRouter(t)

	for _, dir := range []input.Direction{input.DirRight, input.DirUp, input.DirDown} {
		d := r.Route(context.Background(), swipe(dir))
		assert.True(t, d.Accepted)
		assert.Equal(t, CommandNone, d.Command)
	}
	assert.Equal(t, screen.Player, screens.Active())

	classes := r.Classes()
	assert.Equal(t, uint64(1), classes[ClassSwipeRight])
	assert.Equal(t, uint64(1), classes[ClassSwipeUp])
	assert.Equal(t, uint64(1), classes[ClassSwipeDown])
}

func TestRouter_LeftSwipeOffPlayerDoesNotNavigate(t *testing.T) {
	r, clk, screens := newTestRouter(t)
	screens.Set(screen.WifiConfig)

	clk.Advance(time.Second)
	d := r.Route(context.Background(), swipe(input.DirLeft))
	assert.True(t, d.Accepted)
	assert.Equal(t, CommandNone, d.Command)
	assert.Equal(t, screen.WifiConfig, screens.Active())
}

func TestRouter_HiddenWidgetRejected(t *testing.T) {
	r, clk, _ := newTestRouter(t)
	require.True(t, r.Navigate(screen.FileManager))

	clk.Advance(time.Second)
	d := r.Route(context.Background(), input.Event{Kind: input.Click, Target: widget.PlayButton})
	assert.False(t, d.Accepted)
	assert.Equal(t, filter.CodeHiddenWidget, d.Code)
	assert.Equal(t, uint64(1), r.Rejections()[filter.CodeHiddenWidget])
}

func TestRouter_NavigateStampsGuard(t *testing.T) {
	r, clk, _ := newTestRouter(t)
	clk.Advance(2 * time.Second)

	assert.True(t, r.Navigate(screen.FileManager))
	assert.False(t, r.Navigate(screen.FileManager), "no change, no stamp")

	last, _ := r.guard.Last()
	assert.Equal(t, int64(2_000_000), last)

	clk.Advance(100 * time.Millisecond)
	d := r.Route(context.Background(), input.Event{Kind: input.Click, Target: "file_list"})
	assert.Equal(t, filter.CodeCooldown, d.Code)
}

func TestRouter_NilChainUsesCooldownOnly(t *testing.T) {
	clk := clock.NewManual(0)
	guard := NewGuard(clk, DefaultCooldown)
	r := NewRouter(guard, screen.NewContext(), nil, nil)

	assert.True(t, r.Route(context.Background(), swipe(input.DirLeft)).Accepted)
	assert.False(t, r.Route(context.Background(), input.Event{Kind: input.Click}).Accepted)
}

// steppingClock advances by step on every read.
type steppingClock struct {
	now  int64
	step int64
}

func (c *steppingClock) NowMicros() int64 {
	now := c.now
	c.now += c.step
	return now
}

func TestRouter_ElapsedMatchesAdmission(t *testing.T) {
	clk := &steppingClock{now: 300_000 - 1, step: 1}
	guard := NewGuard(clk, DefaultCooldown)
	guard.StampAt(0)
	chain, err := filter.Build(guard, nil)
	require.NoError(t, err)
	r := NewRouter(guard, screen.NewContext(), chain, widget.DefaultLayout(800, 480))

	d := r.Route(context.Background(), input.Event{Kind: input.Click, Target: widget.PlayButton})
	assert.Equal(t, int64(299_999), d.Elapsed)
	assert.False(t, d.Accepted)
	assert.Equal(t, filter.CodeCooldown, d.Code)

	d = r.Route(context.Background(), input.Event{Kind: input.Click, Target: widget.PlayButton})
	assert.Equal(t, int64(300_000), d.Elapsed)
	assert.True(t, d.Accepted)
}
