package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/touchdeck/internal/domain/input"
	"github.com/osa030/touchdeck/internal/domain/screen"
	"github.com/osa030/touchdeck/internal/domain/widget"
)

type fakeGuard struct {
	open  bool
	calls int
	now   int64
}

func (g *fakeGuard) AdmitAt(now int64) (int64, bool) {
	g.calls++
	g.now = now
	return 0, g.open
}

func playerEnv() Env {
	return Env{Active: screen.Player, Layout: widget.DefaultLayout(800, 480)}
}

func TestCooldownFilter_Check(t *testing.T) {
	tests := []struct {
		name         string
		open         bool
		kind         input.Kind
		wantAccepted bool
	}{
		{name: "gesture inside cooldown", open: false, kind: input.Gesture, wantAccepted: false},
		{name: "click inside cooldown", open: false, kind: input.Click, wantAccepted: false},
		{name: "release inside cooldown", open: false, kind: input.PointerUp, wantAccepted: false},
		{name: "click after cooldown", open: true, kind: input.Click, wantAccepted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewCooldownFilter(&fakeGuard{open: tt.open})
			assert.True(t, f.AppliesTo(tt.kind))

			result := f.Check(context.Background(), input.Event{Kind: tt.kind}, playerEnv())
			assert.Equal(t, tt.wantAccepted, result.Accepted)
			if !tt.wantAccepted {
				assert.Equal(t, CodeCooldown, result.Code)
			}
		})
	}
}

func TestHiddenWidgetFilter_Check(t *testing.T) {
	tests := []struct {
		name         string
		active       screen.Screen
		target       widget.ID
		wantAccepted bool
	}{
		{name: "player widget on player", active: screen.Player, target: widget.PlayButton, wantAccepted: true},
		{name: "player widget behind file manager", active: screen.FileManager, target: widget.PlayButton, wantAccepted: false},
		{name: "progress bar behind wifi", active: screen.WifiConfig, target: widget.ProgressBar, wantAccepted: false},
		{name: "foreign widget behind file manager", active: screen.FileManager, target: "file_list", wantAccepted: true},
		{name: "no target", active: screen.FileManager, target: widget.None, wantAccepted: true},
	}

	f := &HiddenWidgetFilter{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := playerEnv()
			env.Active = tt.active

			result := f.Check(context.Background(), input.Event{Kind: input.Click, Target: tt.target}, env)
			assert.Equal(t, tt.wantAccepted, result.Accepted)
			if !tt.wantAccepted {
				assert.Equal(t, CodeHiddenWidget, result.Code)
			}
		})
	}
}

func TestBoundsFilter_Check(t *testing.T) {
	// play button occupies x 225..324, y 260..359 on an 800x480 panel
	tests := []struct {
		name         string
		slop         int
		point        input.Point
		wantAccepted bool
	}{
		{name: "inside", point: input.Point{X: 250, Y: 300}, wantAccepted: true},
		{name: "left edge", point: input.Point{X: 225, Y: 260}, wantAccepted: true},
		{name: "right edge is exclusive", point: input.Point{X: 325, Y: 300}, wantAccepted: false},
		{name: "outside", point: input.Point{X: 10, Y: 10}, wantAccepted: false},
		{name: "outside but within slop", slop: 5, point: input.Point{X: 328, Y: 300}, wantAccepted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewBoundsFilter()
			require.NoError(t, f.ValidateConfig(map[string]any{"slop_px": tt.slop}))

			ev := input.Event{Kind: input.Click, Target: widget.PlayButton, Point: tt.point}
			result := f.Check(context.Background(), ev, playerEnv())
			assert.Equal(t, tt.wantAccepted, result.Accepted)
			if !tt.wantAccepted {
				assert.Equal(t, CodeOutOfBounds, result.Code)
			}
		})
	}
}

func TestBoundsFilter_AppliesTo(t *testing.T) {
	f := NewBoundsFilter()

	tests := []struct {
		kind input.Kind
		want bool
	}{
		{input.Click, true},
		{input.PointerDown, true},
		{input.PointerMove, false},
		{input.PointerUp, false},
		{input.Gesture, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, f.AppliesTo(tt.kind))
		})
	}
}

func TestBoundsFilter_ValidateConfig(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		wantErr  bool
	}{
		{name: "empty", settings: nil},
		{name: "valid slop", settings: map[string]any{"slop_px": 8}},
		{name: "string slop is coerced", settings: map[string]any{"slop_px": "4"}},
		{name: "negative slop", settings: map[string]any{"slop_px": -1}, wantErr: true},
		{name: "huge slop", settings: map[string]any{"slop_px": 1000}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBoundsFilter().ValidateConfig(tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	t.Run("cooldown is always first", func(t *testing.T) {
		chain, err := Build(&fakeGuard{open: true}, map[string]Settings{
			"bounds_filter":        {Enabled: true},
			"hidden_widget_filter": {Enabled: true},
		})
		require.NoError(t, err)

		names := make([]string, 0)
		for _, f := range chain.Filters() {
			names = append(names, f.Name())
		}
		assert.Equal(t, []string{"cooldown_filter", "bounds_filter", "hidden_widget_filter"}, names)
	})

	t.Run("disabled filters are skipped", func(t *testing.T) {
		chain, err := Build(&fakeGuard{open: true}, map[string]Settings{
			"bounds_filter": {Enabled: false},
		})
		require.NoError(t, err)
		assert.Len(t, chain.Filters(), 1)
	})

	t.Run("unknown filter", func(t *testing.T) {
		_, err := Build(&fakeGuard{}, map[string]Settings{"nope": {Enabled: true}})
		assert.Error(t, err)
	})

	t.Run("invalid settings", func(t *testing.T) {
		_, err := Build(&fakeGuard{}, map[string]Settings{
			"bounds_filter": {Enabled: true, Settings: map[string]any{"slop_px": -3}},
		})
		assert.Error(t, err)
	})
}

func TestCooldownFilter_AdmitsAtEnvTime(t *testing.T) {
	guard := &fakeGuard{open: true}
	env := playerEnv()
	env.Now = 1_234_567

	NewCooldownFilter(guard).Check(context.Background(), input.Event{Kind: input.Click}, env)
	assert.Equal(t, 1, guard.calls)
	assert.Equal(t, int64(1_234_567), guard.now)
}

func TestChain_Execute(t *testing.T) {
	guard := &fakeGuard{open: false}
	chain, err := Build(guard, map[string]Settings{
		"bounds_filter":        {Enabled: true},
		"hidden_widget_filter": {Enabled: true},
	})
	require.NoError(t, err)

	ev := input.Event{Kind: input.Click, Target: widget.PlayButton, Point: input.Point{X: 0, Y: 0}}
	result := chain.Execute(context.Background(), ev, playerEnv())
	assert.Equal(t, CodeCooldown, result.Code, "cooldown rejects before any other filter")

	guard.open = true
	result = chain.Execute(context.Background(), ev, playerEnv())
	assert.Equal(t, CodeOutOfBounds, result.Code)

	ev.Point = input.Point{X: 250, Y: 300}
	assert.True(t, chain.Execute(context.Background(), ev, playerEnv()).Accepted)
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"bounds_filter", "hidden_widget_filter"}, Names())
	for _, name := range Names() {
		f := GetRegistered()[name]()
		assert.Equal(t, name, f.Name())
		assert.NotEmpty(t, f.ReturnCodes())
		assert.NotEmpty(t, f.Description())
	}
}
