package filter

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/touchdeck/internal/domain/input"
	"github.com/osa030/touchdeck/internal/domain/widget"
)

// CodeOutOfBounds is returned for presses outside the target widget.
const CodeOutOfBounds = "out_of_bounds"

// BoundsConfig represents the configuration for BoundsFilter.
type BoundsConfig struct {
	SlopPx int `yaml:"slop_px" mapstructure:"slop_px" validate:"gte=0,lte=100"`
}

// BoundsFilter rejects clicks and presses whose coordinates fall outside the
// rectangle of the widget they target.
type BoundsFilter struct {
	config *BoundsConfig
}

// NewBoundsFilter creates a new bounds filter.
func NewBoundsFilter() *BoundsFilter {
	return &BoundsFilter{}
}

func (f *BoundsFilter) Name() string {
	return "bounds_filter"
}

func (f *BoundsFilter) Description() string {
	return "Rejects presses landing outside the target widget rectangle"
}

func (f *BoundsFilter) ReturnCodes() []string {
	return []string{CodeOutOfBounds}
}

func (f *BoundsFilter) ValidateConfig(settings map[string]any) error {
	var config BoundsConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}
	f.config = &config
	zlog.Info().Msgf("bounds filter config: %+v", config)
	return nil
}

func (f *BoundsFilter) AppliesTo(kind input.Kind) bool {
	// Moves and releases of a drag legitimately leave the widget
	return kind == input.Click || kind == input.PointerDown
}

func (f *BoundsFilter) Check(ctx context.Context, ev input.Event, env Env) Result {
	if ev.Target == widget.None {
		return Accept()
	}
	rect, ok := env.Layout[ev.Target]
	if !ok {
		return Accept()
	}

	slop := 0
	if f.config != nil {
		slop = f.config.SlopPx
	}
	if !rect.Contains(ev.Point.X, ev.Point.Y, slop) {
		return Reject(CodeOutOfBounds)
	}
	return Accept()
}

func init() {
	Register("bounds_filter", func() Filter {
		return &BoundsFilter{}
	})
}
