package filter

import (
	"context"

	"github.com/osa030/touchdeck/internal/domain/input"
	"github.com/osa030/touchdeck/internal/domain/screen"
	"github.com/osa030/touchdeck/internal/domain/widget"
)

// CodeHiddenWidget is returned for events targeting a widget of a hidden screen.
const CodeHiddenWidget = "hidden_widget"

// HiddenWidgetFilter rejects events that target player widgets while the
// player screen is not active.
type HiddenWidgetFilter struct{}

func (f *HiddenWidgetFilter) Name() string {
	return "hidden_widget_filter"
}

func (f *HiddenWidgetFilter) Description() string {
	return "Rejects events targeting player widgets while another screen is shown"
}

func (f *HiddenWidgetFilter) ReturnCodes() []string {
	return []string{CodeHiddenWidget}
}

func (f *HiddenWidgetFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *HiddenWidgetFilter) AppliesTo(kind input.Kind) bool {
	// Gestures are screen-level and carry no target
	return kind != input.Gesture
}

func (f *HiddenWidgetFilter) Check(ctx context.Context, ev input.Event, env Env) Result {
	if env.Active != screen.Player && ev.Target != widget.None && widget.IsPlayerWidget(ev.Target) {
		return Reject(CodeHiddenWidget)
	}
	return Accept()
}

func init() {
	Register("hidden_widget_filter", func() Filter {
		return &HiddenWidgetFilter{}
	})
}
