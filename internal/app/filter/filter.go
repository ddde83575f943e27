// Package filter provides the filter chain for input event admission.
package filter

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/touchdeck/internal/domain/input"
	"github.com/osa030/touchdeck/internal/domain/screen"
	"github.com/osa030/touchdeck/internal/domain/widget"
)

// Env is the console state an event is checked against.
type Env struct {
	Active screen.Screen
	Layout widget.Layout
	Now    int64 // Monotonic microseconds at which the event is routed
}

// Result represents the result of a filter check.
type Result struct {
	Accepted bool
	Code     string // e.g., "cooldown", "hidden_widget", "out_of_bounds"
}

// Accept returns an accepted result.
func Accept() Result {
	return Result{Accepted: true}
}

// Reject returns a rejected result with the given code.
func Reject(code string) Result {
	return Result{Accepted: false, Code: code}
}

// Filter is the interface for input filters.
type Filter interface {
	// Name returns the filter name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ReturnCodes returns the codes this filter can return.
	ReturnCodes() []string
	// ValidateConfig validates and applies the filter configuration.
	ValidateConfig(settings map[string]any) error
	// AppliesTo returns true if this filter should be applied to the given event kind.
	AppliesTo(kind input.Kind) bool
	// Check performs the filter check.
	Check(ctx context.Context, ev input.Event, env Env) Result
}

// registry holds registered filter factories.
var registry = make(map[string]func() Filter)

// Register registers a filter factory.
func Register(name string, factory func() Filter) {
	registry[name] = factory
}

// GetRegistered returns all registered filter factories.
func GetRegistered() map[string]func() Filter {
	return registry
}

// Names returns the registered filter names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decodeSettings decodes settings into out, applies defaults and validates it.
func decodeSettings(settings map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}

	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}

	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}

	validate := validator.New()
	if err := validate.Struct(out); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	return nil
}
