package filter

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/touchdeck/internal/domain/input"
)

// Settings is the configuration of one registered filter.
type Settings struct {
	Enabled  bool
	Settings map[string]any
}

// Chain executes filters in sequence.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain() *Chain {
	return &Chain{
		filters: make([]Filter, 0),
	}
}

// Build creates a chain starting with the cooldown filter followed by every
// enabled registered filter in name order.
func Build(guard Admitter, cfg map[string]Settings) (*Chain, error) {
	c := NewChain()
	c.Add(NewCooldownFilter(guard))

	for name := range cfg {
		if _, ok := registry[name]; !ok {
			return nil, errors.Newf("unknown filter %q", name)
		}
	}

	for _, name := range Names() {
		fc, ok := cfg[name]
		if !ok || !fc.Enabled {
			continue
		}
		f := registry[name]()
		if err := f.ValidateConfig(fc.Settings); err != nil {
			return nil, errors.Wrapf(err, "filter %s", name)
		}
		c.Add(f)
		zlog.Debug().Msgf("filter: enabled %s", name)
	}
	return c, nil
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Execute runs all filters in sequence.
// Returns immediately if any filter rejects the event.
// Filters are only applied if they declare they apply to the event kind.
func (c *Chain) Execute(ctx context.Context, ev input.Event, env Env) Result {
	for _, f := range c.filters {
		if !f.AppliesTo(ev.Kind) {
			continue
		}

		result := f.Check(ctx, ev, env)
		if !result.Accepted {
			return result
		}
	}
	return Accept()
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}
