package script

import (
	"context"
	"os"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/osa030/touchdeck/internal/app/console"
)

// Step is a command issued at an offset from the start of the replay.
type Step struct {
	AtMs int    `yaml:"at_ms" validate:"gte=0"`
	Do   string `yaml:"do" validate:"required"`
}

// Script is a timed sequence of commands.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps" validate:"required,dive"`
}

// Load reads a script from a YAML file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read script file %s", path)
	}
	return Parse(data)
}

// Parse parses and validates a script. Steps are ordered by offset; steps with
// the same offset keep their file order.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "failed to parse script")
	}
	if err := validator.New().Struct(&s); err != nil {
		return nil, errors.Wrap(err, "script validation failed")
	}
	slices.SortStableFunc(s.Steps, func(a, b Step) int {
		return a.AtMs - b.AtMs
	})
	return &s, nil
}

// Compile parses every step so a broken script fails before anything is posted.
func (s *Script) Compile(p *Parser) ([][]console.Event, error) {
	out := make([][]console.Event, len(s.Steps))
	for i, st := range s.Steps {
		evs, err := p.Parse(st.Do)
		if err != nil {
			return nil, errors.Wrapf(err, "step %d (at_ms=%d)", i+1, st.AtMs)
		}
		out[i] = evs
	}
	return out, nil
}

// Duration returns the offset of the last step.
func (s *Script) Duration() time.Duration {
	if len(s.Steps) == 0 {
		return 0
	}
	return time.Duration(s.Steps[len(s.Steps)-1].AtMs) * time.Millisecond
}

// Run posts every step at its offset from the call. Events are generated when
// the step fires so their timestamps reflect the replay clock.
func Run(ctx context.Context, s *Script, p *Parser, post func(console.Event) bool) error {
	if _, err := s.Compile(p); err != nil {
		return err
	}

	zlog.Info().Msgf("script: replaying %q steps=%d duration=%s", s.Name, len(s.Steps), s.Duration())

	start := time.Now()
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for i, st := range s.Steps {
		wait := time.Until(start.Add(time.Duration(st.AtMs) * time.Millisecond))
		if wait > 0 {
			timer.Reset(wait)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		evs, err := p.Parse(st.Do)
		if err != nil {
			return errors.Wrapf(err, "step %d", i+1)
		}
		for _, ev := range evs {
			if !post(ev) {
				zlog.Warn().Msgf("script: step %d: %s not delivered", i+1, console.Describe(ev))
			}
		}
		zlog.Debug().Msgf("script: step %d at_ms=%d do=%q", i+1, st.AtMs, st.Do)
	}
	return nil
}
