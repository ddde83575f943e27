package filter

import (
	"context"

	"github.com/osa030/touchdeck/internal/domain/input"
)

// CodeCooldown is returned for events inside the transition cooldown.
const CodeCooldown = "cooldown"

// Admitter decides whether the transition cooldown has elapsed at now.
type Admitter interface {
	AdmitAt(now int64) (elapsedMicros int64, ok bool)
}

// CooldownFilter discards every event that arrives within the cooldown of the
// last screen transition. It is always the first link of a chain built by Build.
type CooldownFilter struct {
	guard Admitter
}

// NewCooldownFilter creates a new cooldown filter.
func NewCooldownFilter(guard Admitter) *CooldownFilter {
	return &CooldownFilter{guard: guard}
}

func (f *CooldownFilter) Name() string {
	return "cooldown_filter"
}

func (f *CooldownFilter) Description() string {
	return "Discards input received within the cooldown of a screen transition"
}

func (f *CooldownFilter) ReturnCodes() []string {
	return []string{CodeCooldown}
}

func (f *CooldownFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *CooldownFilter) AppliesTo(kind input.Kind) bool {
	// Every kind, including plain press and release
	return true
}

func (f *CooldownFilter) Check(ctx context.Context, ev input.Event, env Env) Result {
	if f.guard == nil {
		return Accept()
	}
	if _, ok := f.guard.AdmitAt(env.Now); !ok {
		return Reject(CodeCooldown)
	}
	return Accept()
}
