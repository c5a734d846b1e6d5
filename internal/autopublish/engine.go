package autopublish

import (
	"fmt"
	"time"
)

// Engine evaluates eligibility and computes publish slots for a single
// tenant. It holds an immutable Config and the resolved timezone; construct
// one per tenant and share it freely, it has no mutable state.
type Engine struct {
	cfg Config
	loc *time.Location
}

// NewEngine validates the configuration, resolves its timezone, and returns
// a ready engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid auto-publish config: %w", err)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}
	return &Engine{cfg: cfg, loc: loc}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Location returns the tenant's resolved timezone.
func (e *Engine) Location() *time.Location {
	return e.loc
}
