package pipeline

import (
	"github.com/octobees/leads-generator/enricher/internal/fetch"
)

// Config selects and tunes the default tiers.
type Config struct {
	Fetcher        Fetcher
	Renderer       Renderer
	FastOptions    fetch.Options
	RawOptions     fetch.Options
	DisableManaged bool
}

// DefaultStrategies returns the standard escalation: fast fetch, raw source scan,
// managed browser (unless disabled) and direct browser. Browser tiers are omitted when
// no renderer is configured.
func DefaultStrategies(cfg Config) []Strategy {
	strategies := []Strategy{
		FastStrategy{Fetcher: cfg.Fetcher, Options: cfg.FastOptions},
		RawSourceStrategy{Fetcher: cfg.Fetcher, Options: cfg.RawOptions},
	}
	if cfg.Renderer == nil {
		return strategies
	}
	if !cfg.DisableManaged {
		strategies = append(strategies, ManagedBrowserStrategy{Renderer: cfg.Renderer})
	}
	return append(strategies, DirectBrowserStrategy{Renderer: cfg.Renderer})
}
