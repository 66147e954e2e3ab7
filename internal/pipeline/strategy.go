package pipeline

import (
	"context"
	"errors"

	"github.com/octobees/leads-generator/enricher/internal/extract"
)

// Tier names, in escalation order.
const (
	TierFast           = "fast"
	TierRawSource      = "raw_source"
	TierManagedBrowser = "managed_browser"
	TierDirectBrowser  = "direct_browser"
)

// ErrNoSignal is returned by a tier that ran but found no social profile.
var ErrNoSignal = errors.New("pipeline: no social links found")

// Request is what a tier receives. PriorHTML carries the markup of the last tier that
// produced any, so cheaper re-scans can skip the network.
type Request struct {
	URL       string
	PriorHTML string
	// PriorFailed is set when an earlier tier could not retrieve the page at all.
	PriorFailed bool
	FastMode    bool
}

// Outcome is what a tier found.
type Outcome struct {
	Tier     string
	HTML     string
	FinalURL string
	Social   map[extract.Platform]string
}

// Strategy is one extraction tier.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, req Request) (Outcome, error)
}

// skipper is implemented by tiers that opt out for some requests.
type skipper interface {
	Skip(req Request) bool
}

func socialFromHTML(html, base string) map[extract.Platform]string {
	doc, err := extract.Parse(html)
	if err != nil {
		return map[extract.Platform]string{}
	}
	return extract.SocialLinks(doc, base)
}
