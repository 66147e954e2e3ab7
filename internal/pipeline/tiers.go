package pipeline

import (
	"context"
	"time"

	"github.com/octobees/leads-generator/enricher/internal/browser"
	"github.com/octobees/leads-generator/enricher/internal/extract"
	"github.com/octobees/leads-generator/enricher/internal/fetch"
)

// Fetcher retrieves a page over plain HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, opts fetch.Options) (*fetch.Result, error)
}

// Renderer produces the live DOM of a page.
type Renderer interface {
	RenderManaged(ctx context.Context, rawURL string) (browser.Page, error)
	RenderDirect(ctx context.Context, rawURL string) (browser.Page, error)
}

// FastStrategy fetches the page with a short timeout and parses anchors.
type FastStrategy struct {
	Fetcher Fetcher
	Options fetch.Options
}

func (s FastStrategy) Name() string { return TierFast }

func (s FastStrategy) Attempt(ctx context.Context, req Request) (Outcome, error) {
	opts := s.Options
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	res, err := s.Fetcher.Fetch(ctx, req.URL, opts)
	if err != nil {
		return Outcome{Tier: TierFast}, err
	}
	return Outcome{
		Tier:     TierFast,
		HTML:     res.HTML,
		FinalURL: res.FinalURL,
		Social:   socialFromHTML(res.HTML, res.FinalURL),
	}, nil
}

// RawSourceStrategy runs the platform regexes over unparsed markup. It reuses the prior
// tier's HTML when there is some and fetches again otherwise.
type RawSourceStrategy struct {
	Fetcher Fetcher
	Options fetch.Options
}

func (s RawSourceStrategy) Name() string { return TierRawSource }

// Skip avoids a second network round trip in fast mode once the page proved unreachable.
func (s RawSourceStrategy) Skip(req Request) bool {
	return req.FastMode && req.PriorFailed && req.PriorHTML == ""
}

func (s RawSourceStrategy) Attempt(ctx context.Context, req Request) (Outcome, error) {
	html, final := req.PriorHTML, req.URL
	if html == "" {
		res, err := s.Fetcher.Fetch(ctx, req.URL, s.Options)
		if err != nil {
			return Outcome{Tier: TierRawSource}, err
		}
		html, final = res.HTML, res.FinalURL
	}
	return Outcome{
		Tier:     TierRawSource,
		HTML:     html,
		FinalURL: final,
		Social:   extract.SocialLinksFromSource(html),
	}, nil
}

// ManagedBrowserStrategy renders with retries and waits for the footer.
type ManagedBrowserStrategy struct {
	Renderer Renderer
}

func (s ManagedBrowserStrategy) Name() string { return TierManagedBrowser }

func (s ManagedBrowserStrategy) Attempt(ctx context.Context, req Request) (Outcome, error) {
	page, err := s.Renderer.RenderManaged(ctx, req.URL)
	if err != nil {
		return Outcome{Tier: TierManagedBrowser}, err
	}
	return renderedOutcome(TierManagedBrowser, req.URL, page), nil
}

// DirectBrowserStrategy is the one-shot render fallback.
type DirectBrowserStrategy struct {
	Renderer Renderer
}

func (s DirectBrowserStrategy) Name() string { return TierDirectBrowser }

func (s DirectBrowserStrategy) Attempt(ctx context.Context, req Request) (Outcome, error) {
	page, err := s.Renderer.RenderDirect(ctx, req.URL)
	if err != nil {
		return Outcome{Tier: TierDirectBrowser}, err
	}
	return renderedOutcome(TierDirectBrowser, req.URL, page), nil
}

func renderedOutcome(tier, requested string, page browser.Page) Outcome {
	final := page.FinalURL
	if final == "" {
		final = requested
	}
	social := socialFromHTML(page.HTML, final)
	for platform, link := range extract.SocialLinksFromSource(page.HTML) {
		if _, ok := social[platform]; !ok {
			social[platform] = link
		}
	}
	return Outcome{Tier: tier, HTML: page.HTML, FinalURL: final, Social: social}
}
