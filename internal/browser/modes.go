package browser

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/octobees/leads-generator/enricher/internal/fetch"
)

const (
	managedRetries  = 2
	managedSettle   = 3 * time.Second
	directSettle    = 2 * time.Second
	redirectTimeout = 5 * time.Second
)

// DetectClientRedirect renders url and reports where client-side scripts sent the
// browser. It returns "" when the page stayed put or anything failed.
func (b *Browser) DetectClientRedirect(ctx context.Context, url string, timeout time.Duration) string {
	if timeout <= 0 {
		timeout = redirectTimeout
	}
	page, err := b.Render(ctx, url, RenderOptions{Timeout: timeout, WaitIdle: true})
	if err != nil {
		b.log.WithFields(logrus.Fields{"url": url, "error": err.Error()}).Debug("redirect inspection failed")
		return ""
	}
	if page.FinalURL == "" || SameDocument(page.FinalURL, url) {
		return ""
	}
	return page.FinalURL
}

// RenderManaged is the retrying render used by the managed crawl tier. Each attempt uses
// a different user agent and waits for the page footer before reading the DOM.
func (b *Browser) RenderManaged(ctx context.Context, url string) (Page, error) {
	var lastErr error
	for attempt := 0; attempt <= managedRetries; attempt++ {
		page, err := b.Render(ctx, url, RenderOptions{
			WaitSelector: "footer",
			Settle:       managedSettle,
			UserAgent:    fetch.UserAgent(attempt + 1),
		})
		if err == nil {
			return page, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		b.log.WithFields(logrus.Fields{"url": url, "attempt": attempt + 1, "error": err.Error()}).Debug("managed render failed")
	}
	return Page{}, lastErr
}

// RenderDirect performs a single render with a fixed settle delay.
func (b *Browser) RenderDirect(ctx context.Context, url string) (Page, error) {
	return b.Render(ctx, url, RenderOptions{Settle: directSettle})
}
