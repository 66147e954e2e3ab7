package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Probe reports whether a URL answered and where it ended up after redirects.
type Probe struct {
	StatusCode int
	FinalURL   string
}

// Reachable reports a 2xx or 3xx answer.
func (p Probe) Reachable() bool {
	return p.StatusCode >= 200 && p.StatusCode < 400
}

// Probe issues a HEAD request and falls back to GET when HEAD fails or is refused.
func (c *Client) Probe(ctx context.Context, rawURL string, timeout time.Duration) (Probe, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	head, err := c.probe(ctx, http.MethodHead, rawURL, timeout)
	if err == nil && head.Reachable() {
		return head, nil
	}
	if err != nil && isCertificateError(err) {
		return Probe{}, transportError(rawURL, err)
	}

	get, err := c.probe(ctx, http.MethodGet, rawURL, timeout)
	if err != nil {
		return Probe{}, transportError(rawURL, err)
	}
	return get, nil
}

func (c *Client) probe(ctx context.Context, method, rawURL string, timeout time.Duration) (Probe, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return Probe{}, err
	}
	setBrowserHeaders(req, UserAgent(0))

	resp, err := c.http.Do(req)
	if err != nil {
		return Probe{}, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	final := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	if loc := resp.Header.Get("Location"); loc != "" && resp.StatusCode >= 300 && resp.StatusCode < 400 {
		final = ResolveRedirect(rawURL, loc)
	}
	return Probe{StatusCode: resp.StatusCode, FinalURL: final}, nil
}

// ResolveRedirect rebuilds a redirect target against the original scheme and host when
// the target is only a path.
func ResolveRedirect(original, target string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		return original
	}
	base, err := url.Parse(original)
	if err != nil {
		return target
	}
	ref, err := url.Parse(target)
	if err != nil {
		return original
	}
	if ref.IsAbs() && ref.Host != "" {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
