package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/octobees/leads-generator/enricher/internal/extract"
	"github.com/octobees/leads-generator/enricher/internal/fetch"
)

// ErrNotFound is returned when no candidate answered.
var ErrNotFound = errors.New("resolver: no reachable website")

// Prober checks whether a URL answers.
type Prober interface {
	Probe(ctx context.Context, rawURL string, timeout time.Duration) (fetch.Probe, error)
}

// PageFetcher retrieves a page body.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string, opts fetch.Options) (*fetch.Result, error)
}

// RedirectInspector reports client-side redirects that only a browser sees.
type RedirectInspector interface {
	DetectClientRedirect(ctx context.Context, rawURL string, timeout time.Duration) string
}

// HostChecker reports whether a hostname exists in DNS.
type HostChecker interface {
	HostExists(ctx context.Context, host string) (bool, error)
}

// Resolution is the outcome of a successful lookup.
type Resolution struct {
	Input    string
	URL      string
	FinalURL string
	Host     string
	Domain   string
	FromName bool
}

// Resolver turns a company name or partial domain into a reachable website.
type Resolver struct {
	prober          Prober
	pages           PageFetcher
	inspector       RedirectInspector
	hosts           HostChecker
	log             logrus.FieldLogger
	probeTimeout    time.Duration
	redirectTimeout time.Duration
}

// Option configures optional dependencies.
type Option func(*Resolver)

// WithInspector enables splash page inspection through a browser.
func WithInspector(inspector RedirectInspector) Option {
	return func(r *Resolver) {
		r.inspector = inspector
	}
}

// WithHostChecker skips candidates whose host does not exist in DNS.
func WithHostChecker(hosts HostChecker) Option {
	return func(r *Resolver) {
		r.hosts = hosts
	}
}

// WithTimeouts overrides the probe and redirect inspection timeouts.
func WithTimeouts(probe, redirect time.Duration) Option {
	return func(r *Resolver) {
		if probe > 0 {
			r.probeTimeout = probe
		}
		if redirect > 0 {
			r.redirectTimeout = redirect
		}
	}
}

// New builds a resolver. pages may be nil when splash detection is not wanted.
func New(prober Prober, pages PageFetcher, log logrus.FieldLogger, opts ...Option) *Resolver {
	r := &Resolver{
		prober:          prober,
		pages:           pages,
		log:             log,
		probeTimeout:    5 * time.Second,
		redirectTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve probes input directly when it looks like a URL, otherwise guesses domains
// from it. The first candidate answering 2xx or 3xx wins.
func (r *Resolver) Resolve(ctx context.Context, input string) (Resolution, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Resolution{}, ErrNotFound
	}

	if LooksLikeURL(input) {
		target := NormalizeURL(ASCIIHost(input))
		probe, err := r.prober.Probe(ctx, target, r.probeTimeout)
		if err != nil || !probe.Reachable() {
			r.log.WithFields(logrus.Fields{"url": target, "status": probe.StatusCode}).Info("website unreachable")
			if err != nil {
				return Resolution{}, fmt.Errorf("%w: %v", ErrNotFound, err)
			}
			return Resolution{}, fmt.Errorf("%w: status %d", ErrNotFound, probe.StatusCode)
		}
		return r.finish(ctx, input, target, probe, false), nil
	}

	for _, candidate := range Candidates(input) {
		if err := ctx.Err(); err != nil {
			return Resolution{}, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		host := candidate.Host()
		if r.hosts != nil {
			exists, err := r.hosts.HostExists(ctx, host)
			if err == nil && !exists {
				continue
			}
		}
		target := "http://" + host
		probe, err := r.prober.Probe(ctx, target, r.probeTimeout)
		if err != nil || !probe.Reachable() {
			continue
		}
		r.log.WithFields(logrus.Fields{"company": input, "url": target, "status": probe.StatusCode}).Info("candidate domain resolved")
		return r.finish(ctx, input, target, probe, true), nil
	}

	r.log.WithField("company", input).Info("no candidate domain resolved")
	return Resolution{}, ErrNotFound
}

func (r *Resolver) finish(ctx context.Context, input, target string, probe fetch.Probe, fromName bool) Resolution {
	final := target
	if probe.FinalURL != "" {
		final = fetch.ResolveRedirect(target, probe.FinalURL)
	}
	if redirected := r.followSplash(ctx, final); redirected != "" {
		final = redirected
	}

	res := Resolution{Input: input, URL: target, FinalURL: final, FromName: fromName}
	if u, err := url.Parse(final); err == nil {
		res.Host = strings.ToLower(u.Hostname())
		res.Domain = extract.RegistrableDomain(res.Host)
	}
	return res
}

// followSplash asks the inspector for the real landing page when the root document is a
// language picker.
func (r *Resolver) followSplash(ctx context.Context, final string) string {
	if r.inspector == nil || r.pages == nil {
		return ""
	}
	u, err := url.Parse(final)
	if err != nil || (u.Path != "" && u.Path != "/") {
		return ""
	}
	page, err := r.pages.Fetch(ctx, final, fetch.Options{Retries: 1, Timeout: r.probeTimeout})
	if err != nil {
		return ""
	}
	doc, err := extract.Parse(page.HTML)
	if err != nil || !extract.IsLanguageSplash(doc) {
		return ""
	}
	target := r.inspector.DetectClientRedirect(ctx, final, r.redirectTimeout)
	if target != "" {
		r.log.WithFields(logrus.Fields{"url": final, "target": target}).Info("splash page redirect detected")
	}
	return target
}
