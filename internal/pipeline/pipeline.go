package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/octobees/leads-generator/enricher/internal/extract"
)

// Options are per-request switches.
type Options struct {
	FastMode    bool
	UseHeadless bool
}

// Page is the pipeline result for one URL. HTML holds the markup of the latest tier that
// produced any, which downstream extractors reuse for contact and name signals.
type Page struct {
	URL      string
	FinalURL string
	HTML     string
	Tier     string
	Social   map[extract.Platform]string
	Attempts []string
}

// browserTier marks strategies that need a headless browser.
type browserTier interface {
	RequiresBrowser() bool
}

func (ManagedBrowserStrategy) RequiresBrowser() bool { return true }
func (DirectBrowserStrategy) RequiresBrowser() bool  { return true }

// Pipeline runs strategies in order and stops at the first one that finds a social link.
type Pipeline struct {
	strategies []Strategy
	log        logrus.FieldLogger
}

// New builds a pipeline over the given strategies.
func New(log logrus.FieldLogger, strategies ...Strategy) *Pipeline {
	return &Pipeline{strategies: strategies, log: log}
}

// Strategies returns the configured tier names in order.
func (p *Pipeline) Strategies() []string {
	names := make([]string, 0, len(p.strategies))
	for _, s := range p.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Extract never fails: tier errors are logged and the next tier runs.
func (p *Pipeline) Extract(ctx context.Context, url string, opts Options) Page {
	page := Page{URL: url, FinalURL: url, Social: map[extract.Platform]string{}}
	req := Request{URL: url, FastMode: opts.FastMode}

	for _, s := range p.strategies {
		if ctx.Err() != nil {
			break
		}
		if b, ok := s.(browserTier); ok && b.RequiresBrowser() && !opts.UseHeadless {
			continue
		}
		if sk, ok := s.(skipper); ok && sk.Skip(req) {
			p.log.WithFields(logrus.Fields{"url": url, "tier": s.Name()}).Debug("tier skipped")
			continue
		}

		page.Attempts = append(page.Attempts, s.Name())
		out, err := attempt(ctx, s, req)
		if err != nil {
			p.log.WithFields(logrus.Fields{"url": url, "tier": s.Name(), "error": err.Error()}).Info("extraction tier failed")
			if req.PriorHTML == "" {
				req.PriorFailed = true
			}
			continue
		}
		if out.HTML != "" {
			req.PriorHTML = out.HTML
			page.HTML = out.HTML
			if out.FinalURL != "" {
				page.FinalURL = out.FinalURL
			}
		}
		if len(out.Social) > 0 {
			page.Social = out.Social
			page.Tier = s.Name()
			p.log.WithFields(logrus.Fields{"url": url, "tier": s.Name(), "links": len(out.Social)}).Info("social links found")
			return page
		}
		p.log.WithFields(logrus.Fields{"url": url, "tier": s.Name()}).Debug(ErrNoSignal.Error())
	}
	return page
}

func attempt(ctx context.Context, s Strategy, req Request) (out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tier %s panicked: %v", s.Name(), r)
		}
	}()
	return s.Attempt(ctx, req)
}
