// Package app assembles the enrichment object graph from configuration so that the HTTP
// server and the CLI run the same stack.
package app

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/octobees/leads-generator/enricher/internal/browser"
	"github.com/octobees/leads-generator/enricher/internal/config"
	"github.com/octobees/leads-generator/enricher/internal/crawler"
	"github.com/octobees/leads-generator/enricher/internal/dnscheck"
	"github.com/octobees/leads-generator/enricher/internal/enrich"
	"github.com/octobees/leads-generator/enricher/internal/fetch"
	"github.com/octobees/leads-generator/enricher/internal/pipeline"
	"github.com/octobees/leads-generator/enricher/internal/repository"
	"github.com/octobees/leads-generator/enricher/internal/resolver"
	"github.com/octobees/leads-generator/enricher/internal/service"
)

const (
	dnsTimeout = 2 * time.Second
	rawTimeout = 10 * time.Second
)

// Options overrides configuration for one process, mostly from CLI flags.
type Options struct {
	// DisableHeadless keeps the browser tiers off even when the config enables them.
	DisableHeadless bool
	Repository      repository.EnrichmentsRepository
}

// Components exposes the pieces built by New.
type Components struct {
	Fetcher  *fetch.Client
	DNS      *dnscheck.Checker
	Browser  *browser.Browser
	Enricher *enrich.Enricher
	Service  *service.EnrichmentService
}

// New wires the fetch client, resolver, extraction pipeline, crawler, enricher and the
// enrichment service.
func New(cfg *config.Config, log logrus.FieldLogger, opts Options) *Components {
	fetcher := fetch.NewClient(log)
	dns := dnscheck.New(cfg.DNS.Servers, dnsTimeout)

	resolverOpts := []resolver.Option{resolver.WithTimeouts(cfg.Fetch.ProbeTimeout, cfg.Browser.RedirectProbeTimeout)}
	if cfg.DNS.Precheck {
		resolverOpts = append(resolverOpts, resolver.WithHostChecker(dns))
	}

	headless := cfg.Browser.Enabled && !opts.DisableHeadless
	pipelineCfg := pipeline.Config{
		Fetcher:        fetcher,
		FastOptions:    fetch.Options{Retries: cfg.Fetch.Retries, Timeout: cfg.Fetch.Timeout},
		RawOptions:     fetch.Options{Retries: cfg.Fetch.Retries, Timeout: rawTimeout},
		DisableManaged: cfg.Browser.DisableManagedCrawler,
	}

	var chrome *browser.Browser
	if headless {
		chrome = browser.New(browser.Config{ExecPath: cfg.Browser.ChromePath, Headless: true, Timeout: cfg.Browser.Timeout}, log)
		pipelineCfg.Renderer = chrome
		resolverOpts = append(resolverOpts, resolver.WithInspector(chrome))
	}

	res := resolver.New(fetcher, fetcher, log, resolverOpts...)
	extractor := pipeline.New(log, pipeline.DefaultStrategies(pipelineCfg)...)
	crawl := crawler.New(fetcher, crawler.Config{
		Retries:     cfg.Crawl.Retries,
		Delay:       cfg.Crawl.Delay,
		MaxPages:    cfg.Crawl.MaxPages,
		PhoneRegion: cfg.PhoneRegion,
	}, log)

	enricher := enrich.New(res, extractor, crawl, log,
		enrich.WithPhoneRegion(cfg.PhoneRegion),
		enrich.WithFastMode(cfg.FastMode),
		enrich.WithHeadless(headless),
	)

	var cleanerOpts []service.RecordCleanerOption
	if cfg.DNS.VerifyEmailMX {
		cleanerOpts = append(cleanerOpts, service.WithMXChecker(dns))
	}
	cleaner := service.NewRecordCleaner(cfg.PhoneRegion, cleanerOpts...)

	serviceOpts := []service.EnrichmentOption{
		service.WithBulkOptions(enrich.BulkOptions{
			Workers:      cfg.Bulk.Workers,
			ItemTimeout:  cfg.Bulk.ItemTTL,
			RateLimitRPS: cfg.Bulk.RateRPS,
		}, cfg.Bulk.MaxItems),
	}
	if opts.Repository != nil {
		serviceOpts = append(serviceOpts, service.WithRepository(opts.Repository))
	}

	return &Components{
		Fetcher:  fetcher,
		DNS:      dns,
		Browser:  chrome,
		Enricher: enricher,
		Service:  service.NewEnrichmentService(enricher, cleaner, fetcher, log, serviceOpts...),
	}
}
