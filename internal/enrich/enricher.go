package enrich

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/octobees/leads-generator/enricher/internal/crawler"
	"github.com/octobees/leads-generator/enricher/internal/extract"
	"github.com/octobees/leads-generator/enricher/internal/pipeline"
	"github.com/octobees/leads-generator/enricher/internal/resolver"
)

// Field names accepted in Request.FieldsToExtract.
const (
	FieldWebsite     = "website"
	FieldCompanyName = "company_name"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldSocialLinks = "social_links"
	FieldContactPage = "contact_page"
)

// Fields lists every extractable field.
var Fields = []string{FieldWebsite, FieldCompanyName, FieldEmail, FieldPhone, FieldSocialLinks, FieldContactPage}

// Request is one enrichment input.
type Request struct {
	Company         string   `json:"company"`
	FastMode        bool     `json:"fast_mode"`
	FieldsToExtract []string `json:"fields_to_extract"`
}

// Resolver finds the website for a company name or URL.
type Resolver interface {
	Resolve(ctx context.Context, input string) (resolver.Resolution, error)
}

// Extractor runs the strategy cascade on a homepage.
type Extractor interface {
	Extract(ctx context.Context, url string, opts pipeline.Options) pipeline.Page
}

// Crawler visits secondary pages of a site.
type Crawler interface {
	Crawl(ctx context.Context, homeURL, homeHTML string) crawler.Result
}

// Enricher turns a company name or URL into a Record.
type Enricher struct {
	resolver    Resolver
	extractor   Extractor
	crawler     Crawler
	log         logrus.FieldLogger
	region      string
	fastMode    bool
	useHeadless bool
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithPhoneRegion sets the default region for phone validation.
func WithPhoneRegion(region string) Option {
	return func(e *Enricher) {
		e.region = strings.ToUpper(strings.TrimSpace(region))
	}
}

// WithFastMode forces fast mode for every request.
func WithFastMode(enabled bool) Option {
	return func(e *Enricher) {
		e.fastMode = enabled
	}
}

// WithHeadless enables the browser tiers.
func WithHeadless(enabled bool) Option {
	return func(e *Enricher) {
		e.useHeadless = enabled
	}
}

// New builds an enricher. extractor and crawler may be nil, in which case only the
// website is resolved.
func New(res Resolver, extractor Extractor, crawl Crawler, log logrus.FieldLogger, opts ...Option) *Enricher {
	e := &Enricher{resolver: res, extractor: extractor, crawler: crawl, log: log}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich never fails; whatever could not be found is left empty and serialized as
// NotFound.
func (e *Enricher) Enrich(ctx context.Context, req Request) Record {
	start := time.Now()
	input := strings.TrimSpace(req.Company)
	fields := requestedFields(req.FieldsToExtract)
	log := e.log.WithField("company", input)

	var rec Record
	if input == "" {
		return rec
	}

	res, err := e.resolver.Resolve(ctx, input)
	if err != nil {
		log.WithError(err).Info("website not found")
		if fields[FieldCompanyName] {
			rec.CompanyName = fallbackName(input)
		}
		return rec
	}

	rec.Website = res.FinalURL
	rec.Domain = res.Domain
	if host := hostOf(res.FinalURL); host != "" {
		rec.Domain = extract.RegistrableDomain(host)
	}

	var partials []extract.Signals
	home := res.FinalURL
	var homeDoc *goquery.Document
	if e.extractor != nil && needsPage(fields) {
		page := e.extractor.Extract(ctx, res.FinalURL, pipeline.Options{
			FastMode:    req.FastMode || e.fastMode,
			UseHeadless: e.useHeadless,
		})
		if page.FinalURL != "" {
			home = page.FinalURL
		}
		signals := extract.Signals{Source: page.Tier, Social: page.Social}
		if page.HTML != "" {
			if doc, err := extract.Parse(page.HTML); err == nil {
				homeDoc = doc
				contact := extract.Contact(doc, e.region)
				signals.Email, signals.Phone = contact.Email, contact.Phone
			}
		}
		partials = append(partials, signals)

		if e.crawler != nil && needsCrawl(fields) {
			crawled := e.crawler.Crawl(ctx, home, page.HTML)
			partials = append(partials, crawled.Partials...)
			rec.VisitedPages = crawled.Visited
		} else if page.HTML != "" {
			rec.VisitedPages = []string{home}
		}
	}

	merged := Aggregate(partials...)
	rec.Email = merged.Email
	rec.Phone = merged.Phone
	rec.ContactPage = merged.ContactPage
	rec.SocialLinks = merged.SocialLinks

	if homeDoc != nil {
		rec.CompanyName = extract.CompanyName(homeDoc, rec.Domain)
	} else if res.FromName {
		rec.CompanyName = input
	} else {
		rec.CompanyName = extract.NameFromDomain(rec.Domain)
	}

	rec = restrict(rec, fields)
	log.WithFields(logrus.Fields{
		"website": rec.Website,
		"social":  len(rec.SocialLinks),
		"visited": len(rec.VisitedPages),
		"latency": time.Since(start).String(),
	}).Info("enrichment finished")
	return rec
}

func requestedFields(names []string) map[string]bool {
	out := map[string]bool{}
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		for _, known := range Fields {
			if name == known {
				out[name] = true
			}
		}
	}
	if len(out) == 0 {
		for _, known := range Fields {
			out[known] = true
		}
	}
	return out
}

func needsPage(fields map[string]bool) bool {
	return fields[FieldCompanyName] || needsCrawl(fields)
}

func needsCrawl(fields map[string]bool) bool {
	return fields[FieldEmail] || fields[FieldPhone] || fields[FieldSocialLinks] || fields[FieldContactPage]
}

func restrict(rec Record, fields map[string]bool) Record {
	if !fields[FieldWebsite] {
		rec.Website = ""
		rec.Domain = ""
	}
	if !fields[FieldCompanyName] {
		rec.CompanyName = ""
	}
	if !fields[FieldEmail] {
		rec.Email = ""
	}
	if !fields[FieldPhone] {
		rec.Phone = ""
	}
	if !fields[FieldSocialLinks] {
		rec.SocialLinks = nil
	}
	if !fields[FieldContactPage] {
		rec.ContactPage = ""
	}
	return rec
}

// fallbackName is used when no website was found: a URL-shaped input yields a
// domain-derived name, anything else is taken as the name itself.
func fallbackName(input string) string {
	if resolver.LooksLikeURL(input) {
		return extract.NameFromDomain(resolver.NormalizeURL(input))
	}
	return input
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
