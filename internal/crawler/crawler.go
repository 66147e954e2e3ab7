package crawler

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/octobees/leads-generator/enricher/internal/extract"
	"github.com/octobees/leads-generator/enricher/internal/fetch"
)

// Fetcher retrieves a page over plain HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, opts fetch.Options) (*fetch.Result, error)
}

// Config bounds a crawl.
type Config struct {
	Retries     int
	Delay       time.Duration
	MaxPages    int
	Timeout     time.Duration
	PhoneRegion string
}

// Page is a planned secondary page.
type Page struct {
	URL  string
	Type extract.PageType
}

// Result is everything a crawl learned. Partials are ordered homepage first.
type Result struct {
	HomeURL     string
	ContactPage string
	Planned     []Page
	Visited     []string
	Partials    []extract.Signals
}

// Crawler visits the homepage and a bounded set of secondary pages of one site.
type Crawler struct {
	fetcher Fetcher
	cfg     Config
	log     logrus.FieldLogger
}

// New builds a crawler with defaults for unset limits.
func New(fetcher Fetcher, cfg Config, log logrus.FieldLogger) *Crawler {
	if cfg.Retries <= 0 {
		cfg.Retries = 2
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	return &Crawler{fetcher: fetcher, cfg: cfg, log: log}
}

// Crawl extracts signals from homeURL (using homeHTML when the caller already has it)
// and then from up to MaxPages contact, about, privacy and terms pages. Page failures
// are logged and skipped.
func (c *Crawler) Crawl(ctx context.Context, homeURL, homeHTML string) Result {
	res := Result{HomeURL: homeURL}
	log := c.log.WithField("site", homeURL)

	doc, final, ok := c.home(ctx, homeURL, homeHTML)
	if !ok {
		log.Info("homepage unavailable, crawl skipped")
		return res
	}

	if extract.IsLanguageSplash(doc) {
		if target := extract.PreferredLanguageLink(doc, final); target != "" {
			if splashDoc, splashFinal, err := c.load(ctx, target); err == nil {
				log.WithField("target", splashFinal).Info("followed language splash")
				doc, final = splashDoc, splashFinal
			}
		}
	}

	res.HomeURL = final
	res.Visited = append(res.Visited, final)
	home := extract.PageSignals(doc, final, c.cfg.PhoneRegion)
	home.Source = "home"
	res.Partials = append(res.Partials, home)

	res.Planned, res.ContactPage = c.plan(doc, final)
	for _, page := range res.Planned {
		if err := sleep(ctx, c.cfg.Delay); err != nil {
			break
		}
		pageDoc, pageURL, err := c.load(ctx, page.URL)
		if err != nil {
			log.WithFields(logrus.Fields{"url": page.URL, "type": string(page.Type), "error": err.Error()}).Warn("secondary page failed")
			continue
		}
		signals := extract.PageSignals(pageDoc, pageURL, c.cfg.PhoneRegion)
		signals.Source = string(page.Type)
		res.Partials = append(res.Partials, signals)
		res.Visited = append(res.Visited, pageURL)
	}

	if res.ContactPage != "" {
		res.Partials = append(res.Partials, extract.Signals{Source: "crawl", ContactPage: res.ContactPage})
	}
	log.WithFields(logrus.Fields{"planned": len(res.Planned), "visited": len(res.Visited)}).Info("crawl finished")
	return res
}

func (c *Crawler) home(ctx context.Context, homeURL, homeHTML string) (*goquery.Document, string, bool) {
	if homeHTML != "" {
		doc, err := extract.Parse(homeHTML)
		if err == nil {
			return doc, homeURL, true
		}
	}
	doc, final, err := c.load(ctx, homeURL)
	if err != nil {
		return nil, "", false
	}
	return doc, final, true
}

func (c *Crawler) load(ctx context.Context, rawURL string) (*goquery.Document, string, error) {
	res, err := c.fetcher.Fetch(ctx, rawURL, fetch.Options{Retries: c.cfg.Retries, Timeout: c.cfg.Timeout})
	if err != nil {
		return nil, "", err
	}
	doc, err := extract.Parse(res.HTML)
	if err != nil {
		return nil, "", err
	}
	final := res.FinalURL
	if final == "" {
		final = rawURL
	}
	return doc, final, nil
}

var planOrder = []extract.PageType{extract.PageContact, extract.PageAbout, extract.PagePrivacy, extract.PageTerms}

// plan picks the first link of each page type, then fills the remaining slots with further
// contact and about pages. The first contact link is also reported as the contact page.
func (c *Crawler) plan(doc *goquery.Document, homeURL string) ([]Page, string) {
	byType := map[extract.PageType][]string{}
	for _, link := range extract.NavLinks(doc, homeURL) {
		if fetchEquivalent(link.URL, homeURL) {
			continue
		}
		t := extract.ClassifyPage(link.URL, link.Text)
		if t == extract.PageOther || t == extract.PageHome {
			continue
		}
		byType[t] = append(byType[t], link.URL)
	}

	var contactPage string
	if links := byType[extract.PageContact]; len(links) > 0 {
		contactPage = links[0]
	}

	var planned []Page
	for _, t := range planOrder {
		if len(planned) >= c.cfg.MaxPages {
			break
		}
		if links := byType[t]; len(links) > 0 {
			planned = append(planned, Page{URL: links[0], Type: t})
		}
	}
	for _, t := range []extract.PageType{extract.PageContact, extract.PageAbout} {
		for _, link := range byType[t][min(1, len(byType[t])):] {
			if len(planned) >= c.cfg.MaxPages {
				return planned, contactPage
			}
			planned = append(planned, Page{URL: link, Type: t})
		}
	}
	return planned, contactPage
}

func fetchEquivalent(a, b string) bool {
	trim := func(s string) string {
		for len(s) > 0 && s[len(s)-1] == '/' {
			s = s[:len(s)-1]
		}
		return s
	}
	return trim(a) == trim(b)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
