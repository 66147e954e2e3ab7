package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/octobees/leads-generator/enricher/internal/crawler"
	"github.com/octobees/leads-generator/enricher/internal/extract"
	"github.com/octobees/leads-generator/enricher/internal/pipeline"
	"github.com/octobees/leads-generator/enricher/internal/resolver"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type stubResolver struct {
	res resolver.Resolution
	err error
}

func (s stubResolver) Resolve(ctx context.Context, input string) (resolver.Resolution, error) {
	return s.res, s.err
}

type stubExtractor struct {
	page  pipeline.Page
	opts  pipeline.Options
	calls int
}

func (s *stubExtractor) Extract(ctx context.Context, url string, opts pipeline.Options) pipeline.Page {
	s.calls++
	s.opts = opts
	return s.page
}

type stubCrawler struct {
	result   crawler.Result
	homeHTML string
	calls    int
}

func (s *stubCrawler) Crawl(ctx context.Context, homeURL, homeHTML string) crawler.Result {
	s.calls++
	s.homeHTML = homeHTML
	return s.result
}

const homeHTML = `<html><head><meta property="og:site_name" content="Acme Robotics"></head>
<body><a href="mailto:hello@acme.com">Mail us</a></body></html>`

func acmeResolution() resolver.Resolution {
	return resolver.Resolution{Input: "Acme", URL: "http://acme.com", FinalURL: "https://www.acme.com/", Host: "www.acme.com", Domain: "acme.com", FromName: true}
}

func TestEnrich_MergesHomepageAndCrawl(t *testing.T) {
	extractor := &stubExtractor{page: pipeline.Page{
		FinalURL: "https://www.acme.com/",
		HTML:     homeHTML,
		Tier:     pipeline.TierFast,
		Social:   map[extract.Platform]string{extract.Facebook: "https://www.facebook.com/acme"},
	}}
	crawl := &stubCrawler{result: crawler.Result{
		Visited: []string{"https://www.acme.com/", "https://www.acme.com/contact-us"},
		Partials: []extract.Signals{
			{Source: "contact", Email: "sales@acme.com", Phone: "+1 415 867 2301",
				Social: map[extract.Platform]string{extract.LinkedIn: "https://www.linkedin.com/company/acme"}},
			{Source: "crawl", ContactPage: "https://www.acme.com/contact-us"},
		},
	}}

	e := New(stubResolver{res: acmeResolution()}, extractor, crawl, quietLogger(), WithHeadless(true))
	rec := e.Enrich(context.Background(), Request{Company: "Acme", FastMode: true})

	if rec.CompanyName != "Acme Robotics" || rec.Website != "https://www.acme.com/" || rec.Domain != "acme.com" {
		t.Fatalf("unexpected identity fields: %+v", rec)
	}
	if rec.Email != "hello@acme.com" {
		t.Fatalf("expected homepage email to win, got %s", rec.Email)
	}
	if rec.Phone != "+1 415 867 2301" || rec.ContactPage != "https://www.acme.com/contact-us" {
		t.Fatalf("expected crawl to fill phone and contact page, got %+v", rec)
	}
	if len(rec.SocialLinks) != 2 || len(rec.VisitedPages) != 2 {
		t.Fatalf("unexpected social or visited: %+v", rec)
	}
	if !extractor.opts.FastMode || !extractor.opts.UseHeadless {
		t.Fatalf("expected request options to reach the pipeline, got %+v", extractor.opts)
	}
	if crawl.homeHTML != homeHTML {
		t.Fatalf("expected crawler to reuse homepage markup")
	}
}

func TestEnrich_NotFoundNeverFails(t *testing.T) {
	extractor := &stubExtractor{}
	e := New(stubResolver{err: resolver.ErrNotFound}, extractor, &stubCrawler{}, quietLogger())

	rec := e.Enrich(context.Background(), Request{Company: "Acme Robotics"})
	if rec.Website != "" || rec.CompanyName != "Acme Robotics" || extractor.calls != 0 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]interface{}
	_ = json.Unmarshal(data, &raw)
	if raw["website"] != NotFound || raw["email"] != NotFound {
		t.Fatalf("expected sentinels, got %s", data)
	}

	rec = e.Enrich(context.Background(), Request{Company: "acme-robotics.com"})
	if rec.CompanyName != "Acme Robotics" {
		t.Fatalf("expected domain-derived name, got %q", rec.CompanyName)
	}
	if rec = e.Enrich(context.Background(), Request{Company: "  "}); rec.CompanyName != "" {
		t.Fatalf("expected empty record for blank input, got %+v", rec)
	}
}

func TestEnrich_FieldsToExtract(t *testing.T) {
	extractor := &stubExtractor{page: pipeline.Page{HTML: homeHTML}}
	crawl := &stubCrawler{}
	e := New(stubResolver{res: acmeResolution()}, extractor, crawl, quietLogger())

	rec := e.Enrich(context.Background(), Request{Company: "Acme", FieldsToExtract: []string{"website"}})
	if extractor.calls != 0 || crawl.calls != 0 {
		t.Fatalf("expected website-only request to skip extraction")
	}
	if rec.Website == "" || rec.CompanyName != "" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	rec = e.Enrich(context.Background(), Request{Company: "Acme", FieldsToExtract: []string{"company_name", "bogus"}})
	if extractor.calls != 1 || crawl.calls != 0 {
		t.Fatalf("expected pipeline without crawl, got extract=%d crawl=%d", extractor.calls, crawl.calls)
	}
	if rec.CompanyName != "Acme Robotics" || rec.Website != "" || rec.Email != "" {
		t.Fatalf("expected only the company name, got %+v", rec)
	}
}

func TestEnrich_WithoutCrawlerVisitsHomeOnly(t *testing.T) {
	extractor := &stubExtractor{page: pipeline.Page{HTML: homeHTML}}
	e := New(stubResolver{res: acmeResolution()}, extractor, nil, quietLogger(), WithPhoneRegion("us"))
	rec := e.Enrich(context.Background(), Request{Company: "Acme"})
	if rec.Email != "hello@acme.com" {
		t.Fatalf("expected homepage email, got %s", rec.Email)
	}
	if len(rec.VisitedPages) != 1 || rec.VisitedPages[0] != "https://www.acme.com/" {
		t.Fatalf("expected only the homepage visited, got %v", rec.VisitedPages)
	}
}

func TestEnrich_ResolverErrorIsSwallowed(t *testing.T) {
	e := New(stubResolver{err: errors.New("boom")}, nil, nil, quietLogger())
	rec := e.Enrich(context.Background(), Request{Company: "Globex"})
	if rec.Website != "" || rec.CompanyName != "Globex" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}
