package crawler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/octobees/leads-generator/enricher/internal/extract"
	"github.com/octobees/leads-generator/enricher/internal/fetch"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

const padding = `<p>Acme Robotics designs and manufactures industrial automation equipment for factories worldwide.</p>`

func page(body string) string {
	return "<html><head><title>Acme Robotics</title></head><body>" + padding + body + "</body></html>"
}

func newSite(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newCrawler(cfg Config) *Crawler {
	client := fetch.NewClient(quietLogger(), fetch.WithBackoff(time.Millisecond))
	return New(client, cfg, quietLogger())
}

func TestCrawl_ClassifiesAndVisitsContactPage(t *testing.T) {
	srv := newSite(t, map[string]string{
		"/": page(`<nav><a href="/contact-us">Contact</a><a href="/about">About us</a><a href="/products">Products</a></nav>
			<a href="https://twitter.com/acmebots">Twitter</a>`),
		"/contact-us": page(`<a href="mailto:info@acmebots.com">Email</a><a href="tel:+1-415-867-2301">Call</a>
			<a href="https://twitter.com/other">Other</a>`),
		"/about": page(`<a href="https://www.linkedin.com/company/acme-robotics">LinkedIn</a>`),
	})

	res := newCrawler(Config{}).Crawl(context.Background(), srv.URL+"/", "")

	if res.ContactPage != srv.URL+"/contact-us" {
		t.Fatalf("expected absolute contact page, got %q", res.ContactPage)
	}
	if len(res.Planned) != 2 || res.Planned[0].Type != extract.PageContact || res.Planned[1].Type != extract.PageAbout {
		t.Fatalf("unexpected plan: %+v", res.Planned)
	}
	if len(res.Visited) != 3 || res.Visited[1] != srv.URL+"/contact-us" {
		t.Fatalf("unexpected visited pages: %v", res.Visited)
	}
	if res.Partials[0].Source != "home" || res.Partials[0].Social[extract.Twitter] != "https://twitter.com/acmebots" {
		t.Fatalf("expected homepage partial first, got %+v", res.Partials[0])
	}
	if res.Partials[1].Email != "info@acmebots.com" || res.Partials[1].Phone == "" {
		t.Fatalf("expected contact details from contact page, got %+v", res.Partials[1])
	}
	if res.Partials[2].Social[extract.LinkedIn] == "" {
		t.Fatalf("expected linkedin from about page, got %+v", res.Partials[2])
	}
}

func TestCrawl_SecondaryFailureIsSkipped(t *testing.T) {
	srv := newSite(t, map[string]string{
		"/": page(`<a href="/contact">Contact</a><a href="/privacy-policy">Privacy</a>`),
		"/privacy-policy": page(`<a href="https://github.com/acmebots">GitHub</a>`),
	})

	res := newCrawler(Config{}).Crawl(context.Background(), srv.URL, "")
	if res.ContactPage != srv.URL+"/contact" {
		t.Fatalf("expected contact page even when it fails, got %q", res.ContactPage)
	}
	if len(res.Visited) != 2 {
		t.Fatalf("expected home and privacy visited, got %v", res.Visited)
	}
	last := res.Partials[len(res.Partials)-1]
	if last.ContactPage != res.ContactPage {
		t.Fatalf("expected trailing contact page partial, got %+v", last)
	}
}

func TestCrawl_UsesProvidedHomeHTML(t *testing.T) {
	fetcher := &countingFetcher{}
	c := New(fetcher, Config{}, quietLogger())
	home := page(`<a href="https://www.instagram.com/acmebots/">Instagram</a>`)

	res := c.Crawl(context.Background(), "https://acme.com/", home)
	if fetcher.calls != 0 {
		t.Fatalf("expected no fetch when html is supplied, got %d", fetcher.calls)
	}
	if res.Partials[0].Social[extract.Instagram] == "" {
		t.Fatalf("expected instagram from supplied html, got %+v", res.Partials[0])
	}
}

func TestCrawl_CapsSecondaryPages(t *testing.T) {
	var links strings.Builder
	for _, p := range []string{"/contact", "/contact-sales", "/contact-support", "/about", "/about-team", "/team", "/privacy", "/terms"} {
		links.WriteString(`<a href="` + p + `">` + strings.TrimPrefix(p, "/") + `</a>`)
	}
	fetcher := &countingFetcher{err: errors.New("unreachable")}
	c := New(fetcher, Config{MaxPages: 5}, quietLogger())

	res := c.Crawl(context.Background(), "https://acme.com/", page(links.String()))
	if len(res.Planned) != 5 {
		t.Fatalf("expected 5 planned pages, got %d", len(res.Planned))
	}
	wantTypes := []extract.PageType{extract.PageContact, extract.PageAbout, extract.PagePrivacy, extract.PageTerms, extract.PageContact}
	for i, want := range wantTypes {
		if res.Planned[i].Type != want {
			t.Fatalf("planned[%d] = %s, want %s", i, res.Planned[i].Type, want)
		}
	}
	if fetcher.calls != 5 {
		t.Fatalf("expected one fetch per planned page, got %d", fetcher.calls)
	}
}

func TestCrawl_FollowsLanguageSplash(t *testing.T) {
	srv := newSite(t, map[string]string{
		"/":    page(`<p>Choose your language</p><a href="/de/">Deutsch</a><a href="/en/">English</a>`),
		"/en/": page(`<a href="https://www.youtube.com/@acmebots">YouTube</a>`),
	})

	res := newCrawler(Config{}).Crawl(context.Background(), srv.URL+"/", "")
	if res.HomeURL != srv.URL+"/en/" {
		t.Fatalf("expected splash to be followed, got %s", res.HomeURL)
	}
	if res.Partials[0].Social[extract.YouTube] == "" {
		t.Fatalf("expected youtube from language home, got %+v", res.Partials[0])
	}
}

func TestCrawl_UnreachableHome(t *testing.T) {
	c := New(&countingFetcher{err: errors.New("refused")}, Config{}, quietLogger())
	res := c.Crawl(context.Background(), "https://acme.com/", "")
	if len(res.Visited) != 0 || len(res.Partials) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestCrawl_CancelledContextStopsSecondaryPages(t *testing.T) {
	fetcher := &countingFetcher{}
	c := New(fetcher, Config{Delay: time.Hour}, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.Crawl(ctx, "https://acme.com/", page(`<a href="/contact">Contact</a>`))
	if fetcher.calls != 0 || len(res.Visited) != 1 {
		t.Fatalf("expected only the homepage, got calls=%d visited=%v", fetcher.calls, res.Visited)
	}
}

type countingFetcher struct {
	err   error
	calls int
}

func (f *countingFetcher) Fetch(ctx context.Context, rawURL string, opts fetch.Options) (*fetch.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &fetch.Result{HTML: page(""), FinalURL: rawURL, StatusCode: 200}, nil
}
