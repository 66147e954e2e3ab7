package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/octobees/leads-generator/enricher/internal/enrich"
	"github.com/octobees/leads-generator/enricher/internal/extract"
)

type stubMXChecker struct {
	mx    map[string]bool
	err   error
	calls []string
}

func (s *stubMXChecker) HasMX(ctx context.Context, domain string) (bool, error) {
	s.calls = append(s.calls, domain)
	if s.err != nil {
		return false, s.err
	}
	return s.mx[domain], nil
}

func TestClean_EmailDomainAndMX(t *testing.T) {
	mx := &stubMXChecker{mx: map[string]bool{"acme.com": true, "xn--mnchen-3ya.de": true}}
	c := NewRecordCleaner("US", WithMXChecker(mx))

	if got := c.Clean(context.Background(), enrich.Record{Email: "Info@Acme.com"}).Email; got != "info@acme.com" {
		t.Fatalf("expected lowercased email, got %q", got)
	}
	if got := c.Clean(context.Background(), enrich.Record{Email: "info@münchen.de"}).Email; got != "info@xn--mnchen-3ya.de" {
		t.Fatalf("expected punycode domain, got %q", got)
	}
	if got := c.Clean(context.Background(), enrich.Record{Email: "info@nomail.com"}).Email; got != "" {
		t.Fatalf("expected email without mx to be dropped, got %q", got)
	}
	if got := c.Clean(context.Background(), enrich.Record{Email: "info@-bad.com"}).Email; got != "" {
		t.Fatalf("expected invalid domain to be dropped, got %q", got)
	}
	if len(mx.calls) != 3 {
		t.Fatalf("expected one lookup per valid email, got %v", mx.calls)
	}
}

func TestClean_MXLookupErrorKeepsEmail(t *testing.T) {
	c := NewRecordCleaner("", WithMXChecker(&stubMXChecker{err: errors.New("timeout")}))
	if got := c.Clean(context.Background(), enrich.Record{Email: "info@acme.com"}).Email; got != "info@acme.com" {
		t.Fatalf("expected email to survive lookup errors, got %q", got)
	}
	if c.DefaultRegion != defaultPhoneRegion {
		t.Fatalf("expected default region, got %q", c.DefaultRegion)
	}
}

func TestClean_PhoneFormatting(t *testing.T) {
	c := NewRecordCleaner("us")
	if got := c.Clean(context.Background(), enrich.Record{Phone: "(415) 867-2301"}).Phone; got != "+1 415-867-2301" {
		t.Fatalf("unexpected formatted phone: %q", got)
	}
	if got := c.Clean(context.Background(), enrich.Record{Phone: "+44 20 7946 0958"}).Phone; !strings.HasPrefix(got, "+44 20") {
		t.Fatalf("unexpected formatted uk phone: %q", got)
	}
	if got := c.Clean(context.Background(), enrich.Record{Phone: "12-34"}).Phone; got != "12-34" {
		t.Fatalf("expected unparseable phone to be kept, got %q", got)
	}
}

func TestClean_StripsTracking(t *testing.T) {
	c := NewRecordCleaner("US")
	rec := c.Clean(context.Background(), enrich.Record{
		Website:     "https://acme.com/?utm_source=maps",
		ContactPage: "https://acme.com/contact?utm_medium=x&lang=en",
		SocialLinks: map[extract.Platform]string{extract.Facebook: "https://www.facebook.com/profile.php?id=42"},
	})
	if rec.Website != "https://acme.com/" {
		t.Fatalf("unexpected website: %s", rec.Website)
	}
	if rec.ContactPage != "https://acme.com/contact?lang=en" {
		t.Fatalf("unexpected contact page: %s", rec.ContactPage)
	}
	if rec.SocialLinks[extract.Facebook] != "https://www.facebook.com/profile.php?id=42" {
		t.Fatalf("expected non-tracking query to survive, got %s", rec.SocialLinks[extract.Facebook])
	}
}
