package enrich

import (
	"testing"

	"github.com/octobees/leads-generator/enricher/internal/extract"
)

func TestAggregate_FirstSourceWins(t *testing.T) {
	home := extract.Signals{
		Source: "home",
		Email:  "info@acme.com",
		Social: map[extract.Platform]string{extract.Facebook: "https://www.facebook.com/acme"},
	}
	contact := extract.Signals{
		Source: "contact",
		Email:  "sales@acme.com",
		Phone:  "+1 415 867 2301",
		Social: map[extract.Platform]string{
			extract.Facebook: "https://www.facebook.com/acme-other",
			extract.LinkedIn: "https://www.linkedin.com/company/acme",
		},
	}
	crawl := extract.Signals{Source: "crawl", ContactPage: "https://acme.com/contact"}

	rec := Aggregate(home, contact, crawl)
	if rec.Email != "info@acme.com" || rec.Phone != "+1 415 867 2301" {
		t.Fatalf("unexpected contact details: %+v", rec)
	}
	if rec.SocialLinks[extract.Facebook] != "https://www.facebook.com/acme" {
		t.Fatalf("expected homepage facebook to be kept, got %s", rec.SocialLinks[extract.Facebook])
	}
	if rec.SocialLinks[extract.LinkedIn] == "" || rec.ContactPage != "https://acme.com/contact" {
		t.Fatalf("expected later sources to fill gaps, got %+v", rec)
	}
}

func TestAggregate_Empty(t *testing.T) {
	rec := Aggregate()
	if rec.SocialLinks != nil || rec.Email != "" {
		t.Fatalf("expected empty record, got %+v", rec)
	}
}
