package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"

	"github.com/octobees/leads-generator/enricher/internal/enrich"
	"github.com/octobees/leads-generator/enricher/internal/extract"
)

var idnaProfile = idna.Lookup

const (
	trackingPrefix     = "utm_"
	defaultPhoneRegion = "US"
	defaultMXTimeout   = 3 * time.Second
)

// MXChecker abstracts MX lookups to simplify testing.
type MXChecker interface {
	HasMX(ctx context.Context, domain string) (bool, error)
}

// RecordCleaner normalizes an enrichment record before it is returned or stored.
type RecordCleaner struct {
	DefaultRegion string
	mx            MXChecker
	mxTimeout     time.Duration
}

// RecordCleanerOption configures optional dependencies.
type RecordCleanerOption func(*RecordCleaner)

// WithMXChecker drops emails whose domain has no MX record. Lookup errors keep the email.
func WithMXChecker(mx MXChecker) RecordCleanerOption {
	return func(c *RecordCleaner) {
		c.mx = mx
	}
}

// NewRecordCleaner builds a cleaner with sensible defaults.
func NewRecordCleaner(defaultRegion string, opts ...RecordCleanerOption) *RecordCleaner {
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if region == "" {
		region = defaultPhoneRegion
	}
	c := &RecordCleaner{DefaultRegion: region, mxTimeout: defaultMXTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean returns a copy of rec with a punycode email domain, an internationally formatted
// phone number and tracking parameters removed from URLs.
func (c *RecordCleaner) Clean(ctx context.Context, rec enrich.Record) enrich.Record {
	rec.Email = c.cleanEmail(ctx, rec.Email)
	rec.Phone = c.normalizePhone(rec.Phone)
	rec.Website = stripTracking(rec.Website)
	rec.ContactPage = stripTracking(rec.ContactPage)
	if len(rec.SocialLinks) > 0 {
		links := make(map[extract.Platform]string, len(rec.SocialLinks))
		for platform, link := range rec.SocialLinks {
			links[platform] = stripTracking(link)
		}
		rec.SocialLinks = links
	}
	return rec
}

func (c *RecordCleaner) cleanEmail(ctx context.Context, raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || !isDomainValid(domain) {
		return ""
	}
	asciiDomain, err := idnaProfile.ToASCII(domain)
	if err != nil || asciiDomain == "" {
		return ""
	}
	if c.mx != nil && !c.hasMXRecord(ctx, asciiDomain) {
		return ""
	}
	return local + "@" + asciiDomain
}

func (c *RecordCleaner) hasMXRecord(ctx context.Context, domain string) bool {
	ctx, cancel := context.WithTimeout(ctx, c.mxTimeout)
	defer cancel()
	ok, err := c.mx.HasMX(ctx, domain)
	if err != nil {
		return true
	}
	return ok
}

// normalizePhone formats valid numbers internationally and keeps anything the
// phonenumbers metadata cannot parse as found on the page.
func (c *RecordCleaner) normalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	number, err := phonenumbers.Parse(raw, c.DefaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return raw
	}
	return phonenumbers.Format(number, phonenumbers.INTERNATIONAL)
}

func stripTracking(raw string) string {
	if raw == "" || !strings.Contains(raw, "?") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	parts := strings.Split(domain, ".")
	for _, part := range parts {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
