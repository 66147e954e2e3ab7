package extract

import (
	"net"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"
)

// PageType classifies a page of a company site.
type PageType string

const (
	PageHome    PageType = "home"
	PageContact PageType = "contact"
	PageAbout   PageType = "about"
	PagePrivacy PageType = "privacy"
	PageTerms   PageType = "terms"
	PageOther   PageType = "other"
)

// pageKeywords is checked in order; contact wins over about when a link mentions both.
var pageKeywords = []struct {
	page     PageType
	keywords []string
}{
	{PageContact, []string{"contact", "kontakt", "contacto", "contato", "contatti", "get-in-touch", "get in touch", "reach-us", "impressum"}},
	{PageAbout, []string{"about", "who-we-are", "who we are", "our-story", "our story", "company", "team", "ueber-uns", "uber-uns", "qui-sommes", "chi-siamo"}},
	{PagePrivacy, []string{"privacy", "datenschutz", "gdpr", "data-protection", "cookie-policy"}},
	{PageTerms, []string{"terms", "conditions", "tos", "agb", "legal", "disclaimer"}},
}

// Link is an anchor target with its visible text.
type Link struct {
	URL  string
	Text string
}

// ClassifyPage assigns a page type from the link path and anchor text.
func ClassifyPage(rawURL, anchorText string) PageType {
	u, err := url.Parse(rawURL)
	if err != nil {
		return PageOther
	}
	path := strings.ToLower(strings.Trim(u.Path, "/"))
	if path == "" || path == "index.html" || path == "index.php" {
		return PageHome
	}
	text := strings.ToLower(strings.TrimSpace(anchorText))
	for _, entry := range pageKeywords {
		for _, kw := range entry.keywords {
			if matchKeyword(path, kw) || (text != "" && matchKeyword(text, kw)) {
				return entry.page
			}
		}
	}
	return PageOther
}

var wordSeparators = strings.NewReplacer("/", "-", "_", "-", ".", "-", " ", "-")

// matchKeyword uses substring matching for long keywords and whole-word matching for
// short ones, so "tos" does not match "photos".
func matchKeyword(haystack, kw string) bool {
	if len(kw) >= 5 {
		return strings.Contains(haystack, kw)
	}
	return strings.Contains("-"+wordSeparators.Replace(haystack)+"-", "-"+wordSeparators.Replace(kw)+"-")
}

// NavLinks returns de-duplicated absolute http(s) links on the same registrable domain as
// base, in document order, with fragments removed.
func NavLinks(doc *goquery.Document, base string) []Link {
	if doc == nil {
		return nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}
	seen := map[string]struct{}{}
	var out []Link
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		abs := resolve(baseURL, s.AttrOr("href", ""))
		if abs == "" {
			return
		}
		u, err := url.Parse(abs)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return
		}
		u.Fragment = ""
		u.RawFragment = ""
		if !SameSite(u.Hostname(), baseURL.Hostname()) {
			return
		}
		key := u.String()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, Link{URL: key, Text: strings.Join(strings.Fields(s.Text()), " ")})
	})
	return out
}

// RegistrableDomain returns the eTLD+1 of host, or host without "www." when the public
// suffix list has no answer (IP addresses, single labels).
func RegistrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
	if net.ParseIP(strings.Trim(host, "[]")) != nil {
		return host
	}
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return domain
	}
	return strings.TrimPrefix(host, "www.")
}

// SameSite reports whether two hosts share a registrable domain.
func SameSite(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return RegistrableDomain(a) == RegistrableDomain(b)
}
