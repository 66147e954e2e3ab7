package extract

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var logoSelectors = []string{".navbar-brand", ".site-title", ".site-name", ".brand", "#logo", ".logo", "[class*='logo']"}

var logoImageSelectors = []string{"img[class*='logo'][alt]", "img[id*='logo'][alt]", "img[src*='logo'][alt]", "header img[alt]", ".logo img[alt]"}

var titleSeparators = []string{" | ", " - ", " – ", " — ", " :: ", " · ", " • ", " // "}

var nameBlocklist = map[string]struct{}{
	"home": {}, "homepage": {}, "home page": {}, "welcome": {}, "index": {}, "untitled": {},
	"default": {}, "login": {}, "log in": {}, "sign in": {}, "menu": {}, "main menu": {},
	"about": {}, "about us": {}, "contact": {}, "contact us": {}, "loading": {}, "loading...": {},
	"404": {}, "page not found": {}, "not found": {}, "coming soon": {}, "under construction": {},
	"just another wordpress site": {}, "my blog": {}, "logo": {}, "skip to content": {},
	"official website": {}, "official site": {}, "blog": {}, "news": {}, "shop": {},
}

// CompanyName derives an organization name from branding metadata, falling back to a
// title-cased label of the registrable domain.
func CompanyName(doc *goquery.Document, domain string) string {
	if doc != nil {
		for _, candidate := range nameCandidates(doc) {
			if name, ok := cleanName(candidate); ok {
				return name
			}
		}
	}
	return NameFromDomain(domain)
}

func nameCandidates(doc *goquery.Document) []string {
	var out []string
	out = append(out,
		doc.Find("meta[property='og:site_name']").AttrOr("content", ""),
		doc.Find("meta[name='application-name']").AttrOr("content", ""),
	)
	for _, sel := range logoSelectors {
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			if text != "" {
				out = append(out, text)
				return false
			}
			return true
		})
	}
	for _, sel := range logoImageSelectors {
		if alt, ok := doc.Find(sel).First().Attr("alt"); ok {
			out = append(out, alt)
		}
	}
	out = append(out, doc.Find("h1").First().Text())
	out = append(out, titleSegments(doc.Find("title").First().Text())...)
	return out
}

func titleSegments(title string) []string {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	for _, sep := range titleSeparators {
		if strings.Contains(title, sep) {
			return strings.Split(title, sep)
		}
	}
	return []string{title}
}

func cleanName(raw string) (string, bool) {
	name := strings.Join(strings.Fields(raw), " ")
	lower := strings.ToLower(name)
	for _, suffix := range []string{" logo", " homepage", " home"} {
		if strings.HasSuffix(lower, suffix) {
			name = strings.TrimSpace(name[:len(name)-len(suffix)])
			lower = strings.ToLower(name)
		}
	}
	name = strings.Trim(name, " -|:·•")
	lower = strings.ToLower(name)

	if len(name) < 2 || len(name) > 60 {
		return "", false
	}
	if _, blocked := nameBlocklist[lower]; blocked {
		return "", false
	}
	if strings.HasPrefix(lower, "welcome to ") {
		return cleanName(name[len("welcome to "):])
	}
	if strings.Contains(lower, "http://") || strings.Contains(lower, "https://") || strings.Contains(lower, "@") {
		return "", false
	}
	if len(strings.Fields(name)) > 8 {
		return "", false
	}

	var letters, digits int
	for _, r := range name {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		}
	}
	if letters == 0 || float64(digits)/float64(letters+digits) > 0.3 {
		return "", false
	}
	return name, true
}

// NameFromDomain turns "acme-robotics.co.uk" or a URL on it into "Acme Robotics".
func NameFromDomain(domain string) string {
	host := strings.TrimSpace(strings.ToLower(domain))
	if strings.Contains(host, "://") {
		if u, err := url.Parse(host); err == nil {
			host = u.Hostname()
		}
	}
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return ""
	}
	if registrable, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		host = registrable
	}
	label, _, _ := strings.Cut(host, ".")
	label = strings.NewReplacer("-", " ", "_", " ").Replace(label)
	return cases.Title(language.English).String(strings.Join(strings.Fields(label), " "))
}
