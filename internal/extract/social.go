package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SocialLinks returns the first profile URL per platform found in anchors, link tags and
// meta tags, in document order. Relative hrefs are resolved against base.
func SocialLinks(doc *goquery.Document, base string) map[Platform]string {
	found := make(map[Platform]string)
	if doc == nil {
		return found
	}
	baseURL, _ := url.Parse(base)

	visit := func(raw string) bool {
		abs := resolve(baseURL, raw)
		if abs == "" {
			return true
		}
		platform, canonical, ok := ClassifySocialURL(abs)
		if ok {
			if _, exists := found[platform]; !exists {
				found[platform] = canonical
			}
		}
		return len(found) < len(Platforms)
	}

	doc.Find("a[href], link[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		return visit(href)
	})
	doc.Find("meta[content]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content, _ := s.Attr("content")
		if !strings.Contains(content, ".") {
			return true
		}
		return visit(content)
	})
	return found
}

// ClassifySocialURL maps a URL to its platform and canonical form. Share widgets, login,
// search and legal pages of the networks, and bare network homepages are rejected.
func ClassifySocialURL(raw string) (Platform, string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", false
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", false
	}

	host := strings.ToLower(u.Hostname())
	for _, prefix := range []string{"www.", "m.", "mobile.", "web."} {
		host = strings.TrimPrefix(host, prefix)
	}
	path := strings.TrimRight(u.EscapedPath(), "/")
	if path == "" {
		return "", "", false
	}

	segments := strings.Split(strings.Trim(strings.ToLower(path), "/"), "/")
	for _, seg := range segments {
		if _, bad := excludedSegments[seg]; bad {
			return "", "", false
		}
	}
	if _, reserved := reservedHandles[segments[0]]; reserved {
		return "", "", false
	}

	subject := strings.ToLower(host + path)
	if u.RawQuery != "" {
		subject += "?" + strings.ToLower(u.RawQuery)
	}
	for _, entry := range platformTable {
		for _, pattern := range entry.patterns {
			if pattern.MatchString(subject) {
				return entry.platform, Canonicalize(u), true
			}
		}
	}
	return "", "", false
}

// Canonicalize drops the query and fragment of a profile URL. Facebook numeric profile
// links keep their id parameter since it is the only identifier.
func Canonicalize(u *url.URL) string {
	clean := *u
	clean.Fragment = ""
	clean.RawFragment = ""
	clean.RawQuery = ""
	if strings.HasSuffix(strings.ToLower(u.Path), "/profile.php") {
		if id := u.Query().Get("id"); id != "" {
			clean.RawQuery = "id=" + url.QueryEscape(id)
		}
	}
	return clean.String()
}

// CanonicalizeString is Canonicalize for raw strings. Unparsable input is returned as is.
func CanonicalizeString(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}
	return Canonicalize(u)
}

func resolve(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") || strings.HasPrefix(lower, "data:") {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if base == nil || ref.IsAbs() {
		if strings.HasPrefix(raw, "//") {
			return "https:" + raw
		}
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
