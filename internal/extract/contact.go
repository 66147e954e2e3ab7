package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nyaruka/phonenumbers"
)

// ContactInfo holds the best email and phone number found on a page.
type ContactInfo struct {
	Email string
	Phone string
}

var (
	emailPattern     = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,24}\b`)
	emailExact       = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.\-]+\.[a-z]{2,24}$`)
	phonePattern     = regexp.MustCompile(`(?:\+\d{1,3}[\s.\-]?)?(?:\(\d{1,4}\)[\s.\-]?)?\d{2,4}(?:[\s.\-]?\d{2,4}){1,4}`)
	contactRegionSel = "footer, #footer, .footer, address, [class*='contact'], [id*='contact']"
)

var placeholderEmailDomains = map[string]struct{}{
	"example.com": {}, "example.org": {}, "example.net": {}, "domain.com": {}, "email.com": {},
	"yourdomain.com": {}, "yoursite.com": {}, "website.com": {}, "company.com": {},
	"sentry.io": {}, "wixpress.com": {}, "sentry-next.wixpress.com": {}, "test.com": {},
}

var placeholderLocalParts = map[string]struct{}{
	"name": {}, "your": {}, "yourname": {}, "your.name": {}, "user": {}, "username": {},
	"email": {}, "example": {}, "test": {}, "john.doe": {}, "johndoe": {}, "someone": {},
	"noreply": {}, "no-reply": {}, "donotreply": {}, "do-not-reply": {},
}

var assetSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".css", ".js"}

// priorityLocalParts are preferred over personal addresses when several are present.
var priorityLocalParts = []string{"info", "contact", "hello", "sales", "support", "office", "enquiries", "inquiries", "team", "admin", "mail"}

// ContactExtractor finds emails and phones. Region is the default phone region; a number
// that is valid there is preferred over other candidates but never required.
type ContactExtractor struct {
	Region string
}

// Contact extracts contact details with the given default phone region.
func Contact(doc *goquery.Document, region string) ContactInfo {
	return ContactExtractor{Region: region}.Extract(doc)
}

// Extract looks at mailto/tel links first, then footer and contact regions, then the
// whole body.
func (e ContactExtractor) Extract(doc *goquery.Document) ContactInfo {
	var info ContactInfo
	if doc == nil {
		return info
	}

	var mailtos, tels []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		lower := strings.ToLower(href)
		switch {
		case strings.HasPrefix(lower, "mailto:"):
			mailtos = append(mailtos, decodeLinkTarget(href[len("mailto:"):]))
		case strings.HasPrefix(lower, "tel:"):
			tels = append(tels, decodeLinkTarget(href[len("tel:"):]))
		}
	})

	info.Email = pickEmail(mailtos)
	info.Phone = e.pickPhone(tels)
	if info.Email != "" && info.Phone != "" {
		return info
	}

	var regions []string
	doc.Find(contactRegionSel).Each(func(_ int, s *goquery.Selection) {
		regions = append(regions, selectionText(s))
	})
	regions = append(regions, selectionText(doc.Find("body")))

	for _, text := range regions {
		if info.Email == "" {
			info.Email = pickEmail(emailPattern.FindAllString(text, -1))
		}
		if info.Phone == "" {
			info.Phone = e.firstPhone(text)
		}
		if info.Email != "" && info.Phone != "" {
			break
		}
	}
	return info
}

func decodeLinkTarget(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	return strings.TrimSpace(raw)
}

func pickEmail(candidates []string) string {
	var valid []string
	for _, c := range candidates {
		if email, ok := NormalizeEmail(c); ok {
			valid = append(valid, email)
		}
	}
	if len(valid) == 0 {
		return ""
	}
	for _, local := range priorityLocalParts {
		for _, email := range valid {
			if strings.HasPrefix(email, local+"@") {
				return email
			}
		}
	}
	return valid[0]
}

// NormalizeEmail lowercases an address and rejects malformed and placeholder values.
func NormalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.Trim(strings.TrimSpace(raw), ".,;:<>()[]\"'"))
	if !emailExact.MatchString(email) {
		return "", false
	}
	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(email, suffix) {
			return "", false
		}
	}
	local, domain, _ := strings.Cut(email, "@")
	if _, bad := placeholderLocalParts[local]; bad {
		return "", false
	}
	if _, bad := placeholderEmailDomains[domain]; bad {
		return "", false
	}
	if strings.HasSuffix(domain, ".example") || strings.Contains(domain, "..") {
		return "", false
	}
	return email, true
}

// selectionText joins the text nodes of s with spaces so adjacent elements stay
// separate words.
func selectionText(s *goquery.Selection) string {
	var b strings.Builder
	for _, node := range s.Nodes {
		b.WriteString(visibleText(node, hiddenElements))
		b.WriteByte(' ')
	}
	return b.String()
}

func (e ContactExtractor) firstPhone(text string) string {
	return e.pickPhone(phonePattern.FindAllString(text, -1))
}

// pickPhone returns the first candidate valid for the default region, else the first
// candidate passing ValidPhone.
func (e ContactExtractor) pickPhone(candidates []string) string {
	var fallback string
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if !e.ValidPhone(c) {
			continue
		}
		if e.validForRegion(c) {
			return c
		}
		if fallback == "" {
			fallback = c
		}
	}
	return fallback
}

func (e ContactExtractor) validForRegion(raw string) bool {
	if e.Region == "" || strings.HasPrefix(raw, "+") {
		return false
	}
	number, err := phonenumbers.Parse(raw, e.Region)
	return err == nil && phonenumbers.IsValidNumberForRegion(number, e.Region)
}

// ValidPhone checks digit length and rejects placeholder numbers. Numbers written with a
// country prefix must also be possible numbers for that country; local numbers are not
// checked against the default region since the site may be in another country.
func (e ContactExtractor) ValidPhone(raw string) bool {
	raw = strings.TrimSpace(raw)
	digits := digitsOnly(raw)
	if len(digits) < 10 || len(digits) > 15 {
		return false
	}
	if isPlaceholderNumber(digits) {
		return false
	}
	if !strings.HasPrefix(raw, "+") {
		return true
	}
	number, err := phonenumbers.Parse(raw, "")
	if err != nil {
		return false
	}
	return phonenumbers.IsPossibleNumber(number)
}

func isPlaceholderNumber(digits string) bool {
	if strings.Count(digits, digits[:1]) == len(digits) {
		return true
	}
	const ascending = "012345678901234567890"
	const descending = "987654321098765432109"
	if strings.Contains(ascending, digits) || strings.Contains(descending, digits) {
		return true
	}
	national := digits
	if len(national) == 11 && national[0] == '1' {
		national = national[1:]
	}
	if strings.HasPrefix(national, "555") {
		return true
	}
	if len(national) == 10 && strings.HasPrefix(national[3:], "55501") {
		return true
	}
	return strings.Trim(digits, "0") == "" || strings.Trim(digits, "1") == ""
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
