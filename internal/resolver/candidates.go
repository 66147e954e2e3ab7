package resolver

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/idna"
)

// TLDs are probed in this order: general business suffixes, then country codes.
var TLDs = []string{
	"com", "net", "org", "co", "io", "biz", "info", "ai", "app",
	"us", "co.uk", "uk", "ca", "de", "com.au", "in",
}

// Candidate is a guessed domain built from a company name.
type Candidate struct {
	Name string
	TLD  string
}

// Host returns "name.tld".
func (c Candidate) Host() string {
	return c.Name + "." + c.TLD
}

var (
	hostLabelChars = regexp.MustCompile(`[^a-z0-9\-_]`)
	alnumOnly      = regexp.MustCompile(`[^a-z0-9]`)
	hostnameShape  = regexp.MustCompile(`^(?:[a-z0-9](?:[a-z0-9\-]{0,61}[a-z0-9])?\.)+[a-z]{2,63}(?::\d{1,5})?(?:[/?#].*)?$`)
)

// NameVariations lowercases name and produces, without duplicates: whitespace removed,
// hyphenated, underscored, and every non-alphanumeric stripped.
func NameVariations(name string) []string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	if len(fields) == 0 {
		return nil
	}
	raw := []string{
		hostLabelChars.ReplaceAllString(strings.Join(fields, ""), ""),
		hostLabelChars.ReplaceAllString(strings.Join(fields, "-"), ""),
		hostLabelChars.ReplaceAllString(strings.Join(fields, "_"), ""),
		alnumOnly.ReplaceAllString(strings.Join(fields, ""), ""),
	}
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		v = strings.Trim(v, "-_")
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Candidates expands every name variation against every TLD, variation-major.
func Candidates(name string) []Candidate {
	variations := NameVariations(name)
	out := make([]Candidate, 0, len(variations)*len(TLDs))
	for _, v := range variations {
		for _, tld := range TLDs {
			out = append(out, Candidate{Name: v, TLD: tld})
		}
	}
	return out
}

// LooksLikeURL reports whether input should be probed directly instead of being treated
// as a company name.
func LooksLikeURL(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" || strings.ContainsFunc(input, unicode.IsSpace) {
		return false
	}
	lower := strings.ToLower(input)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return true
	}
	if !strings.Contains(lower, ".") {
		return false
	}
	return hostnameShape.MatchString(ASCIIHost(lower))
}

// ASCIIHost converts the host part of a scheme-less or full URL to its punycode form.
// Input that idna rejects is returned unchanged.
func ASCIIHost(input string) string {
	prefix := ""
	rest := input
	if i := strings.Index(rest, "://"); i >= 0 {
		prefix, rest = rest[:i+3], rest[i+3:]
	}
	end := strings.IndexAny(rest, ":/?#")
	if end < 0 {
		end = len(rest)
	}
	ascii, err := idna.Lookup.ToASCII(rest[:end])
	if err != nil || ascii == "" {
		return input
	}
	return prefix + ascii + rest[end:]
}

// NormalizeURL adds a scheme when missing.
func NormalizeURL(input string) string {
	input = strings.TrimSpace(input)
	lower := strings.ToLower(input)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return input
	}
	return "http://" + strings.TrimPrefix(input, "//")
}
