package extract

import (
	"html"
	"strings"
)

// SocialLinksFromSource scans unparsed markup, including inline scripts and JSON blobs,
// for profile URLs. It catches links that only exist in client-side templates.
func SocialLinksFromSource(raw string) map[Platform]string {
	found := make(map[Platform]string)
	if raw == "" {
		return found
	}
	text := html.UnescapeString(raw)
	for _, pattern := range rawSourcePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			candidate := strings.ReplaceAll(match, `\/`, "/")
			candidate = strings.TrimRight(candidate, `.,;:!'"`)
			platform, canonical, ok := ClassifySocialURL(candidate)
			if !ok {
				continue
			}
			if _, exists := found[platform]; !exists {
				found[platform] = canonical
			}
			if len(found) == len(Platforms) {
				return found
			}
		}
	}
	return found
}
