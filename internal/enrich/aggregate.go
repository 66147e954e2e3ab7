package enrich

import "github.com/octobees/leads-generator/enricher/internal/extract"

// Aggregate merges partial signals in priority order: the first non-empty value of each
// field wins and a platform, once set, is never replaced by a later source.
func Aggregate(partials ...extract.Signals) Record {
	var rec Record
	for _, p := range partials {
		rec.CompanyName = firstNonEmpty(rec.CompanyName, p.CompanyName)
		rec.Email = firstNonEmpty(rec.Email, p.Email)
		rec.Phone = firstNonEmpty(rec.Phone, p.Phone)
		rec.ContactPage = firstNonEmpty(rec.ContactPage, p.ContactPage)
		for _, platform := range extract.Platforms {
			link := p.Social[platform]
			if link == "" {
				continue
			}
			if _, taken := rec.SocialLinks[platform]; taken {
				continue
			}
			if rec.SocialLinks == nil {
				rec.SocialLinks = map[extract.Platform]string{}
			}
			rec.SocialLinks[platform] = link
		}
	}
	return rec
}

func firstNonEmpty(current, candidate string) string {
	if current != "" {
		return current
	}
	return candidate
}
