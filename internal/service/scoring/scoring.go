package scoring

import (
	"net/url"
	"strings"

	"github.com/octobees/leads-generator/enricher/internal/enrich"
	"github.com/octobees/leads-generator/enricher/internal/extract"
)

const (
	categoryContact = "contact_completeness"
	categoryWebsite = "website_quality"
	categorySocial  = "social_presence"
)

var freeHostingDomains = []string{
	"wordpress.com",
	"blogspot.com",
	"wixsite.com",
	"weebly.com",
	"squarespace.com",
	"medium.com",
	"substack.com",
	"godaddysites.com",
	"notion.site",
	"googlepages.com",
	"github.io",
	"webflow.io",
}

// LeadFeatures captures the enrichment signals used for scoring.
type LeadFeatures struct {
	Email        string
	Phone        string
	Socials      map[extract.Platform]string
	Website      string
	ContactPage  string
	PagesVisited int
}

// ScoreResult reports the aggregate score and the per-category breakdown.
type ScoreResult struct {
	Total     int            `json:"total"`
	Breakdown map[string]int `json:"breakdown"`
}

// FromRecord derives scoring features from an enrichment record.
func FromRecord(rec enrich.Record) LeadFeatures {
	return LeadFeatures{
		Email:        rec.Email,
		Phone:        rec.Phone,
		Socials:      rec.SocialLinks,
		Website:      rec.Website,
		ContactPage:  rec.ContactPage,
		PagesVisited: len(rec.VisitedPages),
	}
}

// Score is shorthand for ComputeScore(FromRecord(rec)).
func Score(rec enrich.Record) ScoreResult {
	return ComputeScore(FromRecord(rec))
}

// ComputeScore evaluates the provided features and returns the score breakdown.
// Categories are capped at 40, 30 and 30 points.
func ComputeScore(input LeadFeatures) ScoreResult {
	breakdown := map[string]int{
		categoryContact: scoreContactCompleteness(input),
		categoryWebsite: scoreWebsiteQuality(input),
		categorySocial:  scoreSocialPresence(input),
	}

	total := 0
	for _, value := range breakdown {
		total += value
	}

	return ScoreResult{
		Total:     total,
		Breakdown: breakdown,
	}
}

func scoreContactCompleteness(input LeadFeatures) int {
	score := 0
	if enrich.Found(strings.TrimSpace(input.Email)) {
		score += 15
	}
	if enrich.Found(strings.TrimSpace(input.Phone)) {
		score += 15
	}
	if enrich.Found(input.ContactPage) {
		score += 10
	}
	return min(score, 40)
}

func scoreWebsiteQuality(input LeadFeatures) int {
	if !enrich.Found(input.Website) {
		return 0
	}
	score := 5
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(input.Website)), "https://") {
		score += 10
	}
	if highQualityDomain(input.Website) {
		score += 10
	}
	if input.PagesVisited > 1 {
		score += 5
	}
	return min(score, 30)
}

// scoreSocialPresence weighs business networks above the rest.
func scoreSocialPresence(input LeadFeatures) int {
	if len(input.Socials) == 0 {
		return 0
	}

	score := 0
	for platform, link := range input.Socials {
		if !enrich.Found(link) {
			continue
		}
		switch platform {
		case extract.LinkedIn:
			score += 10
		case extract.Facebook, extract.Instagram:
			score += 5
		default:
			score += 3
		}
	}
	return min(score, 30)
}

func highQualityDomain(raw string) bool {
	domain := extractDomain(raw)
	if domain == "" {
		return false
	}
	for _, bad := range freeHostingDomains {
		if domain == bad || strings.HasSuffix(domain, "."+bad) {
			return false
		}
	}
	return strings.Count(domain, ".") >= 1
}

func extractDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lowered := strings.ToLower(raw)
	if !strings.Contains(lowered, "://") {
		lowered = "https://" + lowered
	}
	parsed, err := url.Parse(lowered)
	if err != nil {
		return ""
	}
	host := strings.TrimSpace(strings.ToLower(parsed.Hostname()))
	return strings.TrimPrefix(host, "www.")
}
