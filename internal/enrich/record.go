package enrich

import (
	"encoding/json"

	"github.com/octobees/leads-generator/enricher/internal/extract"
)

// NotFound is written for every field that could not be resolved.
const NotFound = "Not found"

// Record is the result of one enrichment. Empty strings mean "not found" in memory and
// are serialized as NotFound.
type Record struct {
	CompanyName  string
	Website      string
	Domain       string
	ContactPage  string
	Email        string
	Phone        string
	SocialLinks  map[extract.Platform]string
	VisitedPages []string
}

type recordJSON struct {
	CompanyName  string            `json:"company_name"`
	Website      string            `json:"website"`
	Domain       string            `json:"domain"`
	ContactPage  string            `json:"contact_page"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	SocialLinks  map[string]string `json:"social_links"`
	VisitedPages []string          `json:"visited_pages"`
}

// MarshalJSON writes every platform key and replaces unresolved values with NotFound.
func (r Record) MarshalJSON() ([]byte, error) {
	social := make(map[string]string, len(extract.Platforms))
	for _, p := range extract.Platforms {
		social[string(p)] = orNotFound(r.SocialLinks[p])
	}
	visited := r.VisitedPages
	if visited == nil {
		visited = []string{}
	}
	return json.Marshal(recordJSON{
		CompanyName:  orNotFound(r.CompanyName),
		Website:      orNotFound(r.Website),
		Domain:       orNotFound(r.Domain),
		ContactPage:  orNotFound(r.ContactPage),
		Email:        orNotFound(r.Email),
		Phone:        orNotFound(r.Phone),
		SocialLinks:  social,
		VisitedPages: visited,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON; NotFound values become empty again.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record{
		CompanyName: fromNotFound(raw.CompanyName),
		Website:     fromNotFound(raw.Website),
		Domain:      fromNotFound(raw.Domain),
		ContactPage: fromNotFound(raw.ContactPage),
		Email:       fromNotFound(raw.Email),
		Phone:       fromNotFound(raw.Phone),
	}
	for key, value := range raw.SocialLinks {
		value = fromNotFound(value)
		if value == "" {
			continue
		}
		if r.SocialLinks == nil {
			r.SocialLinks = map[extract.Platform]string{}
		}
		r.SocialLinks[extract.Platform(key)] = value
	}
	if len(raw.VisitedPages) > 0 {
		r.VisitedPages = raw.VisitedPages
	}
	return nil
}

// Found reports whether a record value was resolved.
func Found(value string) bool {
	return value != "" && value != NotFound
}

func orNotFound(value string) string {
	if value == "" {
		return NotFound
	}
	return value
}

func fromNotFound(value string) string {
	if value == NotFound {
		return ""
	}
	return value
}
