package extract

import "github.com/PuerkitoBio/goquery"

// Signals is what one source contributed to an enrichment. Values are never mutated after
// creation; merging happens in a single aggregation step.
type Signals struct {
	Source      string
	Social      map[Platform]string
	Email       string
	Phone       string
	ContactPage string
	CompanyName string
}

// PageSignals extracts social links and contact details from a parsed page.
func PageSignals(doc *goquery.Document, pageURL, region string) Signals {
	contact := Contact(doc, region)
	return Signals{
		Source: pageURL,
		Social: SocialLinks(doc, pageURL),
		Email:  contact.Email,
		Phone:  contact.Phone,
	}
}
