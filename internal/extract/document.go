package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Parse builds a goquery document from raw markup.
func Parse(markup string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(markup))
}
