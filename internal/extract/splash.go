package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const splashMaxNavLinks = 5

var languageVocabulary = []string{
	"english", "deutsch", "français", "francais", "español", "espanol", "italiano",
	"português", "portugues", "nederlands", "polski", "svenska", "dansk", "norsk",
	"türkçe", "русский", "日本語", "中文", "한국어",
	"select language", "choose language", "choose your language", "select your language",
	"select your country", "choose your country", "select region",
}

// IsLanguageSplash reports a language or country picker: few navigation links and at
// least two language names or a picker phrase.
func IsLanguageSplash(doc *goquery.Document) bool {
	if doc == nil {
		return false
	}
	if doc.Find("a[href]").Length() >= splashMaxNavLinks {
		return false
	}
	text := strings.ToLower(doc.Find("body").Text())
	hits := 0
	for _, word := range languageVocabulary {
		if strings.Contains(text, word) {
			if strings.Contains(word, " ") {
				return true
			}
			hits++
		}
	}
	return hits >= 2
}

// PreferredLanguageLink picks the English entry of a language picker, or the first
// same-site link that leaves the current page.
func PreferredLanguageLink(doc *goquery.Document, base string) string {
	links := NavLinks(doc, base)
	for _, link := range links {
		lowerURL := strings.ToLower(link.URL)
		lowerText := strings.ToLower(link.Text)
		if strings.Contains(lowerText, "english") || strings.HasSuffix(lowerURL, "/en") ||
			strings.Contains(lowerURL, "/en/") || strings.Contains(lowerURL, "/en-") ||
			strings.Contains(lowerURL, "lang=en") {
			return link.URL
		}
	}
	for _, link := range links {
		if strings.TrimRight(link.URL, "/") != strings.TrimRight(base, "/") {
			return link.URL
		}
	}
	return ""
}
