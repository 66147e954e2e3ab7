package extract

import (
	"sort"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	maxKeywords      = 30
	minKeywordOccurs = 2
	minKeywordLen    = 3
)

// Keyword is a term and its weighted frequency.
type Keyword struct {
	Word  string `json:"word"`
	Score int    `json:"score"`
}

var stopWords = toSet(
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can", "had", "her", "was",
	"one", "our", "out", "has", "have", "his", "how", "its", "may", "new", "now", "own", "see",
	"she", "too", "use", "way", "who", "why", "with", "this", "that", "from", "they", "will",
	"your", "what", "when", "where", "which", "their", "there", "them", "then", "than", "into",
	"more", "most", "some", "such", "only", "other", "about", "also", "been", "being", "were",
	"would", "could", "should", "just", "over", "very", "here", "each", "after", "before",
	"while", "because", "these", "those", "does", "did", "doing", "both", "under", "again",
	"further", "once", "same", "off", "get", "got", "let", "via", "per", "yes", "etc", "like",
	"read", "more", "learn", "click", "home", "page", "menu", "skip", "content", "contact",
	"rights", "reserved", "copyright", "privacy", "policy", "terms", "cookies", "cookie",
)

var technicalTokens = toSet(
	"http", "https", "www", "com", "html", "php", "aspx", "javascript", "function", "var",
	"const", "null", "undefined", "true", "false", "return", "window", "document", "css",
	"div", "span", "px", "img", "src", "href", "script", "json", "jquery", "wordpress",
)

// hiddenElements never render as text.
var hiddenElements = toSet("script", "style", "noscript", "template", "svg")

// boilerplateElements are also left out of keyword body text.
var boilerplateElements = toSet("script", "style", "noscript", "template", "svg", "nav", "footer")

// Keywords ranks page terms. Title words weigh 5, meta description and keywords 3, h1
// 4, h2 2 and body text 1; navigation and footer text is ignored. Stop words and terms
// occurring fewer than 2 times are dropped.
func Keywords(doc *goquery.Document) []Keyword {
	if doc == nil {
		return nil
	}
	scores := make(map[string]int)
	occurs := make(map[string]int)
	add := func(text string, weight int) {
		for _, token := range tokenize(text) {
			scores[token] += weight
			occurs[token]++
		}
	}

	add(doc.Find("title").First().Text(), 5)
	add(doc.Find("meta[name='description']").AttrOr("content", ""), 3)
	add(doc.Find("meta[name='keywords']").AttrOr("content", ""), 3)
	doc.Find("h1").Each(func(_ int, s *goquery.Selection) { add(s.Text(), 4) })
	doc.Find("h2").Each(func(_ int, s *goquery.Selection) { add(s.Text(), 2) })
	for _, node := range doc.Find("body").Nodes {
		add(visibleText(node, boilerplateElements), 1)
	}

	out := make([]Keyword, 0, len(scores))
	for word, score := range scores {
		if occurs[word] < minKeywordOccurs {
			continue
		}
		out = append(out, Keyword{Word: word, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > maxKeywords {
		out = out[:maxKeywords]
	}
	return out
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if len([]rune(f)) < minKeywordLen {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		if _, tech := technicalTokens[f]; tech {
			continue
		}
		out = append(out, f)
	}
	return out
}

// visibleText concatenates the text nodes below n separated by spaces, skipping the
// subtrees of elements named in skip.
func visibleText(n *html.Node, skip map[string]struct{}) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, ok := skip[n.Data]; ok {
				return
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
