package extract

import (
	"strings"
	"testing"
)

func TestKeywords_Weights(t *testing.T) {
	doc := mustParse(t, `<html><head><title>Industrial Robots</title>
<meta name="description" content="Robots for factories"></head>
<body><h1>Robots</h1><h2>Automation</h2>
<p>Robots build automation. The robots are great.</p>
<script>var robots = 1;</script></body></html>`)

	got := Keywords(doc)
	want := []Keyword{
		{Word: "robots", Score: 15},
		{Word: "automation", Score: 4},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d keywords, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keyword %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestKeywords_SkipsNavigationAndSingleOccurrences(t *testing.T) {
	doc := mustParse(t, `<html><head><title>Widgets</title></head><body>
<nav>Pricing Pricing Pricing</nav>
<main><p>Gadget gadget</p></main>
<footer>Sitemap Sitemap</footer>
</body></html>`)

	got := Keywords(doc)
	if len(got) != 1 || got[0] != (Keyword{Word: "gadget", Score: 2}) {
		t.Fatalf("expected only gadget, got %v", got)
	}
}

func TestKeywords_Cap(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body><p>")
	for i := 0; i < 40; i++ {
		word := "kw" + string(rune('a'+i/26)) + string(rune('a'+i%26))
		b.WriteString(word + " " + word + " ")
	}
	b.WriteString("</p></body></html>")

	got := Keywords(mustParse(t, b.String()))
	if len(got) != 30 {
		t.Fatalf("expected 30 keywords, got %d", len(got))
	}
	if got[0].Word != "kwaa" || got[0].Score != 2 {
		t.Fatalf("expected alphabetical tie break, got %+v", got[0])
	}
}
