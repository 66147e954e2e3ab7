package extract

import (
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustParse(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := Parse(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

const socialPage = `<html><head>
<meta property="og:see_also" content="https://www.instagram.com/acme_robotics/">
</head><body>
<a href="https://www.facebook.com/sharer/sharer.php?u=https://acme.com">Share</a>
<a href="https://twitter.com/intent/tweet?text=hi">Tweet</a>
<a href="https://www.facebook.com/AcmeRobotics?ref=footer#top">Facebook</a>
<a href="https://www.facebook.com/SecondPage">Other</a>
<a href="https://www.linkedin.com/company/acme-robotics/">LinkedIn</a>
<a href="https://twitter.com/">Twitter home</a>
<a href="https://x.com/acmebots">X</a>
<a href="//github.com/acme">GitHub</a>
<a href="https://www.youtube.com/@acme">YouTube</a>
<a href="https://www.tiktok.com/@acme">TikTok</a>
<a href="https://discord.gg/acme">Discord</a>
<a href="https://www.pinterest.com/acmebots/">Pinterest</a>
</body></html>`

func TestSocialLinks(t *testing.T) {
	doc := mustParse(t, socialPage)
	links := SocialLinks(doc, "https://acme.com/")

	want := map[Platform]string{
		Facebook:  "https://www.facebook.com/AcmeRobotics",
		LinkedIn:  "https://www.linkedin.com/company/acme-robotics/",
		Twitter:   "https://x.com/acmebots",
		GitHub:    "https://github.com/acme",
		YouTube:   "https://www.youtube.com/@acme",
		TikTok:    "https://www.tiktok.com/@acme",
		Discord:   "https://discord.gg/acme",
		Pinterest: "https://www.pinterest.com/acmebots/",
		Instagram: "https://www.instagram.com/acme_robotics/",
	}
	if len(links) != len(want) {
		t.Fatalf("expected %d platforms, got %d: %v", len(want), len(links), links)
	}
	for platform, url := range want {
		if links[platform] != url {
			t.Fatalf("%s: expected %s, got %s", platform, url, links[platform])
		}
	}
}

func TestSocialLinks_SharerOnlyYieldsNothing(t *testing.T) {
	doc := mustParse(t, `<html><body><a href="https://www.facebook.com/sharer/sharer.php?u=https%3A%2F%2Facme.com">Share on Facebook</a></body></html>`)
	if links := SocialLinks(doc, "https://acme.com"); len(links) != 0 {
		t.Fatalf("expected no social links, got %v", links)
	}
}

func TestClassifySocialURL(t *testing.T) {
	tests := []struct {
		in       string
		platform Platform
		want     string
		ok       bool
	}{
		{in: "https://www.facebook.com/sharer/sharer.php?u=x"},
		{in: "https://facebook.com"},
		{in: "https://twitter.com/search?q=acme"},
		{in: "https://www.instagram.com/p/Cx123/"},
		{in: "https://www.youtube.com/watch?v=abc"},
		{in: "https://www.linkedin.com/login"},
		{in: "https://example.com/acme"},
		{in: "mailto:info@acme.com"},
		{in: "https://www.linkedin.com/in/jane-doe?trk=abc", platform: LinkedIn, want: "https://www.linkedin.com/in/jane-doe", ok: true},
		{in: "https://m.facebook.com/acme.shop/", platform: Facebook, want: "https://m.facebook.com/acme.shop/", ok: true},
		{in: "https://www.facebook.com/profile.php?id=100012345&ref=bm", platform: Facebook, want: "https://www.facebook.com/profile.php?id=100012345", ok: true},
		{in: "http://www.youtube.com/channel/UC123#videos", platform: YouTube, want: "http://www.youtube.com/channel/UC123", ok: true},
		{in: "https://discord.com/invite/acme", platform: Discord, want: "https://discord.com/invite/acme", ok: true},
	}
	for _, tt := range tests {
		platform, got, ok := ClassifySocialURL(tt.in)
		if ok != tt.ok {
			t.Fatalf("%s: expected ok=%v, got %v (%s)", tt.in, tt.ok, ok, got)
		}
		if !ok {
			continue
		}
		if platform != tt.platform || got != tt.want {
			t.Fatalf("%s: expected %s %s, got %s %s", tt.in, tt.platform, tt.want, platform, got)
		}
	}
}

func TestSocialLinksFromSource(t *testing.T) {
	raw := `<script>window.__DATA__={"social":"https:\/\/www.instagram.com\/acme.co\/","fb":"https://www.facebook.com/sharer.php?u=1"}</script>
<div data-x="https://www.linkedin.com/company/acme">x</div>`

	links := SocialLinksFromSource(raw)
	if links[Instagram] != "https://www.instagram.com/acme.co/" {
		t.Fatalf("unexpected instagram link: %q", links[Instagram])
	}
	if links[LinkedIn] != "https://www.linkedin.com/company/acme" {
		t.Fatalf("unexpected linkedin link: %q", links[LinkedIn])
	}
	if _, ok := links[Facebook]; ok {
		t.Fatalf("expected sharer link to be excluded, got %v", links[Facebook])
	}
	if len(SocialLinksFromSource("")) != 0 {
		t.Fatalf("expected empty result for empty source")
	}
}

func TestCanonicalizeString(t *testing.T) {
	if got := CanonicalizeString("https://www.linkedin.com/company/acme/?utm_source=x#about"); got != "https://www.linkedin.com/company/acme/" {
		t.Fatalf("unexpected canonical url: %s", got)
	}
	if got := CanonicalizeString("  not a url "); got != "not a url" {
		t.Fatalf("expected trimmed passthrough, got %q", got)
	}
}
