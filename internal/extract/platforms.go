package extract

import "regexp"

// Platform names a supported social network.
type Platform string

const (
	LinkedIn  Platform = "linkedin"
	Facebook  Platform = "facebook"
	Twitter   Platform = "twitter"
	Instagram Platform = "instagram"
	YouTube   Platform = "youtube"
	TikTok    Platform = "tiktok"
	Pinterest Platform = "pinterest"
	GitHub    Platform = "github"
	Discord   Platform = "discord"
)

// Platforms lists every supported network in output order.
var Platforms = []Platform{LinkedIn, Facebook, Twitter, Instagram, YouTube, TikTok, Pinterest, GitHub, Discord}

// platformPattern matches "host/path" of a candidate profile URL. Host prefixes such as
// www. and m. are removed before matching. Specific patterns come first.
type platformPattern struct {
	platform Platform
	patterns []*regexp.Regexp
}

var platformTable = []platformPattern{
	{LinkedIn, compileAll(
		`^(?:[a-z]{2}\.)?linkedin\.com/company/[^/?#]+`,
		`^(?:[a-z]{2}\.)?linkedin\.com/(?:school|showcase)/[^/?#]+`,
		`^(?:[a-z]{2}\.)?linkedin\.com/in/[^/?#]+`,
	)},
	{Facebook, compileAll(
		`^facebook\.com/pages/[^?#]+`,
		`^facebook\.com/profile\.php\?id=\d+`,
		`^(?:facebook|fb)\.com/[a-z0-9.\-]{2,}`,
		`^fb\.me/[^/?#]+`,
	)},
	{Twitter, compileAll(
		`^(?:twitter|x)\.com/[a-z0-9_]{1,15}(?:[/?#]|$)`,
	)},
	{Instagram, compileAll(
		`^instagram\.com/[a-z0-9_.]{1,30}(?:[/?#]|$)`,
	)},
	{YouTube, compileAll(
		`^youtube\.com/(?:channel|c|user)/[^/?#]+`,
		`^youtube\.com/@[^/?#]+`,
		`^youtube\.com/[a-z0-9_\-]{3,}(?:[/?#]|$)`,
	)},
	{TikTok, compileAll(
		`^tiktok\.com/@[^/?#]+`,
	)},
	{Pinterest, compileAll(
		`^(?:[a-z]{2}\.)?pinterest\.(?:com|co\.uk|ca|de|fr|com\.au)/[a-z0-9_]{3,}(?:[/?#]|$)`,
	)},
	{GitHub, compileAll(
		`^github\.com/[a-z0-9](?:[a-z0-9\-]{0,38})(?:[/?#]|$)`,
	)},
	{Discord, compileAll(
		`^discord\.gg/[^/?#]+`,
		`^discord(?:app)?\.com/invite/[^/?#]+`,
	)},
}

// excludedSegments disqualify a candidate when any path segment matches. They cover
// share widgets, auth flows and the networks' own legal or search pages.
var excludedSegments = map[string]struct{}{
	"sharer": {}, "sharer.php": {}, "share": {}, "share.php": {}, "sharearticle": {},
	"intent": {}, "dialog": {}, "plugins": {}, "tr": {}, "embed": {},
	"login": {}, "login.php": {}, "signup": {}, "sign-up": {}, "register": {},
	"search": {}, "explore": {}, "hashtag": {}, "home.php": {},
	"privacy": {}, "terms": {}, "policies": {}, "policy.php": {}, "legal": {}, "help": {},
	"watch": {}, "p": {}, "pin": {},
}

// reservedHandles are first path segments that name site features instead of profiles.
var reservedHandles = map[string]struct{}{
	"home": {}, "about": {}, "help": {}, "privacy": {}, "terms": {}, "settings": {},
	"login": {}, "signup": {}, "explore": {}, "search": {}, "i": {}, "features": {},
	"marketplace": {}, "watch": {}, "results": {}, "feed": {}, "notifications": {},
	"messages": {}, "tos": {}, "legal": {}, "orgs": {}, "sponsors": {}, "pricing": {},
}

// rawSourcePatterns find profile URLs in unparsed markup and inline scripts.
var rawSourcePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?:\\?/\\?/(?:[a-z]{2,3}\.)?(?:linkedin\.com|facebook\.com|fb\.com|fb\.me|twitter\.com|x\.com|instagram\.com|youtube\.com|tiktok\.com|pinterest\.[a-z.]{2,6}|github\.com|discord\.gg|discord\.com|discordapp\.com)(?:\\?/[^\s"'<>\\)]*)+`),
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		out = append(out, regexp.MustCompile(expr))
	}
	return out
}
