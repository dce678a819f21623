package inspect

import (
	"net/url"
	"strings"

	"github.com/nao1215/webwaiter/internal/asset"
	"github.com/nao1215/webwaiter/internal/dom"
	"github.com/nao1215/webwaiter/internal/model"
)

// Feed MIME types linked with <link rel="alternate">.
const (
	MIMETypeRSS  = "application/rss+xml"
	MIMETypeAtom = "application/atom+xml"
)

// Links are the candidate URLs a page references, before any probing.
type Links struct {
	// Icons are the link[rel*=icon] hrefs, absolute and deduplicated.
	Icons []string

	// FallbackIcon is origin/favicon.ico, probed when Icons is empty.
	FallbackIcon string

	// Sitemaps are the declared link[rel=sitemap] hrefs.
	Sitemaps []string

	// Feeds are the RSS and Atom hrefs.
	Feeds []string

	// Manifest is the web app manifest href, if any.
	Manifest string

	// SocialImages maps each social image kind to its normalized URL.
	SocialImages map[model.SocialImageKind]string
}

// GatherLinks collects every candidate URL of a document.
func GatherLinks(doc dom.Document) Links {
	return Links{
		Icons:        IconLinks(doc),
		FallbackIcon: FallbackIcon(doc),
		Sitemaps:     SitemapLinks(doc),
		Feeds:        RSSFeeds(doc),
		Manifest:     ManifestLink(doc),
		SocialImages: SocialImages(doc),
	}
}

// IconCandidates returns the icon URLs to probe: the declared icons, or the
// fallback favicon when the page declares none.
func (l Links) IconCandidates() []string {
	if len(l.Icons) > 0 {
		return append([]string(nil), l.Icons...)
	}
	if l.FallbackIcon == "" {
		return nil
	}
	return []string{l.FallbackIcon}
}

// IconLinks returns the hrefs of link tags whose rel contains "icon",
// resolved against the page URL and deduplicated by exact string.
func IconLinks(doc dom.Document) []string {
	return hrefs(doc, `link[rel*="icon"]`)
}

// FallbackIcon returns origin/favicon.ico for the page.
func FallbackIcon(doc dom.Document) string {
	return asset.Origin(doc.URL()) + "/favicon.ico"
}

// SitemapLinks returns the hrefs of link[rel="sitemap"].
func SitemapLinks(doc dom.Document) []string {
	return hrefs(doc, `link[rel="sitemap"]`)
}

// RSSFeeds returns the RSS and Atom feed hrefs in document order.
func RSSFeeds(doc dom.Document) []string {
	return hrefs(doc, `link[type="`+MIMETypeRSS+`"], link[type="`+MIMETypeAtom+`"]`)
}

// ManifestLink returns the web app manifest href, or "".
func ManifestLink(doc dom.Document) string {
	links := hrefs(doc, `link[rel="manifest"]`)
	if len(links) == 0 {
		return ""
	}
	return links[0]
}

// IsHTTPS reports whether the page was served over https.
func IsHTTPS(doc dom.Document) bool {
	return doc.URL().Scheme == "https"
}

// SocialImages returns the social-share image candidate of every kind the
// page declares, normalized to absolute URLs.
func SocialImages(doc dom.Document) map[model.SocialImageKind]string {
	origin := asset.Origin(doc.URL())
	candidates := map[model.SocialImageKind]string{
		model.SocialOpenGraph:      firstNonEmpty(MetaContent(doc, "og:image"), MetaContent(doc, "og:image:url")),
		model.SocialTwitter:        firstNonEmpty(MetaContent(doc, "twitter:image"), MetaContent(doc, "twitter:image:src")),
		model.SocialSchemaOrg:      schemaImage(doc),
		model.SocialMicrosoftTile:  MetaContent(doc, "msapplication-TileImage"),
		model.SocialAppleTouchIcon: firstNonEmpty(firstAttr(doc, `link[rel="apple-touch-icon"]`, "href"), firstAttr(doc, `link[rel="apple-touch-icon-precomposed"]`, "href")),
		model.SocialArticleImage:   firstNonEmpty(MetaContent(doc, "article:image"), firstAttr(doc, `article img[src]`, "src")),
	}

	images := make(map[model.SocialImageKind]string, len(candidates))
	for kind, raw := range candidates {
		if u := asset.NormalizeURL(origin, raw); u != "" {
			images[kind] = u
		}
	}
	return images
}

// schemaImage reads the first itemprop="image" value from content, src or href.
func schemaImage(doc dom.Document) string {
	for _, el := range doc.Query(`[itemprop="image"]`) {
		for _, attr := range []string{"content", "src", "href"} {
			if v := strings.TrimSpace(el.Attr(attr)); v != "" {
				return v
			}
		}
	}
	return ""
}

// hrefs returns the absolute, deduplicated href values of matching elements.
func hrefs(doc dom.Document, selector string) []string {
	base := doc.URL()
	seen := make(map[string]struct{})
	var out []string
	for _, el := range doc.Query(selector) {
		abs := resolve(base, el.Attr("href"))
		if abs == "" {
			continue
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	}
	return out
}

// resolve makes href absolute against base, as the browser does for link.href.
func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
