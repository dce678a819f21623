package model

import (
	"sort"
	"strconv"
	"time"
)

// AssetReference is an image URL whose pixel dimensions were resolved.
// References whose dimension probe failed never reach a Report.
type AssetReference struct {
	// URL is the absolute URL of the asset.
	URL string `json:"url"`

	// Width and Height are the natural pixel dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is the decoded image format (png, jpeg, gif, webp, bmp, ico, svg).
	Format string `json:"format,omitempty"`

	// Exif holds a few descriptive EXIF tags for JPEG assets.
	Exif map[string]string `json:"exif,omitempty"`
}

// Area returns the pixel area of the asset.
func (a AssetReference) Area() int {
	return a.Width * a.Height
}

// Size returns the dimensions formatted as "WxH".
func (a AssetReference) Size() string {
	return strconv.Itoa(a.Width) + "x" + strconv.Itoa(a.Height)
}

// SortByArea orders assets by descending pixel area.
// Assets with equal area keep their relative order.
func SortByArea(assets []AssetReference) {
	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].Area() > assets[j].Area()
	})
}

// SocialImageKind names the source of a social-share image.
type SocialImageKind string

// Social image kinds in display order.
const (
	SocialOpenGraph      SocialImageKind = "og:image"
	SocialTwitter        SocialImageKind = "twitter:image"
	SocialSchemaOrg      SocialImageKind = "schema:image"
	SocialMicrosoftTile  SocialImageKind = "msapplication-TileImage"
	SocialAppleTouchIcon SocialImageKind = "apple-touch-icon"
	SocialArticleImage   SocialImageKind = "article:image"
)

// SocialImageKinds returns every kind in display order.
func SocialImageKinds() []SocialImageKind {
	return []SocialImageKind{
		SocialOpenGraph,
		SocialTwitter,
		SocialSchemaOrg,
		SocialMicrosoftTile,
		SocialAppleTouchIcon,
		SocialArticleImage,
	}
}

// Label returns a human-readable name for the kind.
func (k SocialImageKind) Label() string {
	switch k {
	case SocialOpenGraph:
		return "Open Graph"
	case SocialTwitter:
		return "Twitter Card"
	case SocialSchemaOrg:
		return "Schema.org"
	case SocialMicrosoftTile:
		return "Microsoft Tile"
	case SocialAppleTouchIcon:
		return "Apple Touch Icon"
	case SocialArticleImage:
		return "Article"
	default:
		return string(k)
	}
}

// FeedSummary describes an RSS or Atom feed linked from the page.
type FeedSummary struct {
	URL        string     `json:"url"`
	Title      string     `json:"title,omitempty"`
	Link       string     `json:"link,omitempty"`
	FeedType   string     `json:"feed_type,omitempty"`
	ItemCount  int        `json:"item_count"`
	Updated    *time.Time `json:"updated,omitempty"`
	LatestItem string     `json:"latest_item,omitempty"`
}

// ContentSummary describes the main readable content of the page.
type ContentSummary struct {
	Title            string     `json:"title,omitempty"`
	Byline           string     `json:"byline,omitempty"`
	Excerpt          string     `json:"excerpt,omitempty"`
	SiteName         string     `json:"site_name,omitempty"`
	PublishedTime    *time.Time `json:"published_time,omitempty"`
	Image            string     `json:"image,omitempty"`
	Favicon          string     `json:"favicon,omitempty"`
	WordCount        int        `json:"word_count"`
	DetectedLanguage string     `json:"detected_language,omitempty"`
}

// Download records an asset saved to disk.
type Download struct {
	URL   string `json:"url"`
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`

	// SHA3 is the hex encoded SHA3-256 digest of the saved content.
	SHA3 string `json:"sha3"`
}
