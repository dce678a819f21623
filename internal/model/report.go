package model

import (
	"time"

	"github.com/google/uuid"
)

// Document provider names recorded in Report.Provider.
const (
	ProviderStatic  = "static"
	ProviderBrowser = "browser"
)

// Report is the root aggregate produced by one inspection of one page.
// A Report is created fresh for every inspection and is never shared
// between concurrent inspections.
type Report struct {
	// ID uniquely identifies this inspection.
	ID string `json:"id"`

	// Target is the page address as given by the user.
	Target string `json:"target"`

	// Provider is the document provider that loaded the page.
	Provider string `json:"provider,omitempty"`

	// DateInspected is when the inspection started.
	DateInspected time.Time `json:"date_inspected"`

	// Metadata holds the named page metadata.
	Metadata PageMetadata `json:"metadata"`

	// ThemeColors holds up to eight unique #RRGGBB colors in first-seen order.
	ThemeColors []string `json:"theme_colors,omitempty"`

	// Icons are the resolved page icons, largest area first.
	Icons []AssetReference `json:"icons,omitempty"`

	// SocialImages maps each social-share image kind to its resolved asset.
	SocialImages map[SocialImageKind]AssetReference `json:"social_images,omitempty"`

	// RSSFeeds lists the feed URLs linked from the page.
	RSSFeeds []string `json:"rss_feeds,omitempty"`

	// Sitemaps lists declared or discovered sitemap URLs.
	Sitemaps []string `json:"sitemaps,omitempty"`

	// SitemapSource tells where Sitemaps came from: declared, robots.txt or probe.
	SitemapSource string `json:"sitemap_source,omitempty"`

	// HTTPS is true when the page was served over https.
	HTTPS bool `json:"https"`

	// TechStack lists the detected technologies in rule order.
	TechStack []string `json:"tech_stack,omitempty"`

	// HasGoogleAnalytics is true when a Google Analytics or gtag script is present.
	HasGoogleAnalytics bool `json:"has_google_analytics"`

	// Feeds summarizes the feeds that could be fetched and parsed.
	Feeds []FeedSummary `json:"feeds,omitempty"`

	// Content summarizes the main readable content, if any was found.
	Content *ContentSummary `json:"content,omitempty"`

	// Downloads lists assets saved to disk during the inspection.
	Downloads []Download `json:"downloads,omitempty"`

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Errors records non-fatal step failures.
	Errors []string `json:"errors,omitempty"`

	// TimedOut is true if the inspection was cancelled before completion.
	TimedOut bool `json:"timed_out,omitempty"`
}

// NewReport creates an empty Report for the given target.
func NewReport(target string) *Report {
	return &Report{
		ID:            uuid.NewString(),
		Target:        target,
		DateInspected: time.Now(),
		SocialImages:  make(map[SocialImageKind]AssetReference),
	}
}

// SortIcons orders Icons by descending pixel area.
func (r *Report) SortIcons() {
	SortByArea(r.Icons)
}

// AddError records a non-fatal failure.
func (r *Report) AddError(err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, err.Error())
}

// HasErrors reports whether any step failure was recorded.
func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0
}

// ImageCount returns the number of resolved icons and social images.
func (r *Report) ImageCount() int {
	return len(r.Icons) + len(r.SocialImages)
}

// Summary condenses a Report into the counts stored alongside it in history.
type Summary struct {
	ThemeColors  int `json:"theme_colors"`
	Icons        int `json:"icons"`
	SocialImages int `json:"social_images"`
	Feeds        int `json:"feeds"`
	Sitemaps     int `json:"sitemaps"`
	TechStack    int `json:"tech_stack"`
	Errors       int `json:"errors"`
}

// Summarize returns the counts describing the report.
func (r *Report) Summarize() Summary {
	return Summary{
		ThemeColors:  len(r.ThemeColors),
		Icons:        len(r.Icons),
		SocialImages: len(r.SocialImages),
		Feeds:        len(r.RSSFeeds),
		Sitemaps:     len(r.Sitemaps),
		TechStack:    len(r.TechStack),
		Errors:       len(r.Errors),
	}
}
