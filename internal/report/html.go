package report

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/nao1215/webwaiter/internal/model"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html.tmpl"))

// HTMLWriter outputs a standalone HTML page. Every text value has a copy
// button, every theme color swatch copies its hex code and every image card
// links to the image for download.
type HTMLWriter struct {
	baseWriter
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders the report page.
func (w *HTMLWriter) Write(report *model.Report) (int, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, newHTMLPage(report)); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}

type htmlItem struct {
	Label string
	Value string
	Copy  bool
}

type htmlImage struct {
	Kind model.SocialImageKind
	URL  template.URL
	Size string
}

type htmlPage struct {
	Report    *model.Report
	Inspected string
	Status    string
	Basic     []htmlItem
	Extended  []htmlItem
	Icons     []htmlImage
	Social    []htmlImage
	HasDesign bool
}

func newHTMLPage(report *model.Report) htmlPage {
	page := htmlPage{
		Report:    report,
		Inspected: report.DateInspected.Format("2006-01-02 15:04:05 MST"),
		Status:    status(report),
	}

	for _, f := range report.Metadata.Fields() {
		page.Basic = append(page.Basic, htmlItem{Label: FieldLabel(f.Name), Value: f.Value, Copy: true})
	}

	page.Extended = appendItem(page.Extended, "RSS feeds", strings.Join(report.RSSFeeds, ", "), true)
	page.Extended = appendItem(page.Extended, "Sitemaps", strings.Join(report.Sitemaps, ", "), true)
	if report.HasGoogleAnalytics {
		page.Extended = appendItem(page.Extended, "Google Analytics", yesNo(true), false)
	}
	page.Extended = appendItem(page.Extended, "Tech stack", strings.Join(report.TechStack, ", "), true)
	if report.HTTPS {
		page.Extended = appendItem(page.Extended, "HTTPS", yesNo(true), false)
	}
	if c := report.Content; c != nil {
		page.Extended = appendItem(page.Extended, "Article", c.Title, true)
		page.Extended = appendItem(page.Extended, "Byline", c.Byline, true)
		page.Extended = appendItem(page.Extended, "Excerpt", c.Excerpt, true)
		page.Extended = appendItem(page.Extended, "Detected language", c.DetectedLanguage, true)
	}

	for _, icon := range report.Icons {
		page.Icons = append(page.Icons, htmlImage{URL: imageURL(icon.URL), Size: icon.Size()})
	}
	for _, img := range socialImages(report) {
		page.Social = append(page.Social, htmlImage{Kind: img.Kind, URL: imageURL(img.URL), Size: img.Size()})
	}

	page.HasDesign = len(report.ThemeColors) > 0 || len(page.Icons) > 0 || len(page.Social) > 0
	return page
}

func appendItem(items []htmlItem, label, value string, copyable bool) []htmlItem {
	if value == "" {
		return items
	}
	return append(items, htmlItem{Label: label, Value: value, Copy: copyable})
}

// imageURL marks http(s) and inline image URLs as safe so data: icons
// survive template escaping. Anything else is left to the sanitizer.
func imageURL(raw string) template.URL {
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "data:image/") {
		return template.URL(raw) //nolint:gosec // scheme checked above
	}
	return template.URL("#")
}
