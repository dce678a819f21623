package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/webwaiter/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.Report {
	report := model.NewReport("https://example.com")
	report.DateInspected = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	report.Provider = model.ProviderStatic
	report.Metadata = model.PageMetadata{
		URL:         "https://example.com/",
		Title:       "Example Site",
		Description: "An example | site",
		Language:    "en-US",
	}
	report.HTTPS = true
	report.ThemeColors = []string{"#3366CC", "#FF0000"}
	report.TechStack = []string{"WordPress", "jQuery"}
	report.HasGoogleAnalytics = true
	report.RSSFeeds = []string{"https://example.com/feed.xml"}
	report.Sitemaps = []string{"https://example.com/sitemap.xml"}
	report.SitemapSource = "robots.txt"
	report.Icons = []model.AssetReference{
		{URL: "https://example.com/big.png", Width: 192, Height: 192, Format: "png"},
		{URL: "https://example.com/favicon.ico", Width: 16, Height: 16, Format: "ico"},
	}
	report.SocialImages[model.SocialOpenGraph] = model.AssetReference{
		URL: "https://example.com/og.png", Width: 1200, Height: 630, Format: "png",
	}
	report.Feeds = []model.FeedSummary{{URL: "https://example.com/feed.xml", Title: "Example feed", FeedType: "rss", ItemCount: 3}}
	report.Content = &model.ContentSummary{Title: "Hello", WordCount: 120, DetectedLanguage: "en"}
	report.PerformedSteps = []string{"load", "extract", "resolve", "content"}
	return report
}

func TestFieldLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{model.FieldURL, "URL"},
		{model.FieldTitle, "Title"},
		{model.FieldCopyright, "Copyright"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FieldLabel(tt.name); got != tt.want {
				t.Errorf("FieldLabel(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes every section", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("returned %d bytes, buffer holds %d", n, buf.Len())
		}

		output := buf.String()
		for _, want := range []string{
			"WEB WAITER REPORT",
			"https://example.com",
			"BASIC INFO",
			"Title:",
			"Example Site",
			"EXTENDED INFO",
			"Sitemaps (robots.txt)",
			"[+] WordPress",
			"DESIGN INFO",
			"#3366CC #FF0000",
			"[192x192] https://example.com/big.png",
			"Open Graph",
			"Status:         Complete",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "ERRORS") {
			t.Error("errors section should be omitted without errors")
		}
		if strings.Contains(output, "Keywords") {
			t.Error("empty metadata fields must not be rendered")
		}
	})

	t.Run("icons keep their largest first order", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		if strings.Index(output, "192x192") > strings.Index(output, "16x16") {
			t.Error("expected the larger icon first")
		}
	})

	t.Run("omits empty sections unless asked", func(t *testing.T) {
		t.Parallel()

		empty := model.NewReport("https://empty.example")

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(empty); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(buf.String(), "DESIGN INFO") || strings.Contains(buf.String(), "BASIC INFO") {
			t.Error("expected empty sections to be omitted")
		}

		buf.Reset()
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true)).Write(empty); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "No metadata found") {
			t.Error("expected empty basic info to be shown")
		}
	})

	t.Run("verbose adds content details", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), `Feed "Example feed": 3 items`) {
			t.Errorf("expected feed details, got:\n%s", buf.String())
		}
		if !strings.Contains(buf.String(), "Detected lang:") {
			t.Error("expected content details")
		}
	})

	t.Run("writes errors and status", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.AddError(errors.New("resolve: timeout"))

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "[!] resolve: timeout") {
			t.Error("expected error line")
		}
		if !strings.Contains(buf.String(), "Completed with errors") {
			t.Error("expected error status")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables chart and alert", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Web Waiter Report",
			"## Basic Info",
			"## Extended Info",
			"## Design Info",
			"```mermaid",
			"Asset Mix",
			"icon (png)",
			"[!TIP]",
			"`#3366CC`",
			"### Sitemaps (robots.txt)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("warns on errors", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.AddError(errors.New("content: boom"))

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "[!WARNING]") {
			t.Error("expected warning alert")
		}
		if !strings.Contains(buf.String(), "## Errors") {
			t.Error("expected errors section")
		}
	})

	t.Run("cautions on timeout", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.TimedOut = true

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "[!CAUTION]") {
			t.Error("expected caution alert")
		}
	})

	t.Run("handles an empty report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(model.NewReport("https://empty.example")); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "No images resolved.") {
			t.Error("expected empty image note")
		}
		if strings.Contains(buf.String(), "```mermaid") {
			t.Error("no chart without images")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes compact JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.Report
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Metadata.Title != "Example Site" || len(decoded.Icons) != 2 {
			t.Errorf("decoded = %+v", decoded)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("compact output should be a single line")
		}
	})

	t.Run("pretty prints", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "\n  \"target\"") {
			t.Error("expected two-space indentation")
		}
	})

	t.Run("full writer wraps version and summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewFullJSONWriter(&buf, "v1.2.3").Write(createTestReport()); err != nil {
			t.Fatal(err)
		}

		var wrapped struct {
			Version string        `json:"version"`
			Summary model.Summary `json:"summary"`
		}
		if err := json.Unmarshal(buf.Bytes(), &wrapped); err != nil {
			t.Fatal(err)
		}
		if wrapped.Version != "v1.2.3" {
			t.Errorf("Version = %q", wrapped.Version)
		}
		if wrapped.Summary.Icons != 2 || wrapped.Summary.ThemeColors != 2 {
			t.Errorf("Summary = %+v", wrapped.Summary)
		}
	})
}

func TestHTMLWriter(t *testing.T) {
	t.Parallel()

	t.Run("renders a standalone page", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewHTMLWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"<!DOCTYPE html>",
			"Web Waiter 🤵",
			"Basic info",
			`data-copy="Example Site"`,
			"background-color: #3366CC",
			`href="https://example.com/big.png" download`,
			"Open Graph · 1200x630",
			"navigator.clipboard.writeText",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("escapes page content", func(t *testing.T) {
		t.Parallel()

		report := model.NewReport("https://example.com")
		report.Metadata.Title = `<script>alert(1)</script>`

		var buf bytes.Buffer
		if _, err := NewHTMLWriter(&buf).Write(report); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(buf.String(), "<script>alert(1)</script>") {
			t.Error("title was not escaped")
		}
	})

	t.Run("keeps inline icons and neutralizes other schemes", func(t *testing.T) {
		t.Parallel()

		report := model.NewReport("https://example.com")
		report.Icons = []model.AssetReference{
			{URL: "data:image/png;base64,AAAA", Width: 1, Height: 1},
			{URL: "javascript:alert(1)", Width: 1, Height: 1},
		}

		var buf bytes.Buffer
		if _, err := NewHTMLWriter(&buf).Write(report); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), `src="data:image/png;base64,AAAA"`) {
			t.Error("expected the data URL to be kept")
		}
		if strings.Contains(buf.String(), "javascript:alert") {
			t.Error("javascript URL must not be rendered")
		}
	})

	t.Run("omits the design section without assets", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewHTMLWriter(&buf).Write(model.NewReport("https://empty.example")); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(buf.String(), "Design info") {
			t.Error("design section should be omitted")
		}
	})
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

	n, err := mw.Write(createTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != text.Len()+js.Len() {
		t.Errorf("returned %d bytes, want %d", n, text.Len()+js.Len())
	}
	if text.Len() == 0 || js.Len() == 0 {
		t.Error("expected both writers to receive the report")
	}
}
