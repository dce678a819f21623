package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/webwaiter/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs a plain text report for terminal display.
// Sections follow the order of the inspector panel: basic info, extended
// info and design info.
type SimpleWriter struct {
	baseWriter

	// showEmpty prints sections that have nothing to show.
	showEmpty bool

	// verbose adds content, feed and download details.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeBasicInfo(&sb, report)
	w.writeExtendedInfo(&sb, report)
	w.writeDesignInfo(&sb, report)
	w.writeErrors(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                         WEB WAITER REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Target:         %s\n", report.Target)
	fmt.Fprintf(sb, "Inspected:      %s\n", report.DateInspected.Format("2006-01-02 15:04:05 MST"))
	if report.Provider != "" {
		fmt.Fprintf(sb, "Provider:       %s\n", report.Provider)
	}
	fmt.Fprintf(sb, "Status:         %s\n", status(report))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

// writeItem writes "label: value", skipping empty values.
func writeItem(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "  %-16s %s\n", label+":", value)
}

func writeList(sb *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(sb, "  %s:\n", label)
	for _, v := range values {
		fmt.Fprintf(sb, "    [+] %s\n", v)
	}
}

func (w *SimpleWriter) writeBasicInfo(sb *strings.Builder, report *model.Report) {
	fields := report.Metadata.Fields()
	if len(fields) == 0 && !w.showEmpty {
		return
	}

	w.writeSection(sb, "BASIC INFO")
	if len(fields) == 0 {
		sb.WriteString("  No metadata found\n\n")
		return
	}
	for _, f := range fields {
		writeItem(sb, FieldLabel(f.Name), f.Value)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeExtendedInfo(sb *strings.Builder, report *model.Report) {
	w.writeSection(sb, "EXTENDED INFO")

	writeItem(sb, "HTTPS", yesNo(report.HTTPS))
	writeItem(sb, "Google Analytics", yesNo(report.HasGoogleAnalytics))
	writeList(sb, "Tech stack", report.TechStack)
	writeList(sb, "RSS feeds", report.RSSFeeds)

	if len(report.Sitemaps) > 0 {
		label := "Sitemaps"
		if report.SitemapSource != "" {
			label += " (" + report.SitemapSource + ")"
		}
		writeList(sb, label, report.Sitemaps)
	}

	if w.verbose {
		for _, f := range report.Feeds {
			fmt.Fprintf(sb, "  Feed %q: %d items", f.Title, f.ItemCount)
			if f.LatestItem != "" {
				fmt.Fprintf(sb, ", latest %q", f.LatestItem)
			}
			sb.WriteString("\n")
		}
		if c := report.Content; c != nil {
			writeItem(sb, "Article", c.Title)
			writeItem(sb, "Byline", c.Byline)
			writeItem(sb, "Excerpt", c.Excerpt)
			writeItem(sb, "Words", fmt.Sprint(c.WordCount))
			writeItem(sb, "Detected lang", c.DetectedLanguage)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeDesignInfo(sb *strings.Builder, report *model.Report) {
	social := socialImages(report)
	if len(report.ThemeColors) == 0 && len(report.Icons) == 0 && len(social) == 0 && !w.showEmpty {
		return
	}

	w.writeSection(sb, "DESIGN INFO")

	if len(report.ThemeColors) > 0 {
		writeItem(sb, "Theme colors", strings.Join(report.ThemeColors, " "))
	}

	if len(report.Icons) > 0 {
		sb.WriteString("  Icons:\n")
		for _, icon := range report.Icons {
			fmt.Fprintf(sb, "    [%s] %s\n", icon.Size(), icon.URL)
		}
	}

	if len(social) > 0 {
		sb.WriteString("  Social images:\n")
		for _, img := range social {
			fmt.Fprintf(sb, "    %-18s [%s] %s\n", img.Kind.Label(), img.Size(), img.URL)
		}
	}

	if w.verbose && len(report.Downloads) > 0 {
		sb.WriteString("  Downloads:\n")
		for _, d := range report.Downloads {
			fmt.Fprintf(sb, "    %s (%d bytes, sha3 %s)\n", d.Path, d.Bytes, d.SHA3)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeErrors(sb *strings.Builder, report *model.Report) {
	if !report.HasErrors() {
		return
	}

	w.writeSection(sb, "ERRORS")
	for _, e := range report.Errors {
		fmt.Fprintf(sb, "  [!] %s\n", e)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by Web Waiter\n")
	sb.WriteString("https://github.com/nao1215/webwaiter\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}
