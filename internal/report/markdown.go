package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/webwaiter/internal/model"
)

// MarkdownWriter outputs reports as GitHub flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeBasicInfo(md, report)
	w.writeExtendedInfo(md, report)
	w.writeDesignInfo(md, report)
	w.writeErrors(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Web Waiter Report")
	md.PlainText("")

	rows := [][]string{
		{"Target", "`" + report.Target + "`"},
		{"Inspected", report.DateInspected.Format("2006-01-02 15:04:05 MST")},
	}
	if report.Provider != "" {
		rows = append(rows, []string{"Provider", report.Provider})
	}
	rows = append(rows, []string{"Status", w.statusText(report)})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
	w.writeAlert(md, report)
}

func (w *MarkdownWriter) statusText(report *model.Report) string {
	switch {
	case report.TimedOut:
		return "⚠️ " + status(report)
	case report.HasErrors():
		return "❌ " + status(report)
	default:
		return "✅ " + status(report)
	}
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.Report) {
	switch {
	case report.TimedOut:
		md.Cautionf("The inspection was cancelled. %d step(s) completed.", len(report.PerformedSteps))
	case report.HasErrors():
		md.Warningf("%d step(s) failed. The report may be incomplete.", len(report.Errors))
	case report.ImageCount() == 0:
		md.Note("No icon or social image could be resolved.")
	default:
		md.Tip("All steps completed.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeBasicInfo(md *markdown.Markdown, report *model.Report) {
	md.H2("Basic Info")
	md.PlainText("")

	fields := report.Metadata.Fields()
	if len(fields) == 0 {
		md.PlainText("No metadata found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []string{FieldLabel(f.Name), escapeCell(f.Value)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeExtendedInfo(md *markdown.Markdown, report *model.Report) {
	md.H2("Extended Info")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"HTTPS", yesNo(report.HTTPS)},
			{"Google Analytics", yesNo(report.HasGoogleAnalytics)},
			{"Tech stack", orDash(strings.Join(report.TechStack, ", "))},
		},
	})
	md.PlainText("")

	if len(report.RSSFeeds) > 0 {
		md.PlainText("### RSS Feeds")
		md.PlainText("")
		md.BulletList(report.RSSFeeds...)
		md.PlainText("")
	}

	if len(report.Feeds) > 0 {
		rows := make([][]string, 0, len(report.Feeds))
		for _, f := range report.Feeds {
			updated := "-"
			if f.Updated != nil {
				updated = f.Updated.Format("2006-01-02")
			}
			rows = append(rows, []string{
				escapeCell(orDash(f.Title)),
				orDash(f.FeedType),
				strconv.Itoa(f.ItemCount),
				updated,
				escapeCell(orDash(f.LatestItem)),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Feed", "Type", "Items", "Updated", "Latest"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(report.Sitemaps) > 0 {
		title := "### Sitemaps"
		if report.SitemapSource != "" {
			title += " (" + report.SitemapSource + ")"
		}
		md.PlainText(title)
		md.PlainText("")
		md.BulletList(report.Sitemaps...)
		md.PlainText("")
	}

	if c := report.Content; c != nil {
		md.PlainText("### Content")
		md.PlainText("")
		rows := [][]string{
			{"Title", escapeCell(orDash(c.Title))},
			{"Byline", escapeCell(orDash(c.Byline))},
			{"Words", strconv.Itoa(c.WordCount)},
			{"Detected language", orDash(c.DetectedLanguage)},
		}
		md.Table(markdown.TableSet{
			Header: []string{"Property", "Value"},
			Rows:   rows,
		})
		md.PlainText("")
		if c.Excerpt != "" {
			md.Details("Excerpt", c.Excerpt)
			md.PlainText("")
		}
	}
}

func (w *MarkdownWriter) writeDesignInfo(md *markdown.Markdown, report *model.Report) {
	md.H2("Design Info")
	md.PlainText("")

	if len(report.ThemeColors) > 0 {
		codes := make([]string, len(report.ThemeColors))
		for i, c := range report.ThemeColors {
			codes[i] = "`" + c + "`"
		}
		md.PlainTextf("Theme colors: %s", strings.Join(codes, " "))
		md.PlainText("")
	}

	social := socialImages(report)
	if len(report.Icons) == 0 && len(social) == 0 {
		md.PlainText("No images resolved.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, report.ImageCount())
	for _, icon := range report.Icons {
		rows = append(rows, []string{"Icon", icon.Size(), orDash(icon.Format), imageLink(icon.URL)})
	}
	for _, img := range social {
		rows = append(rows, []string{img.Kind.Label(), img.Size(), orDash(img.Format), imageLink(img.URL)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Size", "Format", "Image"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, report, social)

	if len(report.Downloads) > 0 {
		items := make([]string, len(report.Downloads))
		for i, d := range report.Downloads {
			items[i] = fmt.Sprintf("`%s` (%d bytes)", d.Path, d.Bytes)
		}
		md.PlainText("### Downloads")
		md.PlainText("")
		md.BulletList(items...)
		md.PlainText("")
	}
}

// writePieChart charts the resolved images by icon format and social kind.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.Report, social []socialImage) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Asset Mix"),
		piechart.WithShowData(true),
	)

	var formats []string
	counts := make(map[string]uint64)
	for _, icon := range report.Icons {
		label := "icon (" + orDefault(icon.Format, "unknown") + ")"
		if counts[label] == 0 {
			formats = append(formats, label)
		}
		counts[label]++
	}
	for _, label := range formats {
		chart.LabelAndIntValue(label, counts[label])
	}
	for _, img := range social {
		chart.LabelAndIntValue(img.Kind.Label(), 1)
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, report *model.Report) {
	if !report.HasErrors() {
		return
	}
	md.H2("Errors")
	md.PlainText("")
	md.BulletList(report.Errors...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [Web Waiter](https://github.com/nao1215/webwaiter)*")
}

func imageLink(u string) string {
	return "[" + u + "](" + u + ")"
}

// escapeCell keeps a value inside a single table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

func orDash(s string) string {
	return orDefault(s, "-")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
