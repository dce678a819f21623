package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/webwaiter/internal/config"
	"github.com/nao1215/webwaiter/internal/database"
	"github.com/nao1215/webwaiter/internal/fetch"
	"github.com/nao1215/webwaiter/internal/model"
	"github.com/nao1215/webwaiter/internal/report"
)

// NewHistoryCmd creates the history command.
// It compares inspections stored in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "Show how a page changed between inspections",
		Long: `History compares the stored inspections of a page.

By default the latest two inspections are compared, showing:
- Metadata fields that changed (title, description, language, ...)
- Theme colors, icons and tech stack entries that appeared or disappeared
- Social images whose URL or size changed

Every 'webwaiter inspect' run is recorded unless --no-history is given.

Examples:
  # Compare the latest two inspections of a page
  webwaiter history example.com

  # List the inspections of a page
  webwaiter history --list example.com

  # List every inspection in the database
  webwaiter history --list

  # Compare the latest inspection with a specific one
  webwaiter history --with-id 5 example.com

  # List every inspected page
  webwaiter history --list-targets`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List inspections (of the given page, or all)")
	cmd.Flags().BoolP("list-targets", "L", false,
		"List every inspected page")
	cmd.Flags().Int64P("with-id", "i", 0,
		"Compare with a specific inspection by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first inspection on or after this date (format: YYYY-MM-DD)")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// historyQuery is what the history command was asked to do.
type historyQuery struct {
	target      string
	list        bool
	listTargets bool
	withID      int64
	since       string
	json        bool
	markdown    bool
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	q, err := buildHistoryQuery(cmd, args)
	if err != nil {
		return err
	}

	lookup, err := config.EnvLookup(config.DefaultEnvFile)
	if err != nil {
		return err
	}
	cfg := config.NewConfig()
	if err := cfg.ApplyEnv(lookup); err != nil {
		return err
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return runHistory(cmd.Context(), db, q, cmd.OutOrStdout())
}

// buildHistoryQuery validates the arguments before the database is opened.
func buildHistoryQuery(cmd *cobra.Command, args []string) (*historyQuery, error) {
	flags := cmd.Flags()
	q := &historyQuery{}

	var err error
	if q.list, err = flags.GetBool("list"); err != nil {
		return nil, err
	}
	if q.listTargets, err = flags.GetBool("list-targets"); err != nil {
		return nil, err
	}
	if q.withID, err = flags.GetInt64("with-id"); err != nil {
		return nil, err
	}
	if q.since, err = flags.GetString("since"); err != nil {
		return nil, err
	}
	if q.json, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if q.markdown, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if q.json && q.markdown {
		return nil, config.ErrConflictingReportFormats
	}

	if len(args) == 0 {
		if !q.list && !q.listTargets {
			return nil, errors.New("a page URL is required (use --list-targets to see inspected pages)")
		}
		return q, nil
	}

	u, err := fetch.NormalizeTarget(args[0])
	if err != nil {
		return nil, err
	}
	q.target = u.String()
	return q, nil
}

func runHistory(ctx context.Context, db *database.HistoryDB, q *historyQuery, out io.Writer) error {
	switch {
	case q.listTargets:
		return listTargets(ctx, db, out)
	case q.list:
		return listInspections(ctx, db, q.target, out)
	}

	result, err := loadComparison(ctx, db, q)
	if err != nil {
		return err
	}

	switch {
	case q.json:
		return outputComparisonJSON(result, out)
	case q.markdown:
		return outputComparisonMarkdown(result, out)
	default:
		return outputComparisonText(result, out)
	}
}

func listTargets(ctx context.Context, db *database.HistoryDB, out io.Writer) error {
	targets, err := db.ListTargets(ctx)
	if err != nil {
		return err
	}

	if len(targets) == 0 {
		fmt.Fprintln(out, "No inspected pages found in the database.")
		fmt.Fprintln(out, "\nUse 'webwaiter inspect <url>' to inspect a page.")
		return nil
	}

	fmt.Fprintf(out, "Inspected pages (%d):\n\n", len(targets))
	for _, target := range targets {
		fmt.Fprintf(out, "  • %s\n", target)
	}
	fmt.Fprintln(out, "\nUse 'webwaiter history --list <url>' to see the inspections of a page.")
	return nil
}

func listInspections(ctx context.Context, db *database.HistoryDB, target string, out io.Writer) error {
	inspections, err := db.GetHistoryWithMetadata(ctx, target)
	if err != nil {
		return err
	}

	if len(inspections) == 0 {
		if target == "" {
			fmt.Fprintln(out, "No inspections found in the database.")
		} else {
			fmt.Fprintf(out, "No inspections found for %s\n", target)
		}
		return nil
	}

	if target == "" {
		fmt.Fprintf(out, "Inspections (%d):\n\n", len(inspections))
	} else {
		fmt.Fprintf(out, "Inspections of %s (%d):\n\n", target, len(inspections))
	}
	fmt.Fprintf(out, "  %-6s  %-20s  %-8s  %s\n", "ID", "Date", "Provider", "Summary")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 66))

	for _, meta := range inspections {
		line := fmt.Sprintf("  %-6d  %-20s  %-8s  %s",
			meta.ID,
			meta.Timestamp.Local().Format("2006-01-02 15:04:05"),
			meta.Provider,
			formatSummary(meta.Summary),
		)
		if target == "" {
			line += "  " + meta.Target
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

// formatSummary condenses the stored counts into one line.
func formatSummary(s model.Summary) string {
	parts := []string{
		"icons:" + strconv.Itoa(s.Icons),
		"social:" + strconv.Itoa(s.SocialImages),
		"colors:" + strconv.Itoa(s.ThemeColors),
		"tech:" + strconv.Itoa(s.TechStack),
	}
	if s.Errors > 0 {
		parts = append(parts, "errors:"+strconv.Itoa(s.Errors))
	}
	return strings.Join(parts, " ")
}

// loadComparison picks the two reports to compare. The latest report is
// always the current one.
func loadComparison(ctx context.Context, db *database.HistoryDB, q *historyQuery) (*ComparisonResult, error) {
	reports, err := db.GetHistory(ctx, q.target)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("no inspections found for %s", q.target)
	}
	current := reports[0]

	var previous *model.Report
	switch {
	case q.withID > 0:
		previous, err = db.GetReportByID(ctx, q.withID)
		if err != nil {
			return nil, err
		}
		if previous == nil {
			return nil, fmt.Errorf("inspection with ID %d not found", q.withID)
		}
		if previous.Target != q.target {
			return nil, fmt.Errorf("inspection %d belongs to %s, not %s", q.withID, previous.Target, q.target)
		}
	case q.since != "":
		day, err := time.ParseInLocation("2006-01-02", q.since, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}
		// Reports are newest first; the oldest match is the last one.
		for i := len(reports) - 1; i >= 0; i-- {
			if !reports[i].DateInspected.Before(day) {
				previous = reports[i]
				break
			}
		}
		if previous == nil || previous == current {
			return nil, fmt.Errorf("at least 2 inspections since %s are required for comparison", q.since)
		}
	default:
		if len(reports) < 2 {
			return nil, fmt.Errorf("at least 2 inspections are required for comparison (found %d)", len(reports))
		}
		previous = reports[1]
	}

	return compareReports(previous, current), nil
}

// ComparisonResult is the difference between two inspections of a page.
type ComparisonResult struct {
	Target   string         `json:"target"`
	Previous InspectionInfo `json:"previous"`
	Current  InspectionInfo `json:"current"`

	// Fields lists the metadata fields and social images whose value changed.
	Fields []FieldChange `json:"fields,omitempty"`

	AddedColors   []string `json:"added_colors,omitempty"`
	RemovedColors []string `json:"removed_colors,omitempty"`
	AddedIcons    []string `json:"added_icons,omitempty"`
	RemovedIcons  []string `json:"removed_icons,omitempty"`
	AddedTech     []string `json:"added_tech,omitempty"`
	RemovedTech   []string `json:"removed_tech,omitempty"`
}

// InspectionInfo identifies one side of a comparison.
type InspectionInfo struct {
	ReportID      string        `json:"report_id"`
	DateInspected time.Time     `json:"date_inspected"`
	Provider      string        `json:"provider"`
	Summary       model.Summary `json:"summary"`
}

// FieldChange is a value that differs between two inspections. An empty
// side means the value was absent.
type FieldChange struct {
	Field    string `json:"field"`
	Previous string `json:"previous"`
	Current  string `json:"current"`
}

// Changed reports whether anything differs.
func (c *ComparisonResult) Changed() bool {
	return len(c.Fields) > 0 ||
		len(c.AddedColors) > 0 || len(c.RemovedColors) > 0 ||
		len(c.AddedIcons) > 0 || len(c.RemovedIcons) > 0 ||
		len(c.AddedTech) > 0 || len(c.RemovedTech) > 0
}

// metadataFields lists the compared metadata fields in display order.
var metadataFields = []string{
	model.FieldURL,
	model.FieldTitle,
	model.FieldDescription,
	model.FieldKeywords,
	model.FieldRobots,
	model.FieldCharset,
	model.FieldGenerator,
	model.FieldAuthor,
	model.FieldCopyright,
	model.FieldLanguage,
}

func compareReports(previous, current *model.Report) *ComparisonResult {
	result := &ComparisonResult{
		Target:   current.Target,
		Previous: inspectionInfo(previous),
		Current:  inspectionInfo(current),
	}

	for _, name := range metadataFields {
		before, after := previous.Metadata.Get(name), current.Metadata.Get(name)
		if before != after {
			result.Fields = append(result.Fields, FieldChange{
				Field:    report.FieldLabel(name),
				Previous: before,
				Current:  after,
			})
		}
	}

	for _, kind := range model.SocialImageKinds() {
		before, after := describeImage(previous.SocialImages, kind), describeImage(current.SocialImages, kind)
		if before != after {
			result.Fields = append(result.Fields, FieldChange{
				Field:    kind.Label(),
				Previous: before,
				Current:  after,
			})
		}
	}

	result.AddedColors, result.RemovedColors = diffSets(previous.ThemeColors, current.ThemeColors)
	result.AddedIcons, result.RemovedIcons = diffSets(iconKeys(previous.Icons), iconKeys(current.Icons))
	result.AddedTech, result.RemovedTech = diffSets(previous.TechStack, current.TechStack)

	return result
}

func inspectionInfo(r *model.Report) InspectionInfo {
	return InspectionInfo{
		ReportID:      r.ID,
		DateInspected: r.DateInspected,
		Provider:      r.Provider,
		Summary:       r.Summarize(),
	}
}

func describeImage(images map[model.SocialImageKind]model.AssetReference, kind model.SocialImageKind) string {
	ref, ok := images[kind]
	if !ok {
		return ""
	}
	return ref.URL + " [" + ref.Size() + "]"
}

// iconKeys identifies icons by URL and size, so a resized icon shows up as
// removed and added.
func iconKeys(icons []model.AssetReference) []string {
	keys := make([]string, 0, len(icons))
	for _, icon := range icons {
		keys = append(keys, icon.URL+" ["+icon.Size()+"]")
	}
	return keys
}

// diffSets returns the values only in current and only in previous, in the
// order they appear.
func diffSets(previous, current []string) (added, removed []string) {
	for _, v := range current {
		if !slices.Contains(previous, v) && !slices.Contains(added, v) {
			added = append(added, v)
		}
	}
	for _, v := range previous {
		if !slices.Contains(current, v) && !slices.Contains(removed, v) {
			removed = append(removed, v)
		}
	}
	return added, removed
}

func outputComparisonJSON(result *ComparisonResult, out io.Writer) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputComparisonText(result *ComparisonResult, out io.Writer) error {
	fmt.Fprintf(out, "Inspection Comparison: %s\n", result.Target)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nPrevious: %s (%s)\n", result.Previous.DateInspected.Local().Format("2006-01-02 15:04:05"), result.Previous.Provider)
	fmt.Fprintf(out, "Current:  %s (%s)\n", result.Current.DateInspected.Local().Format("2006-01-02 15:04:05"), result.Current.Provider)

	fmt.Fprintln(out, "\nCounts:")
	fmt.Fprintf(out, "  %-14s  %-10s  %-10s  %-10s\n", "", "Previous", "Current", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 50))
	for _, row := range summaryRows(result) {
		fmt.Fprintf(out, "  %-14s  %-10d  %-10d  %-10s\n", row.label, row.previous, row.current, formatDelta(row.current-row.previous))
	}

	if !result.Changed() {
		fmt.Fprintln(out, "\nNo changes.")
		return nil
	}

	if len(result.Fields) > 0 {
		fmt.Fprintf(out, "\nChanged fields (%d):\n", len(result.Fields))
		for _, f := range result.Fields {
			fmt.Fprintf(out, "  [~] %s\n", f.Field)
			fmt.Fprintf(out, "      - %s\n", orNone(f.Previous))
			fmt.Fprintf(out, "      + %s\n", orNone(f.Current))
		}
	}

	writeTextDiff(out, "Theme colors", result.AddedColors, result.RemovedColors)
	writeTextDiff(out, "Icons", result.AddedIcons, result.RemovedIcons)
	writeTextDiff(out, "Tech stack", result.AddedTech, result.RemovedTech)
	return nil
}

func writeTextDiff(out io.Writer, title string, added, removed []string) {
	if len(added) == 0 && len(removed) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s:\n", title)
	for _, v := range added {
		fmt.Fprintf(out, "  [+] %s\n", v)
	}
	for _, v := range removed {
		fmt.Fprintf(out, "  [-] %s\n", v)
	}
}

func outputComparisonMarkdown(result *ComparisonResult, out io.Writer) error {
	md := markdown.NewMarkdown(out)

	md.H1("Inspection Comparison: " + result.Target)
	md.PlainText("")

	rows := [][]string{
		{"Date", result.Previous.DateInspected.Local().Format("2006-01-02 15:04"), result.Current.DateInspected.Local().Format("2006-01-02 15:04"), "-"},
		{"Provider", result.Previous.Provider, result.Current.Provider, "-"},
	}
	for _, row := range summaryRows(result) {
		rows = append(rows, []string{row.label, strconv.Itoa(row.previous), strconv.Itoa(row.current), formatDelta(row.current - row.previous)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows:   rows,
	})
	md.PlainText("")

	if !result.Changed() {
		md.Note("No changes between the two inspections.")
		return md.Build()
	}

	if len(result.Fields) > 0 {
		md.H2(fmt.Sprintf("Changed Fields (%d)", len(result.Fields)))
		md.PlainText("")
		fieldRows := make([][]string, 0, len(result.Fields))
		for _, f := range result.Fields {
			fieldRows = append(fieldRows, []string{f.Field, markdownCell(f.Previous), markdownCell(f.Current)})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Field", "Previous", "Current"},
			Rows:   fieldRows,
		})
		md.PlainText("")
	}

	writeMarkdownDiff(md, "Theme Colors", result.AddedColors, result.RemovedColors)
	writeMarkdownDiff(md, "Icons", result.AddedIcons, result.RemovedIcons)
	writeMarkdownDiff(md, "Tech Stack", result.AddedTech, result.RemovedTech)

	return md.Build()
}

func writeMarkdownDiff(md *markdown.Markdown, title string, added, removed []string) {
	if len(added) == 0 && len(removed) == 0 {
		return
	}
	md.H2(title)
	md.PlainText("")

	items := make([]string, 0, len(added)+len(removed))
	for _, v := range added {
		items = append(items, "**+** `"+v+"`")
	}
	for _, v := range removed {
		items = append(items, "~~`"+v+"`~~")
	}
	md.BulletList(items...)
	md.PlainText("")
}

type summaryRow struct {
	label             string
	previous, current int
}

func summaryRows(result *ComparisonResult) []summaryRow {
	p, c := result.Previous.Summary, result.Current.Summary
	return []summaryRow{
		{"Theme colors", p.ThemeColors, c.ThemeColors},
		{"Icons", p.Icons, c.Icons},
		{"Social images", p.SocialImages, c.SocialImages},
		{"RSS feeds", p.Feeds, c.Feeds},
		{"Sitemaps", p.Sitemaps, c.Sitemaps},
		{"Tech stack", p.TechStack, c.TechStack},
		{"Errors", p.Errors, c.Errors},
	}
}

func markdownCell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
