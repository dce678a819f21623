// Package report renders an inspection report.
//
// The package contains writers for different output formats:
//   - SimpleWriter: text for terminal display
//   - MarkdownWriter: GitHub flavored Markdown with a mermaid asset chart
//   - JSONWriter and FullJSONWriter: structured output for other tools
//   - HTMLWriter: a standalone page with copy buttons and download links
//
// Writers only read the report. Building it is the pipeline's job.
package report
