package report

import (
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/webwaiter/internal/model"
)

// Writer renders a report to its destination.
// Implementations exist for terminal text, Markdown, JSON and a standalone
// HTML page.
//
// Design decision: writers only read the report. Everything they show,
// including icon order and the copy and download affordances of the HTML
// page, is derived from data the pipeline has already computed, so a report
// can be rendered any number of times or loaded back from the history
// database and rendered again.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	Write(report *model.Report) (int, error)
}

// MultiWriter writes the same report to several Writers, for example the
// terminal and a file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to every Writer and stops on the first error.
func (m *MultiWriter) Write(report *model.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// FieldLabel returns the display label of a metadata field name.
// A Caser is stateful, so each call gets its own.
func FieldLabel(name string) string {
	if name == model.FieldURL {
		return "URL"
	}
	return cases.Title(language.English).String(name)
}

// yesNo renders a flag the way the report sections show booleans.
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// status summarizes how the inspection ended.
func status(report *model.Report) string {
	switch {
	case report.TimedOut:
		return "Timed out (partial results)"
	case report.HasErrors():
		return "Completed with errors"
	default:
		return "Complete"
	}
}

// socialImages returns the resolved social images in display order.
func socialImages(report *model.Report) []socialImage {
	var images []socialImage
	for _, kind := range model.SocialImageKinds() {
		ref, ok := report.SocialImages[kind]
		if !ok {
			continue
		}
		images = append(images, socialImage{Kind: kind, AssetReference: ref})
	}
	return images
}

type socialImage struct {
	Kind model.SocialImageKind
	model.AssetReference
}
