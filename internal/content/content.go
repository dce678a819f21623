// Package content summarizes the main readable content of a page.
//
// The article is extracted with go-readability, its words are counted on
// the cleaned markup, and when enough text is left its language is detected
// with lingua. The detector is expensive to build, so it is built once per
// process and shared; lingua detectors are safe for concurrent use.
package content

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/webwaiter/internal/model"
)

// MinDetectionRunes is the minimum amount of article text required before
// language detection is attempted.
const MinDetectionRunes = 80

// ErrNoContent is returned when no readable article could be extracted.
var ErrNoContent = errors.New("no readable content")

// DetectionLanguages restricts the languages lingua chooses from.
var DetectionLanguages = []lingua.Language{
	lingua.English,
	lingua.Japanese,
	lingua.Chinese,
	lingua.Korean,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.Italian,
	lingua.Dutch,
	lingua.Russian,
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

func languageDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(DetectionLanguages...).
			Build()
	})
	return detector
}

// Analyzer extracts content summaries.
type Analyzer struct {
	detectLanguage bool
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLanguageDetection toggles language detection.
func WithLanguageDetection(enabled bool) Option {
	return func(a *Analyzer) {
		a.detectLanguage = enabled
	}
}

// NewAnalyzer creates an Analyzer with language detection enabled.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{detectLanguage: true}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summarize extracts the readable article of html served at pageURL.
func (a *Analyzer) Summarize(html string, pageURL *url.URL) (*model.ContentSummary, error) {
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(html), pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract article: %w", err)
	}
	if strings.TrimSpace(article.Content) == "" {
		return nil, ErrNoContent
	}

	text, err := plainText(article.Content)
	if err != nil {
		return nil, err
	}

	summary := &model.ContentSummary{
		Title:         strings.TrimSpace(article.Title),
		Byline:        strings.TrimSpace(article.Byline),
		Excerpt:       strings.TrimSpace(article.Excerpt),
		SiteName:      strings.TrimSpace(article.SiteName),
		PublishedTime: article.PublishedTime,
		Image:         article.Image,
		Favicon:       article.Favicon,
		WordCount:     len(strings.Fields(text)),
	}

	if a.detectLanguage {
		summary.DetectedLanguage = DetectLanguage(text)
	}
	return summary, nil
}

// DetectLanguage returns the ISO 639-1 code of the language of text, or ""
// when text is too short or the language cannot be told reliably.
func DetectLanguage(text string) string {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinDetectionRunes {
		return ""
	}
	lang, ok := languageDetector().DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

// plainText returns the text content of an HTML fragment. Block elements
// are separated by a space so that words of adjacent paragraphs stay apart.
func plainText(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("failed to parse article: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	var b strings.Builder
	for _, n := range doc.Nodes {
		writeText(&b, n)
	}
	return b.String(), nil
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if blockElements[n.DataAtom] {
			b.WriteByte(' ')
			defer b.WriteByte(' ')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
}

var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Br: true, atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Figcaption: true, atom.Figure: true, atom.Footer: true, atom.H1: true,
	atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true,
	atom.Td: true, atom.Th: true, atom.Tr: true, atom.Ul: true,
}
