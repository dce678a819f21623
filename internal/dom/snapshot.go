package dom

import (
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrInvalidPageURL is returned when a snapshot is built for a URL that is
// not absolute.
var ErrInvalidPageURL = errors.New("page URL must be absolute")

// Snapshot is an immutable Document backed by a parsed goquery document.
// It is safe for concurrent reads.
type Snapshot struct {
	pageURL *url.URL
	html    string
	doc     *goquery.Document

	title   string
	charset string
	lang    string

	// styles holds computed styles captured by a browser, keyed by selector.
	styles map[string][]Style

	// globals holds typeof results for global paths, keyed by path.
	globals map[string]string
}

// SnapshotOption configures a Snapshot.
type SnapshotOption func(*Snapshot)

// WithTitle overrides the title read from the markup.
func WithTitle(title string) SnapshotOption {
	return func(s *Snapshot) {
		s.title = title
	}
}

// WithCharset sets the character encoding reported by the provider.
func WithCharset(charset string) SnapshotOption {
	return func(s *Snapshot) {
		s.charset = charset
	}
}

// WithFallbackCharset sets the character encoding only when the markup
// declares none.
func WithFallbackCharset(charset string) SnapshotOption {
	return func(s *Snapshot) {
		if s.charset == "" {
			s.charset = charset
		}
	}
}

// WithLang overrides the lang attribute read from the markup.
func WithLang(lang string) SnapshotOption {
	return func(s *Snapshot) {
		s.lang = lang
	}
}

// WithStyles supplies computed styles per selector.
func WithStyles(styles map[string][]Style) SnapshotOption {
	return func(s *Snapshot) {
		for sel, st := range styles {
			s.styles[sel] = st
		}
	}
}

// WithGlobals supplies typeof results per global path.
func WithGlobals(globals map[string]string) SnapshotOption {
	return func(s *Snapshot) {
		for path, typ := range globals {
			s.globals[path] = typ
		}
	}
}

// NewSnapshot parses markup served at pageURL.
func NewSnapshot(pageURL, markup string, opts ...SnapshotOption) (*Snapshot, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPageURL, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	doc.Url = u

	s := &Snapshot{
		pageURL: u,
		html:    markup,
		doc:     doc,
		styles:  make(map[string][]Style),
		globals: make(map[string]string),
	}

	s.title = strings.TrimSpace(doc.Find("title").First().Text())
	s.lang = strings.TrimSpace(doc.Find("html").First().AttrOr("lang", ""))
	s.charset = declaredCharset(doc)

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// URL implements Document.
func (s *Snapshot) URL() *url.URL {
	u := *s.pageURL
	return &u
}

// Title implements Document.
func (s *Snapshot) Title() string {
	return s.title
}

// Charset implements Document.
func (s *Snapshot) Charset() string {
	return s.charset
}

// Lang implements Document.
func (s *Snapshot) Lang() string {
	return s.lang
}

// HTML implements Document.
func (s *Snapshot) HTML() string {
	return s.html
}

// Query implements Document.
// An invalid selector matches nothing.
func (s *Snapshot) Query(selector string) []Element {
	sel := s.doc.Find(selector)
	elements := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, item *goquery.Selection) {
		elements = append(elements, toElement(item))
	})
	return elements
}

// Exists implements Document.
func (s *Snapshot) Exists(selector string) bool {
	return s.doc.Find(selector).Length() > 0
}

// ComputedStyles implements Document.
// Styles supplied by the provider win; otherwise styles are derived from
// inline style attributes, which is all a static document can offer.
func (s *Snapshot) ComputedStyles(selector string) []Style {
	if styles, ok := s.styles[selector]; ok {
		out := make([]Style, len(styles))
		copy(out, styles)
		return out
	}

	var styles []Style
	s.doc.Find(selector).Each(func(_ int, item *goquery.Selection) {
		styles = append(styles, InlineStyle(item.AttrOr("style", "")))
	})
	return styles
}

// TypeOf implements Document.
func (s *Snapshot) TypeOf(path string) string {
	if typ, ok := s.globals[path]; ok && typ != "" {
		return typ
	}
	return TypeUndefined
}

// toElement converts a single-node selection to an Element.
func toElement(item *goquery.Selection) Element {
	el := Element{
		Tag:   goquery.NodeName(item),
		Attrs: make(map[string]string),
		Text:  strings.TrimSpace(item.Text()),
	}
	if len(item.Nodes) > 0 {
		for _, attr := range item.Nodes[0].Attr {
			el.Attrs[strings.ToLower(attr.Key)] = attr.Val
		}
	}
	return el
}

// declaredCharset returns the charset declared in the markup, if any.
func declaredCharset(doc *goquery.Document) string {
	if cs, ok := doc.Find("meta[charset]").First().Attr("charset"); ok && strings.TrimSpace(cs) != "" {
		return strings.TrimSpace(cs)
	}

	var charset string
	doc.Find("meta[http-equiv]").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if !strings.EqualFold(item.AttrOr("http-equiv", ""), "content-type") {
			return true
		}
		_, params, err := mime.ParseMediaType(item.AttrOr("content", ""))
		if err != nil {
			return true
		}
		charset = params["charset"]
		return charset == ""
	})
	return charset
}
