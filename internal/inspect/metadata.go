// Package inspect holds the read-only extraction routines that turn a
// dom.Document into report fields. Every function here is synchronous and
// side-effect free; two calls on the same document return the same result.
package inspect

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/nao1215/webwaiter/internal/dom"
	"github.com/nao1215/webwaiter/internal/model"
)

// ExtractMetadata reads the named metadata of a document.
// Missing or empty values are left empty and never rendered.
func ExtractMetadata(doc dom.Document) model.PageMetadata {
	charset := doc.Charset()
	if charset == "" {
		charset = firstAttr(doc, "meta[charset]", "charset")
	}

	lang := strings.TrimSpace(doc.Lang())
	if lang == "" {
		lang = MetaContent(doc, "language")
	}

	return model.PageMetadata{
		URL:         doc.URL().String(),
		Title:       strings.TrimSpace(doc.Title()),
		Description: MetaContent(doc, "description"),
		Keywords:    MetaContent(doc, "keywords"),
		Robots:      MetaContent(doc, "robots"),
		Charset:     strings.TrimSpace(charset),
		Generator:   MetaContent(doc, "generator"),
		Author:      MetaContent(doc, "author"),
		Copyright:   MetaContent(doc, "copyright"),
		Language:    CanonicalLanguage(lang),
	}
}

// MetaContent returns the trimmed content of the first meta tag whose name
// equals key, falling back to the first whose property equals key.
func MetaContent(doc dom.Document, key string) string {
	if v := firstAttr(doc, `meta[name="`+key+`"]`, "content"); v != "" {
		return v
	}
	return firstAttr(doc, `meta[property="`+key+`"]`, "content")
}

// CanonicalLanguage canonicalizes a BCP 47 tag ("EN_us" becomes "en-US").
// Values that do not parse are returned trimmed but otherwise unchanged.
func CanonicalLanguage(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	tag, err := language.Parse(strings.ReplaceAll(value, "_", "-"))
	if err != nil {
		return value
	}
	return tag.String()
}

// firstAttr returns the first non-empty trimmed attribute value among the
// elements matching selector.
func firstAttr(doc dom.Document, selector, attr string) string {
	for _, el := range doc.Query(selector) {
		if v := strings.TrimSpace(el.Attr(attr)); v != "" {
			return v
		}
	}
	return ""
}
