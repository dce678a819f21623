// Package dom defines the document capability every extraction routine reads
// from, and a goquery-backed snapshot implementing it.
//
// Extraction code never touches a live browser or the network. A document
// provider (the static HTTP loader or the headless browser loader) builds a
// Snapshot once, and every extraction function reads that immutable value.
// Tests substitute a Snapshot built from literal HTML.
package dom

import "net/url"

// TypeUndefined is returned by TypeOf for globals that do not exist.
const TypeUndefined = "undefined"

// Element is a matched element with its tag name and attributes.
type Element struct {
	// Tag is the lower-case tag name.
	Tag string

	// Attrs maps lower-case attribute names to values.
	Attrs map[string]string

	// Text is the trimmed text content of the element.
	Text string
}

// Attr returns the value of an attribute, or "" if absent.
func (e Element) Attr(name string) string {
	return e.Attrs[name]
}

// HasAttr reports whether the attribute is present.
func (e Element) HasAttr(name string) bool {
	_, ok := e.Attrs[name]
	return ok
}

// Style holds the color properties read from an element's computed style.
type Style struct {
	BackgroundColor string `json:"backgroundColor"`
	Color           string `json:"color"`
	BorderColor     string `json:"borderColor"`
}

// Values returns the style colors in classification order.
func (s Style) Values() []string {
	return []string{s.BackgroundColor, s.Color, s.BorderColor}
}

// Document is the read-only view of a loaded page.
type Document interface {
	// URL returns the final page URL.
	URL() *url.URL

	// Title returns the document title.
	Title() string

	// Charset returns the character encoding of the document.
	Charset() string

	// Lang returns the lang attribute of the root element.
	Lang() string

	// HTML returns the serialized document.
	HTML() string

	// Query returns every element matching a CSS selector, in document order.
	Query(selector string) []Element

	// Exists reports whether at least one element matches a CSS selector.
	Exists(selector string) bool

	// ComputedStyles returns the color styles of every element matching a
	// CSS selector, in document order.
	ComputedStyles(selector string) []Style

	// TypeOf returns the JavaScript typeof of a dotted global path such as
	// "jQuery.fn", or TypeUndefined when it does not exist or is unknown.
	TypeOf(path string) string
}
