// Package techstack guesses which libraries, frameworks and services a page
// uses. Detection is best effort: a declarative rule table is evaluated
// against the selectors and JavaScript globals a document exposes.
package techstack

// Category groups rules for reporting.
type Category string

// Rule categories.
const (
	CategoryFramework     Category = "framework"
	CategoryCMS           Category = "cms"
	CategoryEcommerce     Category = "ecommerce"
	CategoryPayment       Category = "payment"
	CategoryDocs          Category = "docs"
	CategoryUI            Category = "ui"
	CategorySiteGenerator Category = "site-generator"
	CategoryTesting       Category = "testing"
	CategoryCharts        Category = "charts"
	CategoryAnalytics     Category = "analytics"
	CategoryOther         Category = "other"
)

// Query is a single capability test. Exactly one of Selector or Global is set.
//
// A selector query matches when at least one element matches the CSS
// selector. A global query matches when the dotted path exists; when Shape
// is set, the path's typeof must equal it.
type Query struct {
	Selector string
	Global   string
	Shape    string
}

// Selector returns a query that matches when the CSS selector matches.
func Selector(sel string) Query {
	return Query{Selector: sel}
}

// Global returns a query that matches when the global path has the given
// typeof. An empty shape accepts any defined value.
func Global(path, shape string) Query {
	return Query{Global: path, Shape: shape}
}

// Rule labels a technology that is present when any of its queries match.
type Rule struct {
	Label    string
	Category Category
	Any      []Query
}

// Capabilities is the part of a document the detector reads.
// dom.Document satisfies it.
type Capabilities interface {
	Exists(selector string) bool
	TypeOf(path string) string
}

const typeUndefined = "undefined"

// Matches reports whether the query holds for caps.
func (q Query) Matches(caps Capabilities) bool {
	switch {
	case q.Selector != "":
		return caps.Exists(q.Selector)
	case q.Global != "":
		typ := caps.TypeOf(q.Global)
		if typ == "" || typ == typeUndefined {
			return false
		}
		return q.Shape == "" || typ == q.Shape
	default:
		return false
	}
}

// Matches reports whether any query of the rule holds for caps.
func (r Rule) Matches(caps Capabilities) bool {
	for _, q := range r.Any {
		if q.Matches(caps) {
			return true
		}
	}
	return false
}

// Detect evaluates rules against caps and returns the labels of matching
// rules in rule order, without duplicates.
func Detect(caps Capabilities, rules []Rule) []string {
	seen := make(map[string]struct{})
	var labels []string
	for _, r := range rules {
		if _, ok := seen[r.Label]; ok {
			continue
		}
		if r.Matches(caps) {
			seen[r.Label] = struct{}{}
			labels = append(labels, r.Label)
		}
	}
	return labels
}

// googleAnalyticsSelector matches the classic and gtag.js loaders.
const googleAnalyticsSelector = `script[src*="google-analytics.com"], script[src*="gtag"]`

// HasGoogleAnalytics reports whether a Google Analytics loader script is present.
func HasGoogleAnalytics(caps Capabilities) bool {
	return caps.Exists(googleAnalyticsSelector)
}

// GlobalPaths returns every global path referenced by rules, in rule order
// and without duplicates. A browser provider evaluates typeof for each.
func GlobalPaths(rules []Rule) []string {
	seen := make(map[string]struct{})
	var paths []string
	for _, r := range rules {
		for _, q := range r.Any {
			if q.Global == "" {
				continue
			}
			if _, ok := seen[q.Global]; ok {
				continue
			}
			seen[q.Global] = struct{}{}
			paths = append(paths, q.Global)
		}
	}
	return paths
}

// ByCategory groups the labels detected by rules under their category.
func ByCategory(labels []string, rules []Rule) map[Category][]string {
	category := make(map[string]Category, len(rules))
	for _, r := range rules {
		if _, ok := category[r.Label]; !ok {
			category[r.Label] = r.Category
		}
	}
	grouped := make(map[Category][]string)
	for _, l := range labels {
		c, ok := category[l]
		if !ok {
			c = CategoryOther
		}
		grouped[c] = append(grouped[c], l)
	}
	return grouped
}
