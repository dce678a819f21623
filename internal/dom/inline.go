package dom

import (
	"strings"

	"github.com/nao1215/webwaiter/internal/color"
)

// InlineStyle reads the color properties of a style attribute value.
// Later declarations override earlier ones, and shorthand properties
// (background, border) contribute their first color token.
func InlineStyle(attr string) Style {
	var style Style
	for _, decl := range strings.Split(attr, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
		if value == "" {
			continue
		}

		switch name {
		case "background-color":
			style.BackgroundColor = value
		case "color":
			style.Color = value
		case "border-color":
			style.BorderColor = value
		case "background":
			if c := colorToken(value); c != "" {
				style.BackgroundColor = c
			}
		case "border", "border-top", "border-bottom", "border-left", "border-right":
			if c := colorToken(value); c != "" {
				style.BorderColor = c
			}
		}
	}
	return style
}

// colorToken returns the first whitespace separated token of a shorthand
// value that parses as a color. Parenthesised groups stay in one token.
func colorToken(value string) string {
	for _, tok := range splitTopLevel(value) {
		if _, err := color.Parse(tok); err == nil {
			return tok
		}
	}
	return ""
}

func splitTopLevel(value string) []string {
	var (
		tokens []string
		cur    strings.Builder
		depth  int
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range value {
		switch {
		case r == '(':
			depth++
			cur.WriteRune(r)
		case r == ')':
			if depth > 0 {
				depth--
			}
			cur.WriteRune(r)
		case (r == ' ' || r == '\t' || r == '\n') && depth == 0:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}
