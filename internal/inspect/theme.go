package inspect

import (
	"strings"

	"github.com/nao1215/webwaiter/internal/color"
	"github.com/nao1215/webwaiter/internal/dom"
)

// ThemeSelectors are the selector categories of elements likely to carry
// brand colors.
var ThemeSelectors = []string{
	`[class*="primary"],[class*="brand"],[class*="theme"],[class*="accent"]`,
	`.btn,.button,[type="submit"],[class*="cta"],[class*="highlight"]`,
	`header,nav,.logo,.nav,.menu`,
	`[class*="active"],[class*="selected"],[class*="current"]`,
	`.badge,.tag,.label`,
}

// ThemeSelector is ThemeSelectors joined into one selector list.
var ThemeSelector = strings.Join(ThemeSelectors, ",")

// ExtractThemeColors returns up to color.DefaultPaletteSize unique hex
// colors read from the computed background, text and border colors of the
// theme elements, in document order.
func ExtractThemeColors(doc dom.Document) []string {
	palette := color.NewPalette(color.DefaultPaletteSize)
	for _, style := range doc.ComputedStyles(ThemeSelector) {
		for _, value := range style.Values() {
			palette.Add(value)
		}
		if palette.Full() {
			break
		}
	}
	return palette.Colors()
}
