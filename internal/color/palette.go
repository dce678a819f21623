package color

// DefaultPaletteSize is the number of theme colors kept per page.
const DefaultPaletteSize = 8

// Palette is an ordered set of hex colors with a fixed capacity.
// Colors keep their first-seen order; duplicates and colors added after the
// palette is full are ignored.
type Palette struct {
	limit  int
	seen   map[string]struct{}
	colors []string
}

// NewPalette creates a palette that holds at most limit colors.
// A non-positive limit falls back to DefaultPaletteSize.
func NewPalette(limit int) *Palette {
	if limit <= 0 {
		limit = DefaultPaletteSize
	}
	return &Palette{
		limit:  limit,
		seen:   make(map[string]struct{}, limit),
		colors: make([]string, 0, limit),
	}
}

// Add classifies a CSS color value and appends its hex form when it is valid,
// new and the palette still has room. It reports whether the color was added.
func (p *Palette) Add(value string) bool {
	if p.Full() || !IsValid(value) {
		return false
	}
	hex, ok := ToHex(value)
	if !ok {
		return false
	}
	if _, dup := p.seen[hex]; dup {
		return false
	}
	p.seen[hex] = struct{}{}
	p.colors = append(p.colors, hex)
	return true
}

// Full reports whether the palette reached its capacity.
func (p *Palette) Full() bool {
	return len(p.colors) >= p.limit
}

// Len returns the number of colors collected.
func (p *Palette) Len() int {
	return len(p.colors)
}

// Colors returns a copy of the collected colors in first-seen order.
func (p *Palette) Colors() []string {
	out := make([]string, len(p.colors))
	copy(out, p.colors)
	return out
}
