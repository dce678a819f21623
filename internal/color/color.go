// Package color classifies CSS color values and encodes them as hex.
//
// The classifier keeps colors that are likely to carry brand identity and
// rejects the neutral chrome every page has: transparent and translucent
// colors, grays, near-white and near-black.
package color

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Classification thresholds.
const (
	// MinAlpha is the lowest alpha a valid color may have.
	MinAlpha = 0.5

	// GrayDelta is the channel difference below which a color counts as gray.
	GrayDelta = 20

	// WhiteFloor is the channel value above which a color counts as near-white.
	WhiteFloor = 240

	// BlackCeiling is the channel value below which a color counts as near-black.
	BlackCeiling = 15
)

// ErrInvalidColor is returned when a value is not a parsable CSS color.
var ErrInvalidColor = errors.New("invalid color")

// RGBA is a parsed color with 8-bit channels and a 0..1 alpha.
type RGBA struct {
	R, G, B uint8
	A       float64
}

// Hex returns the color as uppercase #RRGGBB. Alpha is dropped.
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// IsTransparent reports whether the color has zero alpha.
func (c RGBA) IsTransparent() bool {
	return c.A == 0
}

// IsGrayscale reports whether all pairwise channel differences are below GrayDelta.
func (c RGBA) IsGrayscale() bool {
	r, g, b := int(c.R), int(c.G), int(c.B)
	return abs(r-g) < GrayDelta && abs(g-b) < GrayDelta && abs(r-b) < GrayDelta
}

// IsNearWhite reports whether every channel is above WhiteFloor.
func (c RGBA) IsNearWhite() bool {
	return c.R > WhiteFloor && c.G > WhiteFloor && c.B > WhiteFloor
}

// IsNearBlack reports whether every channel is below BlackCeiling.
func (c RGBA) IsNearBlack() bool {
	return c.R < BlackCeiling && c.G < BlackCeiling && c.B < BlackCeiling
}

// Valid reports whether the color passes every classification rule.
func (c RGBA) Valid() bool {
	if c.IsTransparent() || c.A < MinAlpha {
		return false
	}
	return !c.IsGrayscale() && !c.IsNearWhite() && !c.IsNearBlack()
}

// IsValid reports whether a CSS color value is a brand-relevant color.
// Unparsable values are invalid.
func IsValid(value string) bool {
	c, err := Parse(value)
	if err != nil {
		return false
	}
	return c.Valid()
}

// ToHex converts a CSS color value to uppercase #RRGGBB.
// It returns false when the value cannot be parsed or its alpha is below MinAlpha.
func ToHex(value string) (string, bool) {
	c, err := Parse(value)
	if err != nil {
		return "", false
	}
	if c.A < MinAlpha {
		return "", false
	}
	return c.Hex(), true
}

// Parse parses a CSS color value.
//
// Supported forms are rgb() and rgba() in comma or space syntax with an
// optional "/ alpha", numeric or percentage channels, hex notation with 3,
// 4, 6 or 8 digits, the keyword "transparent" and CSS named colors.
func Parse(value string) (RGBA, error) {
	s := strings.ToLower(strings.TrimSpace(value))
	switch {
	case s == "":
		return RGBA{}, ErrInvalidColor
	case s == "transparent":
		return RGBA{A: 0}, nil
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgb"):
		return parseFunctional(s)
	}

	if named, ok := colornames.Map[s]; ok {
		return RGBA{R: named.R, G: named.G, B: named.B, A: 1}, nil
	}
	return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, value)
}

// parseFunctional parses rgb(...) and rgba(...).
func parseFunctional(s string) (RGBA, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	name := strings.TrimSpace(s[:open])
	if name != "rgb" && name != "rgba" {
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	body := s[open+1 : len(s)-1]

	var parts []string
	alphaPart := ""
	if strings.Contains(body, ",") {
		parts = splitTrim(body, ",")
		if len(parts) == 4 {
			alphaPart = parts[3]
			parts = parts[:3]
		}
	} else {
		if slash := strings.IndexByte(body, '/'); slash >= 0 {
			alphaPart = strings.TrimSpace(body[slash+1:])
			body = body[:slash]
		}
		parts = strings.Fields(body)
	}
	if len(parts) != 3 {
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	var channels [3]uint8
	for i, p := range parts {
		v, err := parseChannel(p)
		if err != nil {
			return RGBA{}, err
		}
		channels[i] = v
	}

	alpha := 1.0
	if alphaPart != "" {
		a, err := parseAlpha(alphaPart)
		if err != nil {
			return RGBA{}, err
		}
		alpha = a
	}

	return RGBA{R: channels[0], G: channels[1], B: channels[2], A: alpha}, nil
}

// parseChannel parses a numeric or percentage channel, clamped to 0..255.
func parseChannel(s string) (uint8, error) {
	percent := strings.HasSuffix(s, "%")
	f, err := parseFinite(strings.TrimSuffix(s, "%"))
	if err != nil {
		return 0, fmt.Errorf("%w: channel %q", ErrInvalidColor, s)
	}
	if percent {
		f = f * 255 / 100
	}
	return clampByte(f), nil
}

// parseAlpha parses a float or percentage alpha, clamped to 0..1.
func parseAlpha(s string) (float64, error) {
	percent := strings.HasSuffix(s, "%")
	f, err := parseFinite(strings.TrimSuffix(s, "%"))
	if err != nil {
		return 0, fmt.Errorf("%w: alpha %q", ErrInvalidColor, s)
	}
	if percent {
		f /= 100
	}
	return math.Max(0, math.Min(1, f)), nil
}

// parseFinite parses a float and rejects NaN and infinities, which
// strconv.ParseFloat accepts.
func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrSyntax
	}
	return f, nil
}

// parseHex parses the digits of a hex color.
func parseHex(digits string) (RGBA, error) {
	switch len(digits) {
	case 3, 4:
		expanded := make([]byte, 0, len(digits)*2)
		for i := 0; i < len(digits); i++ {
			expanded = append(expanded, digits[i], digits[i])
		}
		digits = string(expanded)
	case 6, 8:
	default:
		return RGBA{}, fmt.Errorf("%w: #%s", ErrInvalidColor, digits)
	}

	n, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("%w: #%s", ErrInvalidColor, digits)
	}

	c := RGBA{A: 1}
	if len(digits) == 8 {
		c.A = float64(n&0xFF) / 255
		n >>= 8
	}
	c.R = uint8(n >> 16)
	c.G = uint8(n >> 8)
	c.B = uint8(n)
	return c, nil
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func clampByte(f float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, f))))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
