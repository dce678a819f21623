package asset

import (
	"bytes"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"

	// Registered decoders for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Image formats reported by decodeConfig besides the registered ones.
const (
	FormatICO = "ico"
	FormatSVG = "svg"
)

// icoHeaderSize and icoEntrySize are the ICONDIR and ICONDIRENTRY sizes.
const (
	icoHeaderSize = 6
	icoEntrySize  = 16
)

// dimensions is the decoded size of an image.
type dimensions struct {
	width  int
	height int
	format string
}

// decodeConfig reads the pixel dimensions from the head of an image.
// contentType is a hint used for SVG, which has no magic number.
func decodeConfig(data []byte, contentType string) (dimensions, error) {
	if isICO(data) {
		return decodeICO(data)
	}
	if strings.HasPrefix(strings.ToLower(contentType), "image/svg") {
		return decodeSVG(data)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil {
		return dimensions{width: cfg.Width, height: cfg.Height, format: format}, nil
	}
	if looksLikeSVG(data) {
		return decodeSVG(data)
	}
	return dimensions{}, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
}

func isICO(data []byte) bool {
	return len(data) >= 4 && data[0] == 0 && data[1] == 0 && data[2] == 1 && data[3] == 0
}

func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

// decodeICO reads the ICONDIR and returns the largest entry.
// A width or height byte of 0 means 256 pixels.
func decodeICO(data []byte) (dimensions, error) {
	if len(data) < icoHeaderSize {
		return dimensions{}, fmt.Errorf("%w: truncated ico header", ErrUnsupportedFormat)
	}
	count := int(binary.LittleEndian.Uint16(data[4:6]))
	if count == 0 {
		return dimensions{}, fmt.Errorf("%w: ico without images", ErrUnsupportedFormat)
	}

	best := dimensions{format: FormatICO}
	for i := 0; i < count; i++ {
		off := icoHeaderSize + i*icoEntrySize
		if off+icoEntrySize > len(data) {
			break
		}
		w, h := int(data[off]), int(data[off+1])
		if w == 0 {
			w = 256
		}
		if h == 0 {
			h = 256
		}
		if w*h > best.width*best.height {
			best.width, best.height = w, h
		}
	}
	if best.width == 0 {
		return dimensions{}, fmt.Errorf("%w: truncated ico directory", ErrUnsupportedFormat)
	}
	return best, nil
}

// decodeSVG reads width, height and viewBox from the root svg element.
// Missing or relative lengths are derived from the viewBox aspect ratio.
func decodeSVG(data []byte) (dimensions, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false

	for {
		tok, err := dec.Token()
		if err != nil {
			return dimensions{}, fmt.Errorf("%w: no svg element: %w", ErrUnsupportedFormat, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "svg" {
			continue
		}

		var width, height, vbWidth, vbHeight float64
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "width":
				width = parseSVGLength(attr.Value)
			case "height":
				height = parseSVGLength(attr.Value)
			case "viewBox":
				vbWidth, vbHeight = parseViewBox(attr.Value)
			}
		}

		switch {
		case width > 0 && height > 0:
		case width > 0 && vbWidth > 0 && vbHeight > 0:
			height = width * vbHeight / vbWidth
		case height > 0 && vbWidth > 0 && vbHeight > 0:
			width = height * vbWidth / vbHeight
		case vbWidth > 0 && vbHeight > 0:
			width, height = vbWidth, vbHeight
		default:
			return dimensions{}, fmt.Errorf("%w: svg has no intrinsic size", ErrUnsupportedFormat)
		}

		return dimensions{
			width:  int(math.Round(width)),
			height: int(math.Round(height)),
			format: FormatSVG,
		}, nil
	}
}

// parseSVGLength accepts unitless and px lengths; anything else is 0.
func parseSVGLength(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0
	}
	return v
}

func parseViewBox(s string) (float64, float64) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) != 4 {
		return 0, 0
	}
	w, errW := strconv.ParseFloat(fields[2], 64)
	h, errH := strconv.ParseFloat(fields[3], 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0
	}
	return w, h
}
