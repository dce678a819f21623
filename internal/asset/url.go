package asset

import (
	"net/url"
	"strings"
)

// Origin returns scheme://host of u.
func Origin(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// NormalizeURL makes a candidate asset URL absolute.
//
//	"//cdn.example.com/x.png"  -> "https://cdn.example.com/x.png"
//	"/img/x.png"               -> origin + "/img/x.png"
//	"img/x.png"                -> origin + "/img/x.png"
//	"https://a.com/x.png"      -> unchanged
//
// An empty value stays empty.
func NormalizeURL(origin, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	origin = strings.TrimRight(origin, "/")

	switch {
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "/"):
		return origin + raw
	case hasScheme(raw):
		return raw
	default:
		return origin + "/" + raw
	}
}

// hasScheme reports whether raw starts with an RFC 3986 scheme followed by ':'.
func hasScheme(raw string) bool {
	for i, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		case r == ':':
			return i > 0
		default:
			return false
		}
	}
	return false
}
