package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// body is an opened asset.
type body struct {
	io.ReadCloser
	contentType string
}

// open fetches an http(s) URL or decodes a data URL.
func open(ctx context.Context, client *http.Client, rawURL string) (*body, error) {
	if strings.HasPrefix(rawURL, "data:") {
		return openDataURL(rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/*,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	return &body{ReadCloser: resp.Body, contentType: resp.Header.Get("Content-Type")}, nil
}

// openDataURL decodes "data:[<mediatype>][;base64],<data>".
func openDataURL(rawURL string) (*body, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(rawURL, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data URL", ErrUnsupportedFormat)
	}

	mediaType, isBase64 := strings.CutSuffix(header, ";base64")

	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			decoded, err = base64.URLEncoding.DecodeString(payload)
			if err != nil {
				return nil, fmt.Errorf("failed to decode data URL: %w", err)
			}
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode data URL: %w", err)
		}
		data = []byte(unescaped)
	}

	return &body{ReadCloser: io.NopCloser(bytes.NewReader(data)), contentType: mediaType}, nil
}
