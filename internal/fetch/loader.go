package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/nao1215/webwaiter/internal/dom"
)

// DefaultMaxPageBytes caps how much of a page body is read.
const DefaultMaxPageBytes int64 = 8 << 20

// PageLoader is the static document provider. It fetches a page over HTTP
// and parses the markup as served, without running scripts.
type PageLoader struct {
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

// PageLoaderOption configures a PageLoader.
type PageLoaderOption func(*PageLoader)

// WithMaxPageBytes sets the body size limit.
func WithMaxPageBytes(n int64) PageLoaderOption {
	return func(l *PageLoader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// WithLoaderLogger sets the logger.
func WithLoaderLogger(logger *slog.Logger) PageLoaderOption {
	return func(l *PageLoader) {
		l.logger = logger
	}
}

// NewPageLoader creates a PageLoader that fetches with client.
func NewPageLoader(client *http.Client, opts ...PageLoaderOption) *PageLoader {
	if client == nil {
		client = http.DefaultClient
	}
	l := &PageLoader{
		client:   client,
		maxBytes: DefaultMaxPageBytes,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name returns the provider name.
func (l *PageLoader) Name() string {
	return "static"
}

// Load fetches target and returns its document. The reported URL is the
// final one after redirects. Bodies are transcoded to UTF-8 using the
// Content-Type header, the markup's declarations, or content sniffing.
func (l *PageLoader) Load(ctx context.Context, target string) (dom.Document, error) {
	u, err := NormalizeTarget(target)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrBadStatus, u, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTML(contentType) {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotHTML, u, contentType)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", u, err)
	}

	enc, encName, _ := charset.DetermineEncoding(raw, contentType)
	markup, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		l.logger.Debug("charset decoding failed, using raw bytes", "url", u.String(), "charset", encName, "error", err)
		markup = raw
	}

	finalURL := u.String()
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	l.logger.Debug("page loaded",
		"url", finalURL,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"charset", encName,
	)

	snapshot, err := dom.NewSnapshot(finalURL, string(markup), dom.WithFallbackCharset(strings.ToUpper(encName)))
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// NormalizeTarget turns user input such as "example.com/page" into an
// absolute http(s) URL. Inputs without a scheme get https.
func NormalizeTarget(target string) (*url.URL, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidTarget)
	}
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidTarget, u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidTarget)
	}
	return u, nil
}

// isHTML accepts HTML and XHTML, and a missing Content-Type.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
