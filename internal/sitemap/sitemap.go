// Package sitemap finds the sitemaps of a site.
//
// Sitemaps declared by the page win. Otherwise the Sitemap lines of
// /robots.txt that answer with a 2xx status are used, and as a last resort a
// few conventional paths are probed in order until one answers with a 2xx
// status. Network failures are
// treated as "not found" and never surface as errors.
package sitemap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/temoto/robotstxt"
)

// ConventionalPaths are probed, relative to the site origin, in this order.
var ConventionalPaths = []string{"sitemap.xml", "sitemap_index.xml", "sitemap/"}

// DefaultTimeout bounds each request made during discovery.
const DefaultTimeout = 5 * time.Second

// maxRobotsBytes limits how much of robots.txt is read.
const maxRobotsBytes = 512 << 10

// Source tells where sitemaps were found.
type Source string

// Discovery sources.
const (
	SourceDeclared Source = "declared"
	SourceRobots   Source = "robots.txt"
	SourceProbe    Source = "probe"
	SourceNone     Source = "none"
)

// Result is the outcome of a discovery.
type Result struct {
	URLs   []string
	Source Source
}

// Discoverer looks up sitemaps for a page.
type Discoverer struct {
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Discoverer) {
		if client != nil {
			d.client = client
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Discoverer) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Discoverer) {
		d.logger = logger
	}
}

// NewDiscoverer creates a Discoverer.
func NewDiscoverer(opts ...Option) *Discoverer {
	d := &Discoverer{
		client:  &http.Client{},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Discover returns the sitemaps of the site serving pageURL.
func (d *Discoverer) Discover(ctx context.Context, pageURL *url.URL, declared []string) Result {
	if len(declared) > 0 {
		return Result{URLs: append([]string(nil), declared...), Source: SourceDeclared}
	}

	origin := pageURL.Scheme + "://" + pageURL.Host

	var listed []string
	for _, u := range d.fromRobots(ctx, origin) {
		if ctx.Err() != nil {
			break
		}
		if d.exists(ctx, u) {
			listed = append(listed, u)
		}
	}
	if len(listed) > 0 {
		return Result{URLs: listed, Source: SourceRobots}
	}

	for _, p := range ConventionalPaths {
		if ctx.Err() != nil {
			break
		}
		candidate := origin + "/" + p
		if d.exists(ctx, candidate) {
			return Result{URLs: []string{candidate}, Source: SourceProbe}
		}
	}

	return Result{Source: SourceNone}
}

// fromRobots returns the Sitemap lines of origin/robots.txt.
func (d *Discoverer) fromRobots(ctx context.Context, origin string) []string {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Debug("robots.txt unavailable", "origin", origin, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}
	resp.Body = io.NopCloser(io.LimitReader(resp.Body, maxRobotsBytes))

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		d.logger.Debug("robots.txt unparsable", "origin", origin, "error", err)
		return nil
	}

	seen := make(map[string]struct{}, len(robots.Sitemaps))
	urls := make([]string, 0, len(robots.Sitemaps))
	for _, s := range robots.Sitemaps {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		urls = append(urls, s)
	}
	return urls
}

// exists reports whether rawURL answers with a 2xx status.
// Servers that reject HEAD with 405 or 501 are retried with GET.
func (d *Discoverer) exists(ctx context.Context, rawURL string) bool {
	status, err := d.status(ctx, http.MethodHead, rawURL)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = d.status(ctx, http.MethodGet, rawURL)
	}
	if err != nil {
		d.logger.Debug("sitemap probe failed", "url", rawURL, "error", err)
		return false
	}
	return status >= 200 && status <= 299
}

func (d *Discoverer) status(ctx context.Context, method, rawURL string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}
