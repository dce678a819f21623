package asset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/webwaiter/internal/model"
)

const (
	// DefaultProbeTimeout bounds a single dimension probe.
	DefaultProbeTimeout = 5 * time.Second

	// DefaultMaxProbeBytes is how much of an image a probe reads.
	// Headers of every supported format fit well within it.
	DefaultMaxProbeBytes = 2 << 20

	// DefaultProbeConcurrency is the number of probes in flight at once.
	DefaultProbeConcurrency = 8
)

// Probe is the outcome of resolving one asset.
// Err is nil on success and wraps ErrUnavailable otherwise.
type Probe struct {
	URL    string
	Width  int
	Height int
	Format string
	Exif   map[string]string
	Err    error
}

// Available reports whether the probe resolved to a usable image.
func (p Probe) Available() bool {
	return p.Err == nil && p.Width > 0 && p.Height > 0
}

// Reference converts the probe to an AssetReference.
func (p Probe) Reference() model.AssetReference {
	return model.AssetReference{
		URL:    p.URL,
		Width:  p.Width,
		Height: p.Height,
		Format: p.Format,
		Exif:   p.Exif,
	}
}

// References keeps the available probes, in order, as AssetReferences.
func References(probes []Probe) []model.AssetReference {
	refs := make([]model.AssetReference, 0, len(probes))
	for _, p := range probes {
		if p.Available() {
			refs = append(refs, p.Reference())
		}
	}
	return refs
}

// Resolver determines the pixel dimensions of remote images.
//
// A probe downloads at most maxBytes of the image and decodes only its
// header. PNG, JPEG and GIF are decoded with the standard image package,
// WebP and BMP with golang.org/x/image, ICO from its ICONDIR header and SVG
// from its width, height and viewBox attributes.
//
// Design decision: a probe never fails the caller. Every error, including a
// timeout, is wrapped in ErrUnavailable and returned in Probe.Err, and the
// report assembler drops unavailable probes instead of showing them. Each
// probe has its own timeout, so one slow image cannot hold up the others
// beyond that bound.
type Resolver struct {
	client      *http.Client
	timeout     time.Duration
	maxBytes    int64
	concurrency int
	logger      *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithHTTPClient sets the client used for probes.
func WithHTTPClient(client *http.Client) ResolverOption {
	return func(r *Resolver) {
		if client != nil {
			r.client = client
		}
	}
}

// WithProbeTimeout sets the per-probe timeout.
func WithProbeTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithMaxProbeBytes limits how many bytes a probe reads.
func WithMaxProbeBytes(n int64) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.maxBytes = n
		}
	}
}

// WithConcurrency sets how many probes ProbeAll runs at once.
func WithConcurrency(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets the logger for probe failures.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		client:      &http.Client{},
		timeout:     DefaultProbeTimeout,
		maxBytes:    DefaultMaxProbeBytes,
		concurrency: DefaultProbeConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// ResolveDimensions fetches url and decodes its image header.
// It returns within the probe timeout; failures are reported in Probe.Err.
func (r *Resolver) ResolveDimensions(ctx context.Context, url string) Probe {
	probe := Probe{URL: url}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	data, contentType, err := r.read(ctx, url)
	if err != nil {
		probe.Err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		r.logger.Debug("asset probe failed", "url", url, "error", err)
		return probe
	}

	dim, err := decodeConfig(data, contentType)
	if err != nil {
		probe.Err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		r.logger.Debug("asset decode failed", "url", url, "error", err)
		return probe
	}
	if dim.width <= 0 || dim.height <= 0 {
		probe.Err = fmt.Errorf("%w: zero size", ErrUnavailable)
		return probe
	}

	probe.Width = dim.width
	probe.Height = dim.height
	probe.Format = dim.format
	if dim.format == "jpeg" {
		probe.Exif = exifSummary(data)
	}
	return probe
}

// read fetches at most maxBytes of an asset.
func (r *Resolver) read(ctx context.Context, url string) ([]byte, string, error) {
	b, err := open(ctx, r.client, url)
	if err != nil {
		return nil, "", err
	}
	defer b.Close()

	data, err := io.ReadAll(io.LimitReader(b, r.maxBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read body: %w", err)
	}
	return data, b.contentType, nil
}

// ProbeAll resolves every URL concurrently and waits for all probes to
// settle. The result has one Probe per input URL, in input order.
func (r *Resolver) ProbeAll(ctx context.Context, urls []string) []Probe {
	probes := make([]Probe, len(urls))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, u := range urls {
		g.Go(func() error {
			probes[i] = r.ResolveDimensions(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	return probes
}
