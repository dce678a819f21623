package pipeline

import (
	"net/http"
	"time"

	"github.com/nao1215/webwaiter/internal/asset"
	"github.com/nao1215/webwaiter/internal/content"
	"github.com/nao1215/webwaiter/internal/feed"
	"github.com/nao1215/webwaiter/internal/sitemap"
	"github.com/nao1215/webwaiter/internal/techstack"
)

// DefaultPipelineConfig selects the optional stages of the default
// pipeline.
type DefaultPipelineConfig struct {
	// ProbeTimeout bounds each asset probe.
	ProbeTimeout time.Duration

	// ProbeConcurrency is the number of asset probes in flight at once.
	ProbeConcurrency int

	// DiscoverSitemaps enables robots.txt and conventional-path discovery.
	DiscoverSitemaps bool

	// FetchFeeds enables feed summaries.
	FetchFeeds bool

	// FetchContent enables the readable content summary.
	FetchContent bool

	// DetectLanguage enables language detection of the content.
	DetectLanguage bool

	// DownloadDir enables downloading every resolved image into it.
	DownloadDir string

	// Rules is the tech-stack rule table.
	Rules []techstack.Rule
}

// DefaultPipelineOption configures DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineProbeTimeout sets the per-asset probe timeout.
func WithPipelineProbeTimeout(timeout time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		if timeout > 0 {
			c.ProbeTimeout = timeout
		}
	}
}

// WithPipelineProbeConcurrency sets how many probes run at once.
func WithPipelineProbeConcurrency(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		if n > 0 {
			c.ProbeConcurrency = n
		}
	}
}

// WithPipelineSitemaps toggles sitemap discovery.
func WithPipelineSitemaps(enabled bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DiscoverSitemaps = enabled
	}
}

// WithPipelineFeeds toggles feed summaries.
func WithPipelineFeeds(enabled bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.FetchFeeds = enabled
	}
}

// WithPipelineContent toggles the content summary.
func WithPipelineContent(enabled bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.FetchContent = enabled
	}
}

// WithPipelineLanguageDetection toggles language detection.
func WithPipelineLanguageDetection(enabled bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DetectLanguage = enabled
	}
}

// WithPipelineDownloadDir downloads every resolved image into dir.
func WithPipelineDownloadDir(dir string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DownloadDir = dir
	}
}

// WithPipelineRules replaces the tech-stack rule table.
func WithPipelineRules(rules []techstack.Rule) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Rules = rules
	}
}

// DefaultPipeline builds the standard inspection: load, extract, resolve,
// then content and download when enabled. It continues on error unless
// pipelineOpts say otherwise. All network access after loading uses
// client.
func DefaultPipeline(loader Loader, client *http.Client, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(append([]Option{WithContinueOnError(true)}, pipelineOpts...)...)

	cfg := &DefaultPipelineConfig{
		ProbeTimeout:     asset.DefaultProbeTimeout,
		ProbeConcurrency: asset.DefaultProbeConcurrency,
		DiscoverSitemaps: true,
		FetchFeeds:       true,
		FetchContent:     true,
		DetectLanguage:   true,
		Rules:            techstack.Rules,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	logger := p.logger

	resolver := asset.NewResolver(
		asset.WithHTTPClient(client),
		asset.WithProbeTimeout(cfg.ProbeTimeout),
		asset.WithConcurrency(cfg.ProbeConcurrency),
		asset.WithLogger(logger),
	)

	resolveOpts := []ResolveStepOption{WithResolveLogger(logger)}
	if cfg.DiscoverSitemaps {
		resolveOpts = append(resolveOpts, WithSitemapDiscovery(sitemap.NewDiscoverer(
			sitemap.WithHTTPClient(client),
			sitemap.WithTimeout(cfg.ProbeTimeout),
			sitemap.WithLogger(logger),
		)))
	}
	if cfg.FetchFeeds {
		resolveOpts = append(resolveOpts, WithFeedSummaries(feed.NewSummarizer(
			feed.WithHTTPClient(client),
			feed.WithLogger(logger),
		)))
	}

	p.AddSteps(
		NewLoadStep(loader, logger),
		NewExtractStep(cfg.Rules),
		NewResolveStep(resolver, resolveOpts...),
	)

	if cfg.FetchContent {
		p.AddStep(NewContentStep(content.NewAnalyzer(content.WithLanguageDetection(cfg.DetectLanguage)), logger))
	}
	if cfg.DownloadDir != "" {
		p.AddStep(NewDownloadStep(asset.NewDownloader(cfg.DownloadDir,
			asset.WithDownloadClient(client),
			asset.WithDownloadLogger(logger),
		)))
	}

	return p
}
