package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/webwaiter/internal/asset"
	"github.com/nao1215/webwaiter/internal/content"
	"github.com/nao1215/webwaiter/internal/feed"
	"github.com/nao1215/webwaiter/internal/inspect"
	"github.com/nao1215/webwaiter/internal/model"
	"github.com/nao1215/webwaiter/internal/sitemap"
	"github.com/nao1215/webwaiter/internal/techstack"
)

// LoadStep loads the document with a provider. It is the only fatal step.
type LoadStep struct {
	loader Loader
	logger *slog.Logger
}

// NewLoadStep creates a LoadStep.
func NewLoadStep(loader Loader, logger *slog.Logger) *LoadStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadStep{loader: loader, logger: logger}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do implements Step.
func (s *LoadStep) Do(ctx context.Context, in *Inspection) error {
	in.Report.Provider = s.loader.Name()

	doc, err := s.loader.Load(ctx, in.Target)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoDocument, err)
	}
	in.Document = doc

	s.logger.Debug("document loaded",
		"target", in.Target,
		"url", doc.URL().String(),
		"provider", s.loader.Name(),
	)
	return nil
}

// ExtractStep reads everything that needs no network access: metadata,
// theme colors, candidate links and the tech stack.
type ExtractStep struct {
	rules []techstack.Rule
}

// NewExtractStep creates an ExtractStep using rules; nil means
// techstack.Rules.
func NewExtractStep(rules []techstack.Rule) *ExtractStep {
	if rules == nil {
		rules = techstack.Rules
	}
	return &ExtractStep{rules: rules}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do implements Step.
func (s *ExtractStep) Do(_ context.Context, in *Inspection) error {
	doc := in.Document
	if doc == nil {
		return ErrNoDocument
	}

	r := in.Report
	r.Metadata = inspect.ExtractMetadata(doc)
	r.ThemeColors = inspect.ExtractThemeColors(doc)
	r.HTTPS = inspect.IsHTTPS(doc)
	r.TechStack = techstack.Detect(doc, s.rules)
	r.HasGoogleAnalytics = techstack.HasGoogleAnalytics(doc)

	in.Links = inspect.GatherLinks(doc)
	r.RSSFeeds = in.Links.Feeds
	if len(in.Links.Sitemaps) > 0 {
		r.Sitemaps = in.Links.Sitemaps
		r.SitemapSource = string(sitemap.SourceDeclared)
	}
	return nil
}

// ResolveStep probes every referenced asset concurrently and waits for all
// of them to settle. Icon and social image probes that fail are dropped.
// Sitemap discovery and feed summaries run alongside when their
// collaborators are set.
type ResolveStep struct {
	resolver *asset.Resolver
	sitemaps *sitemap.Discoverer
	feeds    *feed.Summarizer
	logger   *slog.Logger
}

// ResolveStepOption configures a ResolveStep.
type ResolveStepOption func(*ResolveStep)

// WithSitemapDiscovery enables sitemap discovery for pages that declare none.
func WithSitemapDiscovery(d *sitemap.Discoverer) ResolveStepOption {
	return func(s *ResolveStep) {
		s.sitemaps = d
	}
}

// WithFeedSummaries enables fetching and summarizing linked feeds.
func WithFeedSummaries(f *feed.Summarizer) ResolveStepOption {
	return func(s *ResolveStep) {
		s.feeds = f
	}
}

// WithResolveLogger sets the logger.
func WithResolveLogger(logger *slog.Logger) ResolveStepOption {
	return func(s *ResolveStep) {
		s.logger = logger
	}
}

// NewResolveStep creates a ResolveStep.
func NewResolveStep(resolver *asset.Resolver, opts ...ResolveStepOption) *ResolveStep {
	s := &ResolveStep{
		resolver: resolver,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ResolveStep) Name() string {
	return "resolve"
}

// Do implements Step.
func (s *ResolveStep) Do(ctx context.Context, in *Inspection) error {
	if in.Document == nil {
		return ErrNoDocument
	}

	var (
		icons  []model.AssetReference
		social map[model.SocialImageKind]model.AssetReference
		found  sitemap.Result
		feeds  []model.FeedSummary
	)

	// Every task swallows its own failures, so Wait never reports one.
	var g errgroup.Group

	g.Go(func() error {
		icons = s.resolveIcons(ctx, in.Links)
		return nil
	})
	g.Go(func() error {
		social = s.resolveSocialImages(ctx, in.Links.SocialImages)
		return nil
	})

	discover := s.sitemaps != nil && len(in.Links.Sitemaps) == 0
	if discover {
		pageURL := in.Document.URL()
		g.Go(func() error {
			found = s.sitemaps.Discover(ctx, pageURL, nil)
			return nil
		})
	}

	if s.feeds != nil && len(in.Links.Feeds) > 0 {
		g.Go(func() error {
			feeds = s.feeds.SummarizeAll(ctx, in.Links.Feeds)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // tasks never return errors

	r := in.Report
	r.Icons = icons
	r.SortIcons()
	r.SocialImages = social
	r.Feeds = feeds
	if discover {
		r.Sitemaps = found.URLs
		r.SitemapSource = string(found.Source)
	}

	s.logger.Debug("assets resolved",
		"target", in.Target,
		"icons", len(r.Icons),
		"social_images", len(r.SocialImages),
		"sitemaps", len(r.Sitemaps),
		"feeds", len(r.Feeds),
	)

	return ctx.Err()
}

// resolveIcons probes the declared icons (or the fallback favicon) and the
// manifest icons.
func (s *ResolveStep) resolveIcons(ctx context.Context, links inspect.Links) []model.AssetReference {
	candidates := links.IconCandidates()

	if links.Manifest != "" {
		manifestIcons, err := s.resolver.ManifestIcons(ctx, links.Manifest)
		if err != nil {
			s.logger.Debug("manifest unavailable", "url", links.Manifest, "error", err)
		}
		candidates = appendUnique(candidates, manifestIcons...)
	}

	probes := s.resolver.ProbeAll(ctx, candidates)
	s.logFailures("icon", probes)
	return asset.References(probes)
}

// resolveSocialImages probes each social image kind.
func (s *ResolveStep) resolveSocialImages(ctx context.Context, images map[model.SocialImageKind]string) map[model.SocialImageKind]model.AssetReference {
	kinds := make([]model.SocialImageKind, 0, len(images))
	urls := make([]string, 0, len(images))
	for _, kind := range model.SocialImageKinds() {
		if u, ok := images[kind]; ok && u != "" {
			kinds = append(kinds, kind)
			urls = append(urls, u)
		}
	}

	probes := s.resolver.ProbeAll(ctx, urls)
	s.logFailures("social image", probes)

	resolved := make(map[model.SocialImageKind]model.AssetReference, len(probes))
	for i, p := range probes {
		if p.Available() {
			resolved[kinds[i]] = p.Reference()
		}
	}
	return resolved
}

func (s *ResolveStep) logFailures(kind string, probes []asset.Probe) {
	for _, p := range probes {
		if !p.Available() {
			s.logger.Debug(kind+" unavailable", "url", p.URL, "error", p.Err)
		}
	}
}

// ContentStep summarizes the readable content of the page.
type ContentStep struct {
	analyzer *content.Analyzer
	logger   *slog.Logger
}

// NewContentStep creates a ContentStep.
func NewContentStep(analyzer *content.Analyzer, logger *slog.Logger) *ContentStep {
	if analyzer == nil {
		analyzer = content.NewAnalyzer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentStep{analyzer: analyzer, logger: logger}
}

// Name returns the step name.
func (s *ContentStep) Name() string {
	return "content"
}

// Do implements Step. A page without readable content is not an error.
func (s *ContentStep) Do(_ context.Context, in *Inspection) error {
	doc := in.Document
	if doc == nil {
		return ErrNoDocument
	}

	summary, err := s.analyzer.Summarize(doc.HTML(), doc.URL())
	if errors.Is(err, content.ErrNoContent) {
		s.logger.Debug("no readable content", "target", in.Target)
		return nil
	}
	if err != nil {
		return err
	}
	in.Report.Content = summary
	return nil
}

// DownloadStep saves every resolved icon and social image to disk.
type DownloadStep struct {
	downloader *asset.Downloader
}

// NewDownloadStep creates a DownloadStep.
func NewDownloadStep(downloader *asset.Downloader) *DownloadStep {
	return &DownloadStep{downloader: downloader}
}

// Name returns the step name.
func (s *DownloadStep) Name() string {
	return "download"
}

// Do implements Step. Individual download failures are logged by the
// downloader and do not fail the step.
func (s *DownloadStep) Do(ctx context.Context, in *Inspection) error {
	in.Report.Downloads = s.downloader.DownloadAll(ctx, ImageURLs(in.Report))
	return ctx.Err()
}

// ImageURLs lists the resolved icons (largest first) followed by the social
// images in display order, without duplicates.
func ImageURLs(r *model.Report) []string {
	var urls []string
	for _, icon := range r.Icons {
		urls = appendUnique(urls, icon.URL)
	}
	for _, kind := range model.SocialImageKinds() {
		if img, ok := r.SocialImages[kind]; ok {
			urls = appendUnique(urls, img.URL)
		}
	}
	return urls
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if v == "" {
			continue
		}
		dup := false
		for _, existing := range dst {
			if existing == v {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}
