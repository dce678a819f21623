// Package feed summarizes the RSS and Atom feeds a page links to.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/webwaiter/internal/model"
)

const (
	// DefaultTimeout bounds the fetch of one feed.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBytes caps the size of one feed document.
	DefaultMaxBytes = 5 << 20

	// DefaultConcurrency is how many feeds are fetched at once.
	DefaultConcurrency = 4
)

// ErrBadStatus is returned when a feed URL answers with a non-2xx status.
var ErrBadStatus = errors.New("unexpected HTTP status")

// Summarizer fetches and parses feeds.
type Summarizer struct {
	client      *http.Client
	timeout     time.Duration
	maxBytes    int64
	concurrency int
	logger      *slog.Logger

	// gofeed.Parser keeps per-parse state, so each parse gets its own.
	parsers sync.Pool
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Summarizer) {
		if client != nil {
			s.client = client
		}
	}
}

// WithTimeout sets the per-feed timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Summarizer) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithConcurrency sets how many feeds SummarizeAll fetches at once.
func WithConcurrency(n int) Option {
	return func(s *Summarizer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Summarizer) {
		s.logger = logger
	}
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(opts ...Option) *Summarizer {
	s := &Summarizer{
		client:      &http.Client{},
		timeout:     DefaultTimeout,
		maxBytes:    DefaultMaxBytes,
		concurrency: DefaultConcurrency,
	}
	s.parsers.New = func() any {
		return gofeed.NewParser()
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Summarize fetches and parses one feed.
func (s *Summarizer) Summarize(ctx context.Context, url string) (model.FeedSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.FeedSummary{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return model.FeedSummary{}, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.FeedSummary{}, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	return s.Parse(url, io.LimitReader(resp.Body, s.maxBytes))
}

// Parse summarizes a feed document read from r. url is recorded as is.
func (s *Summarizer) Parse(url string, r io.Reader) (model.FeedSummary, error) {
	parser, _ := s.parsers.Get().(*gofeed.Parser)
	if parser == nil {
		parser = gofeed.NewParser()
	}
	defer s.parsers.Put(parser)

	f, err := parser.Parse(r)
	if err != nil {
		return model.FeedSummary{}, fmt.Errorf("failed to parse feed: %w", err)
	}
	return summarize(url, f), nil
}

// SummarizeAll summarizes every feed concurrently. Feeds that cannot be
// fetched or parsed are logged and dropped; the rest keep input order.
func (s *Summarizer) SummarizeAll(ctx context.Context, urls []string) []model.FeedSummary {
	results := make([]*model.FeedSummary, len(urls))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, u := range urls {
		g.Go(func() error {
			summary, err := s.Summarize(ctx, u)
			if err != nil {
				s.logger.Warn("feed summary failed", "url", u, "error", err)
				return nil
			}
			results[i] = &summary
			return nil
		})
	}
	_ = g.Wait()

	summaries := make([]model.FeedSummary, 0, len(urls))
	for _, r := range results {
		if r != nil {
			summaries = append(summaries, *r)
		}
	}
	return summaries
}

func summarize(url string, f *gofeed.Feed) model.FeedSummary {
	summary := model.FeedSummary{
		URL:       url,
		Title:     strings.TrimSpace(f.Title),
		Link:      f.Link,
		FeedType:  f.FeedType,
		ItemCount: len(f.Items),
		Updated:   f.UpdatedParsed,
	}
	if summary.Updated == nil {
		summary.Updated = f.PublishedParsed
	}

	latest := latestItem(f.Items)
	if latest != nil {
		summary.LatestItem = strings.TrimSpace(latest.Title)
		if summary.Updated == nil {
			summary.Updated = itemTime(latest)
		}
	}
	return summary
}

// latestItem returns the most recently published item, or the first item
// when no item carries a date.
func latestItem(items []*gofeed.Item) *gofeed.Item {
	var latest *gofeed.Item
	var latestAt *time.Time
	for _, item := range items {
		if item == nil {
			continue
		}
		if latest == nil {
			latest = item
			latestAt = itemTime(item)
			continue
		}
		at := itemTime(item)
		if at != nil && (latestAt == nil || at.After(*latestAt)) {
			latest, latestAt = item, at
		}
	}
	return latest
}

func itemTime(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}
