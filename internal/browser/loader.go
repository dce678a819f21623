// Package browser is the headless Chrome document provider.
//
// The page is loaded with chromedp and captured with a single script
// evaluation that returns the rendered markup, the computed colors of the
// theme elements and the typeof of every tech-stack global. The result is a
// dom.Snapshot, so extraction code cannot tell which provider produced it.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/nao1215/webwaiter/internal/dom"
	"github.com/nao1215/webwaiter/internal/fetch"
	"github.com/nao1215/webwaiter/internal/inspect"
	"github.com/nao1215/webwaiter/internal/techstack"
)

// DefaultTimeout bounds navigation plus capture.
const DefaultTimeout = 45 * time.Second

// Loader loads pages in headless Chrome.
type Loader struct {
	timeout   time.Duration
	userAgent string
	cookie    string
	headers   map[string]string
	proxy     string
	execPath  string
	selectors []string
	globals   []string
	logger    *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithTimeout sets the navigation and capture timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(l *Loader) {
		if timeout > 0 {
			l.timeout = timeout
		}
	}
}

// WithUserAgent overrides the browser user agent.
func WithUserAgent(userAgent string) Option {
	return func(l *Loader) {
		l.userAgent = userAgent
	}
}

// WithCookie sends a raw cookie string with every request of the page.
func WithCookie(cookie string) Option {
	return func(l *Loader) {
		l.cookie = cookie
	}
}

// WithHeaders sends extra headers with every request of the page.
func WithHeaders(headers map[string]string) Option {
	return func(l *Loader) {
		l.headers = headers
	}
}

// WithProxy routes the browser through a SOCKS5 proxy at host:port.
func WithProxy(address string) Option {
	return func(l *Loader) {
		l.proxy = address
	}
}

// WithExecPath uses a specific Chrome binary.
func WithExecPath(path string) Option {
	return func(l *Loader) {
		l.execPath = path
	}
}

// WithCapture replaces the selectors whose computed styles are captured and
// the global paths whose typeof is captured.
func WithCapture(selectors, globals []string) Option {
	return func(l *Loader) {
		l.selectors = selectors
		l.globals = globals
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader that captures the theme selectors and every
// tech-stack global by default.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		timeout:   DefaultTimeout,
		selectors: []string{inspect.ThemeSelector},
		globals:   techstack.GlobalPaths(techstack.Rules),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name returns the provider name.
func (l *Loader) Name() string {
	return "browser"
}

// Load navigates to target, waits for the body and captures the page.
func (l *Loader) Load(ctx context.Context, target string) (dom.Document, error) {
	u, err := fetch.NormalizeTarget(target)
	if err != nil {
		return nil, err
	}

	script, err := buildScript(l.selectors, l.globals)
	if err != nil {
		return nil, err
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, l.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		l.logger.Debug(fmt.Sprintf(format, args...))
	}))
	defer cancelBrowser()

	timeoutCtx, cancel := context.WithTimeout(browserCtx, l.timeout)
	defer cancel()

	var c capture
	if err := chromedp.Run(timeoutCtx, l.actions(u.String(), script, &c)...); err != nil {
		return nil, fmt.Errorf("browser failed to load %s: %w", u, err)
	}

	l.logger.Debug("page captured",
		"url", c.URL,
		"bytes", len(c.HTML),
		"selectors", len(c.Styles),
		"globals", len(c.Globals),
	)

	return c.snapshot()
}

func (l *Loader) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if l.proxy != "" {
		opts = append(opts, chromedp.ProxyServer("socks5://"+l.proxy))
	}
	if l.execPath != "" {
		opts = append(opts, chromedp.ExecPath(l.execPath))
	}
	return opts
}

func (l *Loader) actions(target, script string, c *capture) []chromedp.Action {
	var actions []chromedp.Action

	if l.userAgent != "" {
		actions = append(actions, emulation.SetUserAgentOverride(l.userAgent))
	}
	if headers := l.extraHeaders(); len(headers) > 0 {
		actions = append(actions, network.Enable(), network.SetExtraHTTPHeaders(headers))
	}

	return append(actions,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(script, c),
	)
}

func (l *Loader) extraHeaders() network.Headers {
	headers := make(network.Headers, len(l.headers)+1)
	for k, v := range l.headers {
		headers[k] = v
	}
	if l.cookie != "" {
		headers["Cookie"] = l.cookie
	}
	return headers
}
