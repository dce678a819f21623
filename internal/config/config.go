package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "webwaiter"

	// DefaultTimeout bounds loading the page itself.
	DefaultTimeout = 30 * time.Second

	// DefaultProbeTimeout bounds each icon, image, feed and sitemap fetch.
	DefaultProbeTimeout = 5 * time.Second

	// DefaultProbeConcurrency is the number of asset probes in flight per page.
	DefaultProbeConcurrency = 8

	// DefaultBatchSize is the number of pages inspected at once.
	DefaultBatchSize = 4

	// DefaultMaxPageBytes limits how much of the page body is read.
	DefaultMaxPageBytes = 8 << 20

	// DefaultTorStartupTimeout is how long the embedded Tor daemon may take
	// to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// Config holds every option of one webwaiter run. It is filled from
// defaults, the config file, the environment and CLI flags, in that order.
type Config struct {
	// Targets are the page addresses to inspect.
	Targets []string

	// Timeout bounds loading each page.
	Timeout time.Duration

	// ProbeTimeout bounds each asset probe.
	ProbeTimeout time.Duration

	// ProbeConcurrency is the number of probes in flight per page.
	ProbeConcurrency int

	// BatchSize is the number of pages inspected at once.
	BatchSize int

	// MaxPageBytes limits how much of a page body the static loader reads.
	MaxPageBytes int64

	// UserAgent overrides the default User-Agent. Site settings win over it.
	UserAgent string

	// Browser loads pages in headless Chrome instead of parsing static HTML.
	Browser bool

	// ChromePath is the Chrome executable. Empty means search the PATH.
	ChromePath string

	// ProxyAddress is a SOCKS5 proxy in host:port form.
	ProxyAddress string

	// UseTor routes every request through an embedded Tor daemon.
	UseTor bool

	// TorStartupTimeout bounds the Tor bootstrap.
	TorStartupTimeout time.Duration

	// DownloadDir, when set, receives every resolved image.
	DownloadDir string

	// FetchFeeds enables feed summaries.
	FetchFeeds bool

	// FetchContent enables the readable content summary.
	FetchContent bool

	// DiscoverSitemaps enables robots.txt and conventional path probing.
	DiscoverSitemaps bool

	// DetectLanguage enables language detection of the content.
	DetectLanguage bool

	// JSONReport, MarkdownReport and HTMLReport select the output format.
	// At most one may be set; none means the plain text report.
	JSONReport     bool
	MarkdownReport bool
	HTMLReport     bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// SaveToDB records each inspection in the history database.
	SaveToDB bool

	// DBDir is the directory of the history database.
	DBDir string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the configuration file. Empty means search for
	// .webwaiter in the current and home directories.
	ConfigFilePath string

	// SiteConfigs holds the settings loaded from the configuration file.
	SiteConfigs *File
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		ProbeTimeout:      DefaultProbeTimeout,
		ProbeConcurrency:  DefaultProbeConcurrency,
		BatchSize:         DefaultBatchSize,
		MaxPageBytes:      DefaultMaxPageBytes,
		TorStartupTimeout: DefaultTorStartupTimeout,
		FetchFeeds:        true,
		FetchContent:      true,
		DiscoverSitemaps:  true,
		DetectLanguage:    true,
		SaveToDB:          true,
		DBDir:             XDGDataDir(),
	}
}

// XDGDataDir returns the data directory that holds the history database.
// On Linux: ~/.local/share/webwaiter
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the webwaiter config directory.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the cache directory, the default target of
// `webwaiter download`.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.ProbeTimeout <= 0 {
		return ErrInvalidProbeTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxPageBytes < 0 {
		return ErrInvalidMaxPageBytes
	}

	formats := 0
	for _, set := range []bool{c.JSONReport, c.MarkdownReport, c.HTMLReport} {
		if set {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}

	if c.UseTor && c.ProxyAddress != "" {
		return ErrConflictingProxy
	}
	return nil
}

// Site returns the effective site settings for target, or the zero value
// when no configuration file was loaded.
func (c *Config) Site(target string) SiteConfig {
	if c.SiteConfigs == nil {
		return SiteConfig{}
	}
	return c.SiteConfigs.SiteFor(target)
}

// UseBrowser reports whether target should be loaded in headless Chrome.
// A site setting overrides the global flag.
func (c *Config) UseBrowser(target string) bool {
	if b := c.Site(target).Browser; b != nil {
		return *b
	}
	return c.Browser
}

// UserAgentFor returns the User-Agent to send to target. Empty means the
// HTTP client default.
func (c *Config) UserAgentFor(target string) string {
	if ua := c.Site(target).UserAgent; ua != "" {
		return ua
	}
	return c.UserAgent
}
