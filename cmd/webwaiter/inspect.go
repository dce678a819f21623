package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/webwaiter/internal/browser"
	"github.com/nao1215/webwaiter/internal/config"
	"github.com/nao1215/webwaiter/internal/database"
	"github.com/nao1215/webwaiter/internal/fetch"
	"github.com/nao1215/webwaiter/internal/log"
	"github.com/nao1215/webwaiter/internal/model"
	"github.com/nao1215/webwaiter/internal/pipeline"
	"github.com/nao1215/webwaiter/internal/report"
	"github.com/spf13/cobra"
)

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [url...]",
		Short: "Inspect web pages and report their metadata and design assets",
		Long: `Inspect loads each page and reports what it says about itself.

The report has three parts:
- Basic info: title, description, keywords, robots, charset, language, ...
- Extended info: HTTPS, Google Analytics, tech stack, RSS feeds, sitemaps
- Design info: theme colors, icons and social images with real dimensions

Pages are parsed as static HTML by default. Use --browser to render them in
headless Chrome, which sees metadata injected by JavaScript.

Examples:
  # Inspect a single page
  webwaiter inspect example.com

  # Inspect several pages, three at a time
  webwaiter inspect -B 3 example.com example.org example.net

  # Render in headless Chrome and write an HTML report
  webwaiter inspect --browser --html -o report.html https://example.com

  # Download every icon and social image
  webwaiter inspect -d ./assets example.com

  # Route everything through an embedded Tor daemon
  webwaiter inspect --tor example.com

Configuration file (.webwaiter) example:
  defaults:
    headers:
      Accept-Language: "en-US"
  sites:
    example.com:
      cookie: "session_id=abc123"
      browser: true`,
		Args: cobra.ArbitraryArgs,
		RunE: runInspectCmd,
	}

	// Loading
	cmd.Flags().BoolP("browser", "b", false,
		"Render pages in headless Chrome")
	cmd.Flags().String("chrome-path", "",
		"Chrome executable (default: search PATH)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Page load timeout")
	cmd.Flags().DurationP("probe-timeout", "P", config.DefaultProbeTimeout,
		"Timeout for each icon, image, feed and sitemap fetch")
	cmd.Flags().IntP("batch", "B", config.DefaultBatchSize,
		"Number of pages inspected concurrently")
	cmd.Flags().StringP("user-agent", "A", "",
		"User-Agent sent with every request")

	// Network
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon and route every request through it")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	// Optional fetches
	cmd.Flags().StringP("download-dir", "d", "",
		"Download every resolved icon and social image into this directory")
	cmd.Flags().Bool("no-feeds", false, "Do not fetch and summarize RSS feeds")
	cmd.Flags().Bool("no-content", false, "Do not extract the readable content")
	cmd.Flags().Bool("no-sitemaps", false, "Do not probe robots.txt and /sitemap.xml")
	cmd.Flags().Bool("no-history", false, "Do not record inspections in the history database")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .webwaiter in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false, "Output JSON report")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown report")
	cmd.Flags().BoolP("html", "H", false, "Output HTML report")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

func runInspectCmd(cmd *cobra.Command, args []string) error {
	lookup, err := config.EnvLookup(config.DefaultEnvFile)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd, args, lookup)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runInspect(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig layers the configuration file, the environment and the
// command-line flags over the defaults. Flags only override the lower
// layers when given explicitly.
func buildConfig(cmd *cobra.Command, args []string, lookup config.LookupFunc) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := loadSiteConfigs(cfg); err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Targets = args
	return cfg, nil
}

// loadSiteConfigs reads the configuration file. A missing file is an error
// only when its path was given explicitly.
func loadSiteConfigs(cfg *config.Config) error {
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.SiteConfigs = file
	case cfg.ConfigFilePath != "":
		return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	}
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	for name, dst := range map[string]*time.Duration{
		"timeout":       &cfg.Timeout,
		"probe-timeout": &cfg.ProbeTimeout,
		"tor-timeout":   &cfg.TorStartupTimeout,
	} {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetDuration(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	for name, dst := range map[string]*string{
		"proxy":        &cfg.ProxyAddress,
		"user-agent":   &cfg.UserAgent,
		"chrome-path":  &cfg.ChromePath,
		"download-dir": &cfg.DownloadDir,
	} {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	// --no-* flags can only switch a fetch off.
	for name, dst := range map[string]*bool{
		"no-feeds":    &cfg.FetchFeeds,
		"no-content":  &cfg.FetchContent,
		"no-sitemaps": &cfg.DiscoverSitemaps,
		"no-history":  &cfg.SaveToDB,
	} {
		off, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		if off {
			*dst = false
		}
	}

	if flags.Changed("batch") {
		v, err := flags.GetInt("batch")
		if err != nil {
			return err
		}
		cfg.BatchSize = v
	}

	for name, dst := range map[string]*bool{
		"browser":  &cfg.Browser,
		"tor":      &cfg.UseTor,
		"json":     &cfg.JSONReport,
		"markdown": &cfg.MarkdownReport,
		"html":     &cfg.HTMLReport,
	} {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if flags.Changed("output") {
		v, err := flags.GetString("output")
		if err != nil {
			return err
		}
		cfg.ReportFile = v
	}
	return nil
}

// runInspect inspects every target and writes one report per target.
// Progress goes to status so that stdout carries only reports.
func runInspect(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, status io.Writer) error {
	for i, target := range cfg.Targets {
		u, err := fetch.NormalizeTarget(target)
		if err != nil {
			return fmt.Errorf("invalid target %q: %w", target, err)
		}
		cfg.Targets[i] = u.String()
	}

	logger.Info("starting inspection",
		"targets", cfg.Targets,
		"browser", cfg.Browser,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.HistoryDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	proxyAddr := cfg.ProxyAddress
	if cfg.UseTor {
		embeddedTor, err := startEmbeddedTor(ctx, cfg, logger, status)
		if err != nil {
			return err
		}
		defer func() {
			logger.Info("stopping embedded Tor daemon...")
			if err := embeddedTor.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}()
		proxyAddr = embeddedTor.SocksAddr()
	}
	if proxyAddr != "" {
		if err := checkProxy(ctx, proxyAddr, cfg.Timeout); err != nil {
			return err
		}
		logger.Info("SOCKS5 proxy verified", "address", proxyAddr)
	}

	ins := &inspector{cfg: cfg, proxy: proxyAddr, logger: logger}
	pipelines := make(map[string]*pipeline.Pipeline, len(cfg.Targets))
	for _, target := range cfg.Targets {
		p, err := ins.newPipeline(target)
		if err != nil {
			return err
		}
		pipelines[target] = p
	}

	output, closeOutput, err := openOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer closeOutput()
	writer := newReportWriter(cfg, output)

	bp := pipeline.NewBatchProcessor(
		func(target string) *pipeline.Pipeline { return pipelines[target] },
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	fmt.Fprintf(status, "Inspecting %d page(s)...\n", len(cfg.Targets))
	start := time.Now()

	var mu sync.Mutex
	err = bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(r *model.Report, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintf(status, "[%d/%d] %s: %d images, %d errors\n",
			index+1, len(cfg.Targets), r.Target, r.ImageCount(), len(r.Errors))

		if _, err := writer.Write(r); err != nil {
			logger.Error("report failed", "target", r.Target, "error", err)
		}
		if err := saveInspection(ctx, db, r, logger); err != nil {
			logger.Error("failed to save inspection", "target", r.Target, "error", err)
		}
	})

	fmt.Fprintf(status, "Done in %s\n", time.Since(start).Round(time.Millisecond))
	if cfg.ReportFile != "" {
		fmt.Fprintf(status, "Report written to %s\n", cfg.ReportFile)
	}
	return err
}

// inspector builds the per-target clients, loaders and pipelines.
type inspector struct {
	cfg    *config.Config
	proxy  string
	logger *slog.Logger
}

func (in *inspector) newClient(target string) (*fetch.Client, error) {
	site := in.cfg.Site(target)
	client, err := fetch.NewClient(
		fetch.WithProxy(in.proxy),
		fetch.WithTimeout(in.cfg.Timeout),
		fetch.WithUserAgent(in.cfg.UserAgentFor(target)),
		fetch.WithCookie(site.Cookie),
		fetch.WithHeaders(site.Headers),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client for %s: %w", target, err)
	}
	return client, nil
}

func (in *inspector) newLoader(target string, client *fetch.Client) pipeline.Loader {
	if !in.cfg.UseBrowser(target) {
		return fetch.NewPageLoader(client.HTTPClient(),
			fetch.WithMaxPageBytes(in.cfg.MaxPageBytes),
			fetch.WithLoaderLogger(in.logger),
		)
	}

	site := in.cfg.Site(target)
	return browser.NewLoader(
		browser.WithTimeout(in.cfg.Timeout),
		browser.WithUserAgent(in.cfg.UserAgentFor(target)),
		browser.WithCookie(site.Cookie),
		browser.WithHeaders(site.Headers),
		browser.WithProxy(in.proxy),
		browser.WithExecPath(in.cfg.ChromePath),
		browser.WithLogger(in.logger),
	)
}

func (in *inspector) newPipeline(target string) (*pipeline.Pipeline, error) {
	client, err := in.newClient(target)
	if err != nil {
		return nil, err
	}

	return pipeline.DefaultPipeline(
		in.newLoader(target, client),
		client.HTTPClient(),
		[]pipeline.Option{pipeline.WithLogger(in.logger)},
		pipeline.WithPipelineProbeTimeout(in.cfg.ProbeTimeout),
		pipeline.WithPipelineProbeConcurrency(in.cfg.ProbeConcurrency),
		pipeline.WithPipelineSitemaps(in.cfg.DiscoverSitemaps),
		pipeline.WithPipelineFeeds(in.cfg.FetchFeeds),
		pipeline.WithPipelineContent(in.cfg.FetchContent),
		pipeline.WithPipelineLanguageDetection(in.cfg.DetectLanguage),
		pipeline.WithPipelineDownloadDir(in.downloadDir(target)),
	), nil
}

// downloadDir keeps the assets of each page apart when several pages are
// inspected into the same directory.
func (in *inspector) downloadDir(target string) string {
	if in.cfg.DownloadDir == "" || len(in.cfg.Targets) < 2 {
		return in.cfg.DownloadDir
	}
	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" {
		return in.cfg.DownloadDir
	}
	return filepath.Join(in.cfg.DownloadDir, u.Hostname())
}

// newReportWriter returns the writer for the selected report format.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	case cfg.HTMLReport:
		return report.NewHTMLWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// openOutput opens path for the reports, or returns stdout when path is
// empty. Reports may include session-dependent content, so the file is
// created readable by the owner only.
func openOutput(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// checkProxy verifies that a SOCKS5 proxy answers at addr.
func checkProxy(ctx context.Context, addr string, timeout time.Duration) error {
	client, err := fetch.NewClient(fetch.WithProxy(addr), fetch.WithTimeout(timeout))
	if err != nil {
		return err
	}
	status := client.CheckProxy(ctx)
	if err := status.Err(); err != nil {
		return fmt.Errorf("proxy check failed: %s (make sure a SOCKS5 proxy is running at %s): %w",
			status, addr, err)
	}
	return nil
}

// startEmbeddedTor starts a Tor daemon through tornago and waits for it to
// bootstrap.
func startEmbeddedTor(ctx context.Context, cfg *config.Config, logger *slog.Logger, status io.Writer) (*fetch.EmbeddedTor, error) {
	fmt.Fprintln(status, "Starting embedded Tor daemon...")
	fmt.Fprintf(status, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

	embeddedTor := fetch.NewEmbeddedTor(fetch.WithStartupTimeout(cfg.TorStartupTimeout))
	if err := embeddedTor.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}

	logger.Info("embedded Tor daemon started",
		"socksAddr", embeddedTor.SocksAddr(),
		"controlAddr", embeddedTor.ControlAddr(),
	)
	fmt.Fprintf(status, "SOCKS proxy: %s\n\n", embeddedTor.SocksAddr())
	return embeddedTor, nil
}

// saveInspection records report in the history database. A nil db is a
// no-op.
func saveInspection(ctx context.Context, db *database.HistoryDB, r *model.Report, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	// Record the inspection even if the run is being cancelled.
	id, err := db.SaveReport(context.WithoutCancel(ctx), r)
	if err != nil {
		return err
	}

	logger.Info("inspection saved to database", "target", r.Target, "id", id)
	return nil
}
