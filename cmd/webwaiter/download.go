package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/webwaiter/internal/asset"
	"github.com/nao1215/webwaiter/internal/config"
	"github.com/nao1215/webwaiter/internal/database"
	"github.com/nao1215/webwaiter/internal/fetch"
	"github.com/nao1215/webwaiter/internal/log"
	"github.com/spf13/cobra"
)

// NewDownloadCmd creates the download command.
func NewDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download an icon or image",
		Long: `Download saves a single asset, such as an icon or social image found by
'webwaiter inspect', and prints its size and SHA3-256 digest.

Files go to the webwaiter cache directory unless -o is given. Without -n the
file is named after the URL, falling back to favicon.ico.

Examples:
  # Download a favicon into the cache directory
  webwaiter download https://example.com/favicon.ico

  # Save an Open Graph image under a chosen name
  webwaiter download -o ./assets -n og.png https://example.com/og-image.png`,
		Args: cobra.ExactArgs(1),
		RunE: runDownloadCmd,
	}

	cmd.Flags().StringP("output", "o", config.XDGCacheDir(),
		"Directory to save the file in")
	cmd.Flags().StringP("name", "n", "",
		"File name (default: derived from the URL)")
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")
	cmd.Flags().DurationP("timeout", "t", asset.DefaultDownloadTimeout,
		"Download timeout")
	cmd.Flags().Bool("no-history", false,
		"Do not record the download in the history database")

	return cmd
}

// downloadOptions are the resolved settings of one download.
type downloadOptions struct {
	url      string
	dir      string
	filename string
	cfg      *config.Config
}

func runDownloadCmd(cmd *cobra.Command, args []string) error {
	lookup, err := config.EnvLookup(config.DefaultEnvFile)
	if err != nil {
		return err
	}
	opts, err := buildDownloadOptions(cmd, args, lookup)
	if err != nil {
		return err
	}

	logger := log.NewSecureLogger(os.Stderr, opts.cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runDownload(ctx, opts, logger, cmd.OutOrStdout())
}

func buildDownloadOptions(cmd *cobra.Command, args []string, lookup config.LookupFunc) (*downloadOptions, error) {
	cfg := config.NewConfig()
	cfg.Timeout = asset.DefaultDownloadTimeout
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	opts := &downloadOptions{url: args[0], cfg: cfg}

	var err error
	if opts.dir, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	// WEBWAITER_DOWNLOAD_DIR replaces the cache directory default.
	if !flags.Changed("output") && cfg.DownloadDir != "" {
		opts.dir = cfg.DownloadDir
	}
	if opts.filename, err = flags.GetString("name"); err != nil {
		return nil, err
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	if noHistory {
		cfg.SaveToDB = false
	}
	cfg.Verbose = getVerboseFlag(cmd)

	u, err := fetch.NormalizeTarget(opts.url)
	if err != nil {
		return nil, err
	}
	opts.url = u.String()
	return opts, nil
}

func runDownload(ctx context.Context, opts *downloadOptions, logger *slog.Logger, out io.Writer) error {
	cfg := opts.cfg

	if cfg.ProxyAddress != "" {
		if err := checkProxy(ctx, cfg.ProxyAddress, cfg.Timeout); err != nil {
			return err
		}
	}

	client, err := fetch.NewClient(
		fetch.WithProxy(cfg.ProxyAddress),
		fetch.WithUserAgent(cfg.UserAgent),
	)
	if err != nil {
		return err
	}

	downloader := asset.NewDownloader(opts.dir,
		asset.WithDownloadClient(client.HTTPClient()),
		asset.WithDownloadTimeout(cfg.Timeout),
		asset.WithDownloadLogger(logger),
	)

	d, err := downloader.Download(ctx, opts.url, opts.filename)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Saved %s (%d bytes)\n", d.Path, d.Bytes)
	fmt.Fprintf(out, "  sha3-256: %s\n", d.SHA3)

	if !cfg.SaveToDB {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	seen, err := db.FindDownloadsByDigest(ctx, d.SHA3)
	if err != nil {
		return err
	}
	for _, prev := range seen {
		if prev.Path != d.Path {
			fmt.Fprintf(out, "  same content as %s\n", prev.Path)
		}
	}

	return db.SaveDownload(ctx, d)
}
