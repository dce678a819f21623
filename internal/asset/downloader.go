package asset

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/webwaiter/internal/model"
)

const (
	// DefaultFilename is used when neither the caller nor the URL names the file.
	DefaultFilename = "favicon.ico"

	// DefaultMaxDownloadBytes caps a single download.
	DefaultMaxDownloadBytes = 10 << 20

	// DefaultDownloadTimeout bounds a single download.
	DefaultDownloadTimeout = 30 * time.Second
)

// Downloader saves assets into a directory.
type Downloader struct {
	dir      string
	client   *http.Client
	maxBytes int64
	timeout  time.Duration
	logger   *slog.Logger
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithDownloadClient sets the HTTP client used for downloads.
func WithDownloadClient(client *http.Client) DownloaderOption {
	return func(d *Downloader) {
		if client != nil {
			d.client = client
		}
	}
}

// WithMaxDownloadBytes caps the size of a single download.
func WithMaxDownloadBytes(n int64) DownloaderOption {
	return func(d *Downloader) {
		if n > 0 {
			d.maxBytes = n
		}
	}
}

// WithDownloadTimeout bounds a single download.
func WithDownloadTimeout(timeout time.Duration) DownloaderOption {
	return func(d *Downloader) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithDownloadLogger sets the logger.
func WithDownloadLogger(logger *slog.Logger) DownloaderOption {
	return func(d *Downloader) {
		d.logger = logger
	}
}

// NewDownloader creates a Downloader writing into dir.
func NewDownloader(dir string, opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		dir:      dir,
		client:   &http.Client{},
		maxBytes: DefaultMaxDownloadBytes,
		timeout:  DefaultDownloadTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Dir returns the target directory.
func (d *Downloader) Dir() string {
	return d.dir
}

// Download fetches rawURL and stores it as filename inside the target
// directory. An empty filename falls back to the URL's base name and then
// to DefaultFilename. The file is written to a temporary name first and
// renamed once complete, so a failed download leaves nothing behind.
func (d *Downloader) Download(ctx context.Context, rawURL, filename string) (model.Download, error) {
	name, err := targetName(rawURL, filename)
	if err != nil {
		return model.Download{}, err
	}

	if err := os.MkdirAll(d.dir, 0o750); err != nil {
		return model.Download{}, fmt.Errorf("failed to create download directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	b, err := open(ctx, d.client, rawURL)
	if err != nil {
		return model.Download{}, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer b.Close()

	tmp, err := os.CreateTemp(d.dir, ".webwaiter-*.tmp")
	if err != nil {
		return model.Download{}, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	hasher := sha3.New256()
	n, copyErr := io.Copy(io.MultiWriter(tmp, hasher), io.LimitReader(b, d.maxBytes+1))
	closeErr := tmp.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(tmpPath)
		return model.Download{}, fmt.Errorf("failed to save %s: %w", rawURL, copyErr)
	case closeErr != nil:
		_ = os.Remove(tmpPath)
		return model.Download{}, fmt.Errorf("failed to save %s: %w", rawURL, closeErr)
	case n > d.maxBytes:
		_ = os.Remove(tmpPath)
		return model.Download{}, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, rawURL, d.maxBytes)
	}

	dest := filepath.Join(d.dir, name)
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return model.Download{}, fmt.Errorf("failed to move download into place: %w", err)
	}

	d.logger.Debug("downloaded asset", "url", rawURL, "path", dest, "bytes", n)

	return model.Download{
		URL:   rawURL,
		Path:  dest,
		Bytes: n,
		SHA3:  hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// DownloadAll downloads every URL, naming files after their URLs.
// Failures are logged and skipped.
func (d *Downloader) DownloadAll(ctx context.Context, urls []string) []model.Download {
	downloads := make([]model.Download, 0, len(urls))
	used := make(map[string]int)
	for _, u := range urls {
		name, err := targetName(u, "")
		if err != nil {
			d.logger.Warn("skipping download", "url", u, "error", err)
			continue
		}
		name = uniqueName(name, used)

		dl, err := d.Download(ctx, u, name)
		if err != nil {
			d.logger.Warn("download failed", "url", u, "error", err)
			continue
		}
		downloads = append(downloads, dl)
	}
	return downloads
}

// targetName picks the file name for a download.
func targetName(rawURL, filename string) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		filename = urlBaseName(rawURL)
	}
	if filename == "" {
		filename = DefaultFilename
	}

	if strings.ContainsAny(filename, `/\`) || filename == "." || filename == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	return filename, nil
}

// urlBaseName returns the last path segment of an http(s) URL, if any.
func urlBaseName(rawURL string) string {
	if strings.HasPrefix(rawURL, "data:") {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return ""
	}
	return base
}

// uniqueName suffixes repeated names: icon.png, icon-1.png, icon-2.png.
func uniqueName(name string, used map[string]int) string {
	count := used[name]
	used[name] = count + 1
	if count == 0 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), count, ext)
}
