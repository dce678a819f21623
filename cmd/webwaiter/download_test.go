package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/webwaiter/internal/asset"
	"github.com/nao1215/webwaiter/internal/config"
	"github.com/nao1215/webwaiter/internal/database"
)

func TestNewDownloadCmd(t *testing.T) {
	t.Parallel()

	cmd := NewDownloadCmd()

	if cmd.Args == nil {
		t.Error("expected Args validator")
	}
	for _, tt := range []struct{ name, shorthand string }{
		{"output", "o"},
		{"name", "n"},
		{"proxy", "x"},
		{"timeout", "t"},
		{"no-history", ""},
	} {
		flag := cmd.Flags().Lookup(tt.name)
		if flag == nil {
			t.Errorf("expected %s flag", tt.name)
			continue
		}
		if flag.Shorthand != tt.shorthand {
			t.Errorf("%s: shorthand = %q, want %q", tt.name, flag.Shorthand, tt.shorthand)
		}
	}
	if got := cmd.Flags().Lookup("output").DefValue; got != config.XDGCacheDir() {
		t.Errorf("output default = %q, want the cache directory", got)
	}
}

func TestBuildDownloadOptions(t *testing.T) {
	t.Parallel()

	t.Run("environment download dir replaces the default", func(t *testing.T) {
		t.Parallel()

		cmd := NewDownloadCmd()
		if err := cmd.ParseFlags([]string{"-n", "icon.png"}); err != nil {
			t.Fatal(err)
		}
		lookup := func(key string) (string, bool) {
			if key == config.EnvDownloadDir {
				return "/tmp/from-env", true
			}
			return "", false
		}

		opts, err := buildDownloadOptions(cmd, []string{"example.com/icon.png"}, lookup)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opts.dir != "/tmp/from-env" {
			t.Errorf("dir = %q", opts.dir)
		}
		if opts.url != "https://example.com/icon.png" {
			t.Errorf("url = %q", opts.url)
		}
		if opts.filename != "icon.png" {
			t.Errorf("filename = %q", opts.filename)
		}
		if opts.cfg.Timeout != asset.DefaultDownloadTimeout {
			t.Errorf("Timeout = %v", opts.cfg.Timeout)
		}
	})

	t.Run("flags win", func(t *testing.T) {
		t.Parallel()

		cmd := NewDownloadCmd()
		if err := cmd.ParseFlags([]string{"-o", "here", "--no-history"}); err != nil {
			t.Fatal(err)
		}
		lookup := func(key string) (string, bool) {
			if key == config.EnvDownloadDir {
				return "/tmp/from-env", true
			}
			return "", false
		}

		opts, err := buildDownloadOptions(cmd, []string{"https://example.com/a.ico"}, lookup)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opts.dir != "here" {
			t.Errorf("dir = %q", opts.dir)
		}
		if opts.cfg.SaveToDB {
			t.Error("--no-history should disable the database")
		}
	})

	t.Run("rejects unsupported schemes", func(t *testing.T) {
		t.Parallel()

		cmd := NewDownloadCmd()
		if _, err := buildDownloadOptions(cmd, []string{"file:///etc/passwd"}, noEnv); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestRunDownload(t *testing.T) {
	t.Parallel()

	payload := []byte("not really an icon")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/x-icon")
		_, _ = w.Write(payload)
	}))
	t.Cleanup(server.Close)

	dbDir := t.TempDir()
	assetDir := t.TempDir()

	download := func(filename string) string {
		t.Helper()

		cfg := config.NewConfig()
		cfg.DBDir = dbDir

		var out bytes.Buffer
		opts := &downloadOptions{
			url:      server.URL + "/favicon.ico",
			dir:      assetDir,
			filename: filename,
			cfg:      cfg,
		}
		if err := runDownload(context.Background(), opts, discardLogger(), &out); err != nil {
			t.Fatalf("runDownload() error: %v", err)
		}
		return out.String()
	}

	first := download("")
	path := filepath.Join(assetDir, "favicon.ico")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected %s: %v", path, err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("content = %q", data)
	}
	if !strings.Contains(first, "sha3-256:") || !strings.Contains(first, path) {
		t.Errorf("unexpected output: %q", first)
	}

	second := download("copy.ico")
	if !strings.Contains(second, "same content as "+path) {
		t.Errorf("expected the earlier download to be reported, got %q", second)
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var sha string
	for _, line := range strings.Split(first, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "sha3-256: "); ok {
			sha = v
		}
	}
	recorded, err := db.FindDownloadsByDigest(context.Background(), sha)
	if err != nil {
		t.Fatal(err)
	}
	if len(recorded) != 2 {
		t.Errorf("recorded downloads = %+v, want 2", recorded)
	}
}
