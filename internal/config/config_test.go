package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.ProbeTimeout != 5*time.Second {
		t.Errorf("ProbeTimeout = %v, want 5s", cfg.ProbeTimeout)
	}
	if cfg.BatchSize != DefaultBatchSize {
		t.Errorf("BatchSize = %d", cfg.BatchSize)
	}
	if !cfg.FetchFeeds || !cfg.FetchContent || !cfg.DiscoverSitemaps || !cfg.DetectLanguage {
		t.Error("optional fetches should be enabled by default")
	}
	if !cfg.SaveToDB || cfg.DBDir != XDGDataDir() {
		t.Errorf("history defaults: SaveToDB=%v DBDir=%q", cfg.SaveToDB, cfg.DBDir)
	}
	if cfg.Browser || cfg.UseTor || cfg.ProxyAddress != "" {
		t.Error("network defaults should be direct static loading")
	}
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
		"cache":  XDGCacheDir(),
	} {
		if filepath.Base(dir) != AppName {
			t.Errorf("%s dir %q should end in %q", name, dir, AppName)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.Targets = []string{"https://example.com"}
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"no target", func(c *Config) { c.Targets = nil }, ErrNoTarget},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"negative probe timeout", func(c *Config) { c.ProbeTimeout = -time.Second }, ErrInvalidProbeTimeout},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }, ErrInvalidBatchSize},
		{"negative page size", func(c *Config) { c.MaxPageBytes = -1 }, ErrInvalidMaxPageBytes},
		{"json and html", func(c *Config) { c.JSONReport, c.HTMLReport = true, true }, ErrConflictingReportFormats},
		{"markdown only", func(c *Config) { c.MarkdownReport = true }, nil},
		{"proxy and tor", func(c *Config) { c.ProxyAddress, c.UseTor = "127.0.0.1:9050", true }, ErrConflictingProxy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("parses defaults and sites", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `defaults:
  userAgent: "Mozilla/5.0 test"
  headers:
    Accept-Language: en
sites:
  example.com:
    cookie: "session=abc"
    browser: true
    headers:
      X-Test: "1"
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() error: %v", err)
		}
		site := cf.GetSiteConfig("example.com")
		if site.Cookie != "session=abc" || site.UserAgent != "Mozilla/5.0 test" {
			t.Errorf("site = %+v", site)
		}
		if site.Browser == nil || !*site.Browser {
			t.Error("expected browser to be forced on")
		}
		if site.Headers["Accept-Language"] != "en" || site.Headers["X-Test"] != "1" {
			t.Errorf("Headers = %v", site.Headers)
		}
		if _, ok := cf.Defaults.Headers["X-Test"]; ok {
			t.Error("merging must not modify the defaults")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("sites: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected a parse error")
		}
	})

	t.Run("empty file has a sites map", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "empty.yaml")
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatal(err)
		}
		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if cf.Sites == nil {
			t.Error("Sites should be initialized")
		}
	})
}

func TestFindConfigFileExplicit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(path); got != path {
		t.Errorf("FindConfigFile() = %q, want %q", got, path)
	}
	if got := FindConfigFile(path + ".missing"); got != "" {
		t.Errorf("FindConfigFile() = %q, want empty", got)
	}
}

func TestSiteFor(t *testing.T) {
	t.Parallel()

	on, off := true, false
	cf := &File{
		Defaults: SiteConfig{UserAgent: "default-agent"},
		Sites: map[string]SiteConfig{
			"example.com":     {Cookie: "a=1", Browser: &on},
			"www.example.org": {Cookie: "b=2", Browser: &off},
		},
	}

	tests := []struct {
		target     string
		wantCookie string
	}{
		{"https://example.com/page", "a=1"},
		{"example.com", "a=1"},
		{"https://WWW.example.com:8443/", "a=1"},
		{"https://www.example.org/", "b=2"},
		{"https://other.example/", ""},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			t.Parallel()

			site := cf.SiteFor(tt.target)
			if site.Cookie != tt.wantCookie {
				t.Errorf("Cookie = %q, want %q", site.Cookie, tt.wantCookie)
			}
			if site.UserAgent != "default-agent" {
				t.Errorf("UserAgent = %q", site.UserAgent)
			}
		})
	}

	cfg := NewConfig()
	cfg.SiteConfigs = cf
	if !cfg.UseBrowser("https://example.com") {
		t.Error("site setting should force the browser on")
	}
	cfg.Browser = true
	if cfg.UseBrowser("https://www.example.org") {
		t.Error("site setting should force the browser off")
	}
	if !cfg.UseBrowser("https://other.example") {
		t.Error("global flag should apply without a site entry")
	}
	if cfg.UserAgentFor("https://other.example") != "default-agent" {
		t.Error("defaults should supply the user agent")
	}
}

func TestConfigWithoutFile(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.UserAgent = "flag-agent"
	if site := cfg.Site("https://example.com"); site.Cookie != "" || site.Headers != nil {
		t.Errorf("Site() = %+v, want zero", site)
	}
	if cfg.UserAgentFor("https://example.com") != "flag-agent" {
		t.Error("expected the global user agent")
	}
}
