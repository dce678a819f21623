package config

import (
	"maps"
	"net/url"
	"strings"
)

// SiteConfig holds settings for one host.
type SiteConfig struct {
	// Cookie is sent with every request to the site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are added to every request to the site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the User-Agent for the site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Browser forces (true) or forbids (false) headless Chrome for the
	// site. Unset means the global --browser flag decides.
	Browser *bool `yaml:"browser,omitempty"`
}

// File is the structure of the .webwaiter configuration file.
type File struct {
	// Defaults apply to every site unless a site entry overrides them.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Sites maps host names (without scheme or port) to their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`
}

// GetSiteConfig returns the settings for host merged over the defaults.
// Headers are merged key by key, with the site entry winning.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	result.Headers = maps.Clone(cf.Defaults.Headers)

	site, ok := cf.Sites[host]
	if !ok {
		return result
	}

	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if site.UserAgent != "" {
		result.UserAgent = site.UserAgent
	}
	if site.Browser != nil {
		result.Browser = site.Browser
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		maps.Copy(result.Headers, site.Headers)
	}
	return result
}

// SiteFor returns the settings for the host of target. "www." hosts fall
// back to the bare domain entry.
func (cf *File) SiteFor(target string) SiteConfig {
	host := hostOf(target)
	if _, ok := cf.Sites[host]; !ok {
		if bare, found := strings.CutPrefix(host, "www."); found {
			host = bare
		}
	}
	return cf.GetSiteConfig(host)
}

func hostOf(target string) string {
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}
	u, err := url.Parse(target)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
