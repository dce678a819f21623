// Package config holds the webwaiter run configuration: defaults, the
// .webwaiter YAML file with per-site settings, WEBWAITER_* environment
// overrides and the XDG directories used for history and downloads.
package config
