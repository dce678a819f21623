// Package asset resolves the images a page references.
//
// NormalizeURL turns the relative and protocol-relative values found in
// markup into absolute URLs. A Resolver probes those URLs for their pixel
// dimensions; every probe is bounded by its own timeout and a failure never
// escapes as anything other than a Probe whose Err wraps ErrUnavailable.
// A Downloader saves assets to disk and records their SHA3-256 digest.
package asset
