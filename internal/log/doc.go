// Package log builds the slog loggers used by webwaiter.
//
// Inspections carry per-site cookies, custom headers and proxy settings,
// and target URLs may embed credentials or tokens in their query string.
// SecureHandler masks those values before a record reaches the output,
// including in verbose mode:
//   - header and credential keys (cookie, authorization, token, ...)
//   - values that look like bearer tokens, JWTs or API keys
//   - user info and sensitive query parameters inside URLs
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Info("loading page", "url", "https://user:pw@example.com/?token=abc")
//	// url=https://***REDACTED***@example.com/?token=***REDACTED***
package log
