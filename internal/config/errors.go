package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when no page address is given.
	ErrNoTarget = errors.New("no target specified: provide at least one page URL")

	// ErrInvalidTimeout is returned when the page load timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidProbeTimeout is returned when the asset probe timeout is not positive.
	ErrInvalidProbeTimeout = errors.New("invalid probe timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when more than one of
	// --json, --markdown and --html is given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: choose one of --json, --markdown or --html")

	// ErrConflictingProxy is returned when both a SOCKS5 proxy and the
	// embedded Tor daemon are requested.
	ErrConflictingProxy = errors.New("conflicting proxy settings: --proxy and --tor cannot be used together")

	// ErrInvalidMaxPageBytes is returned when the page size limit is negative.
	ErrInvalidMaxPageBytes = errors.New("invalid max page size: must be non-negative")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidEnv is returned when a WEBWAITER_* variable cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment variable")
)
