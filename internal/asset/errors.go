package asset

import "errors"

var (
	// ErrUnavailable marks an asset whose dimensions could not be resolved.
	ErrUnavailable = errors.New("asset unavailable")

	// ErrUnsupportedFormat is returned when image data cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrBadStatus is returned when the server answers with a non-2xx status.
	ErrBadStatus = errors.New("unexpected HTTP status")

	// ErrTooLarge is returned when a download exceeds the size limit.
	ErrTooLarge = errors.New("asset exceeds size limit")

	// ErrInvalidFilename is returned when a download target name is unusable.
	ErrInvalidFilename = errors.New("invalid filename")

	// ErrUnsupportedScheme is returned for URLs that are neither http(s) nor data.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
)
