package metadata

import "errors"

// Metadata-specific errors
var (
	ErrMetadataUnavailable = errors.New("metadata tables unavailable")
	ErrUnsupportedVersion  = errors.New("unsupported metadata table version")
)
