package tagsheet

import "errors"

var (
	// ErrMissingHeader indicates the source has no parseable column header.
	ErrMissingHeader = errors.New("tag sheet missing header row")
	// ErrMalformedValue indicates a single cell failed to parse. Loads
	// recover from this at field granularity; only explicit parse entry
	// points surface it.
	ErrMalformedValue = errors.New("malformed value")
)
