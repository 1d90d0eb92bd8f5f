package tagstore

import "errors"

var (
	// ErrSourceUnavailable indicates the backing sheet cannot be read.
	ErrSourceUnavailable = errors.New("settings source unavailable")
	// ErrPersist indicates a rewrite could not complete. The previous
	// on-disk state remains intact; no partial update is applied.
	ErrPersist = errors.New("settings persist failure")
)
