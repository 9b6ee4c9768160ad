package persistence

import "errors"

// Sentinel kinds for journal errors.
var (
	ErrClosed = errors.New("journal closed")
)
