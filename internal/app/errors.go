package app

import "errors"

// Sentinel kinds for engine outcomes. InsufficientData is a normal,
// expected result in steady operation, not a failure: callers treat it
// as "no benchmark available yet".
var (
	ErrInsufficientData    = errors.New("insufficient data")
	ErrUnknownOrganization = errors.New("unknown organization")
	ErrInvalidFilter       = errors.New("invalid filter")
	ErrUnsupportedFormat   = errors.New("unsupported export format")
)
