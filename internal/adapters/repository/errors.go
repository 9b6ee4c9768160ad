package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for store errors. Callers match with errors.Is/As.
var (
	ErrValidation = errors.New("invalid data point")
	ErrNotFound   = errors.New("not found")
)

// ValidationError reports which field of a data point failed ingestion
// validation. It wraps ErrValidation so errors.Is keeps working.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid data point: %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
