package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Engine errors
	ErrInsufficientData   = errors.New("insufficient data for analysis")
	ErrDegenerateVariance = errors.New("degenerate variance")
	ErrInvalidAlpha       = errors.New("alpha must lie strictly between 0 and 1")

	// Sample preparation errors
	ErrEmptyGroup = errors.New("group has no numeric data")
	ErrSameGroup  = errors.New("group values must differ")

	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrSheetNotFound    = fmt.Errorf("%w: sheet", ErrNotFound)
	ErrColumnNotFound   = fmt.Errorf("%w: column", ErrNotFound)
	ErrWorkbookNotFound = fmt.Errorf("%w: workbook", ErrNotFound)
)

// NewInsufficientDataError reports a sample that is too small for a test.
func NewInsufficientDataError(group string, n, required int) error {
	return fmt.Errorf("%w: group %s has %d observations, need at least %d", ErrInsufficientData, group, n, required)
}

// NewNotFoundError wraps ErrNotFound-derived sentinels with the missing name
func NewNotFoundError(kind error, name string) error {
	return fmt.Errorf("%w %q", kind, name)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDataError reports whether err comes from the samples rather than the caller's wiring.
func IsDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrDegenerateVariance) ||
		errors.Is(err, ErrEmptyGroup)
}
