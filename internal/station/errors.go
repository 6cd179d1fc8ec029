package station

import (
	"errors"
	"fmt"
)

// Domain errors for station data.
var (
	// ErrTooFewStations indicates fewer than two stations, which cannot span a surface.
	ErrTooFewStations = errors.New("station: at least two stations required")

	// ErrNonFinite indicates a NaN or Inf coordinate or sample.
	ErrNonFinite = errors.New("station: non-finite value (NaN or Inf detected)")

	// ErrLengthMismatch indicates arrays that are not index-aligned.
	ErrLengthMismatch = errors.New("station: array lengths do not match")

	// ErrNotMonotonic indicates axial positions that decrease.
	ErrNotMonotonic = errors.New("station: axial positions must be non-decreasing")

	// ErrNegativeRadius indicates a radius below zero.
	ErrNegativeRadius = errors.New("station: negative radius")

	// ErrInvertedWall indicates an outer wall radius below the inner one.
	ErrInvertedWall = errors.New("station: outer radius below inner radius")
)

// Error wraps a validation failure with the offending station.
type Error struct {
	Field   string
	Index   int
	Wrapped error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s[%d]: %v", e.Field, e.Index, e.Wrapped)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}
