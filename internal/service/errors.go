package service

import "errors"

// Common service errors exposed to the API layer.
var (
	// ErrMasteryNotFound is returned when no mastery record exists for the
	// requested student/topic pair.
	ErrMasteryNotFound = errors.New("mastery record not found")

	// ErrInvalidLimit is returned when a due-review scan asks for a
	// non-positive number of records.
	ErrInvalidLimit = errors.New("limit must be at least 1")
)
