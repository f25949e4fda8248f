package reminder

import "errors"

// Validation and store errors surfaced to callers. Store failures that are
// not one of these are wrapped I/O or constraint errors from SQLite.
var (
	ErrInvalidInput      = errors.New("all fields are required")
	ErrInvalidTimeFormat = errors.New("invalid time format, use HH:MM")
	ErrPastDateTime      = errors.New("cannot set a reminder for a past time")
	ErrNotFound          = errors.New("reminder not found")
)
