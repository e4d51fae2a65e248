package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConnection      = errors.New("database connection lost")

	// Drive errors. Callers branch on these with errors.Is.
	ErrUnauthenticated = errors.New("drive not authenticated")
	ErrNoCredentials   = errors.New("drive credentials not configured")
	ErrForbidden       = errors.New("drive permission denied")
	ErrTransient       = errors.New("drive temporarily unavailable")
	ErrDrive           = errors.New("drive request failed")

	// Session errors
	ErrEmptyQueue    = errors.New("broadcast queue is empty")
	ErrNothingStaged = errors.New("no files staged for removal")
)
