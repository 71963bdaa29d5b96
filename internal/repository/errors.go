package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entry doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrNotConfigured is returned when a singleton entry has never been written
	ErrNotConfigured = errors.New("not configured")
)
