// Package store persists batch jobs and analysis history through GORM.
package store

import "errors"

var (
	// ErrNotFound is returned when no row matches the requested id.
	ErrNotFound = errors.New("store: not found")
	// ErrNotProcessing is returned when a terminal transition targets a job
	// that already left the processing state.
	ErrNotProcessing = errors.New("store: job is not processing")
)
