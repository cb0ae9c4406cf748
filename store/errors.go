package store

import "errors"

// Error Handling Guidelines:
// - Stores: wrap backend failures with fmt.Errorf("context: %w", err)
// - Engine: maps these sentinels onto apperrors
var (
	// ErrNotFound indicates that a requested trip or draft does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates the stored version is not the one the writer
	// started from.
	ErrConflict = errors.New("conflict")
)
