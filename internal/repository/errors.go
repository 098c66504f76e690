package repository

import "errors"

// Storage-level sentinel errors. Services translate these into their own
// caller-facing taxonomy.
var (
	// ErrNotFound means the requested row does not exist (or a guarded
	// update matched no row).
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate means a conditional insert found the key already taken.
	ErrDuplicate = errors.New("record already exists")
)
