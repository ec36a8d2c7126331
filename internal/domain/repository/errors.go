package repository

import "errors"

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when a unique email constraint is hit.
	ErrDuplicateEmail = errors.New("email already registered")
)
