package repository

import "errors"

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when a unique email constraint is violated.
var ErrDuplicateEmail = errors.New("email already exists")
