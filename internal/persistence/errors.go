package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrAlreadyExists is returned when a uniqueness constraint is violated,
	// such as a duplicate member email.
	ErrAlreadyExists = errors.New("persistence: already exists")
	// ErrConstraintViolation is returned when a record fails an integrity
	// check, such as a missing identifier.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
