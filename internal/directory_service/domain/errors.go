package domain

import "errors"

var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicateEntry indicates a unique constraint violation.
	ErrDuplicateEntry = errors.New("duplicate entry")
	// ErrProfessionNotFound is returned when a professional references an unknown profession name.
	ErrProfessionNotFound = errors.New("profession not found")
	// ErrInvalidInput wraps validation failures of operator-supplied fields.
	ErrInvalidInput = errors.New("invalid input")
)
