package domain

import "errors"

var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidStatus is returned for a status string outside the fixed set.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidUrgency is returned for an urgency string outside the fixed set.
	ErrInvalidUrgency = errors.New("invalid urgency")
	// ErrStatusRegression is returned when an update would move a call backwards in its lifecycle.
	ErrStatusRegression = errors.New("status cannot move backwards")
	// ErrConflict means the row changed between read and conditional write.
	ErrConflict = errors.New("service call changed concurrently")
	// ErrInvalidInput wraps validation failures of operator-supplied fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoOpenCall means no OPEN call matched the profession.
	ErrNoOpenCall = errors.New("no open service call")
	// ErrNoActiveAssignment means the professional holds no ACCEPTED assignment.
	ErrNoActiveAssignment = errors.New("no active assignment")
)
