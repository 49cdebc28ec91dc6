package service

import "errors"

var (
	// ErrNotFound is returned when a task does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the server rejects the session or credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnsupported is returned by backends that lack an operation.
	ErrUnsupported = errors.New("operation not supported by backend")

	// ErrTitleRequired is returned when a task title is blank.
	ErrTitleRequired = errors.New("title required")

	// ErrInvalidStatus is returned for a status outside TODO, IN_PROGRESS, DONE.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidDate is returned for a due date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
)
