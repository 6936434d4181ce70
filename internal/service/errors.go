package service

import "errors"

// Failure kinds reported to the transport layer. Handlers map these to
// HTTP statuses; anything else surfaces as a generic internal error.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("access denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrAlreadyCompleted = errors.New("attempt already completed")
	ErrDuplicate        = errors.New("already exists")
	ErrInvalidCreds     = errors.New("invalid credentials")
)
