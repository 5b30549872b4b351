package history

import "errors"

var (
	// ErrRecordNotFound indicates the record doesn't exist.
	ErrRecordNotFound = errors.New("session record not found")
	// ErrInvalidInput indicates an invalid record payload.
	ErrInvalidInput = errors.New("invalid session record")
)
