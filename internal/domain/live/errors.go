package live

import "errors"

var (
	// ErrNoSession indicates no live session exists.
	ErrNoSession = errors.New("no live session")
	// ErrNotActive indicates the operation needs a running clock.
	ErrNotActive = errors.New("live session is not active")
	// ErrNotPaused indicates the operation needs a paused clock.
	ErrNotPaused = errors.New("live session is not paused")
	// ErrEnded indicates the session already reached its terminal phase.
	ErrEnded = errors.New("live session has ended")
	// ErrInvalidAmount indicates a negative monetary amount.
	ErrInvalidAmount = errors.New("amount must not be negative")
	// ErrInvalidInput indicates missing or malformed input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoSuchNote indicates a note index out of range.
	ErrNoSuchNote = errors.New("note index out of range")
	// ErrNoSuchChipUpdate indicates an unknown chip update ID.
	ErrNoSuchChipUpdate = errors.New("chip update not found")
)
