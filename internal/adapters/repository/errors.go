package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrAlreadyCompleted = errors.New("event already completed")
	ErrInvalidReference = errors.New("invalid reference")
	ErrClosed           = errors.New("store closed")
)
