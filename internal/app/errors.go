package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted       = errors.New("service not started")
	ErrInvalidLimit     = errors.New("invalid ranking limit")
	ErrCommitInProgress = errors.New("commit with this idempotency key is in progress")
)
