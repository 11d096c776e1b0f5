package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/housecup/internal/adapters/repository"
	service "github.com/okian/housecup/internal/app"
	"github.com/okian/housecup/internal/domain/model"
	"github.com/okian/housecup/internal/domain/results"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// NewKind tags kind with the operation that produced it.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind tags err with op and kind so both match errors.Is.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// Wrap tags err with op.
func Wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// classify maps an error to its HTTP status and machine-readable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrInvalid),
		errors.Is(err, service.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed"
	case errors.Is(err, results.ErrEmptyAssignment):
		return http.StatusUnprocessableEntity, "empty_assignment"
	case errors.Is(err, results.ErrDuplicateParticipant):
		return http.StatusUnprocessableEntity, "duplicate_participant"
	case errors.Is(err, results.ErrUnknownPlacement):
		return http.StatusUnprocessableEntity, "unknown_placement"
	case errors.Is(err, repository.ErrInvalidReference):
		return http.StatusUnprocessableEntity, "invalid_reference"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrAlreadyCompleted):
		return http.StatusConflict, "already_completed"
	case errors.Is(err, service.ErrCommitInProgress):
		return http.StatusConflict, "commit_in_progress"
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrNotStarted),
		errors.Is(err, repository.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
