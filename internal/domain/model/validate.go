package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
)

// ErrInvalid wraps every structural validation failure.
var ErrInvalid = errors.New("invalid entity")

// Package-level validator instance; validator caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of a House, Category, Player, Event or
// EventResult.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrInvalid, strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

var (
	folderMu sync.Mutex
	folder   = cases.Fold()
)

// NormalizeName trims and case-folds a display name for uniqueness checks.
func NormalizeName(name string) string {
	folderMu.Lock()
	defer folderMu.Unlock()
	return folder.String(strings.TrimSpace(name))
}

// SameName reports whether two display names collide.
func SameName(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}
