package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFormat   = errors.New("invalid format")
	ErrNotFound        = errors.New("not found")
	ErrContentNotFound = fmt.Errorf("content %w", ErrNotFound)
	ErrDuplicateReport = errors.New("content already reported by this user")
	ErrAlreadyResolved = errors.New("flagged content has already been resolved")
	ErrSelfAction      = errors.New("cannot change role or suspension of your own account")
	ErrActorSuspended  = fmt.Errorf("suspended account: %w", ErrPermDenied)
)

// ErrValidation describes a rejected input field. It matches ErrInvalidFormat
// with errors.Is.
type ErrValidation struct {
	Field   string
	Problem string
}

func (e ErrValidation) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Problem)
}
func (e ErrValidation) Unwrap() error {
	return ErrInvalidFormat
}
