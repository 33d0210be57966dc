package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across services and handlers.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on uniqueness violations (duplicate role name,
	// duplicate email, duplicate transaction id).
	ErrConflict = errors.New("conflict")

	// ErrForbidden is returned when an access decision denies the request or a
	// superuser attempts to remove their own superuser role.
	ErrForbidden = errors.New("forbidden")

	// ErrInvariantViolation is returned when an operation would leave the
	// system without any superuser.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrValidation is returned for malformed payloads, before any transaction
	// begins.
	ErrValidation = errors.New("validation error")
)

// RoleNotFoundError reports every unresolvable role name of a replace-all
// request. Wraps ErrNotFound so errors.Is(err, ErrNotFound) holds.
type RoleNotFoundError struct {
	Missing []string
}

func (e *RoleNotFoundError) Error() string {
	return fmt.Sprintf("unknown roles: %s", strings.Join(e.Missing, ", "))
}

func (e *RoleNotFoundError) Unwrap() error {
	return ErrNotFound
}
