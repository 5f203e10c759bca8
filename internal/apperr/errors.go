// Package apperr defines the error kinds surfaced by the service. Callers match
// them with errors.Is; repositories and the auth core wrap or return these
// values so handlers can pick an HTTP status without inspecting driver errors.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write collides with a uniqueness constraint.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized covers missing, malformed, expired or tampered credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is the single login failure for unknown email or wrong password.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)

	// ErrForbidden is returned when the credential is valid but the account is disabled.
	ErrForbidden = errors.New("forbidden")
)
