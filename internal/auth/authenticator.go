package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/crucial707/todo-api/internal/apperr"
	"github.com/crucial707/todo-api/internal/models"
)

// Authenticator checks an email/password pair against the user store.
type Authenticator struct {
	users  UserReader
	hasher *PasswordHasher

	// dummyHash is compared against when the email is unknown so both failure
	// paths spend one bcrypt comparison.
	dummyHash string
}

func NewAuthenticator(users UserReader, hasher *PasswordHasher) *Authenticator {
	dummy, _ := hasher.Hash("dummy-password-for-timing")
	return &Authenticator{users: users, hasher: hasher, dummyHash: dummy}
}

// Authenticate returns the user for a matching email and password.
// Unknown email and wrong password both yield apperr.ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			a.hasher.Verify(password, a.dummyHash)
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		return nil, apperr.ErrInvalidCredentials
	}

	return user, nil
}
