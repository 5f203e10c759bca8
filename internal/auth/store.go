// Package auth holds the authentication core: password hashing, bearer token
// encoding, credential checks, per-request identity resolution and registration.
package auth

import (
	"context"

	"github.com/crucial707/todo-api/internal/models"
)

// UserReader is the lookup side of the user store. Implementations return an
// error matching apperr.ErrNotFound when no row exists.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// UserStore adds the insert used by registration. Create returns an error
// matching apperr.ErrConflict when the email is already taken.
type UserStore interface {
	UserReader
	Create(ctx context.Context, u *models.User) (*models.User, error)
}
