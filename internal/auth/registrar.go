package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/crucial707/todo-api/internal/apperr"
	"github.com/crucial707/todo-api/internal/models"
	"github.com/google/uuid"
)

// Registrar creates accounts. The unique index on users.email is what makes
// duplicate registration safe; the lookup in Register only short-circuits the
// common case before paying for a bcrypt hash.
type Registrar struct {
	users  UserStore
	hasher *PasswordHasher
}

func NewRegistrar(users UserStore, hasher *PasswordHasher) *Registrar {
	return &Registrar{users: users, hasher: hasher}
}

// Register returns apperr.ErrConflict when the email is already registered.
func (r *Registrar) Register(ctx context.Context, email, fullName, password string) (*models.User, error) {
	_, err := r.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperr.ErrConflict
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	hash, err := r.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := r.users.Create(ctx, &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
