package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crucial707/todo-api/internal/apperr"
	"github.com/crucial707/todo-api/internal/models"
)

// Resolver turns a bearer token into the active user it was issued for.
type Resolver struct {
	codec *TokenCodec
	users UserReader
	now   func() time.Time
}

// NewResolver uses time.Now when now is nil.
func NewResolver(codec *TokenCodec, users UserReader, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{codec: codec, users: users, now: now}
}

// Resolve performs one token decode and one user lookup.
//
// Errors: apperr.ErrUnauthorized for a bad token or unknown subject,
// apperr.ErrForbidden for a disabled account. Store failures are wrapped as-is.
func (r *Resolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	userID, err := r.codec.Decode(token, r.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrUnauthorized, err)
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", apperr.ErrUnauthorized)
		}
		return nil, fmt.Errorf("lookup user by id: %w", err)
	}

	if !user.IsActive {
		return nil, apperr.ErrForbidden
	}

	return user, nil
}
