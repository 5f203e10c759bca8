package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crucial707/todo-api/internal/apperr"
	"github.com/crucial707/todo-api/internal/auth"
	"github.com/crucial707/todo-api/internal/logging"
	"github.com/crucial707/todo-api/internal/metrics"
	"github.com/crucial707/todo-api/internal/models"
)

type key string

const userKey key = "user"

// IdentityResolver is satisfied by *auth.Resolver.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// RequireUser resolves the bearer token on every request and stores the user in
// the request context. Bad or missing tokens get 401 with a Bearer challenge,
// disabled accounts get 403.
func RequireUser(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				metrics.IncTokenRejection("missing")
				unauthorized(w, "Not authenticated")
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, apperr.ErrForbidden):
					metrics.IncTokenRejection("inactive")
					writeJSONError(w, "Inactive user", http.StatusForbidden)
				case errors.Is(err, apperr.ErrUnauthorized):
					metrics.IncTokenRejection(rejectionReason(err))
					unauthorized(w, "Could not validate credentials")
				default:
					logging.FromContext(r.Context()).Error("resolve identity", "err", err)
					writeJSONError(w, "internal server error", http.StatusInternalServerError)
				}
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = logging.NewContext(ctx, logging.FromContext(ctx).With(slog.String("user_id", user.ID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser returns the user stored by RequireUser.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

// WithUser returns a copy of ctx carrying u, as RequireUser would.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// BearerToken extracts the token from "Authorization: Bearer <token>". The scheme is case-insensitive.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "expired"
	case errors.Is(err, auth.ErrInvalidToken):
		return "invalid"
	default:
		return "unknown_user"
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSONError(w, msg, http.StatusUnauthorized)
}

func writeJSONError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
