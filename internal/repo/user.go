package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crucial707/todo-api/internal/apperr"
	"github.com/crucial707/todo-api/internal/models"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres SQLSTATE for a unique index collision.
const uniqueViolation = "23505"

const userColumns = `id, email, full_name, password_hash, is_active, created_at, updated_at`

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ==========================
// Create User
// ==========================
// Create inserts u. A duplicate email surfaces as apperr.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, email, full_name, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	user, err := scanUser(r.DB.QueryRowContext(ctx, query, u.ID, u.Email, u.FullName, u.PasswordHash, u.IsActive))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// ==========================
// Get By ID
// ==========================
func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err)
	}

	return user, nil
}

// ==========================
// Get By Email
// ==========================
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, notFoundOr(err)
	}

	return user, nil
}

// ==========================
// Set Active
// ==========================
// SetActive toggles the account flag by email and returns the updated user.
func (r *UserRepo) SetActive(ctx context.Context, email string, active bool) (*models.User, error) {
	query := `
		UPDATE users
		SET is_active = $1, updated_at = NOW()
		WHERE email = $2
		RETURNING ` + userColumns

	user, err := scanUser(r.DB.QueryRowContext(ctx, query, active, email))
	if err != nil {
		return nil, notFoundOr(err)
	}

	return user, nil
}

// ==========================
// Count Users
// ==========================
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	return fmt.Errorf("db error: %w", err)
}
