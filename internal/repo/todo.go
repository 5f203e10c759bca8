package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crucial707/todo-api/internal/apperr"
	"github.com/crucial707/todo-api/internal/models"
	"github.com/google/uuid"
)

const todoColumns = `id, owner_id, title, description, is_completed, created_at, updated_at`

// ========================
// REPOSITORY STRUCT
// ========================

// TodoRepo scopes every statement by owner_id, so a todo owned by someone
// else is indistinguishable from one that does not exist.
type TodoRepo struct {
	DB *sql.DB
}

func NewTodoRepo(db *sql.DB) *TodoRepo {
	return &TodoRepo{DB: db}
}

func scanTodo(row interface{ Scan(...any) error }) (models.Todo, error) {
	var t models.Todo
	var desc sql.NullString
	err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &desc, &t.IsCompleted, &t.CreatedAt, &t.UpdatedAt)
	if desc.Valid {
		t.Description = &desc.String
	}
	return t, err
}

// ========================
// CREATE TODO
// ========================

func (r *TodoRepo) Create(ctx context.Context, ownerID, title string, description *string, completed bool) (models.Todo, error) {
	todo, err := scanTodo(r.DB.QueryRowContext(ctx,
		`INSERT INTO todos (id, owner_id, title, description, is_completed)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+todoColumns,
		uuid.NewString(), ownerID, title, description, completed,
	))
	if err != nil {
		return models.Todo{}, fmt.Errorf("db error: %w", err)
	}
	return todo, nil
}

// ========================
// GET TODO BY ID
// ========================

func (r *TodoRepo) Get(ctx context.Context, ownerID, id string) (models.Todo, error) {
	if uuid.Validate(id) != nil {
		return models.Todo{}, apperr.ErrNotFound
	}
	todo, err := scanTodo(r.DB.QueryRowContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	))
	if err != nil {
		return models.Todo{}, notFoundOr(err)
	}
	return todo, nil
}

// ========================
// LIST TODOS FOR OWNER
// ========================

// List returns the owner's todos, newest first.
func (r *TodoRepo) List(ctx context.Context, ownerID string) ([]models.Todo, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE owner_id = $1 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// ========================
// UPDATE TODO
// ========================

// Update applies p to the owner's todo. An empty patch just returns the current row.
func (r *TodoRepo) Update(ctx context.Context, ownerID, id string, p models.TodoPatch) (models.Todo, error) {
	if p.Empty() {
		return r.Get(ctx, ownerID, id)
	}
	if uuid.Validate(id) != nil {
		return models.Todo{}, apperr.ErrNotFound
	}
	todo, err := scanTodo(r.DB.QueryRowContext(ctx,
		`UPDATE todos
		 SET title = COALESCE($3, title),
		     description = CASE WHEN $4 THEN $5 ELSE description END,
		     is_completed = COALESCE($6, is_completed),
		     updated_at = NOW()
		 WHERE id = $1 AND owner_id = $2
		 RETURNING `+todoColumns,
		id, ownerID, p.Title, p.SetDescription, p.Description, p.IsCompleted,
	))
	if err != nil {
		return models.Todo{}, notFoundOr(err)
	}
	return todo, nil
}

// ========================
// DELETE TODO
// ========================

func (r *TodoRepo) Delete(ctx context.Context, ownerID, id string) error {
	if uuid.Validate(id) != nil {
		return apperr.ErrNotFound
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM todos WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ========================
// COUNT TODOS
// ========================

func (r *TodoRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
