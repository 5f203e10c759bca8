// Package seed populates an empty database with a demo account.
package seed

import (
	"context"
	"fmt"

	"github.com/crucial707/todo-api/internal/models"
)

const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "demo1234"
	DemoName     = "Demo User"
)

type UserCounter interface {
	Count(ctx context.Context) (int, error)
}

// Registrar is satisfied by *auth.Registrar.
type Registrar interface {
	Register(ctx context.Context, email, fullName, password string) (*models.User, error)
}

// TodoCreator is satisfied by *repo.TodoRepo.
type TodoCreator interface {
	Create(ctx context.Context, ownerID, title string, description *string, completed bool) (models.Todo, error)
}

type demoTodo struct {
	title       string
	description *string
}

func demoTodos() []demoTodo {
	welcome := "This todo was seeded"
	return []demoTodo{
		{title: "Welcome", description: &welcome},
		{title: "Try the UI"},
	}
}

// Run creates the demo user and its todos when no users exist yet.
// It returns nil user when the database already had users.
func Run(ctx context.Context, users UserCounter, registrar Registrar, todos TodoCreator) (*models.User, error) {
	n, err := users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil, nil
	}

	user, err := registrar.Register(ctx, DemoEmail, DemoName, DemoPassword)
	if err != nil {
		return nil, fmt.Errorf("register demo user: %w", err)
	}
	for _, t := range demoTodos() {
		if _, err := todos.Create(ctx, user.ID, t.title, t.description, false); err != nil {
			return nil, fmt.Errorf("create todo %q: %w", t.title, err)
		}
	}
	return user, nil
}
