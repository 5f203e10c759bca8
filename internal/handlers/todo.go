package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/crucial707/todo-api/internal/apperr"
	"github.com/crucial707/todo-api/internal/middleware"
	"github.com/crucial707/todo-api/internal/models"
	"github.com/crucial707/todo-api/internal/repo"
	"github.com/go-chi/chi/v5"
)

// TodoHandler serves the caller's own todos. Every call is scoped to the user
// that middleware.RequireUser put in the context.
type TodoHandler struct {
	Repo *repo.TodoRepo
}

var jsonNull = []byte("null")

//
// ==========================
// List Todos
// ==========================
//

func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	todos, err := h.Repo.List(r.Context(), user.ID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

//
// ==========================
// Create Todo
// ==========================
//

func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input struct {
		Title       string  `json:"title" validate:"required,max=255"`
		Description *string `json:"description" validate:"omitempty,max=10000"`
		IsCompleted *bool   `json:"is_completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		bodyError(w, err, "invalid JSON")
		return
	}
	if !validateInput(w, input) {
		return
	}

	completed := input.IsCompleted != nil && *input.IsCompleted
	todo, err := h.Repo.Create(r.Context(), user.ID, input.Title, input.Description, completed)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

//
// ==========================
// Get Todo
// ==========================
//

func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	todo, err := h.Repo.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

//
// ==========================
// Update Todo (partial)
// ==========================
//

func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		bodyError(w, err, "invalid JSON")
		return
	}
	patch, fields := parseTodoPatch(raw)
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	todo, err := h.Repo.Update(r.Context(), user.ID, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

//
// ==========================
// Delete Todo
// ==========================
//

func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.Repo.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseTodoPatch distinguishes absent keys (unchanged) from explicit nulls.
// Only description may be null; it clears the field.
func parseTodoPatch(raw map[string]json.RawMessage) (models.TodoPatch, map[string]string) {
	var p models.TodoPatch
	fields := make(map[string]string)

	if v, ok := raw["title"]; ok {
		var title string
		switch {
		case bytes.Equal(bytes.TrimSpace(v), jsonNull):
			fields["title"] = "required"
		case json.Unmarshal(v, &title) != nil:
			fields["title"] = "must be a string"
		case title == "":
			fields["title"] = "required"
		case utf8.RuneCountInString(title) > 255:
			fields["title"] = "max=255"
		default:
			p.Title = &title
		}
	}

	if v, ok := raw["description"]; ok {
		p.SetDescription = true
		if !bytes.Equal(bytes.TrimSpace(v), jsonNull) {
			var desc string
			switch {
			case json.Unmarshal(v, &desc) != nil:
				fields["description"] = "must be a string or null"
			case utf8.RuneCountInString(desc) > 10000:
				fields["description"] = "max=10000"
			default:
				p.Description = &desc
			}
		}
	}

	if v, ok := raw["is_completed"]; ok {
		var done bool
		if err := json.Unmarshal(v, &done); err != nil || bytes.Equal(bytes.TrimSpace(v), jsonNull) {
			fields["is_completed"] = "must be a boolean"
		} else {
			p.IsCompleted = &done
		}
	}

	return p, fields
}

func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeAppError(w, r, fmt.Errorf("%w: no user in context", apperr.ErrUnauthorized))
	}
	return user, ok
}
