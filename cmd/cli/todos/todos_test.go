package todos

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/crucial707/todo-api/cmd/cli/client"
	"github.com/crucial707/todo-api/cmd/cli/config"
	"github.com/spf13/cobra"
)

// setup points the CLI at srv and stores a token in a temp file.
func setup(t *testing.T, srv *httptest.Server) {
	t.Helper()
	t.Setenv("TODO_API_URL", srv.URL)
	t.Setenv("TODO_TOKEN_FILE", filepath.Join(t.TempDir(), "token"))
	if err := config.SaveToken("tok"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func sampleTodos() []todo {
	desc := "first"
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return []todo{
		{ID: "t-2", Title: "todo-2", IsCompleted: true, CreatedAt: now, UpdatedAt: now},
		{ID: "t-1", Title: "todo-1", Description: &desc, CreatedAt: now, UpdatedAt: now},
	}
}

func TestListTodos_TableOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/todos" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token")
		}
		_ = json.NewEncoder(w).Encode(sampleTodos())
	}))
	defer srv.Close()
	setup(t, srv)

	out, err := run(t, listTodosCmd())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "todo-1") || !strings.Contains(out, "todo-2") || !strings.Contains(out, "[x]") {
		t.Fatalf("expected todo titles in output, got: %s", out)
	}
}

func TestListTodos_JSONOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sampleTodos()[:1])
	}))
	defer srv.Close()
	setup(t, srv)

	out, err := run(t, listTodosCmd(), "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, `"title": "todo-2"`) {
		t.Fatalf("expected JSON output, got: %s", out)
	}
}

func TestListTodos_NotLoggedIn(t *testing.T) {
	t.Setenv("TODO_TOKEN_FILE", filepath.Join(t.TempDir(), "missing"))

	_, err := run(t, listTodosCmd())
	if !errors.Is(err, config.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestAddTodo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/todos" {
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["title"] != "Buy milk" || in["description"] != "2 litres" {
			t.Errorf("unexpected payload: %v", in)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(todo{ID: "t-9", Title: "Buy milk"})
	}))
	defer srv.Close()
	setup(t, srv)

	out, err := run(t, addTodoCmd(), "Buy milk", "--description", "2 litres")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "t-9") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestDoneTodo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/todos/t-1" {
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var in map[string]bool
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(todo{ID: "t-1", Title: "todo-1", IsCompleted: in["is_completed"]})
	}))
	defer srv.Close()
	setup(t, srv)

	out, err := run(t, doneTodoCmd(), "t-1")
	if err != nil {
		t.Fatalf("done: %v", err)
	}
	if !strings.Contains(out, "completed") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestRemoveTodo_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	}))
	defer srv.Close()
	setup(t, srv)

	_, err := run(t, removeTodoCmd(), "t-404")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 APIError, got %v", err)
	}
}
