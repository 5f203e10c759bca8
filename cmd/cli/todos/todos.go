package todos

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/crucial707/todo-api/cmd/cli/client"
	"github.com/crucial707/todo-api/cmd/cli/config"
	"github.com/crucial707/todo-api/cmd/cli/output"
	"github.com/spf13/cobra"
)

type todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ==========================
// Init Todos
// ==========================
func InitTodos(rootCmd *cobra.Command) {
	todosCmd := &cobra.Command{
		Use:   "todos",
		Short: "Manage your todos",
	}

	todosCmd.AddCommand(
		listTodosCmd(),
		addTodoCmd(),
		doneTodoCmd(),
		removeTodoCmd(),
	)

	rootCmd.AddCommand(todosCmd)
}

func authedClient() (*client.Client, error) {
	token, err := config.ReadToken()
	if err != nil {
		return nil, err
	}
	return client.New(token), nil
}

// ==========================
// LIST
// ==========================
func listTodosCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}

			var todos []todo
			if err := c.JSON(http.MethodGet, "/todos", nil, &todos); err != nil {
				return err
			}

			if asJSON {
				return output.RenderJSON(cmd.OutOrStdout(), todos)
			}

			rows := make([][]interface{}, 0, len(todos))
			for _, t := range todos {
				done := " "
				if t.IsCompleted {
					done = "x"
				}
				desc := ""
				if t.Description != nil {
					desc = *t.Description
				}
				rows = append(rows, []interface{}{t.ID, "[" + done + "]", t.Title, desc, t.CreatedAt.Local().Format(time.DateTime)})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Done", "Title", "Description", "Created"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

// ==========================
// ADD
// ==========================
func addTodoCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}

			payload := map[string]any{"title": args[0]}
			if cmd.Flags().Changed("description") {
				payload["description"] = description
			}

			var t todo
			if err := c.JSON(http.MethodPost, "/todos", payload, &t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %q\n", t.ID, t.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "todo description")
	return cmd
}

// ==========================
// DONE
// ==========================
func doneTodoCmd() *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done [id]",
		Short: "Mark a todo completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}

			var t todo
			if err := c.JSON(http.MethodPatch, "/todos/"+url.PathEscape(args[0]), map[string]bool{"is_completed": !undo}, &t); err != nil {
				return err
			}
			state := "completed"
			if !t.IsCompleted {
				state = "open"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%q is %s\n", t.Title, state)
			return nil
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "mark the todo open again")
	return cmd
}

// ==========================
// DELETE
// ==========================
func removeTodoCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [id]",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}
			if err := c.JSON(http.MethodDelete, "/todos/"+url.PathEscape(args[0]), nil, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Todo deleted")
			return nil
		},
	}
}
