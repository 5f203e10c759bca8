package main

import (
	"fmt"
	"os"

	"github.com/crucial707/todo-api/cmd/cli/auth"
	"github.com/crucial707/todo-api/cmd/cli/root"
	"github.com/crucial707/todo-api/cmd/cli/todos"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	todos.InitTodos(rootCmd)

	// Execute the root Cobra command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
