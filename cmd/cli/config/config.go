package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultAPIURL = "http://localhost:8080"
	tokenFileName = ".todo_token"
)

// ErrNotLoggedIn is returned by ReadToken when no token has been saved.
var ErrNotLoggedIn = errors.New("not logged in; run `todo login` first")

// APIURL returns the base URL for the Todo API.
// It can be overridden with the TODO_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("TODO_API_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultAPIURL
}

// TokenPath is ~/.todo_token unless TODO_TOKEN_FILE is set.
func TokenPath() string {
	if v := os.Getenv("TODO_TOKEN_FILE"); v != "" {
		return v
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, tokenFileName)
}

func SaveToken(token string) error {
	return os.WriteFile(TokenPath(), []byte(token), 0600)
}

func ReadToken() (string, error) {
	b, err := os.ReadFile(TokenPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotLoggedIn
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// DeleteToken removes the saved token. A missing file is not an error.
func DeleteToken() error {
	if err := os.Remove(TokenPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
