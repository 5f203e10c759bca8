package auth

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/crucial707/todo-api/cmd/cli/client"
	"github.com/crucial707/todo-api/cmd/cli/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword reads without echo; tests replace it.
var readPassword = func() ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}
	return term.ReadPassword(fd)
}

// InitAuth registers register, login, logout and me on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(registerCmd(), loginCmd(), logoutCmd(), meCmd())
}

type user struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	IsActive bool   `json:"is_active"`
}

// ==========================
// Register
// ==========================
func registerCmd() *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			pw, err := passwordOrPrompt(cmd, password)
			if err != nil {
				return err
			}

			var u user
			payload := map[string]string{"email": email, "full_name": name, "password": pw}
			if err := client.New("").JSON(http.MethodPost, "/auth/register", payload, &u); err != nil {
				return fmt.Errorf("register: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s). Run `todo login --email %s` next.\n", u.Email, u.ID, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

// ==========================
// Login
// ==========================
func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			pw, err := passwordOrPrompt(cmd, password)
			if err != nil {
				return err
			}

			var tok struct {
				AccessToken string `json:"access_token"`
			}
			form := url.Values{"username": {email}, "password": {pw}}
			if err := client.New("").Form("/auth/token", form, &tok); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if tok.AccessToken == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}
			if err := config.SaveToken(tok.AccessToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Login successful. Token stored in", config.TokenPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

// ==========================
// Logout
// ==========================
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the locally stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.DeleteToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

// ==========================
// Me
// ==========================
func meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.ReadToken()
			if err != nil {
				return err
			}
			var u user
			if err := client.New(token).JSON(http.MethodGet, "/auth/me", nil, &u); err != nil {
				return err
			}
			status := "active"
			if !u.IsActive {
				status = "inactive"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> id=%s %s\n", u.FullName, u.Email, u.ID, status)
			return nil
		},
	}
}

func passwordOrPrompt(cmd *cobra.Command, password string) (string, error) {
	if password != "" {
		return password, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	pw, err := readPassword()
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(pw) == 0 {
		return "", fmt.Errorf("password is required")
	}
	return string(pw), nil
}
