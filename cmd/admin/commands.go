package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/crucial707/todo-api/internal/auth"
	"github.com/crucial707/todo-api/internal/config"
	"github.com/crucial707/todo-api/internal/db"
	"github.com/crucial707/todo-api/internal/logging"
	"github.com/crucial707/todo-api/internal/repo"
	"github.com/crucial707/todo-api/internal/seed"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "todoadmin",
		Short:         "Operational tasks for the Todo API database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := config.Load()
			logging.Setup(cfg.LogFormat, cfg.LogLevel)
		},
	}
	root.AddCommand(migrateCmd(), seedCmd(), usersCmd())
	return root
}

// ==========================
// migrate up | down | version
// ==========================
func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the embedded schema migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := db.Run(config.Load().DSN()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration (drops all data)",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := db.Down(config.Load().DSN()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations rolled back.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				v, dirty, err := db.Version(config.Load().DSN())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
				return nil
			},
		},
	)
	return cmd
}

// ==========================
// seed
// ==========================
func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo account when the database has no users",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			database, err := db.Connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer database.Close()
			return runSeed(cmd.Context(), database, cfg, cmd.OutOrStdout())
		},
	}
}

func runSeed(ctx context.Context, database *sql.DB, cfg config.Config, w io.Writer) error {
	users := repo.NewUserRepo(database)
	registrar := auth.NewRegistrar(users, auth.NewPasswordHasher(cfg.BcryptCost))

	user, err := seed.Run(ctx, users, registrar, repo.NewTodoRepo(database))
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Fprintln(w, "Users already exist; skipping seed.")
		return nil
	}
	fmt.Fprintf(w, "Seeded %s / %s\n", seed.DemoEmail, seed.DemoPassword)
	return nil
}

// ==========================
// users activate | deactivate <email>
// ==========================
func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(setActiveCmd("activate", true), setActiveCmd("deactivate", false))
	return cmd
}

func setActiveCmd(use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [email]",
		Short: use + " an account; inactive accounts get 403 on every authenticated call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			database, err := db.Connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer database.Close()
			return runSetActive(cmd.Context(), repo.NewUserRepo(database), args[0], active, cmd.OutOrStdout())
		},
	}
}

func runSetActive(ctx context.Context, users *repo.UserRepo, email string, active bool, w io.Writer) error {
	user, err := users.SetActive(ctx, email, active)
	if err != nil {
		return fmt.Errorf("%s: %w", email, err)
	}
	state := "active"
	if !user.IsActive {
		state = "inactive"
	}
	fmt.Fprintf(w, "%s (%s) is now %s\n", user.Email, user.ID, state)
	return nil
}
