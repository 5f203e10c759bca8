package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/crucial707/todo-api/internal/config"
	"github.com/crucial707/todo-api/internal/db"
	"github.com/crucial707/todo-api/internal/logging"
	"github.com/crucial707/todo-api/internal/repo"
	"github.com/crucial707/todo-api/internal/scheduler"
	gfshutdown "github.com/gelmium/graceful-shutdown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg := config.Load()
	logger := logging.Setup(cfg.LogFormat, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		return 1
	}
	if cfg.JWTSecret == config.DefaultJWTSecret {
		logger.Warn("JWT_SECRET is the development default; set it before deploying")
	}

	// Connect to database FIRST
	database, err := db.Connect(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		return 1
	}
	defer database.Close()
	logger.Info("connected to database")

	if cfg.MigrateOnStart {
		if err := db.Run(cfg.DSN()); err != nil {
			logger.Error("migrations failed", "err", err)
			return 1
		}
		logger.Info("migrations applied")
	}

	stats, err := scheduler.Start(cfg.StatsCron, &scheduler.StatsRefresher{
		Users:  repo.NewUserRepo(database),
		Todos:  repo.NewTodoRepo(database),
		Logger: logger,
	})
	if err != nil {
		logger.Error("stats scheduler", "err", err)
		return 1
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(database, cfg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server LAST
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "tls", cfg.TLSCertFile != "")
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			errCh <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()

	ops := map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			logger.Info("shutting down http server")
			return srv.Shutdown(ctx)
		},
	}
	if stats != nil {
		ops["stats-scheduler"] = func(ctx context.Context) error {
			select {
			case <-stats.Stop().Done():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout, ops)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			return 1
		}
		return <-wait
	case code := <-wait:
		logger.Info("shutdown complete", "exit_code", code)
		return code
	}
}
