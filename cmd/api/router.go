package main

import (
	"database/sql"
	"net/http"

	"github.com/crucial707/todo-api/internal/auth"
	"github.com/crucial707/todo-api/internal/config"
	"github.com/crucial707/todo-api/internal/handlers"
	"github.com/crucial707/todo-api/internal/middleware"
	"github.com/crucial707/todo-api/internal/repo"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newRouter wires repositories, the auth core and handlers onto a chi router.
func newRouter(db *sql.DB, cfg config.Config) http.Handler {
	userRepo := repo.NewUserRepo(db)
	todoRepo := repo.NewTodoRepo(db)

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	codec := auth.NewTokenCodec([]byte(cfg.JWTSecret), cfg.TokenTTL())

	authHandler := &handlers.AuthHandler{
		Registrar:     auth.NewRegistrar(userRepo, hasher),
		Authenticator: auth.NewAuthenticator(userRepo, hasher),
		Codec:         codec,
	}
	todoHandler := &handlers.TodoHandler{Repo: todoRepo}
	healthHandler := &handlers.HealthHandler{DB: db}

	requireUser := middleware.RequireUser(auth.NewResolver(codec, userRepo, nil))
	authLimiter := middleware.AuthRateLimiter(cfg.AuthRateLimitPerMinute)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.JSONError(w, "not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.JSONError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	// Public
	r.Get("/", healthHandler.Root)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Handler)
			r.Post("/register", authHandler.Register)
			r.Post("/token", authHandler.Token)
			r.Post("/login", authHandler.Token)
		})
		r.With(requireUser).Get("/me", authHandler.Me)
	})

	// Protected
	r.Route("/todos", func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/", todoHandler.ListTodos)
		r.Post("/", todoHandler.CreateTodo)
		r.Get("/{id}", todoHandler.GetTodo)
		r.Patch("/{id}", todoHandler.UpdateTodo)
		r.Delete("/{id}", todoHandler.DeleteTodo)
	})

	return r
}
