package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/crucial707/todo-api/internal/logging"
)

// Recoverer recovers from panics, logs the stack with the request-scoped logger,
// and returns a 500 JSON response so clients get a consistent body.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logging.FromContext(r.Context()).Error("panic recovered",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
					slog.String("stack", string(debug.Stack())))
				writeJSONError(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
