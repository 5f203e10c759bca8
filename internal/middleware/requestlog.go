package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/crucial707/todo-api/internal/logging"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestIDHeader is echoed on every response so clients can correlate logs.
const RequestIDHeader = "X-Request-ID"

// responseWriter wraps http.ResponseWriter to capture status and size.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// RequestLog echoes the request id, binds it to a request-scoped logger in the
// context, and logs each request with method, path, status, duration, and size.
// Use after chi's RequestID middleware, which honours an incoming X-Request-ID.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := chimw.GetReqID(r.Context())
		if reqID != "" {
			w.Header().Set(RequestIDHeader, reqID)
		}

		logger := slog.Default().With(slog.String("request_id", reqID))
		r = r.WithContext(logging.NewContext(r.Context(), logger))

		wrap := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrap, r)

		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrap.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"size", wrap.size)
	})
}
