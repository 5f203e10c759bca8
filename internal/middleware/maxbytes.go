package middleware

import (
	"net/http"
)

// DefaultMaxBodyBytes caps register, token and todo payloads (1 MiB).
const DefaultMaxBodyBytes = 1 << 20

// MaxBytes caps request bodies on POST, PUT and PATCH. A declared Content-Length
// over the cap is answered with a JSON 413 before the handler runs; chunked
// bodies are wrapped so the handler's read fails with *http.MaxBytesError.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
			default:
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > maxBytes {
				writeJSONError(w, "Request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
