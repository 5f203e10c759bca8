package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/crucial707/todo-api/internal/apperr"
	"github.com/crucial707/todo-api/internal/logging"
	"github.com/go-playground/validator/v10"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

var validate = newValidator()

// newValidator reports field errors under their json names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// maxbytes bounds len() in bytes; bcrypt rejects passwords over 72 bytes.
	v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= n
	})
	return v
}

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	out := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	json.NewEncoder(w).Encode(out)
}

// validationFields flattens validator errors into json field -> failed rule.
func validationFields(err error) map[string]string {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			rule := fe.Tag()
			if fe.Param() != "" {
				rule += "=" + fe.Param()
			}
			fields[fe.Field()] = rule
		}
	}
	return fields
}

// validateInput runs struct validation and writes a 400 on failure.
func validateInput(w http.ResponseWriter, input any) bool {
	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return false
	}
	return true
}

// writeAppError maps apperr kinds to status codes. Anything unrecognised is logged and becomes a 500.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		JSONError(w, "not found", http.StatusNotFound)
	case errors.Is(err, apperr.ErrConflict):
		JSONError(w, "email already registered", http.StatusConflict)
	case errors.Is(err, apperr.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		JSONError(w, "Incorrect email or password", http.StatusUnauthorized)
	case errors.Is(err, apperr.ErrUnauthorized):
		w.Header().Set("WWW-Authenticate", "Bearer")
		JSONError(w, "Could not validate credentials", http.StatusUnauthorized)
	case errors.Is(err, apperr.ErrForbidden):
		JSONError(w, "Inactive user", http.StatusForbidden)
	default:
		logging.FromContext(r.Context()).Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
	}
}

// bodyError answers a failed body decode. Bodies cut off by the MaxBytes
// middleware get 413, anything else 400 with msg.
func bodyError(w http.ResponseWriter, err error, msg string) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		JSONError(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	JSONError(w, msg, http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
