package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/crucial707/todo-api/internal/apperr"
	"github.com/crucial707/todo-api/internal/auth"
	"github.com/crucial707/todo-api/internal/logging"
	"github.com/crucial707/todo-api/internal/metrics"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Registrar     *auth.Registrar
	Authenticator *auth.Authenticator
	Codec         *auth.TokenCodec
	// Now defaults to time.Now.
	Now func() time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *AuthHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// ==========================
// Register
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email" validate:"required,email,max=255"`
		FullName string `json:"full_name" validate:"required,max=255"`
		Password string `json:"password" validate:"required,maxbytes=72"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		bodyError(w, err, "invalid JSON")
		return
	}
	if !validateInput(w, input) {
		return
	}

	user, err := h.Registrar.Register(r.Context(), input.Email, input.FullName, input.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			metrics.IncRegistration("conflict")
		}
		writeAppError(w, r, err)
		return
	}

	metrics.IncRegistration("created")
	logging.FromContext(r.Context()).Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, user)
}

// ==========================
// Token (OAuth2 password flow)
// ==========================
// Token accepts form fields username (the email) and password. A JSON body
// with the same keys is accepted too.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			bodyError(w, err, "invalid JSON")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			bodyError(w, err, "invalid form")
			return
		}
		input.Username = r.PostForm.Get("username")
		input.Password = r.PostForm.Get("password")
	}
	if !validateInput(w, input) {
		return
	}

	user, err := h.Authenticator.Authenticate(r.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidCredentials) {
			metrics.IncAuthAttempt("invalid_credentials")
		}
		writeAppError(w, r, err)
		return
	}

	token, err := h.Codec.Encode(user.ID, h.now())
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	metrics.IncAuthAttempt("success")
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// ==========================
// Me
// ==========================
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}
