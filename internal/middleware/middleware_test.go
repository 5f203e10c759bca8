package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/crucial707/todo-api/internal/apperr"
	"github.com/crucial707/todo-api/internal/auth"
	"github.com/crucial707/todo-api/internal/logging"
	"github.com/crucial707/todo-api/internal/models"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolverFunc func(ctx context.Context, token string) (*models.User, error)

func (f resolverFunc) Resolve(ctx context.Context, token string) (*models.User, error) {
	return f(ctx, token)
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"abc.def.ghi", "", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		got, ok := BearerToken(r)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestRequireUser(t *testing.T) {
	alice := &models.User{ID: "u-1", Email: "alice@example.com", IsActive: true}

	tests := []struct {
		name       string
		header     string
		resolveErr error
		wantStatus int
		wantChall  bool
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantChall: true},
		{name: "wrong scheme", header: "Token x", wantStatus: http.StatusUnauthorized, wantChall: true},
		{name: "expired", header: "Bearer t", resolveErr: fmt.Errorf("%w: %w", apperr.ErrUnauthorized, auth.ErrTokenExpired), wantStatus: http.StatusUnauthorized, wantChall: true},
		{name: "unknown subject", header: "Bearer t", resolveErr: fmt.Errorf("%w: unknown subject", apperr.ErrUnauthorized), wantStatus: http.StatusUnauthorized, wantChall: true},
		{name: "inactive", header: "Bearer t", resolveErr: apperr.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "store down", header: "Bearer t", resolveErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
		{name: "ok", header: "Bearer t", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := resolverFunc(func(ctx context.Context, token string) (*models.User, error) {
				assert.Equal(t, "t", token)
				if tt.resolveErr != nil {
					return nil, tt.resolveErr
				}
				return alice, nil
			})

			var seen *models.User
			h := RequireUser(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = CurrentUser(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/todos", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantChall {
				assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
			} else {
				assert.Empty(t, rr.Header().Get("WWW-Authenticate"))
			}
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, "u-1", seen.ID)
			} else {
				assert.Nil(t, seen)
				assert.Contains(t, rr.Body.String(), `"error"`)
			}
		})
	}
}

func TestCurrentUser_Empty(t *testing.T) {
	_, ok := CurrentUser(context.Background())
	assert.False(t, ok)

	u, ok := CurrentUser(WithUser(context.Background(), &models.User{ID: "u-2"}))
	assert.True(t, ok)
	assert.Equal(t, "u-2", u.ID)
}

func TestRequestLog_EchoesRequestID(t *testing.T) {
	var hasLogger bool
	h := chimw.RequestID(RequestLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasLogger = logging.FromContext(r.Context()) != nil
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
	assert.True(t, hasLogger)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rr.Header().Get(RequestIDHeader), "generated id should be echoed")
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rr.Body.String())
}

func TestAuthRateLimiter(t *testing.T) {
	assert.Nil(t, AuthRateLimiter(0))

	lim := AuthRateLimiter(2)
	h := lim.Handler(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/token", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)

	// a different client has its own bucket
	req := httptest.NewRequest(http.MethodPost, "/auth/token", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthRateLimiter_RetryAfterAndSweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	lim := AuthRateLimiter(2)
	lim.now = func() time.Time { return now }
	h := lim.Handler(http.HandlerFunc(okHandler))

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	require.Equal(t, http.StatusOK, call("10.0.0.1:1").Code)
	rr := call("10.0.0.1:2")
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "30", rr.Header().Get("Retry-After"))

	now = now.Add(31 * time.Second)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:3").Code)

	now = now.Add(visitorIdleTTL + time.Minute)
	call("10.0.0.9:1")
	assert.Len(t, lim.visitors, 1)
}

func TestNilRateLimiterPassesThrough(t *testing.T) {
	var lim *IPRateLimiter
	h := lim.Handler(http.HandlerFunc(okHandler))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:5173"})(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodOptions, "/todos", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "PATCH")

	req = httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(true)(http.HandlerFunc(okHandler))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rr.Header().Get("Strict-Transport-Security"))
}

func TestMaxBytes_DeclaredLengthRejected(t *testing.T) {
	called := false
	h := MaxBytes(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/todos", strings.NewReader("0123456789")))

	assert.False(t, called)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.JSONEq(t, `{"error":"Request body too large"}`, rr.Body.String())
}

func TestMaxBytes_StreamedBodyCapped(t *testing.T) {
	var readErr error
	h := MaxBytes(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))
	req := httptest.NewRequest(http.MethodPatch, "/todos/x", strings.NewReader("0123456789"))
	req.ContentLength = -1
	h.ServeHTTP(httptest.NewRecorder(), req)

	var mbe *http.MaxBytesError
	assert.True(t, errors.As(readErr, &mbe), "got %v", readErr)
}

func TestMaxBytes_GetPassesThrough(t *testing.T) {
	h := MaxBytes(4)(http.HandlerFunc(okHandler))
	req := httptest.NewRequest(http.MethodGet, "/todos", strings.NewReader("0123456789"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
