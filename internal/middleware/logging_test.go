package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"go-videotube/pkg/apierror"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLogging_RecordsFailureEnvelope(t *testing.T) {
	logs := captureLogs(t)

	r := chi.NewRouter()
	r.Use(Logging)
	r.Get("/api/v1/users/c/{username}", func(w http.ResponseWriter, _ *http.Request) {
		writeAPIError(w, apierror.Unauthorized("invalid access token"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/c/alice", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	out := logs.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "route=/api/v1/users/c/{username}")
	assert.Contains(t, out, "error_code=UNAUTHORIZED")
}

func TestLogging_KeepsIncomingRequestID(t *testing.T) {
	captureLogs(t)

	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))
}

func TestLogging_DoesNotRetainSuccessBodies(t *testing.T) {
	logs := captureLogs(t)

	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"accessToken":"secret-token"}}`))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users/login", nil))

	assert.NotContains(t, logs.String(), "secret-token")
	assert.Contains(t, logs.String(), "route=unmatched")
}
