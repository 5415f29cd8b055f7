package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-videotube/internal/model"
	"go-videotube/internal/session"
)

type stubVerifier map[string]string

func (s stubVerifier) Verify(raw string) (string, error) {
	if id, ok := s[raw]; ok {
		return id, nil
	}
	return "", errors.New("token expired")
}

func gated(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var seen string
	mw := NewAuthMiddleware(stubVerifier{"good": "user-1"}, session.NewTransport(session.Options{}))
	h := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusNoContent)
	}))
	return h, &seen
}

func TestRequireAuth_AcceptsCookieAndBearer(t *testing.T) {
	h, seen := gated(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	req.AddCookie(&http.Cookie{Name: session.AccessCookie, Value: "good"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user-1", *seen)

	*seen = ""
	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user-1", *seen)
}

func TestRequireAuth_Rejects(t *testing.T) {
	cases := map[string]func(r *http.Request){
		"missing":        func(r *http.Request) {},
		"invalid cookie": func(r *http.Request) { r.AddCookie(&http.Cookie{Name: session.AccessCookie, Value: "stale"}) },
		"invalid bearer": func(r *http.Request) { r.Header.Set("Authorization", "Bearer stale") },
	}

	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			h, seen := gated(t)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
			setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Empty(t, *seen)

			var body model.APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
			assert.NotContains(t, rec.Body.String(), "expired")
		})
	}
}

func TestUserIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := UserIDFromContext(req.Context())
	assert.False(t, ok)
}
