package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-videotube/internal/model"
)

func cookiesByName(resp *http.Response) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range resp.Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestTransport_AccessToken(t *testing.T) {
	tr := NewTransport(Options{})

	t.Run("cookie wins over header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "from-cookie"})
		req.Header.Set("Authorization", "Bearer from-header")

		got, err := tr.AccessToken(req)
		require.NoError(t, err)
		assert.Equal(t, "from-cookie", got)
	})

	t.Run("bearer header fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer  abc.def.ghi ")

		got, err := tr.AccessToken(req)
		require.NoError(t, err)
		assert.Equal(t, "abc.def.ghi", got)
	})

	t.Run("absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		_, err := tr.AccessToken(req)
		assert.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("empty bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer    ")

		_, err := tr.AccessToken(req)
		assert.ErrorIs(t, err, ErrNoToken)
	})
}

func TestTransport_RefreshToken(t *testing.T) {
	tr := NewTransport(Options{MaxBodySize: 64})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: "r-cookie"})

		got, err := tr.RefreshToken(req)
		require.NoError(t, err)
		assert.Equal(t, "r-cookie", got)
	})

	t.Run("body field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"refreshToken":"r-body"}`))

		got, err := tr.RefreshToken(req)
		require.NoError(t, err)
		assert.Equal(t, "r-body", got)
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		body := `{"refreshToken":"` + strings.Repeat("x", 200) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

		_, err := tr.RefreshToken(req)
		assert.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("no body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)

		_, err := tr.RefreshToken(req)
		assert.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("body without field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"token":"x"}`))

		_, err := tr.RefreshToken(req)
		assert.ErrorIs(t, err, ErrNoToken)
	})
}

func TestTransport_WriteAndClear(t *testing.T) {
	tr := NewTransport(Options{})
	pair := model.TokenPair{
		AccessToken:      "a",
		RefreshToken:     "r",
		AccessExpiresIn:  15 * time.Minute,
		RefreshExpiresIn: 240 * time.Hour,
	}

	rec := httptest.NewRecorder()
	tr.Write(rec, pair)
	cookies := cookiesByName(rec.Result())

	require.Contains(t, cookies, AccessCookie)
	require.Contains(t, cookies, RefreshCookie)

	access := cookies[AccessCookie]
	assert.Equal(t, "a", access.Value)
	assert.Equal(t, 900, access.MaxAge)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, int((240 * time.Hour).Seconds()), cookies[RefreshCookie].MaxAge)

	rec = httptest.NewRecorder()
	tr.Clear(rec)
	cleared := cookiesByName(rec.Result())
	require.Len(t, cleared, 2)
	for _, c := range cleared {
		assert.Empty(t, c.Value)
		assert.Equal(t, -1, c.MaxAge)
	}
}

func TestTransport_Body(t *testing.T) {
	tr := NewTransport(Options{})
	pair := model.TokenPair{AccessToken: "a", RefreshToken: "r", AccessExpiresIn: time.Minute}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	resp := tr.Body(req, pair)
	assert.Equal(t, "a", resp.AccessToken)
	assert.Empty(t, resp.RefreshToken)
	assert.Equal(t, int64(60), resp.ExpiresIn)

	req.Header.Set(ModeHeader, "Body")
	resp = tr.Body(req, pair)
	assert.Equal(t, "r", resp.RefreshToken)
}
