package session

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go-videotube/internal/model"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"

	// ModeHeader lets non-browser clients ask for the refresh token in the
	// response body instead of a cookie.
	ModeHeader = "X-Session-Transport"
	ModeBody   = "body"

	defaultMaxBody = 16 << 10
)

var ErrNoToken = errors.New("no session token presented")

// Transport moves session tokens between HTTP requests/responses and the
// auth service. It never validates tokens.
type Transport struct {
	secure  bool
	maxBody int64
}

type Options struct {
	// Insecure drops the Secure attribute; only for plain-HTTP local setups.
	Insecure    bool
	MaxBodySize int64
}

func NewTransport(opts Options) *Transport {
	maxBody := opts.MaxBodySize
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	return &Transport{secure: !opts.Insecure, maxBody: maxBody}
}

// AccessToken prefers the accessToken cookie and falls back to an
// Authorization: Bearer header.
func (t *Transport) AccessToken(r *http.Request) (string, error) {
	if c, err := r.Cookie(AccessCookie); err == nil {
		if v := strings.TrimSpace(c.Value); v != "" {
			return v, nil
		}
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		if v := strings.TrimSpace(header[7:]); v != "" {
			return v, nil
		}
	}

	return "", ErrNoToken
}

// RefreshToken prefers the refreshToken cookie and falls back to the
// refreshToken field of a JSON body. The body is consumed.
func (t *Transport) RefreshToken(r *http.Request) (string, error) {
	if c, err := r.Cookie(RefreshCookie); err == nil {
		if v := strings.TrimSpace(c.Value); v != "" {
			return v, nil
		}
	}

	if r.Body == nil || r.Body == http.NoBody {
		return "", ErrNoToken
	}

	var payload struct {
		RefreshToken string `json:"refreshToken"`
	}
	err := json.NewDecoder(io.LimitReader(r.Body, t.maxBody)).Decode(&payload)
	if err != nil {
		return "", ErrNoToken
	}

	if v := strings.TrimSpace(payload.RefreshToken); v != "" {
		return v, nil
	}
	return "", ErrNoToken
}

// WantsBody reports whether the client opted into body transport.
func WantsBody(r *http.Request) bool {
	return strings.EqualFold(strings.TrimSpace(r.Header.Get(ModeHeader)), ModeBody)
}

// Write sets both session cookies with Max-Age matching each token's TTL.
func (t *Transport) Write(w http.ResponseWriter, pair model.TokenPair) {
	http.SetCookie(w, t.cookie(AccessCookie, pair.AccessToken, pair.AccessExpiresIn))
	http.SetCookie(w, t.cookie(RefreshCookie, pair.RefreshToken, pair.RefreshExpiresIn))
}

// Clear expires both session cookies.
func (t *Transport) Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		c := t.cookie(name, "", 0)
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

// Body shapes the token part of a login or refresh response. The refresh
// token is only included when the client asked for body transport.
func (t *Transport) Body(r *http.Request, pair model.TokenPair) model.RefreshResponse {
	resp := model.RefreshResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(pair.AccessExpiresIn / time.Second),
	}
	if WantsBody(r) {
		resp.RefreshToken = pair.RefreshToken
	}
	return resp
}

func (t *Transport) cookie(name string, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
