package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"go-videotube/internal/session"
	"go-videotube/pkg/apierror"
)

type accessVerifier interface {
	Verify(raw string) (string, error)
}

type contextKey string

const userIDContextKey contextKey = "auth_user_id"

type AuthMiddleware struct {
	verifier  accessVerifier
	transport *session.Transport
}

func NewAuthMiddleware(verifier accessVerifier, transport *session.Transport) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, transport: transport}
}

// RequireAuth admits a request only when it carries a valid access token.
// It never refreshes; an expired token is a plain 401.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := m.transport.AccessToken(r)
		if err != nil {
			writeAPIError(w, apierror.Unauthorized("unauthorized request"))
			return
		}

		userID, err := m.verifier.Verify(raw)
		if err != nil {
			slog.Debug("access token rejected", "path", r.URL.Path, "reason", err.Error())
			writeAPIError(w, apierror.Unauthorized("invalid access token"))
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok && id != ""
}

// WithUserID is used by tests that exercise handlers behind the gate.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
