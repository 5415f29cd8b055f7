package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid is the single outcome of every failed verification.
var ErrTokenInvalid = errors.New("token invalid")

// InvalidError carries a log-only reason. Callers must not echo it to clients.
type InvalidError struct {
	Reason string
}

func (e *InvalidError) Error() string {
	return "token invalid: " + e.Reason
}

func (e *InvalidError) Is(target error) bool {
	return target == ErrTokenInvalid
}

func invalid(reason string) error {
	return &InvalidError{Reason: reason}
}

// verifier is the signature/expiry routine shared by both token classes.
type verifier struct {
	secret []byte
	typ    string
	issuer string
	now    func() time.Time
}

func (v verifier) verify(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", invalid("token is empty")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return "", invalid(reasonFor(err))
	}
	if !parsed.Valid {
		return "", invalid("token is not valid")
	}

	if claims.Type != v.typ {
		return "", invalid("unexpected token type " + claims.Type)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", invalid("token subject is missing")
	}

	return claims.Subject, nil
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed token"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature is invalid"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "token is unverifiable"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token is expired"
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return "required claim is missing"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "unexpected issuer"
	default:
		return err.Error()
	}
}

// AccessVerifier only accepts access tokens signed with the access secret.
type AccessVerifier struct {
	v verifier
}

func NewAccessVerifier(cfg Config) *AccessVerifier {
	return &AccessVerifier{v: verifier{
		secret: []byte(cfg.AccessSecret),
		typ:    TypeAccess,
		issuer: cfg.Issuer,
		now:    cfg.clock(),
	}}
}

func (a *AccessVerifier) Verify(raw string) (string, error) {
	return a.v.verify(raw)
}

// RefreshVerifier only accepts refresh tokens signed with the refresh secret.
type RefreshVerifier struct {
	v verifier
}

func NewRefreshVerifier(cfg Config) *RefreshVerifier {
	return &RefreshVerifier{v: verifier{
		secret: []byte(cfg.RefreshSecret),
		typ:    TypeRefresh,
		issuer: cfg.Issuer,
		now:    cfg.clock(),
	}}
}

func (r *RefreshVerifier) Verify(raw string) (string, error) {
	return r.v.verify(raw)
}
