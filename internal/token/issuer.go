package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-videotube/internal/model"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is shared by both token classes. The payload only ever carries the
// identity id and the class marker; secrets live in the signature.
type Claims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string

	// Now overrides the clock used for minting and verification.
	Now func() time.Time
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.AccessSecret) == "" {
		return errors.New("access token secret is required")
	}
	if strings.TrimSpace(c.RefreshSecret) == "" {
		return errors.New("refresh token secret is required")
	}
	if c.AccessSecret == c.RefreshSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	if c.AccessTTL <= 0 {
		return errors.New("access token ttl must be positive")
	}
	if c.RefreshTTL <= c.AccessTTL {
		return errors.New("refresh token ttl must be longer than access token ttl")
	}
	return nil
}

func (c Config) clock() func() time.Time {
	if c.Now != nil {
		return c.Now
	}
	return time.Now
}

type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// NewIssuer validates the signing configuration up front so that a bad key
// setup stops the process at startup instead of failing requests.
func NewIssuer(cfg Config) (*Issuer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	return &Issuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		now:           cfg.clock(),
	}, nil
}

func (i *Issuer) Issue(userID string) (model.TokenPair, error) {
	if strings.TrimSpace(userID) == "" {
		return model.TokenPair{}, errors.New("issue token: user id is required")
	}

	now := i.now().UTC()

	accessToken, err := i.sign(i.accessSecret, i.claims(userID, TypeAccess, now, i.accessTTL))
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := i.sign(i.refreshSecret, i.claims(userID, TypeRefresh, now, i.refreshTTL))
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return model.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresIn:  i.accessTTL,
		RefreshExpiresIn: i.refreshTTL,
	}, nil
}

func (i *Issuer) claims(userID string, typ string, now time.Time, ttl time.Duration) *Claims {
	return &Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

func (i *Issuer) sign(secret []byte, claims *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
