package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func testConfig(clock *fakeClock) Config {
	return Config{
		AccessSecret:  "access-secret-for-tests-0123456789",
		RefreshSecret: "refresh-secret-for-tests-0123456789",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    240 * time.Hour,
		Issuer:        "videotube-test",
		Now:           clock.Now,
	}
}

func newFixture(t *testing.T) (*Issuer, *AccessVerifier, *RefreshVerifier, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	cfg := testConfig(clock)

	issuer, err := NewIssuer(cfg)
	require.NoError(t, err)

	return issuer, NewAccessVerifier(cfg), NewRefreshVerifier(cfg), clock
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	issuer, access, refresh, _ := newFixture(t)

	pair, err := issuer.Issue("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, 15*time.Minute, pair.AccessExpiresIn)
	assert.Equal(t, 240*time.Hour, pair.RefreshExpiresIn)

	id, err := access.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	id, err = refresh.Verify(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestIssueProducesDistinctPairsWithinTheSameSecond(t *testing.T) {
	issuer, _, _, _ := newFixture(t)

	first, err := issuer.Issue("user-1")
	require.NoError(t, err)
	second, err := issuer.Issue("user-1")
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)
}

func TestIssueRejectsEmptyUserID(t *testing.T) {
	issuer, _, _, _ := newFixture(t)

	_, err := issuer.Issue("  ")
	require.Error(t, err)
}

func TestAccessTokenExpires(t *testing.T) {
	issuer, access, _, clock := newFixture(t)

	pair, err := issuer.Issue("user-1")
	require.NoError(t, err)

	clock.Advance(14 * time.Minute)
	_, err = access.Verify(pair.AccessToken)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = access.Verify(pair.AccessToken)
	require.ErrorIs(t, err, ErrTokenInvalid)

	var invalidErr *InvalidError
	require.True(t, errors.As(err, &invalidErr))
	assert.Equal(t, "token is expired", invalidErr.Reason)
}

func TestRefreshTokenOutlivesAccessToken(t *testing.T) {
	issuer, access, refresh, clock := newFixture(t)

	pair, err := issuer.Issue("user-1")
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)

	_, err = access.Verify(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	id, err := refresh.Verify(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestVerifiersDoNotAcceptTheOtherClass(t *testing.T) {
	issuer, access, refresh, _ := newFixture(t)

	pair, err := issuer.Issue("user-1")
	require.NoError(t, err)

	_, err = access.Verify(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = refresh.Verify(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTypeMarkerIsCheckedEvenWithTheRightSecret(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cfg := testConfig(clock)
	access := NewAccessVerifier(cfg)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Type: TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	})
	raw, err := forged.SignedString([]byte(cfg.AccessSecret))
	require.NoError(t, err)

	_, err = access.Verify(raw)
	var invalidErr *InvalidError
	require.True(t, errors.As(err, &invalidErr))
	assert.Contains(t, invalidErr.Reason, "unexpected token type")
}

func TestVerifyRejectsTamperedAndMalformedTokens(t *testing.T) {
	issuer, access, _, _ := newFixture(t)

	pair, err := issuer.Issue("user-1")
	require.NoError(t, err)

	parts := strings.Split(pair.AccessToken, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	cases := map[string]string{
		"empty":     "",
		"garbage":   "not-a-jwt",
		"tampered":  tampered,
		"two parts": parts[0] + "." + parts[1],
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := access.Verify(raw)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestVerifyRejectsNoneAlgorithmAndMissingExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cfg := testConfig(clock)
	access := NewAccessVerifier(cfg)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Type:             TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", Issuer: cfg.Issuer},
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = access.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Type:             TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", Issuer: cfg.Issuer},
	})
	raw, err = noExpiry.SignedString([]byte(cfg.AccessSecret))
	require.NoError(t, err)
	_, err = access.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cfg := testConfig(clock)
	access := NewAccessVerifier(cfg)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Type: TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	})
	raw, err := token.SignedString([]byte(cfg.AccessSecret))
	require.NoError(t, err)

	_, err = access.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenPayloadDoesNotContainSecrets(t *testing.T) {
	issuer, _, _, clock := newFixture(t)
	cfg := testConfig(clock)

	pair, err := issuer.Issue("user-1")
	require.NoError(t, err)

	for _, raw := range []string{pair.AccessToken, pair.RefreshToken} {
		claims := &Claims{}
		_, _, err := jwt.NewParser().ParseUnverified(raw, claims)
		require.NoError(t, err)
		payload := strings.Split(raw, ".")[1]
		assert.NotContains(t, payload, cfg.AccessSecret)
		assert.NotContains(t, payload, cfg.RefreshSecret)
		assert.Equal(t, "user-1", claims.Subject)
		assert.NotEmpty(t, claims.ID)
	}
}

func TestConfigValidate(t *testing.T) {
	clock := &fakeClock{now: time.Now()}

	cases := map[string]func(*Config){
		"missing access secret":  func(c *Config) { c.AccessSecret = "" },
		"missing refresh secret": func(c *Config) { c.RefreshSecret = " " },
		"shared secret":          func(c *Config) { c.RefreshSecret = c.AccessSecret },
		"zero access ttl":        func(c *Config) { c.AccessTTL = 0 },
		"refresh not longer":     func(c *Config) { c.RefreshTTL = c.AccessTTL },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(clock)
			mutate(&cfg)

			_, err := NewIssuer(cfg)
			assert.Error(t, err)
		})
	}
}
