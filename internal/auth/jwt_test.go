package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "stamp-test-secret-32-characters!"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	return ts
}

// signRaw signs arbitrary claims with method and key, for tokens that
// Generate would never produce.
func signRaw(t *testing.T, method jwt.SigningMethod, key any, c jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, c).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestNewTokenService(t *testing.T) {
	_, err := NewTokenService("short", time.Hour)
	assert.Error(t, err, "secrets under 16 characters are rejected")

	ts, err := NewTokenService("exactly-16-chars", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, ts.TTL(), "non-positive ttl falls back to the default")

	ts, err = NewTokenService(testSecret, 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, ts.TTL())
}

func TestGenerate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("cq8v3uu2s0")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."), "header.payload.signature")

	got, err := ts.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "cq8v3uu2s0", got)

	other, err := ts.Generate("d0a1b2c3d4")
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestGenerate_UsesTTL(t *testing.T) {
	ts, err := NewTokenService(testSecret, 10*time.Minute)
	require.NoError(t, err)

	token, err := ts.Generate("ada")
	require.NoError(t, err)

	var c claims
	_, _, err = jwt.NewParser().ParseUnverified(token, &c)
	require.NoError(t, err)
	assert.Equal(t, issuer, c.Issuer)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), c.ExpiresAt.Time, 5*time.Second)
}

func TestValidate_Rejects(t *testing.T) {
	ts := newTestTokenService(t)
	now := time.Now()

	expired, err := ts.GenerateWithDuration("ada", -time.Second)
	require.NoError(t, err)

	good, err := ts.Generate("ada")
	require.NoError(t, err)

	other, err := NewTokenService("another-secret-32-characters!!!!", time.Hour)
	require.NoError(t, err)
	foreign, err := other.Generate("ada")
	require.NoError(t, err)

	valid := func(sub, iss string) jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    iss,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt.token"},
		{"expired", expired},
		{"tampered signature", good[:len(good)-3] + "xxx"},
		{"signed with another secret", foreign},
		{"wrong issuer", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), valid("ada", "someone-else"))},
		{"no subject", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), valid("", issuer))},
		{"no expiry", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{Subject: "ada", Issuer: issuer})},
		{"HS512 instead of HS256", signRaw(t, jwt.SigningMethodHS512, []byte(testSecret), valid("ada", issuer))},
		{"alg none", signRaw(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid("ada", issuer))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.Validate(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestValidate_Expired(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.GenerateWithDuration("ada", -time.Minute)
	require.NoError(t, err)

	_, err = ts.Validate(token)
	assert.ErrorIs(t, err, ErrExpired)
}
