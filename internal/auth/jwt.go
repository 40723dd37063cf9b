// Package auth issues and checks session stamps for the local API.
//
// A SESSION STAMP, NOT A CREDENTIAL:
// Logging in to SkillSwap only says "I am user X". There is no password and
// nothing verifies the claim. The stamp is still a signed JWT so that a
// request cannot silently switch identity halfway through a session, and so
// the HTTP surface can tell which party is acting on a swap.
//
// A stamp looks like HEADER.PAYLOAD.SIGNATURE, each part base64url encoded:
//
//	{"alg":"HS256","typ":"JWT"} . {"iss":"skillswap","sub":"<user id>","iat":..,"exp":..} . HMAC-SHA256
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "skillswap"

// DefaultTTL is how long a session stamp stays valid.
const DefaultTTL = 24 * time.Hour

// minSecretLen is the shortest HMAC key NewTokenService accepts.
const minSecretLen = 16

// ErrExpired is returned by Validate for a well-formed stamp past its expiry.
var ErrExpired = errors.New("auth: session stamp expired")

// TokenService signs and checks session stamps with one HMAC key.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. A non-positive ttl falls back to
// DefaultTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("auth: JWT secret must be at least %d characters", minSecretLen)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims is the stamp payload. Only registered claims are used: the user id
// travels as the subject.
type claims struct {
	jwt.RegisteredClaims
}

// TTL is the lifetime of stamps issued by Generate. The HTTP surface uses it
// as the cookie's MaxAge.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Generate issues a stamp for userID valid for TTL.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, s.ttl)
}

// GenerateWithDuration issues a stamp valid for d. A negative d yields an
// already expired stamp, which tests rely on.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing stamp for %s: %w", userID, err)
	}
	return signed, nil
}

// Validate verifies a stamp and returns the user id it names.
//
// The parser only accepts HS256 ("alg":"none" and every other algorithm are
// refused before the key is even looked up), our issuer, and a stamp that
// carries an expiry.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenStr, &c,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrExpired
	case err != nil:
		return "", fmt.Errorf("auth: invalid session stamp: %w", err)
	case c.Subject == "":
		return "", errors.New("auth: session stamp has no subject")
	}
	return c.Subject, nil
}
