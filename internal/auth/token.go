package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSecret indicates the signing secret is missing from configuration.
	ErrNoSecret = errors.New("jwt secret is not configured")
	// ErrInvalidToken covers every verification failure: bad signature,
	// malformed token, expiry, unknown user.
	ErrInvalidToken = errors.New("token is invalid")
)

// Claims is the verified token payload.
type Claims struct {
	Subject string
	IsAdmin bool
}

type tokenClaims struct {
	IsAdmin bool `json:"is_admin"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens carrying the user id and
// admin flag.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer builds an issuer. An empty secret is tolerated here and
// rejected at signing time so construction stays infallible for wiring.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the user.
func (t *TokenIssuer) Issue(userID string, isAdmin bool) (string, error) {
	if len(t.secret) == 0 {
		return "", ErrNoSecret
	}

	now := time.Now()
	claims := tokenClaims{
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the claims.
func (t *TokenIssuer) Verify(token string) (Claims, error) {
	if len(t.secret) == 0 {
		return Claims{}, ErrNoSecret
	}

	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	return Claims{Subject: claims.Subject, IsAdmin: claims.IsAdmin}, nil
}
