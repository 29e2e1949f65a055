// Package auth mints and validates the signed session tokens exchanged with
// API clients.
package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token fails signature, structure,
	// or claim validation.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrEmptySecret is returned when no signing secret is configured.
	ErrEmptySecret = errors.New("auth: signing secret is empty")
)

// TokenClaims carries the session identity embedded in a signed token. The
// session ID is the revocation handle; roles are informational and re-read
// from the member record on validation.
type TokenClaims struct {
	SessionID string
	MemberID  string
	Roles     []string
}

type rosterClaims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// NewToken signs a session token valid from issuedAt until expiresAt.
func NewToken(secret string, claims TokenClaims, issuedAt, expiresAt time.Time) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	if claims.SessionID == "" || claims.MemberID == "" {
		return "", ErrInvalidToken
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, rosterClaims{
		Roles: claims.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        claims.SessionID,
			Subject:   claims.MemberID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	return token.SignedString([]byte(secret))
}

// ParseToken validates the signature and expiry of a token and returns its
// claims. The signing algorithm is pinned to HS256.
func ParseToken(secret, tokenStr string) (TokenClaims, error) {
	if secret == "" {
		return TokenClaims{}, ErrEmptySecret
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &rosterClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return TokenClaims{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*rosterClaims)
	if !ok || claims.ID == "" || claims.Subject == "" {
		return TokenClaims{}, ErrInvalidToken
	}

	return TokenClaims{
		SessionID: claims.ID,
		MemberID:  claims.Subject,
		Roles:     claims.Roles,
	}, nil
}
