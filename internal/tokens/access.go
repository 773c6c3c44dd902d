package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims identify the operator behind a terminal request.
type AccessClaims struct {
	Role     string `json:"role"`
	Terminal string `json:"terminal,omitempty"`
	jwt.RegisteredClaims
}

// TerminalID falls back to the subject when the token carries no terminal.
func (c *AccessClaims) TerminalID() string {
	if c.Terminal != "" {
		return c.Terminal
	}
	return c.Subject
}

func AccessClaimsFromToken(tokenStr string, accessSecret []byte) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return accessSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return &claims, nil
}

// SignAccessToken issues an HS256 token; used by tests and local tooling.
func SignAccessToken(subject, role, terminal string, ttl time.Duration, accessSecret []byte) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Role:     role,
		Terminal: terminal,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(accessSecret)
}
