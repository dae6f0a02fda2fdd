/*
Package auth issues and verifies session tokens and password material.

Tokens are HS256 JWTs carrying {email, role, name} with a 24 hour
lifetime. The engine trusts a verified (email, role) pair as input;
expired or malformed tokens are rejected as unauthorized before any
business logic runs.
*/
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/warp/canteen-engine/canteen"
)

// TokenLifetime is how long a session token stays valid.
const TokenLifetime = 24 * time.Hour

// Claims holds the typed JWT payload.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies session tokens with a shared secret.
type Tokens struct {
	Secret []byte
}

func NewTokens(secret string) *Tokens {
	return &Tokens{Secret: []byte(secret)}
}

// Generate creates a signed session token for the given identity.
func (t *Tokens) Generate(email string, role canteen.Role, name string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  string(role),
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
}

// Verify parses and validates a token string. Any failure - bad signature,
// expiry, malformed role - maps to ErrUnauthorized.
func (t *Tokens) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", canteen.ErrUnauthorized, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, canteen.ErrUnauthorized
	}
	if _, ok := canteen.ParseRole(claims.Role); !ok {
		return nil, canteen.ErrUnauthorized
	}
	return claims, nil
}
