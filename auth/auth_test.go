package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/canteen-engine/auth"
	"github.com/warp/canteen-engine/canteen"
)

// =============================================================================
// TOKENS
// =============================================================================

func TestTokens_RoundTrip(t *testing.T) {
	tokens := auth.NewTokens("test-secret")

	signed, err := tokens.Generate("alice@campus.edu", canteen.RoleUser, "Alice")
	require.NoError(t, err)

	claims, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "alice@campus.edu", claims.Email)
	assert.Equal(t, string(canteen.RoleUser), claims.Role)
	assert.Equal(t, "Alice", claims.Name)
}

func TestTokens_WrongSecretRejected(t *testing.T) {
	signed, err := auth.NewTokens("secret-a").Generate("alice@campus.edu", canteen.RoleUser, "Alice")
	require.NoError(t, err)

	_, err = auth.NewTokens("secret-b").Verify(signed)
	assert.ErrorIs(t, err, canteen.ErrUnauthorized)
}

func TestTokens_ExpiredRejected(t *testing.T) {
	// GIVEN: A token whose expiry is already in the past
	// WHEN: Verifying it
	// THEN: It maps to unauthorized

	tokens := auth.NewTokens("test-secret")
	claims := auth.Claims{
		Email: "alice@campus.edu",
		Role:  string(canteen.RoleUser),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tokens.Secret)
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, canteen.ErrUnauthorized)
}

func TestTokens_UnknownRoleRejected(t *testing.T) {
	tokens := auth.NewTokens("test-secret")
	claims := auth.Claims{
		Email: "alice@campus.edu",
		Role:  "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tokens.Secret)
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, canteen.ErrUnauthorized)
}

func TestTokens_GarbageRejected(t *testing.T) {
	_, err := auth.NewTokens("test-secret").Verify("not.a.jwt")
	assert.ErrorIs(t, err, canteen.ErrUnauthorized)
}

// =============================================================================
// PASSWORDS
// =============================================================================

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := auth.HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, auth.CheckPassword(hash, "hunter2hunter2"))
	assert.False(t, auth.CheckPassword(hash, "wrong-password"))
	assert.False(t, auth.CheckPassword("", "hunter2hunter2"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, auth.ValidatePassword("12345678"))

	err := auth.ValidatePassword("short")
	require.Error(t, err)
	assert.ErrorIs(t, err, canteen.ErrValidation)

	var verr *canteen.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
}

func TestNewResetToken_Shape(t *testing.T) {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token := auth.NewResetToken()
		require.Len(t, token, 6)
		for _, r := range token {
			assert.True(t, strings.ContainsRune(alphabet, r), "unexpected character %q", r)
		}
		seen[token] = true
	}
	assert.Greater(t, len(seen), 1, "tokens should not repeat constantly")
}
