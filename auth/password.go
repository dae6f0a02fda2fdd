package auth

import (
	"crypto/rand"
	"math/big"

	"github.com/warp/canteen-engine/canteen"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced at signup, reset, and change.
const MinPasswordLength = 8

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword applies the account password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return &canteen.ValidationError{
			Field:   "password",
			Message: "must be at least 8 characters long",
		}
	}
	return nil
}

const resetTokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewResetToken returns a 6-character alphanumeric password-reset token.
func NewResetToken() string {
	token := make([]byte, 6)
	max := big.NewInt(int64(len(resetTokenAlphabet)))
	for i := range token {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err) // crypto/rand never fails on supported platforms
		}
		token[i] = resetTokenAlphabet[n.Int64()]
	}
	return string(token)
}
