package cryptox

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// PasswordCost is the bcrypt work factor used for every stored hash.
	// Changing it only affects new hashes, existing ones carry their own cost.
	PasswordCost = 10

	// MaxPasswordBytes is the longest input bcrypt will accept.
	MaxPasswordBytes = 72
)

var (
	ErrPasswordMismatch = errors.New("password does not match")
	ErrPasswordTooLong  = errors.New("password exceeds 72 bytes")
)

// HashPassword returns a salted bcrypt hash in the standard modular crypt
// format ($2a$10$...).
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a bcrypt hash. It
// returns nil on match, ErrPasswordMismatch on a wrong password and a wrapped
// error when the stored hash itself is unusable. Inputs longer than
// MaxPasswordBytes never match, bcrypt would otherwise compare only their
// first 72 bytes.
func VerifyPassword(password, encodedHash string) error {
	if len(password) > MaxPasswordBytes {
		return ErrPasswordMismatch
	}

	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("invalid password hash: %w", err)
	}
}

// PasswordMatches is the boolean form of VerifyPassword. Any failure,
// including a malformed hash, reports false.
func PasswordMatches(password, encodedHash string) bool {
	return VerifyPassword(password, encodedHash) == nil
}
