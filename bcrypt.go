package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor applied when no explicit cost
// is configured. Tuned to stay above ~50ms per hash on current
// commodity hardware.
const DefaultBcryptCost = 12

// MinPasswordLength is enforced at registration and password reset
const MinPasswordLength = 6

// HashPassword will generate a salted password hash. Two calls with
// the same plaintext produce different hashes.
func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, DefaultBcryptCost)
}

// HashPasswordCost hashes with an explicit bcrypt work factor
func HashPasswordCost(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext password
// matches the hashed password. A malformed hash reports a mismatch,
// it never panics.
func ComparePasswordAndHash(password, hash string) error {
	// bcrypt reports malformed hashes and mismatches through distinct
	// errors, both normalize to the same failure here so callers cannot
	// tell a corrupt record apart from a wrong password.
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrMismatchedHashAndPassword
	}
	return nil
}
