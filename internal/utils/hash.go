package utils

import "golang.org/x/crypto/bcrypt"

// HashSecret returns a bcrypt hash of the provided secret. A cost outside
// bcrypt's accepted range falls back to bcrypt.DefaultCost.
func HashSecret(secret string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	return string(bytes), err
}

// CheckSecret compares a bcrypt hash with its possible plaintext equivalent.
func CheckSecret(hashed, secret string) bool {
	if hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(secret)) == nil
}
