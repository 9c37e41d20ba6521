// Package auth provides credential handling, token issuance and the
// request authentication middleware.
package auth

import "golang.org/x/crypto/bcrypt"

const (
	// MinPasswordLength is enforced at registration before hashing.
	MinPasswordLength = 6
	// MaxPasswordLength is bcrypt's input limit in bytes; longer
	// passwords make GenerateFromPassword error rather than truncate.
	MaxPasswordLength = 72
)

// PasswordHasher hashes and verifies passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a PasswordHasher with the default bcrypt cost.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: bcrypt.DefaultCost}
}

// Hash generates a salted bcrypt digest. The salt is fresh per call, so
// hashing the same password twice yields different digests.
func (h *PasswordHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify reports whether the password matches the digest. Malformed
// digests verify as false rather than erroring.
func (h *PasswordHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
