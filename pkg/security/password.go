package security

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/kkarhua/fullrest-backend/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultCost       = 10
	MinPasswordLength = 8
)

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// ErrWeakPassword signals a password that does not meet the strength rules.
var ErrWeakPassword = errors.New("password must be at least 8 characters and contain an uppercase letter, a lowercase letter and a digit")

// Hasher hashes and verifies credentials with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher builds a bcrypt hasher. Out-of-range costs fall back to DefaultCost.
func NewHasher(cfg config.PasswordConfig) *Hasher {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Cost returns the bcrypt work factor used for new hashes.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash returns a salted bcrypt hash of the plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hash. Malformed hashes yield false.
func (h *Hasher) Verify(plaintext, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// LooksHashed reports whether value already has the shape of a bcrypt hash.
func LooksHashed(value string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

// ValidatePasswordStrength enforces the account password rules. Values that
// already look like bcrypt hashes pass unchanged.
func ValidatePasswordStrength(value string) error {
	if LooksHashed(value) {
		return nil
	}
	if len(value) < MinPasswordLength {
		return ErrWeakPassword
	}
	var upper, lower, digit bool
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return ErrWeakPassword
	}
	return nil
}
