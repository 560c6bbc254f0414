package security_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/kkarhua/fullrest-backend/pkg/config"
	"github.com/kkarhua/fullrest-backend/pkg/security"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher() *security.Hasher {
	return security.NewHasher(config.PasswordConfig{BcryptCost: bcrypt.MinCost})
}

func TestHashAndVerifyPassword(t *testing.T) {
	h := newTestHasher()

	hash, err := h.Hash("Secret123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if !security.LooksHashed(hash) {
		t.Fatalf("expected bcrypt shaped hash, got %q", hash)
	}
	if !h.Verify("Secret123", hash) {
		t.Fatal("Verify failed for the correct password")
	}
	if h.Verify("Secret124", hash) {
		t.Fatal("Verify returned true for incorrect password")
	}
}

func TestHashSaltsEachCall(t *testing.T) {
	h := newTestHasher()
	first, err := h.Hash("Secret123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := h.Hash("Secret123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct hashes for the same plaintext")
	}
}

func TestHashRejectsEmpty(t *testing.T) {
	if _, err := newTestHasher().Hash(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyMalformedHashReturnsFalse(t *testing.T) {
	h := newTestHasher()
	for _, hash := range []string{"", "not-a-hash", "$2a$10$short", strings.Repeat("x", 80)} {
		if h.Verify("Secret123", hash) {
			t.Fatalf("Verify should be false for malformed hash %q", hash)
		}
	}
}

func TestNewHasherCostFallback(t *testing.T) {
	if got := security.NewHasher(config.PasswordConfig{}).Cost(); got != security.DefaultCost {
		t.Fatalf("expected default cost, got %d", got)
	}
	if got := security.NewHasher(config.PasswordConfig{BcryptCost: 99}).Cost(); got != security.DefaultCost {
		t.Fatalf("expected default cost for out of range value, got %d", got)
	}
	if got := security.NewHasher(config.PasswordConfig{BcryptCost: 12}).Cost(); got != 12 {
		t.Fatalf("expected configured cost, got %d", got)
	}
}

func TestLooksHashed(t *testing.T) {
	for _, v := range []string{"$2a$10$abc", "$2b$12$abc", "$2y$10$abc"} {
		if !security.LooksHashed(v) {
			t.Fatalf("expected %q to look hashed", v)
		}
	}
	for _, v := range []string{"", "Secret123", "$2x$10$abc", "$argon2id$v=19"} {
		if security.LooksHashed(v) {
			t.Fatalf("expected %q to not look hashed", v)
		}
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	valid := []string{"Secret123", "Abcdefg1", "$2a$10$alreadyhashed"}
	for _, v := range valid {
		if err := security.ValidatePasswordStrength(v); err != nil {
			t.Fatalf("expected %q to be accepted, got %v", v, err)
		}
	}
	invalid := []string{"", "Short1", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"}
	for _, v := range invalid {
		if err := security.ValidatePasswordStrength(v); !errors.Is(err, security.ErrWeakPassword) {
			t.Fatalf("expected ErrWeakPassword for %q, got %v", v, err)
		}
	}
}
