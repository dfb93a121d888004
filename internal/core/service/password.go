package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/viatero/expense-system/internal/core/domain"
)

// MinHashCost is the minimum bcrypt work factor accepted. Anything lower is
// a security regression and is silently raised to this floor.
const MinHashCost = 10

// PasswordHasher wraps bcrypt hash and verify with an enforced cost floor.
// Every Hash call salts independently; there is no way to reuse a salt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher with the given cost, clamped to
// [MinHashCost, bcrypt.MaxCost].
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < MinHashCost {
		cost = MinHashCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of plaintext. The cost factor and salt are
// embedded in the output, so Verify needs nothing else.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify reports whether plaintext matches the stored hash. A mismatch is
// (false, nil); only a malformed hash produces an error.
func (h *PasswordHasher) Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	// Malformed or truncated hash: a data problem, not a wrong password.
	return false, fmt.Errorf("%w: %v", domain.ErrAuthConfiguration, err)
}

// Cost returns the effective work factor.
func (h *PasswordHasher) Cost() int {
	return h.cost
}
