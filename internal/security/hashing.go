package security

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords using bcrypt. Callers must not log or
// persist plaintext passwords.
type Hasher struct {
	Cost int

	dummyOnce sync.Once
	dummy     []byte
}

// NewHasher returns a Hasher with the given bcrypt cost, clamped to 4–31.
// Zero or negative selects bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash produces a bcrypt hash of password suitable for storage.
func (h *Hasher) Hash(password []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare verifies password against the stored hash. Returns nil on match and
// an error (including bcrypt.ErrMismatchedHashAndPassword) otherwise.
func (h *Hasher) Compare(hash string, password []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), password)
}

// CompareMissing spends the same bcrypt work as Compare for an identity that
// does not exist, so response time does not reveal whether an email is registered.
// It always returns bcrypt.ErrMismatchedHashAndPassword.
func (h *Hasher) CompareMissing(password []byte) error {
	h.dummyOnce.Do(func() {
		b, err := bcrypt.GenerateFromPassword([]byte("unused-placeholder-secret"), h.Cost)
		if err == nil {
			h.dummy = b
		}
	})
	if h.dummy != nil {
		_ = bcrypt.CompareHashAndPassword(h.dummy, password)
	}
	return bcrypt.ErrMismatchedHashAndPassword
}
