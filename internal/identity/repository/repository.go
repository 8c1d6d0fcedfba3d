package repository

import (
	"context"
	"errors"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/domain"
)

var (
	// ErrRejected is returned by Verify for an unknown identity or a wrong secret alike.
	ErrRejected = errors.New("credentials rejected")
	// ErrConflict is returned by Create when a unique field already exists.
	ErrConflict = errors.New("identity already exists")
	// ErrUnknownField is returned by Exists for a field with no uniqueness index.
	ErrUnknownField = errors.New("unknown unique field")
)

// Repository verifies, checks and creates credential records.
type Repository interface {
	// Verify returns the principal for email when secret matches its stored hash.
	Verify(ctx context.Context, email, secret string) (*domain.Principal, error)
	// Exists reports whether a record already holds key.Value in key.Field.
	// key.Value must already be normalized.
	Exists(ctx context.Context, key domain.UniqueKey) (bool, error)
	// Create persists rec (PasswordHash set, fields normalized) and returns its subject id.
	Create(ctx context.Context, rec *domain.Record) (string, error)
}

// PasswordChecker compares secrets against stored hashes.
type PasswordChecker interface {
	Compare(hash string, password []byte) error
	// CompareMissing spends the same work as Compare for an identity with no hash.
	CompareMissing(password []byte) error
}
