package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/domain"
)

// MemoryRepository keeps credential records in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	hasher PasswordChecker
	byID   map[string]*domain.Record
	email  map[string]string // normalized email -> id
	curp   map[string]string // normalized curp -> id
}

// NewMemoryRepository returns an empty credential table.
func NewMemoryRepository(hasher PasswordChecker) *MemoryRepository {
	return &MemoryRepository{
		hasher: hasher,
		byID:   make(map[string]*domain.Record),
		email:  make(map[string]string),
		curp:   make(map[string]string),
	}
}

// Verify looks up email and compares secret. Unknown emails spend the same bcrypt work.
func (r *MemoryRepository) Verify(ctx context.Context, email, secret string) (*domain.Principal, error) {
	r.mu.RLock()
	var rec *domain.Record
	if id, ok := r.email[domain.NormalizeEmail(email)]; ok {
		c := *r.byID[id]
		rec = &c
	}
	r.mu.RUnlock()

	if rec == nil {
		_ = r.hasher.CompareMissing([]byte(secret))
		return nil, ErrRejected
	}
	if err := r.hasher.Compare(rec.PasswordHash, []byte(secret)); err != nil {
		return nil, ErrRejected
	}
	return &domain.Principal{SubjectID: rec.ID, Role: rec.Role, Email: rec.Email}, nil
}

// Exists reports whether key is already taken.
func (r *MemoryRepository) Exists(ctx context.Context, key domain.UniqueKey) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch key.Field {
	case domain.FieldEmail:
		_, ok := r.email[key.Value]
		return ok, nil
	case domain.FieldCURP:
		_, ok := r.curp[key.Value]
		return ok, nil
	default:
		return false, ErrUnknownField
	}
}

// Create stores a copy of rec. A taken email or curp returns ErrConflict.
func (r *MemoryRepository) Create(ctx context.Context, rec *domain.Record) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.email[rec.Email]; ok {
		return "", ErrConflict
	}
	if rec.CURP != "" {
		if _, ok := r.curp[rec.CURP]; ok {
			return "", ErrConflict
		}
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	c := *rec
	r.byID[c.ID] = &c
	r.email[c.Email] = c.ID
	if c.CURP != "" {
		r.curp[c.CURP] = c.ID
	}
	return c.ID, nil
}

// Len returns the number of stored records.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
