// Package session manages the lifecycle of authenticated sessions: creation
// with fixation-safe rotation, lazy idle expiry on access, and idempotent destruction.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/csrf"
	identitydomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/domain"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/platform/clock"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/security"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/session/domain"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/session/repository"
)

var (
	// ErrSessionExpired is returned when a session is absent, idle-expired, or destroyed.
	ErrSessionExpired = errors.New("session expired or not found")
	// ErrUnknownRole is returned when a session is requested for a role with no descriptor.
	ErrUnknownRole = errors.New("unknown role")
)

// Store creates, refreshes, and destroys sessions over a Repository.
type Store struct {
	repo        repository.Repository
	guard       *csrf.Guard
	src         security.TokenSource
	clock       clock.Clock
	descriptors map[identitydomain.Role]identitydomain.Descriptor
}

// NewStore returns a Store. descriptors supplies the per-role idle timeout; nil selects the defaults.
func NewStore(repo repository.Repository, guard *csrf.Guard, src security.TokenSource, clk clock.Clock, descriptors map[identitydomain.Role]identitydomain.Descriptor) *Store {
	if descriptors == nil {
		descriptors = identitydomain.Descriptors(nil)
	}
	return &Store{repo: repo, guard: guard, src: src, clock: clk, descriptors: descriptors}
}

// Create starts a new session for subjectID. The session bound to priorSessionID,
// if any, is destroyed first so a pre-login handle can never become authenticated.
func (s *Store) Create(ctx context.Context, subjectID string, role identitydomain.Role, originIP, priorSessionID string) (*domain.Session, error) {
	desc, ok := s.descriptors[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	if priorSessionID != "" {
		if err := s.repo.Delete(ctx, priorSessionID); err != nil {
			return nil, fmt.Errorf("session: invalidate prior: %w", err)
		}
	}
	id, err := security.NewSessionID(s.src)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	sess := &domain.Session{
		ID:             id,
		SubjectID:      subjectID,
		Role:           role,
		CreatedAt:      now,
		LastActivityAt: now,
		OriginIP:       originIP,
		IdleTimeout:    desc.IdleTimeout,
	}
	if _, err := s.guard.Issue(sess); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("session: create: %w", err)
	}
	return sess, nil
}

// Touch refreshes the session's activity time. An idle-expired session is
// destroyed and ErrSessionExpired returned; so is a missing one.
func (s *Store) Touch(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, ErrSessionExpired
	}
	sess, err := s.repo.Touch(ctx, id, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("session: touch: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Lookup returns the live session without refreshing it. Expired sessions are
// destroyed on observation, like Touch.
func (s *Store) Lookup(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, ErrSessionExpired
	}
	sess, err := s.repo.Get(ctx, id, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("session: lookup: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Destroy removes the session. Destroying a missing session is a no-op.
func (s *Store) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.repo.Delete(ctx, id)
}
