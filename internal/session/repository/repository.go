package repository

import (
	"context"
	"time"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/session/domain"
)

// Repository defines persistence for sessions. Implementations apply lazy
// expiry: any read that observes an idle-expired session deletes it and
// reports it as absent. Touch and Delete are linearizable per session id.
type Repository interface {
	// Create persists s. The session must have ID set.
	Create(ctx context.Context, s *domain.Session) error
	// Get returns the live session for id without refreshing it, or nil if absent or expired.
	Get(ctx context.Context, id string, now time.Time) (*domain.Session, error)
	// Touch advances LastActivityAt to now and returns the session, or nil if absent or expired.
	Touch(ctx context.Context, id string, now time.Time) (*domain.Session, error)
	// Delete removes the session. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}
