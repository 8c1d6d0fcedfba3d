package repository

import (
	"context"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit/domain"
)

// Filter narrows a List call. Zero values match everything.
type Filter struct {
	SubjectID string
	Type      domain.EventType
	Limit     int
	Offset    int
}

// DefaultListLimit is applied when Filter.Limit is not positive.
const DefaultListLimit = 50

// MaxListLimit caps Filter.Limit.
const MaxListLimit = 500

// Repository defines persistence for security events.
type Repository interface {
	Create(ctx context.Context, e *domain.SecurityEvent) error
	// List returns events newest first.
	List(ctx context.Context, f Filter) ([]*domain.SecurityEvent, error)
}

func clampLimit(n int) int {
	if n <= 0 {
		return DefaultListLimit
	}
	if n > MaxListLimit {
		return MaxListLimit
	}
	return n
}
