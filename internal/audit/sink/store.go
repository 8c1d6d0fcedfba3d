// Package sink provides destinations for security events: a persistent store,
// a Kafka topic and the OTel log pipeline, plus an asynchronous wrapper.
package sink

import (
	"context"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit/domain"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit/repository"
)

// Store writes events to a repository.
type Store struct {
	repo repository.Repository
	name string
}

// NewStore returns a sink that persists to repo. name labels diagnostics (e.g. "postgres").
func NewStore(repo repository.Repository, name string) *Store {
	return &Store{repo: repo, name: name}
}

func (s *Store) Name() string { return s.name }

// Write persists e.
func (s *Store) Write(ctx context.Context, e *domain.SecurityEvent) error {
	if s == nil || s.repo == nil || e == nil {
		return nil
	}
	return s.repo.Create(ctx, e)
}
