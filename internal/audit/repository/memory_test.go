package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit/domain"
)

func TestMemoryRepository_ListFiltersNewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []*domain.SecurityEvent{
		{ID: "1", Type: domain.EventLoginFailed, SubjectID: "a", Timestamp: base},
		{ID: "2", Type: domain.EventLoginSuccess, SubjectID: "a", Timestamp: base.Add(time.Second)},
		{ID: "3", Type: domain.EventLoginFailed, SubjectID: "b", Timestamp: base.Add(2 * time.Second)},
		{ID: "4", Type: domain.EventLogout, SubjectID: "a", Timestamp: base.Add(3 * time.Second)},
	}
	for _, e := range events {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	tests := []struct {
		name string
		f    Filter
		want []string
	}{
		{"all", Filter{}, []string{"4", "3", "2", "1"}},
		{"by subject", Filter{SubjectID: "a"}, []string{"4", "2", "1"}},
		{"by type", Filter{Type: domain.EventLoginFailed}, []string{"3", "1"}},
		{"limit", Filter{Limit: 2}, []string{"4", "3"}},
		{"offset", Filter{SubjectID: "a", Offset: 1, Limit: 1}, []string{"2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.f)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d events, want %d", len(got), len(tt.want))
			}
			for i, e := range got {
				if e.ID != tt.want[i] {
					t.Errorf("event[%d] = %s, want %s", i, e.ID, tt.want[i])
				}
			}
		})
	}
}

func TestMemoryRepository_StoresCopies(t *testing.T) {
	repo := NewMemoryRepository()
	e := &domain.SecurityEvent{ID: "1", Metadata: map[string]string{"k": "v"}}
	_ = repo.Create(context.Background(), e)
	e.Metadata["k"] = "changed"
	if got := repo.All()[0].Metadata["k"]; got != "v" {
		t.Errorf("stored metadata mutated: %q", got)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, DefaultListLimit},
		{-3, DefaultListLimit},
		{10, 10},
		{MaxListLimit + 1, MaxListLimit},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
