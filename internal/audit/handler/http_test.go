package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit/domain"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit/repository"
)

type failingRepo struct{}

func (failingRepo) Create(ctx context.Context, e *domain.SecurityEvent) error { return nil }

func (failingRepo) List(ctx context.Context, f repository.Filter) ([]*domain.SecurityEvent, error) {
	return nil, errors.New("db down")
}

func serve(h *HTTP, target string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/events", h.List)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func seeded(t *testing.T) *repository.MemoryRepository {
	t.Helper()
	repo := repository.NewMemoryRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []*domain.SecurityEvent{
		{ID: "1", Type: domain.EventLoginFailed, OriginIP: "10.0.0.1", Timestamp: base},
		{ID: "2", Type: domain.EventLoginSuccess, SubjectID: "s1", OriginIP: "10.0.0.1", Timestamp: base.Add(time.Second)},
		{ID: "3", Type: domain.EventLogout, SubjectID: "s1", OriginIP: "10.0.0.1", Timestamp: base.Add(2 * time.Second)},
		{ID: "4", Type: domain.EventLoginSuccess, SubjectID: "s2", OriginIP: "10.0.0.2", Timestamp: base.Add(3 * time.Second)},
	}
	for _, e := range events {
		if err := repo.Create(context.Background(), e); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	return repo
}

func ids(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	var body struct {
		Success bool                    `json:"success"`
		Data    []*domain.SecurityEvent `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success {
		t.Fatalf("success = false, body %s", w.Body.String())
	}
	out := make([]string, len(body.Data))
	for i, e := range body.Data {
		out[i] = e.ID
	}
	return out
}

func TestList(t *testing.T) {
	h := NewHTTP(seeded(t))
	testCases := []struct {
		name   string
		target string
		want   []string
	}{
		{"all newest first", "/events", []string{"4", "3", "2", "1"}},
		{"by subject", "/events?subject_id=s1", []string{"3", "2"}},
		{"by type", "/events?type=login_success", []string{"4", "2"}},
		{"limit and offset", "/events?limit=2&offset=1", []string{"3", "2"}},
		{"no match", "/events?subject_id=nobody", []string{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(h, tc.target)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			got := ids(t, w)
			if len(got) != len(tc.want) {
				t.Fatalf("ids = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("ids = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestList_BadInput(t *testing.T) {
	h := NewHTTP(seeded(t))
	for _, target := range []string{"/events?type=bogus", "/events?limit=abc", "/events?offset=-1"} {
		if w := serve(h, target); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, w.Code)
		}
	}
}

func TestList_RepositoryError(t *testing.T) {
	if w := serve(NewHTTP(failingRepo{}), "/events"); w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestList_NotConfigured(t *testing.T) {
	if w := serve(NewHTTP(nil), "/events"); w.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", w.Code)
	}
}
