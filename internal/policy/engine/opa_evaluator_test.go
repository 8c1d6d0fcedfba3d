package engine

import (
	"context"
	"testing"

	identitydomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/domain"
)

func TestOPAEvaluator_DefaultPolicy(t *testing.T) {
	ctx := context.Background()
	e, err := NewOPAEvaluator(ctx, "")
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	tests := []struct {
		method string
		path   string
		want   identitydomain.Role
	}{
		{"GET", "/api/admin/security-events", identitydomain.RoleAdmin},
		{"POST", "/api/admin/", identitydomain.RoleAdmin},
		{"GET", "/api/resident/me", identitydomain.RoleResident},
		{"GET", "/api/auth/session", ""},
		{"GET", "/api/administrator", ""},
		{"GET", "/health", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			d, err := e.EvaluateRoute(ctx, tt.method, tt.path)
			if err != nil {
				t.Fatalf("EvaluateRoute: %v", err)
			}
			if d.Role != tt.want {
				t.Errorf("role = %q, want %q", d.Role, tt.want)
			}
		})
	}
}

func TestOPAEvaluator_CustomPolicy(t *testing.T) {
	ctx := context.Background()
	custom := `package condominio.routes

default required_role := ""

required_role := "admin" if {
	input.method == "DELETE"
}
`
	e, err := NewOPAEvaluator(ctx, custom)
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	d, err := e.EvaluateRoute(ctx, "DELETE", "/api/resident/me")
	if err != nil || d.Role != identitydomain.RoleAdmin {
		t.Errorf("DELETE = %+v, %v; want admin", d, err)
	}
	d, err = e.EvaluateRoute(ctx, "GET", "/api/admin/x")
	if err != nil || d.Role != "" {
		t.Errorf("GET = %+v, %v; want any role", d, err)
	}
}

func TestOPAEvaluator_UnknownRoleFallsBack(t *testing.T) {
	ctx := context.Background()
	e, err := NewOPAEvaluator(ctx, `package condominio.routes

required_role := "janitor"
`)
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	d, err := e.EvaluateRoute(ctx, "GET", "/api/admin/x")
	if err == nil {
		t.Error("expected error for unknown role")
	}
	if d.Role != identitydomain.RoleAdmin {
		t.Errorf("fallback role = %q, want admin", d.Role)
	}
}

func TestNewOPAEvaluator_InvalidModule(t *testing.T) {
	if _, err := NewOPAEvaluator(context.Background(), "package broken\n\nallow if {"); err == nil {
		t.Error("expected compile error")
	}
}

func TestOPAEvaluator_HealthCheck(t *testing.T) {
	e, err := NewOPAEvaluator(context.Background(), "")
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	if err := e.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}
