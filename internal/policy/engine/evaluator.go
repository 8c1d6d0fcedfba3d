package engine

import (
	"context"

	identitydomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/domain"
)

// RouteDecision is what a request path requires of the caller's session.
type RouteDecision struct {
	// Role is the role the session must carry; empty accepts any authenticated role.
	Role identitydomain.Role
}

// Evaluator maps requests to access requirements using OPA or other engines.
type Evaluator interface {
	// EvaluateRoute returns the requirement for method and path.
	EvaluateRoute(ctx context.Context, method, path string) (RouteDecision, error)
}
