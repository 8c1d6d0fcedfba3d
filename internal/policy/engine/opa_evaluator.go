package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/open-policy-agent/opa/v1/rego"

	identitydomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/domain"
)

const routeQuery = "data.condominio.routes.required_role"

// DefaultRoutePolicy maps the protected route groups to roles.
const DefaultRoutePolicy = `package condominio.routes

default required_role := ""

required_role := "admin" if {
	startswith(input.path, "/api/admin/")
}

required_role := "resident" if {
	startswith(input.path, "/api/resident/")
}
`

// OPAEvaluator evaluates the route policy with OPA Rego. The query is prepared once.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles module (DefaultRoutePolicy when empty) and prepares the route query.
func NewOPAEvaluator(ctx context.Context, module string) (*OPAEvaluator, error) {
	if strings.TrimSpace(module) == "" {
		module = DefaultRoutePolicy
	}
	pq, err := rego.New(
		rego.Query(routeQuery),
		rego.Module("routes.rego", module),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("policy: compile route policy: %w", err)
	}
	return &OPAEvaluator{query: pq}, nil
}

// EvaluateRoute returns the role required for path. If evaluation fails, the
// built-in prefix rules are applied and the error is returned alongside them.
func (e *OPAEvaluator) EvaluateRoute(ctx context.Context, method, path string) (RouteDecision, error) {
	input := map[string]interface{}{
		"method": method,
		"path":   path,
	}
	rs, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		log.Printf("policy: route evaluation failed for %s %s: %v, using defaults", method, path, err)
		return defaultDecision(path), fmt.Errorf("policy: eval: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return RouteDecision{}, nil
	}
	s, ok := rs[0].Expressions[0].Value.(string)
	if !ok {
		return defaultDecision(path), fmt.Errorf("policy: required_role is %T, want string", rs[0].Expressions[0].Value)
	}
	if s == "" {
		return RouteDecision{}, nil
	}
	role, known := identitydomain.ParseRole(s)
	if !known {
		return defaultDecision(path), fmt.Errorf("policy: unknown role %q", s)
	}
	return RouteDecision{Role: role}, nil
}

// HealthCheck verifies the prepared query evaluates against a known admin path.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	d, err := e.EvaluateRoute(ctx, "GET", "/api/admin/health")
	if err != nil {
		return err
	}
	if d.Role == "" {
		return fmt.Errorf("policy: admin path resolved to no role")
	}
	return nil
}

func defaultDecision(path string) RouteDecision {
	switch {
	case strings.HasPrefix(path, "/api/admin/"):
		return RouteDecision{Role: identitydomain.RoleAdmin}
	case strings.HasPrefix(path, "/api/resident/"):
		return RouteDecision{Role: identitydomain.RoleResident}
	}
	return RouteDecision{}
}
