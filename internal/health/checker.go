// Package health aggregates readiness probes for the database, Redis and the policy engine.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// checkTimeout bounds each probe.
const checkTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker is satisfied by the OPA evaluator.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Check is one named readiness probe.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// SQL returns a probe that pings db. Nil db yields a nil-Fn probe that is skipped.
func SQL(db Pinger) Check {
	if db == nil {
		return Check{Name: "postgres"}
	}
	return Check{Name: "postgres", Fn: db.PingContext}
}

// Redis returns a probe that sends PING.
func Redis(client redis.UniversalClient) Check {
	if client == nil {
		return Check{Name: "redis"}
	}
	return Check{Name: "redis", Fn: func(ctx context.Context) error { return client.Ping(ctx).Err() }}
}

// Policy returns a probe that evaluates the route policy.
func Policy(p PolicyChecker) Check {
	if p == nil {
		return Check{Name: "policy"}
	}
	return Check{Name: "policy", Fn: p.HealthCheck}
}

// Report is the outcome of one readiness run.
type Report struct {
	Healthy bool              `json:"healthy"`
	Checks  map[string]string `json:"checks"`
}

// Checker runs probes concurrently.
type Checker struct {
	checks []Check
}

// NewChecker returns a Checker over checks. Probes with a nil Fn are reported as "skipped".
func NewChecker(checks ...Check) *Checker {
	return &Checker{checks: checks}
}

// Check runs every probe and reports "ok", "skipped" or the error text per probe.
func (c *Checker) Check(ctx context.Context) Report {
	r := Report{Healthy: true, Checks: make(map[string]string, len(c.checks))}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, chk := range c.checks {
		if chk.Fn == nil {
			r.Checks[chk.Name] = "skipped"
			continue
		}
		wg.Add(1)
		go func(chk Check) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			err := chk.Fn(pctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.Healthy = false
				r.Checks[chk.Name] = err.Error()
				return
			}
			r.Checks[chk.Name] = "ok"
		}(chk)
	}
	wg.Wait()
	return r
}
