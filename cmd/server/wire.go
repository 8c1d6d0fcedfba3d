package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit"
	audithandler "github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit/handler"
	auditrepo "github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit/repository"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit/sink"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/config"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/csrf"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/db"
	apphealth "github.com/ManuelDev-we/CRM-condominio-sub002/internal/health"
	healthhandler "github.com/ManuelDev-we/CRM-condominio-sub002/internal/health/handler"
	identitydomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/domain"
	identityhandler "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/handler"
	identityrepo "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/repository"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/service"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/platform/clock"
	policyengine "github.com/ManuelDev-we/CRM-condominio-sub002/internal/policy/engine"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/ratelimit"
	ratelimitrepo "github.com/ManuelDev-we/CRM-condominio-sub002/internal/ratelimit/repository"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/security"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/server"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/session"
	sessionrepo "github.com/ManuelDev-we/CRM-condominio-sub002/internal/session/repository"
	apptelemetry "github.com/ManuelDev-we/CRM-condominio-sub002/internal/telemetry/otel"
)

// sweeper is implemented by the in-memory session and rate-limit repositories.
type sweeper interface {
	Sweep(now time.Time) int
}

// app holds the wired components and the resources to release on shutdown.
type app struct {
	auth    *identityhandler.HTTP
	svc     *service.AuthService
	routes  policyengine.Evaluator
	audit   *audithandler.HTTP
	checker *apphealth.Checker
	clock   clock.Clock

	conn     *sql.DB
	rdb      *redis.Client
	kafka    *sink.Kafka
	async    []*sink.Async
	sweepers []sweeper
}

// build wires storage, the auth core and the audit pipeline from cfg.
// Postgres and Redis are optional; without them the in-memory repositories are used.
func build(ctx context.Context, cfg *config.Config, providers *apptelemetry.Providers) (*app, error) {
	a := &app{clock: clock.Real{}}
	src := security.CryptoSource{}
	hasher := security.NewHasher(cfg.BcryptCost)

	var (
		credentials identityrepo.Repository
		events      auditrepo.Repository
	)
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db: %w", err)
		}
		a.conn = conn
		credentials = identityrepo.NewPostgresRepository(conn, hasher)
		events = auditrepo.NewPostgresRepository(conn)
	} else {
		log.Println("wire: DATABASE_URL not set; using in-memory credentials and audit store")
		credentials = identityrepo.NewMemoryRepository(hasher)
		events = auditrepo.NewMemoryRepository()
	}

	var (
		sessions sessionrepo.Repository
		attempts ratelimitrepo.Repository
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.rdb = redis.NewClient(opts)
		sessions = sessionrepo.NewRedisRepository(a.rdb)
		attempts = ratelimitrepo.NewRedisRepository(a.rdb)
	} else {
		log.Println("wire: REDIS_URL not set; using in-memory sessions and rate limits")
		memSessions := sessionrepo.NewMemoryRepository()
		memAttempts := ratelimitrepo.NewMemoryRepository()
		sessions, attempts = memSessions, memAttempts
		a.sweepers = append(a.sweepers, memSessions, memAttempts)
	}

	sinks := []audit.Sink{sink.NewStore(events, "store")}
	if k := sink.NewKafka(cfg.KafkaBrokersList(), cfg.AuditKafkaTopic); k != nil {
		a.kafka = k
		async := sink.NewAsync(k)
		a.async = append(a.async, async)
		sinks = append(sinks, async)
	}
	if providers.Enabled() {
		async := sink.NewAsync(sink.NewOTel(providers.LoggerProvider))
		a.async = append(a.async, async)
		sinks = append(sinks, async)
	}
	recorder := audit.NewLogger(a.clock, sinks...)

	handles, err := security.NewHandleSigner(cfg.SessionSecret, cfg.HandleIssuer, cfg.HandleAudience, cfg.HandleMaxAge())
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("handles: %w", err)
	}

	descriptors := identitydomain.Descriptors(cfg.SessionTimeouts())
	guard := csrf.NewGuard(src, a.clock)
	a.svc = service.NewAuthService(service.Deps{
		Limiter:     ratelimit.NewLimiter(attempts, a.clock),
		Credentials: credentials,
		Sessions:    session.NewStore(sessions, guard, src, a.clock, descriptors),
		CSRF:        guard,
		Audit:       recorder,
		Hasher:      hasher,
		Handles:     handles,
		Clock:       a.clock,
		Policies:    service.Policies{Login: cfg.LoginPolicy(), Register: cfg.RegisterPolicy()},
		Descriptors: descriptors,
	})
	a.auth = identityhandler.NewHTTP(a.svc, handles)
	a.audit = audithandler.NewHTTP(events)

	module := ""
	if cfg.RoutePolicyFile != "" {
		raw, err := os.ReadFile(cfg.RoutePolicyFile)
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("route policy: %w", err)
		}
		module = string(raw)
	}
	evaluator, err := policyengine.NewOPAEvaluator(ctx, module)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	a.routes = evaluator

	checks := []apphealth.Check{apphealth.Policy(evaluator)}
	if a.conn != nil {
		checks = append(checks, apphealth.SQL(a.conn))
	}
	if a.rdb != nil {
		checks = append(checks, apphealth.Redis(a.rdb))
	}
	a.checker = apphealth.NewChecker(checks...)
	return a, nil
}

func (a *app) httpDeps(cfg *config.Config) server.HTTPDeps {
	return server.HTTPDeps{
		Auth:           a.auth,
		Sessions:       a.svc,
		Routes:         a.routes,
		Audit:          a.audit,
		Health:         healthhandler.NewHTTP(a.checker),
		SessionSecret:  cfg.SessionSecret,
		CookieSecure:   cfg.SessionCookieSecure,
		CookieMaxAge:   cfg.HandleMaxAge(),
		CORSOrigins:    cfg.CORSOrigins(),
		TrustedProxies: cfg.TrustedProxyList(),
	}
}

// sweep drops expired in-memory sessions and rate-limit windows every interval until ctx is done.
func (a *app) sweep(ctx context.Context, interval time.Duration) {
	if len(a.sweepers) == 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := a.clock.Now()
			for _, s := range a.sweepers {
				s.Sweep(now)
			}
		}
	}
}

// close drains background audit writes and releases connections.
func (a *app) close(ctx context.Context) {
	for _, async := range a.async {
		if err := async.Wait(ctx); err != nil {
			log.Printf("audit: drain: %v", err)
		}
	}
	if err := a.kafka.Close(); err != nil {
		log.Printf("audit: kafka close: %v", err)
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			log.Printf("redis close: %v", err)
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			log.Printf("db close: %v", err)
		}
	}
}
