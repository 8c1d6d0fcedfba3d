package server

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	identitydomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/domain"
	identityhandler "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/handler"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/service"
	policyengine "github.com/ManuelDev-we/CRM-condominio-sub002/internal/policy/engine"
)

// SessionVerifier is the part of the auth service used by the middleware.
type SessionVerifier interface {
	VerifySession(ctx context.Context, sessionID string, expectedRole identitydomain.Role, originIP string) *service.Result
	CheckCSRF(ctx context.Context, sessionID, token, originIP string) *service.Result
}

// SessionResolver extracts the caller's session handle from a request.
type SessionResolver func(c *gin.Context) string

// RequireSession returns middleware that refreshes the caller's session and
// checks it carries the role the route policy requires for the request path.
// On success the identity is placed on the request context.
func RequireSession(svc SessionVerifier, routes policyengine.Evaluator, resolve SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var role identitydomain.Role
		if routes != nil {
			d, err := routes.EvaluateRoute(ctx, c.Request.Method, c.Request.URL.Path)
			if err != nil {
				log.Printf("server: route policy for %s: %v", c.Request.URL.Path, err)
			}
			role = d.Role
		}
		res := svc.VerifySession(ctx, resolve(c), role, c.ClientIP())
		if !res.Success {
			identityhandler.WriteResult(c, res)
			c.Abort()
			return
		}
		view, ok := res.Data.(*service.SessionView)
		if !ok {
			log.Printf("server: verify session returned %T", res.Data)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		ctx = WithIdentity(ctx, view.SubjectID, identitydomain.Role(view.Role), view.SessionID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// VerifyCSRF returns middleware that requires a valid X-CSRF-Token header on
// state-changing requests. Safe methods pass through.
func VerifyCSRF(svc SessionVerifier, resolve SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}
		if res := svc.CheckCSRF(c.Request.Context(), resolve(c), c.GetHeader(identityhandler.CSRFHeader), c.ClientIP()); res != nil {
			identityhandler.WriteResult(c, res)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Telemetry returns middleware that counts requests and records their latency
// through the global OTel meter provider.
func Telemetry() gin.HandlerFunc {
	meter := otel.Meter("condominio.http")
	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("HTTP requests served, by route and status."))
	if err != nil {
		log.Printf("server: request counter unavailable: %v", err)
	}
	latency, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request latency."), metric.WithUnit("ms"))
	if err != nil {
		log.Printf("server: latency histogram unavailable: %v", err)
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := metric.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.String("http.status_code", strconv.Itoa(c.Writer.Status())),
		)
		ctx := c.Request.Context()
		if requests != nil {
			requests.Add(ctx, 1, attrs)
		}
		if latency != nil {
			latency.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
		}
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
