package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	audithandler "github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit/handler"
	healthhandler "github.com/ManuelDev-we/CRM-condominio-sub002/internal/health/handler"
	identityhandler "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/handler"
	policyengine "github.com/ManuelDev-we/CRM-condominio-sub002/internal/policy/engine"
)

// HTTPDeps holds the collaborators of the HTTP router.
type HTTPDeps struct {
	// Auth serves /api/auth/* and resolves session handles for the middleware.
	Auth *identityhandler.HTTP
	// Sessions verifies sessions and CSRF tokens on protected routes.
	Sessions SessionVerifier
	// Routes maps protected paths to the role they require. If nil, any authenticated role is accepted.
	Routes policyengine.Evaluator
	// Audit serves the security event listing. If nil, the route is not registered.
	Audit *audithandler.HTTP
	// Health serves readiness on /ready. If nil, only liveness on /health is served.
	Health *healthhandler.HTTP

	SessionSecret  string
	CookieSecure   bool
	CookieMaxAge   time.Duration
	CORSOrigins    []string
	TrustedProxies []string
}

// NewRouter builds the gin engine with the session cookie store, CORS, and
// the auth, admin, and resident route groups.
//
//	POST /api/auth/login | /logout | /register/:role, GET /api/auth/session
//	GET  /api/admin/me, GET /api/admin/security-events   (admin session)
//	GET  /api/resident/me                                  (resident session)
//	GET  /health, GET /ready
func NewRouter(d HTTPDeps) (*gin.Engine, error) {
	if d.Auth == nil || d.Sessions == nil {
		return nil, errors.New("server: auth handler and session verifier are required")
	}
	if d.SessionSecret == "" {
		return nil, errors.New("server: session secret is required")
	}
	r := gin.New()
	r.Use(gin.Recovery(), Telemetry())
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, err
	}

	store := cookie.NewStore([]byte(d.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(d.CookieMaxAge / time.Second),
		HttpOnly: true,
		Secure:   d.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	r.Use(sessions.Sessions(identityhandler.SessionCookieName, store))

	if len(d.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = d.CORSOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", identityhandler.CSRFHeader}
		corsConfig.ExposeHeaders = []string{identityhandler.CSRFHeader, "Retry-After"}
		r.Use(cors.New(corsConfig))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "condominio-auth"})
	})
	if d.Health != nil {
		r.GET("/ready", d.Health.Ready)
	}

	api := r.Group("/api")
	d.Auth.Mount(api.Group("/auth"))

	guard := []gin.HandlerFunc{
		RequireSession(d.Sessions, d.Routes, d.Auth.SessionID),
		VerifyCSRF(d.Sessions, d.Auth.SessionID),
	}
	admin := api.Group("/admin", guard...)
	admin.GET("/me", me)
	if d.Audit != nil {
		admin.GET("/security-events", d.Audit.List)
	}
	resident := api.Group("/resident", guard...)
	resident.GET("/me", me)

	return r, nil
}

// me returns the identity RequireSession placed on the request.
func me(c *gin.Context) {
	ctx := c.Request.Context()
	subjectID, _ := GetSubjectID(ctx)
	role, _ := GetRole(ctx)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "ok",
		"data": gin.H{
			"subject_id": subjectID,
			"role":       role,
		},
	})
}
