package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/csrf"
	identitydomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/domain"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/service"
)

const (
	// SessionCookieName is the name of the signed cookie carrying the session handle.
	SessionCookieName = "condominio_session"
	// CSRFHeader carries the anti-forgery token in both directions.
	CSRFHeader = csrf.HeaderName

	sessionKeyID = "sid"
	bearerPrefix = "Bearer "
)

// AuthService is the orchestrator behind the HTTP routes.
type AuthService interface {
	Login(ctx context.Context, in service.LoginInput) *service.Result
	Register(ctx context.Context, in service.RegisterInput) *service.Result
	VerifySession(ctx context.Context, sessionID string, expectedRole identitydomain.Role, originIP string) *service.Result
	CheckCSRF(ctx context.Context, sessionID, token, originIP string) *service.Result
	Logout(ctx context.Context, sessionID, originIP string) *service.Result
}

// HandleParser resolves a bearer handle to a session id.
type HandleParser interface {
	Parse(token string) (string, error)
}

// HTTP serves /api/auth/* over gin. Browsers carry the session handle in a
// signed cookie; other clients send it as a bearer handle.
type HTTP struct {
	svc     AuthService
	handles HandleParser
}

// NewHTTP returns the auth HTTP handler. handles may be nil to disable bearer handles.
func NewHTTP(svc AuthService, handles HandleParser) *HTTP {
	return &HTTP{svc: svc, handles: handles}
}

// Mount registers the auth routes on g.
func (h *HTTP) Mount(g *gin.RouterGroup) {
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
	g.POST("/register/:role", h.RegisterSubject)
	g.GET("/session", h.Session)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *HTTP) Login(c *gin.Context) {
	var req loginRequest
	// A malformed body is passed through empty so the attempt is still throttled and audited.
	_ = c.ShouldBindJSON(&req)

	res := h.svc.Login(c.Request.Context(), service.LoginInput{
		Email:            req.Email,
		Password:         req.Password,
		CSRFToken:        c.GetHeader(CSRFHeader),
		CurrentSessionID: h.SessionID(c),
		OriginIP:         c.ClientIP(),
	})
	if res.Success {
		data, _ := res.Data.(*service.LoginData)
		if data != nil {
			if err := saveSessionID(c, data.SessionID); err != nil {
				log.Printf("auth: save session cookie: %v", err)
				h.svc.Logout(c.Request.Context(), data.SessionID, c.ClientIP())
				WriteResult(c, internalError())
				return
			}
			c.Header(CSRFHeader, data.CSRFToken)
		}
	}
	WriteResult(c, res)
}

// Logout handles POST /api/auth/logout. It always succeeds and clears the cookie.
func (h *HTTP) Logout(c *gin.Context) {
	res := h.svc.Logout(c.Request.Context(), h.SessionID(c), c.ClientIP())
	clearSession(c)
	WriteResult(c, res)
}

// RegisterSubject handles POST /api/auth/register/:role with a flat JSON object of fields.
func (h *HTTP) RegisterSubject(c *gin.Context) {
	fields := map[string]string{}
	_ = c.ShouldBindJSON(&fields)

	res := h.svc.Register(c.Request.Context(), service.RegisterInput{
		Role:             c.Param("role"),
		Fields:           fields,
		CSRFToken:        c.GetHeader(CSRFHeader),
		CurrentSessionID: h.SessionID(c),
		OriginIP:         c.ClientIP(),
	})
	WriteResult(c, res)
}

// Session handles GET /api/auth/session: it refreshes the caller's session and
// returns it with the current CSRF token.
func (h *HTTP) Session(c *gin.Context) {
	res := h.svc.VerifySession(c.Request.Context(), h.SessionID(c), "", c.ClientIP())
	if view, ok := res.Data.(*service.SessionView); ok && res.Success {
		c.Header(CSRFHeader, view.CSRFToken)
	}
	if res.ErrorCode == service.CodeSessionExpired {
		clearSession(c)
	}
	WriteResult(c, res)
}

// SessionID returns the caller's session handle: the bearer handle if present,
// otherwise the one stored in the session cookie. An unparseable bearer yields "".
func (h *HTTP) SessionID(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, bearerPrefix) {
		if h.handles == nil {
			return ""
		}
		id, err := h.handles.Parse(strings.TrimSpace(strings.TrimPrefix(auth, bearerPrefix)))
		if err != nil {
			return ""
		}
		return id
	}
	id, _ := sessions.Default(c).Get(sessionKeyID).(string)
	return id
}

// WriteResult writes res as JSON with its status, adding Retry-After for throttled calls.
func WriteResult(c *gin.Context, res *service.Result) {
	if retry, ok := res.Data.(*service.RetryData); ok && res.ErrorCode == service.CodeRateLimited {
		c.Header("Retry-After", strconv.FormatInt(retry.RetryAfterSeconds, 10))
	}
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

func internalError() *service.Result {
	return &service.Result{
		Success:   false,
		Message:   "internal error",
		ErrorCode: service.CodeInternal,
		Status:    service.CodeInternal.Status(),
	}
}

func saveSessionID(c *gin.Context, id string) error {
	s := sessions.Default(c)
	s.Clear()
	s.Set(sessionKeyID, id)
	return s.Save()
}

func clearSession(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := s.Save(); err != nil {
		log.Printf("auth: clear session cookie: %v", err)
	}
}
