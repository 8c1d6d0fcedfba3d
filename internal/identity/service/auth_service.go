package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	auditdomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit/domain"
	identitydomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/domain"
	identityrepo "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/repository"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/platform/clock"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/ratelimit"
	ratelimitdomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/ratelimit/domain"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/security"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/session"
	sessiondomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/session/domain"
)

const (
	msgInvalidCredentials = "invalid email or password"
	msgInternal           = "internal error"
)

// Limiter is the rate limiter needed by the auth service.
type Limiter interface {
	Check(ctx context.Context, action, identity string, policy ratelimitdomain.Policy) ratelimitdomain.Decision
}

// SessionStore is the session lifecycle needed by the auth service.
type SessionStore interface {
	Create(ctx context.Context, subjectID string, role identitydomain.Role, originIP, priorSessionID string) (*sessiondomain.Session, error)
	Touch(ctx context.Context, id string) (*sessiondomain.Session, error)
	Lookup(ctx context.Context, id string) (*sessiondomain.Session, error)
	Destroy(ctx context.Context, id string) error
}

// CSRFValidator checks a supplied anti-forgery token against a session.
type CSRFValidator interface {
	Validate(s *sessiondomain.Session, supplied string) bool
}

// AuditRecorder writes one security event. Never fails the caller.
type AuditRecorder interface {
	Record(ctx context.Context, t auditdomain.EventType, subjectID, originIP string, metadata map[string]string)
}

// PasswordHasher hashes new passwords.
type PasswordHasher interface {
	Hash(password []byte) (string, error)
}

// HandleIssuer mints bearer handles for new sessions.
type HandleIssuer interface {
	Issue(sessionID, subjectID, role string, now time.Time) (string, error)
}

// Policies holds the attempt limits for the throttled actions.
type Policies struct {
	Login    ratelimitdomain.Policy
	Register ratelimitdomain.Policy
}

// DefaultPolicies are 5 logins per 15 minutes and 3 registrations per hour per origin.
func DefaultPolicies() Policies {
	return Policies{
		Login:    ratelimitdomain.Policy{Limit: 5, Window: 15 * time.Minute},
		Register: ratelimitdomain.Policy{Limit: 3, Window: time.Hour},
	}
}

// Deps are the collaborators of AuthService. Handles may be nil.
type Deps struct {
	Limiter     Limiter
	Credentials identityrepo.Repository
	Sessions    SessionStore
	CSRF        CSRFValidator
	Audit       AuditRecorder
	Hasher      PasswordHasher
	Handles     HandleIssuer
	Clock       clock.Clock
	Policies    Policies
	Descriptors map[identitydomain.Role]identitydomain.Descriptor
}

// AuthService runs the login, register, verify and logout pipelines. It holds no
// per-request state; every call records exactly one security event.
type AuthService struct {
	limiter     Limiter
	credentials identityrepo.Repository
	sessions    SessionStore
	csrf        CSRFValidator
	audit       AuditRecorder
	hasher      PasswordHasher
	handles     HandleIssuer
	clock       clock.Clock
	policies    Policies
	descriptors map[identitydomain.Role]identitydomain.Descriptor
}

// NewAuthService returns an AuthService with the given dependencies.
// Zero policies and nil descriptors select the defaults.
func NewAuthService(d Deps) *AuthService {
	if d.Policies == (Policies{}) {
		d.Policies = DefaultPolicies()
	}
	if d.Descriptors == nil {
		d.Descriptors = identitydomain.Descriptors(nil)
	}
	if d.Clock == nil {
		d.Clock = clock.Real{}
	}
	return &AuthService{
		limiter:     d.Limiter,
		credentials: d.Credentials,
		sessions:    d.Sessions,
		csrf:        d.CSRF,
		audit:       d.Audit,
		hasher:      d.Hasher,
		handles:     d.Handles,
		clock:       d.Clock,
		policies:    d.Policies,
		descriptors: d.Descriptors,
	}
}

// LoginInput carries one login attempt.
type LoginInput struct {
	Email    string
	Password string
	// CSRFToken is optional; when present it must match CurrentSessionID's token.
	CSRFToken string
	// CurrentSessionID is the caller's existing handle; it is destroyed on success.
	CurrentSessionID string
	OriginIP         string
}

// Login authenticates email/password and starts a new session.
func (s *AuthService) Login(ctx context.Context, in LoginInput) *Result {
	if r := s.throttle(ctx, ratelimit.ActionLogin, in.OriginIP, s.policies.Login); r != nil {
		return r
	}
	email := identitydomain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		s.record(ctx, auditdomain.EventLoginFailed, "", in.OriginIP, map[string]string{"reason": "invalid_input"})
		return failure(CodeInvalidInput, "email and password are required", nil)
	}
	if in.CSRFToken != "" {
		if _, r := s.checkCSRF(ctx, in.CurrentSessionID, in.CSRFToken, in.OriginIP, "login"); r != nil {
			return r
		}
	}
	if err := validateEmail(email); err != nil {
		s.record(ctx, auditdomain.EventLoginFailed, "", in.OriginIP, map[string]string{"reason": "invalid_input", "email": email})
		return failure(CodeInvalidInput, err.Error(), nil)
	}

	principal, err := s.credentials.Verify(ctx, email, in.Password)
	if err != nil {
		if errors.Is(err, identityrepo.ErrRejected) {
			s.record(ctx, auditdomain.EventLoginFailed, "", in.OriginIP, map[string]string{"reason": "invalid_credentials", "email": email})
			return failure(CodeInvalidCredentials, msgInvalidCredentials, nil)
		}
		log.Printf("auth: verify credentials for %s: %v", email, err)
		s.record(ctx, auditdomain.EventLoginFailed, "", in.OriginIP, map[string]string{"reason": "verifier_error", "email": email})
		return failure(CodeInternal, msgInternal, nil)
	}
	if _, ok := s.descriptors[principal.Role]; !ok {
		log.Printf("auth: subject %s has unknown role %q", principal.SubjectID, principal.Role)
		s.record(ctx, auditdomain.EventLoginFailed, principal.SubjectID, in.OriginIP, map[string]string{"reason": "unknown_role"})
		return failure(CodeInternal, msgInternal, nil)
	}

	sess, err := s.sessions.Create(ctx, principal.SubjectID, principal.Role, in.OriginIP, in.CurrentSessionID)
	if err != nil {
		log.Printf("auth: create session for %s: %v", principal.SubjectID, err)
		s.record(ctx, auditdomain.EventLoginFailed, principal.SubjectID, in.OriginIP, map[string]string{"reason": "session_error"})
		return failure(CodeInternal, msgInternal, nil)
	}
	var handle string
	if s.handles != nil {
		handle, err = s.handles.Issue(sess.ID, sess.SubjectID, string(sess.Role), s.clock.Now())
		if err != nil {
			log.Printf("auth: issue handle for %s: %v", principal.SubjectID, err)
			_ = s.sessions.Destroy(ctx, sess.ID)
			s.record(ctx, auditdomain.EventLoginFailed, principal.SubjectID, in.OriginIP, map[string]string{"reason": "handle_error"})
			return failure(CodeInternal, msgInternal, nil)
		}
	}

	s.record(ctx, auditdomain.EventLoginSuccess, sess.SubjectID, in.OriginIP, map[string]string{
		"session_ref": sessionRef(sess.ID),
		"role":        string(sess.Role),
	})
	return success(200, "login successful", &LoginData{
		SessionID:          sess.ID,
		SubjectID:          sess.SubjectID,
		Role:               string(sess.Role),
		CSRFToken:          sess.CSRFToken,
		Handle:             handle,
		IdleTimeoutSeconds: int64(sess.IdleTimeout / time.Second),
	})
}

// RegisterInput carries one registration request.
type RegisterInput struct {
	Role string
	// Fields holds the submitted values keyed by field name (first_name, email, curp, ...).
	Fields           map[string]string
	CSRFToken        string
	CurrentSessionID string
	OriginIP         string
}

// Register validates and persists a new subject for the requested role.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) *Result {
	if r := s.throttle(ctx, ratelimit.ActionRegister, in.OriginIP, s.policies.Register); r != nil {
		return r
	}
	if in.CSRFToken == "" {
		s.record(ctx, auditdomain.EventCSRFRejected, "", in.OriginIP, map[string]string{"action": "register", "reason": "missing"})
		return failure(CodeCSRFMissing, "csrf token is required", nil)
	}
	registrar, r := s.checkCSRF(ctx, in.CurrentSessionID, in.CSRFToken, in.OriginIP, "register")
	if r != nil {
		return r
	}

	fail := func(code ErrorCode, reason, field, message string) *Result {
		meta := map[string]string{"reason": reason, "role": in.Role}
		var data any
		if field != "" {
			meta["field"] = field
			data = &FieldError{Field: field}
		}
		s.record(ctx, auditdomain.EventRegisterFailed, "", in.OriginIP, meta)
		return failure(code, message, data)
	}

	role, ok := identitydomain.ParseRole(in.Role)
	desc, known := s.descriptors[role]
	if !ok || !known {
		return fail(CodeInvalidInput, "unknown_role", "", fmt.Sprintf("unknown role %q", in.Role))
	}
	if !desc.CanRegister(registrar.Role) {
		s.record(ctx, auditdomain.EventRoleMismatch, registrar.SubjectID, in.OriginIP, map[string]string{
			"action":   "register",
			"expected": string(role),
			"actual":   string(registrar.Role),
		})
		return failure(CodeWrongRole, fmt.Sprintf("role %s may not register %s accounts", registrar.Role, role), nil)
	}

	values := make(map[string]string, len(desc.RequiredFields))
	for _, field := range desc.RequiredFields {
		v := in.Fields[field]
		if field != identitydomain.FieldPassword {
			v = identitydomain.NormalizeField(field, v)
		}
		if strings.TrimSpace(v) == "" {
			return fail(CodeMissingField, "missing_field", field, "missing required field: "+field)
		}
		values[field] = v
	}
	for _, field := range desc.RequiredFields {
		if err := ValidateField(field, values[field]); err != nil {
			return fail(CodeInvalidFormat, "invalid_format", field, err.Error())
		}
	}

	for _, field := range desc.UniqueFields {
		taken, err := s.credentials.Exists(ctx, identitydomain.UniqueKey{Field: field, Value: values[field]})
		if err != nil {
			log.Printf("auth: uniqueness check on %s: %v", field, err)
			return fail(CodePersistenceError, "persistence_error", "", msgInternal)
		}
		if taken {
			return fail(CodeDuplicateIdentity, "duplicate_identity", field, field+" is already registered")
		}
	}

	hash, err := s.hasher.Hash([]byte(values[identitydomain.FieldPassword]))
	if err != nil {
		log.Printf("auth: hash password: %v", err)
		return fail(CodeInternal, "hash_error", "", msgInternal)
	}
	rec := &identitydomain.Record{
		Role:         role,
		FirstName:    values[identitydomain.FieldFirstName],
		LastName:     values[identitydomain.FieldLastName],
		Email:        values[identitydomain.FieldEmail],
		CURP:         values[identitydomain.FieldCURP],
		PasswordHash: hash,
		CreatedAt:    s.clock.Now().UTC(),
	}
	id, err := s.credentials.Create(ctx, rec)
	if err != nil {
		if errors.Is(err, identityrepo.ErrConflict) {
			return fail(CodeDuplicateIdentity, "duplicate_identity", "", "identity is already registered")
		}
		log.Printf("auth: create %s record: %v", role, err)
		return fail(CodePersistenceError, "persistence_error", "", msgInternal)
	}

	s.record(ctx, auditdomain.EventRegisterSuccess, id, in.OriginIP, map[string]string{"role": string(role)})
	return success(200, "registration successful", &RegisterData{SubjectID: id, Role: string(role)})
}

// VerifySession refreshes sessionID and checks it carries expectedRole.
// An empty expectedRole accepts any role.
func (s *AuthService) VerifySession(ctx context.Context, sessionID string, expectedRole identitydomain.Role, originIP string) *Result {
	sess, err := s.sessions.Touch(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionExpired) {
			s.record(ctx, auditdomain.EventSessionExpired, "", originIP, nil)
			return failure(CodeSessionExpired, "session expired or not found", nil)
		}
		log.Printf("auth: touch session: %v", err)
		s.record(ctx, auditdomain.EventSessionExpired, "", originIP, map[string]string{"reason": "store_error"})
		return failure(CodeInternal, msgInternal, nil)
	}
	if expectedRole != "" && sess.Role != expectedRole {
		s.record(ctx, auditdomain.EventRoleMismatch, sess.SubjectID, originIP, map[string]string{
			"expected": string(expectedRole),
			"actual":   string(sess.Role),
		})
		return failure(CodeWrongRole, "session role does not permit this action", nil)
	}
	s.record(ctx, auditdomain.EventSessionVerified, sess.SubjectID, originIP, map[string]string{"role": string(sess.Role)})
	return success(200, "session active", viewOf(sess))
}

// CheckCSRF validates token against the live session sessionID without refreshing it.
// It returns nil when the token is valid and records csrf_rejected otherwise.
func (s *AuthService) CheckCSRF(ctx context.Context, sessionID, token, originIP string) *Result {
	if token == "" {
		s.record(ctx, auditdomain.EventCSRFRejected, "", originIP, map[string]string{"reason": "missing"})
		return failure(CodeCSRFMissing, "csrf token is required", nil)
	}
	_, r := s.checkCSRF(ctx, sessionID, token, originIP, "request")
	return r
}

// Logout destroys sessionID. It always succeeds.
func (s *AuthService) Logout(ctx context.Context, sessionID, originIP string) *Result {
	var subjectID string
	meta := map[string]string{}
	if sess, err := s.sessions.Lookup(ctx, sessionID); err == nil {
		subjectID = sess.SubjectID
		meta["role"] = string(sess.Role)
	}
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		log.Printf("auth: destroy session on logout: %v", err)
		meta["reason"] = "destroy_error"
	}
	s.record(ctx, auditdomain.EventLogout, subjectID, originIP, meta)
	return success(200, "logged out", nil)
}

func (s *AuthService) throttle(ctx context.Context, action, originIP string, policy ratelimitdomain.Policy) *Result {
	d := s.limiter.Check(ctx, action, originIP, policy)
	if d.Allowed {
		return nil
	}
	retry := int64((d.RetryAfter + time.Second - 1) / time.Second)
	s.record(ctx, auditdomain.EventRateLimited, "", originIP, map[string]string{
		"action":              action,
		"retry_after_seconds": strconv.FormatInt(retry, 10),
	})
	return failure(CodeRateLimited, "too many attempts, try again later", &RetryData{RetryAfterSeconds: retry})
}

// checkCSRF returns the live session sessionID when token matches it, otherwise a failure result.
func (s *AuthService) checkCSRF(ctx context.Context, sessionID, token, originIP, action string) (*sessiondomain.Session, *Result) {
	var sess *sessiondomain.Session
	if sessionID != "" {
		got, err := s.sessions.Lookup(ctx, sessionID)
		switch {
		case err == nil:
			sess = got
		case !errors.Is(err, session.ErrSessionExpired):
			log.Printf("auth: csrf session lookup: %v", err)
		}
	}
	if s.csrf.Validate(sess, token) {
		return sess, nil
	}
	var subjectID string
	if sess != nil {
		subjectID = sess.SubjectID
	}
	s.record(ctx, auditdomain.EventCSRFRejected, subjectID, originIP, map[string]string{"action": action, "reason": "invalid"})
	return nil, failure(CodeCSRFInvalid, "invalid csrf token", nil)
}

func (s *AuthService) record(ctx context.Context, t auditdomain.EventType, subjectID, originIP string, meta map[string]string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, t, subjectID, originIP, meta)
}

func viewOf(sess *sessiondomain.Session) *SessionView {
	return &SessionView{
		SessionID:          sess.ID,
		SubjectID:          sess.SubjectID,
		Role:               string(sess.Role),
		CSRFToken:          sess.CSRFToken,
		IdleTimeoutSeconds: int64(sess.IdleTimeout / time.Second),
		LastActivityAt:     sess.LastActivityAt.UTC().Format(time.RFC3339),
	}
}

// sessionRef is a non-reversible reference to a session id for audit records.
func sessionRef(id string) string {
	return security.HashToken(id)[:16]
}
