package server

import (
	"context"

	identitydomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/domain"
)

type contextKey struct{ name string }

var (
	subjectIDKey = contextKey{"subject_id"}
	roleKey      = contextKey{"role"}
	sessionIDKey = contextKey{"session_id"}
)

// WithIdentity returns a context carrying the verified subject, role, and session.
// Handlers behind RequireSession read these via GetSubjectID, GetRole, GetSessionID.
func WithIdentity(ctx context.Context, subjectID string, role identitydomain.Role, sessionID string) context.Context {
	ctx = context.WithValue(ctx, subjectIDKey, subjectID)
	ctx = context.WithValue(ctx, roleKey, role)
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	return ctx
}

// GetSubjectID returns the subject_id from context and true if set; otherwise "", false.
func GetSubjectID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(subjectIDKey).(string)
	return v, ok
}

// GetRole returns the role from context and true if set; otherwise "", false.
func GetRole(ctx context.Context) (identitydomain.Role, bool) {
	v, ok := ctx.Value(roleKey).(identitydomain.Role)
	return v, ok
}

// GetSessionID returns the session_id from context and true if set; otherwise "", false.
func GetSessionID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionIDKey).(string)
	return v, ok
}
