package domain

import (
	"time"

	identitydomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/domain"
)

// Session binds one authenticated subject and role to an opaque id for a bounded idle period.
type Session struct {
	ID             string
	SubjectID      string
	Role           identitydomain.Role
	CreatedAt      time.Time
	LastActivityAt time.Time
	OriginIP       string
	CSRFToken      string
	// IdleTimeout is copied from the role descriptor when the session is created.
	IdleTimeout time.Duration
}

// IdleExpired reports whether more than IdleTimeout has passed since the last activity.
// A session exactly IdleTimeout old is still live.
func (s *Session) IdleExpired(now time.Time) bool {
	return now.Sub(s.LastActivityAt) > s.IdleTimeout
}

// Touched returns a copy with LastActivityAt advanced to now. Activity time never moves backwards.
func (s *Session) Touched(now time.Time) *Session {
	c := *s
	if now.After(c.LastActivityAt) {
		c.LastActivityAt = now
	}
	return &c
}
