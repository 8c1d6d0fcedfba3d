// Package csrf issues and validates anti-forgery tokens. A token is stored
// only inside the session it was issued for, so a valid token also proves
// which session the request belongs to.
package csrf

import (
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/platform/clock"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/security"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/session/domain"
)

// HeaderName is the request header carrying the token on state-changing requests.
const HeaderName = "X-CSRF-Token"

const tokenBytes = 32

// Guard issues and validates CSRF tokens bound to sessions.
type Guard struct {
	src   security.TokenSource
	clock clock.Clock
}

// NewGuard returns a Guard drawing tokens from src.
func NewGuard(src security.TokenSource, clk clock.Clock) *Guard {
	return &Guard{src: src, clock: clk}
}

// Issue generates a fresh token and binds it to s, replacing any previous token.
func (g *Guard) Issue(s *domain.Session) (string, error) {
	tok, err := security.NewHexToken(g.src, tokenBytes)
	if err != nil {
		return "", err
	}
	s.CSRFToken = tok
	return tok, nil
}

// Validate reports whether supplied matches the token bound to s. A nil or
// idle-expired session, or an empty token on either side, yields false.
func (g *Guard) Validate(s *domain.Session, supplied string) bool {
	if s == nil {
		return false
	}
	if s.IdleExpired(g.clock.Now()) {
		return false
	}
	return security.TokenEqual(s.CSRFToken, supplied)
}
