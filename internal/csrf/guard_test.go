package csrf

import (
	"testing"
	"time"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/platform/clock"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/security"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/session/domain"
)

type brokenSource struct{}

func (brokenSource) Generate(int) ([]byte, error) { return nil, security.ErrTokenSource }

func newSession(now time.Time) *domain.Session {
	return &domain.Session{ID: "s1", LastActivityAt: now, IdleTimeout: time.Hour}
}

func TestGuard_IssueBindsToken(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	g := NewGuard(security.CryptoSource{}, clk)
	s := newSession(clk.Now())

	tok, err := g.Issue(s)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if tok == "" || s.CSRFToken != tok {
		t.Fatalf("token not bound: tok=%q bound=%q", tok, s.CSRFToken)
	}
	if len(tok) != 64 {
		t.Errorf("token length = %d, want 64", len(tok))
	}
	second, _ := g.Issue(s)
	if second == tok {
		t.Error("reissue must produce a new token")
	}
	if g.Validate(s, tok) {
		t.Error("replaced token must no longer validate")
	}
}

func TestGuard_Validate(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	g := NewGuard(security.CryptoSource{}, clk)
	s := newSession(clk.Now())
	tok, _ := g.Issue(s)
	other := newSession(clk.Now())
	otherTok, _ := g.Issue(other)

	testCases := []struct {
		name     string
		session  *domain.Session
		supplied string
		want     bool
	}{
		{"match", s, tok, true},
		{"mismatch", s, tok[:63] + "x", false},
		{"missing", s, "", false},
		{"nil session", nil, tok, false},
		{"token of another session", s, otherTok, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := g.Validate(tc.session, tc.supplied); got != tc.want {
				t.Errorf("Validate = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGuard_ValidateExpiredSession(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	g := NewGuard(security.CryptoSource{}, clk)
	s := newSession(clk.Now())
	tok, _ := g.Issue(s)

	clk.Advance(time.Hour + time.Second)
	if g.Validate(s, tok) {
		t.Error("token of an idle-expired session must not validate")
	}
}

func TestGuard_IssueFailure(t *testing.T) {
	g := NewGuard(brokenSource{}, clock.Real{})
	s := newSession(time.Now())
	if _, err := g.Issue(s); err == nil {
		t.Fatal("Issue should surface token source failure")
	}
	if s.CSRFToken != "" {
		t.Error("failed Issue must not bind a token")
	}
}
