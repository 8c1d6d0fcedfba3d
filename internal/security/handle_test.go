package security

import (
	"errors"
	"testing"
	"time"
)

func newTestSigner(t *testing.T) *HandleSigner {
	t.Helper()
	s, err := NewHandleSigner("test-secret-0123456789", "condominio-auth", "condominio-web", time.Hour)
	if err != nil {
		t.Fatalf("NewHandleSigner: %v", err)
	}
	return s
}

func TestHandleSigner_IssueAndParse(t *testing.T) {
	s := newTestSigner(t)
	tok, err := s.Issue("sess-1", "subj-1", "admin", time.Now())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	sid, err := s.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sid != "sess-1" {
		t.Errorf("session id = %q, want %q", sid, "sess-1")
	}
}

func TestHandleSigner_ParseRejects(t *testing.T) {
	s := newTestSigner(t)
	other, err := NewHandleSigner("another-secret", "condominio-auth", "condominio-web", time.Hour)
	if err != nil {
		t.Fatalf("NewHandleSigner: %v", err)
	}
	foreign, _ := other.Issue("sess-1", "subj-1", "admin", time.Now())
	expired, _ := s.Issue("sess-1", "subj-1", "admin", time.Now().Add(-2*time.Hour))
	wrongAud, _ := func() (string, error) {
		w, _ := NewHandleSigner("test-secret-0123456789", "condominio-auth", "other-aud", time.Hour)
		return w.Issue("sess-1", "subj-1", "admin", time.Now())
	}()

	testCases := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"other secret", foreign},
		{"expired", expired},
		{"wrong audience", wrongAud},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Parse(tc.token); !errors.Is(err, ErrInvalidHandle) {
				t.Errorf("Parse err = %v, want ErrInvalidHandle", err)
			}
		})
	}
}

func TestNewHandleSigner_EmptySecret(t *testing.T) {
	if _, err := NewHandleSigner("", "i", "a", time.Hour); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("err = %v, want ErrMissingSecret", err)
	}
}
