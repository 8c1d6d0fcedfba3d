package security

import (
	"errors"
	"testing"
)

type failingSource struct{}

func (failingSource) Generate(int) ([]byte, error) { return nil, ErrTokenSource }

func TestCryptoSource_Generate(t *testing.T) {
	b, err := CryptoSource{}.Generate(32)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(b) != 32 {
		t.Errorf("len = %d, want 32", len(b))
	}
	if _, err := (CryptoSource{}).Generate(0); !errors.Is(err, ErrTokenSource) {
		t.Errorf("Generate(0) err = %v, want ErrTokenSource", err)
	}
}

func TestNewSessionID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewSessionID(CryptoSource{})
		if err != nil {
			t.Fatalf("NewSessionID: %v", err)
		}
		if len(id) != 43 {
			t.Fatalf("id length = %d, want 43", len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate session id %q", id)
		}
		seen[id] = true
	}
}

func TestNewHexToken(t *testing.T) {
	tok, err := NewHexToken(CryptoSource{}, 32)
	if err != nil {
		t.Fatalf("NewHexToken: %v", err)
	}
	if len(tok) != 64 {
		t.Errorf("len = %d, want 64", len(tok))
	}
	if _, err := NewHexToken(failingSource{}, 32); !errors.Is(err, ErrTokenSource) {
		t.Errorf("err = %v, want ErrTokenSource", err)
	}
}
