package security

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndCompare(t *testing.T) {
	h := NewHasher(4)
	password := []byte("Secreto123")
	hash, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" {
		t.Fatal("Hash returned empty")
	}
	if err := h.Compare(hash, password); err != nil {
		t.Fatalf("Compare: %v", err)
	}
}

func TestHasher_CompareWrongPassword(t *testing.T) {
	h := NewHasher(4)
	hash, _ := h.Hash([]byte("Secreto123"))
	if err := h.Compare(hash, []byte("wrong")); err == nil {
		t.Fatal("Compare with wrong password should fail")
	}
}

func TestHasher_Cost(t *testing.T) {
	h := NewHasher(12)
	if h.Cost != 12 {
		t.Errorf("Cost want 12, got %d", h.Cost)
	}
	h0 := NewHasher(0)
	if h0.Cost != bcrypt.DefaultCost {
		t.Errorf("zero cost should select DefaultCost, got %d", h0.Cost)
	}
	hMax := NewHasher(99)
	if hMax.Cost != bcrypt.MaxCost {
		t.Errorf("cost above max should clamp to MaxCost, got %d", hMax.Cost)
	}
}

func TestHasher_CompareMissing(t *testing.T) {
	h := NewHasher(4)
	for i := 0; i < 2; i++ {
		err := h.CompareMissing([]byte("anything"))
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			t.Fatalf("CompareMissing = %v, want ErrMismatchedHashAndPassword", err)
		}
	}
}
