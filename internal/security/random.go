package security

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrTokenSource is returned when the random source cannot produce bytes.
var ErrTokenSource = errors.New("random token source unavailable")

// TokenSource produces cryptographically unpredictable bytes.
type TokenSource interface {
	Generate(byteLength int) ([]byte, error)
}

// CryptoSource is a TokenSource backed by crypto/rand.
type CryptoSource struct{}

// Generate returns byteLength random bytes.
func (CryptoSource) Generate(byteLength int) ([]byte, error) {
	if byteLength <= 0 {
		return nil, fmt.Errorf("%w: invalid length %d", ErrTokenSource, byteLength)
	}
	b := make([]byte, byteLength)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenSource, err)
	}
	return b, nil
}

// NewSessionID returns a URL-safe opaque session identifier built from 32 random bytes.
func NewSessionID(src TokenSource) (string, error) {
	b, err := src.Generate(32)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewHexToken returns a hex-encoded token built from n random bytes.
func NewHexToken(src TokenSource, n int) (string, error) {
	b, err := src.Generate(n)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
