package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidHandle is returned when a bearer handle is malformed, forged, or for another audience.
	ErrInvalidHandle = errors.New("invalid session handle")
	// ErrMissingSecret is returned by NewHandleSigner when no signing secret is configured.
	ErrMissingSecret = errors.New("session handle secret is empty")
)

// HandleClaims are carried by a bearer session handle. The handle proves the
// session id was minted by this service; whether the session is still live is
// decided by the session store, not by the token.
type HandleClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
}

// HandleSigner issues and parses HS256-signed bearer session handles.
type HandleSigner struct {
	secret   []byte
	issuer   string
	audience string
	maxAge   time.Duration
}

// NewHandleSigner returns a signer keyed by secret. maxAge bounds how long a
// handle is accepted at all; idle expiry is still enforced by the store.
func NewHandleSigner(secret, issuer, audience string, maxAge time.Duration) (*HandleSigner, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &HandleSigner{secret: []byte(secret), issuer: issuer, audience: audience, maxAge: maxAge}, nil
}

// Issue returns a signed handle for sessionID.
func (s *HandleSigner) Issue(sessionID, subjectID, role string, now time.Time) (string, error) {
	claims := HandleClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
		},
		SessionID: sessionID,
		Role:      role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse validates signature, expiry, issuer and audience and returns the session id.
func (s *HandleSigner) Parse(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &HandleClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidHandle
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience), jwt.WithExpirationRequired())
	if err != nil {
		return "", ErrInvalidHandle
	}
	claims, ok := parsed.Claims.(*HandleClaims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return "", ErrInvalidHandle
	}
	return claims.SessionID, nil
}
