package domain

import "time"

// EventType names a security event.
type EventType string

const (
	EventLoginSuccess    EventType = "login_success"
	EventLoginFailed     EventType = "login_failed"
	EventRegisterSuccess EventType = "register_success"
	EventRegisterFailed  EventType = "register_failed"
	EventRateLimited     EventType = "rate_limited"
	EventCSRFRejected    EventType = "csrf_rejected"
	EventSessionExpired  EventType = "session_expired"
	EventSessionVerified EventType = "session_verified"
	EventRoleMismatch    EventType = "role_mismatch"
	EventLogout          EventType = "logout"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventLoginSuccess, EventLoginFailed, EventRegisterSuccess, EventRegisterFailed,
		EventRateLimited, EventCSRFRejected, EventSessionExpired, EventSessionVerified,
		EventRoleMismatch, EventLogout:
		return true
	}
	return false
}

// SecurityEvent is one append-only audit record.
type SecurityEvent struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	SubjectID string            `json:"subject_id,omitempty"`
	OriginIP  string            `json:"origin_ip"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}
