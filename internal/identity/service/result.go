package service

import "net/http"

// ErrorCode is the closed set of failure kinds surfaced to callers.
type ErrorCode string

const (
	CodeInvalidInput       ErrorCode = "INVALID_INPUT"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeRateLimited        ErrorCode = "RATE_LIMITED"
	CodeCSRFInvalid        ErrorCode = "CSRF_INVALID"
	CodeCSRFMissing        ErrorCode = "CSRF_MISSING"
	CodeSessionExpired     ErrorCode = "SESSION_EXPIRED"
	CodeWrongRole          ErrorCode = "WRONG_ROLE"
	CodeDuplicateIdentity  ErrorCode = "DUPLICATE_IDENTITY"
	CodePersistenceError   ErrorCode = "PERSISTENCE_ERROR"
	CodeMissingField       ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat      ErrorCode = "INVALID_FORMAT"
	CodeInternal           ErrorCode = "INTERNAL"
)

var codeStatus = map[ErrorCode]int{
	CodeInvalidInput:       http.StatusBadRequest,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeRateLimited:        http.StatusTooManyRequests,
	CodeCSRFInvalid:        http.StatusForbidden,
	CodeCSRFMissing:        http.StatusForbidden,
	CodeSessionExpired:     http.StatusUnauthorized,
	CodeWrongRole:          http.StatusForbidden,
	CodeDuplicateIdentity:  http.StatusConflict,
	CodePersistenceError:   http.StatusInternalServerError,
	CodeMissingField:       http.StatusBadRequest,
	CodeInvalidFormat:      http.StatusBadRequest,
	CodeInternal:           http.StatusInternalServerError,
}

// Status returns the HTTP status for c.
func (c ErrorCode) Status() int {
	if s, ok := codeStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Result is the uniform outcome of every AuthService operation.
type Result struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	ErrorCode ErrorCode `json:"error_code,omitempty"`
	// Status is the HTTP status the transport should surface.
	Status int `json:"-"`
}

// LoginData is returned by a successful Login.
type LoginData struct {
	// SessionID travels in the cookie and the signed handle, not the body.
	SessionID          string `json:"-"`
	SubjectID          string `json:"subject_id"`
	Role               string `json:"role"`
	CSRFToken          string `json:"csrf_token"`
	Handle             string `json:"handle,omitempty"`
	IdleTimeoutSeconds int64  `json:"idle_timeout_seconds"`
}

// RegisterData is returned by a successful Register.
type RegisterData struct {
	SubjectID string `json:"subject_id"`
	Role      string `json:"role"`
}

// SessionView is returned by a successful VerifySession.
type SessionView struct {
	SessionID          string `json:"-"`
	SubjectID          string `json:"subject_id"`
	Role               string `json:"role"`
	CSRFToken          string `json:"csrf_token"`
	IdleTimeoutSeconds int64  `json:"idle_timeout_seconds"`
	LastActivityAt     string `json:"last_activity_at"`
}

// FieldError names the offending field of a registration failure.
type FieldError struct {
	Field string `json:"field"`
}

// RetryData tells a rate-limited caller when to retry.
type RetryData struct {
	RetryAfterSeconds int64 `json:"retry_after_seconds"`
}

func success(status int, message string, data any) *Result {
	return &Result{Success: true, Message: message, Data: data, Status: status}
}

func failure(code ErrorCode, message string, data any) *Result {
	return &Result{Success: false, Message: message, Data: data, ErrorCode: code, Status: code.Status()}
}
