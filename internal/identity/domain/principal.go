package domain

import (
	"strings"
	"time"
)

// Principal is the verified identity returned by credential verification.
type Principal struct {
	SubjectID string
	Role      Role
	Email     string
}

// Record is a new subject submitted for registration.
type Record struct {
	ID           string
	Role         Role
	FirstName    string
	LastName     string
	Email        string
	CURP         string // residents only
	PasswordHash string
	CreatedAt    time.Time
}

// UniqueKey names one uniqueness constraint and the normalized value to check.
type UniqueKey struct {
	Field string
	Value string
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeCURP trims, removes inner spaces and upper-cases a CURP.
func NormalizeCURP(curp string) string {
	return strings.ToUpper(strings.Join(strings.Fields(curp), ""))
}

// NormalizeField applies the normalization used for uniqueness checks on field.
func NormalizeField(field, value string) string {
	switch field {
	case FieldEmail:
		return NormalizeEmail(value)
	case FieldCURP:
		return NormalizeCURP(value)
	default:
		return strings.TrimSpace(value)
	}
}
