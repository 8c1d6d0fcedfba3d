package domain

import (
	"strings"
	"time"
)

// Role is the single role carried by a session.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleResident Role = "resident"
)

// Registration field names.
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldCURP      = "curp"
)

// Descriptor parameterizes the shared login/registration pipeline for a role.
type Descriptor struct {
	Role Role
	// IdleTimeout is how long a session may go untouched before it expires.
	IdleTimeout time.Duration
	// RequiredFields are checked in order; the first missing one is reported.
	RequiredFields []string
	// UniqueFields must not collide with an existing record after normalization.
	UniqueFields []string
	// RegisteredBy lists the session roles allowed to register this role.
	RegisteredBy []Role
}

var descriptors = map[Role]Descriptor{
	RoleAdmin: {
		Role:           RoleAdmin,
		IdleTimeout:    4 * time.Hour,
		RequiredFields: []string{FieldFirstName, FieldLastName, FieldEmail, FieldPassword},
		UniqueFields:   []string{FieldEmail},
		RegisteredBy:   []Role{RoleAdmin},
	},
	RoleResident: {
		Role:           RoleResident,
		IdleTimeout:    2 * time.Hour,
		RequiredFields: []string{FieldFirstName, FieldLastName, FieldEmail, FieldPassword, FieldCURP},
		UniqueFields:   []string{FieldEmail, FieldCURP},
		RegisteredBy:   []Role{RoleAdmin},
	},
}

// ParseRole returns the role named s (case-insensitive) and whether it is known.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := descriptors[r]
	return r, ok
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := descriptors[r]
	return ok
}

// CanRegister reports whether a session holding registrar may register d.Role.
func (d Descriptor) CanRegister(registrar Role) bool {
	for _, r := range d.RegisteredBy {
		if r == registrar {
			return true
		}
	}
	return false
}

// DescriptorFor returns the descriptor for r and whether r is known.
func DescriptorFor(r Role) (Descriptor, bool) {
	d, ok := descriptors[r]
	return d, ok
}

// Descriptors returns a copy of the descriptor table with idle timeouts
// overridden by timeouts where a positive value is given.
func Descriptors(timeouts map[Role]time.Duration) map[Role]Descriptor {
	out := make(map[Role]Descriptor, len(descriptors))
	for r, d := range descriptors {
		if t, ok := timeouts[r]; ok && t > 0 {
			d.IdleTimeout = t
		}
		out[r] = d
	}
	return out
}
