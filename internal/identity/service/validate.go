package service

import (
	"errors"
	"regexp"
	"unicode"

	identitydomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/domain"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
	curpLength        = 18
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if !emailPattern.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	if len(password) > maxPasswordLength {
		return errors.New("password must be at most 72 bytes")
	}
	var hasUpper, hasLower, hasNumber bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		}
	}
	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return errors.New("password must contain at least one number")
	}
	return nil
}

// validateCURP expects an already normalized value.
func validateCURP(curp string) error {
	if len(curp) != curpLength {
		return errors.New("curp must be exactly 18 characters")
	}
	for _, r := range curp {
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			return errors.New("curp must contain only letters and digits")
		}
	}
	return nil
}

// ValidateField checks the format of one normalized registration field. Fields without a format rule pass.
func ValidateField(field, value string) error {
	switch field {
	case identitydomain.FieldEmail:
		return validateEmail(value)
	case identitydomain.FieldPassword:
		return validatePassword(value)
	case identitydomain.FieldCURP:
		return validateCURP(value)
	}
	return nil
}
