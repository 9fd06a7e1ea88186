package utils

import (
	"errors"
	"fmt"
	"unicode"
)

// PasswordPolicy describes the composition rules a new password must satisfy.
type PasswordPolicy struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireDigit   bool
	RequireSpecial bool
}

var (
	// ResetPasswordPolicy applies to passwords chosen through a reset link.
	ResetPasswordPolicy = PasswordPolicy{MinLength: 8}

	// ManagedPasswordPolicy applies to passwords set by an authenticated user or an admin.
	ManagedPasswordPolicy = PasswordPolicy{
		MinLength:    8,
		RequireUpper: true,
		RequireLower: true,
		RequireDigit: true,
	}
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// ErrPasswordTooShort matches, via errors.Is, the error returned for a password below the policy minimum.
var ErrPasswordTooShort = errors.New("password too short")

type shortPasswordError struct {
	min int
}

func (e shortPasswordError) Error() string {
	return fmt.Sprintf("Password must be at least %d characters long", e.min)
}

func (e shortPasswordError) Is(target error) bool {
	return target == ErrPasswordTooShort
}

func ValidatePassword(password string, policy PasswordPolicy) error {
	if len(password) < policy.MinLength {
		return shortPasswordError{min: policy.MinLength}
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes long", MaxPasswordBytes)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	if (policy.RequireUpper && !hasUpper) ||
		(policy.RequireLower && !hasLower) ||
		(policy.RequireDigit && !hasNumber) ||
		(policy.RequireSpecial && !hasSpecial) {
		return errors.New(policy.describe())
	}

	return nil
}

func (p PasswordPolicy) describe() string {
	var parts []string
	if p.RequireUpper {
		parts = append(parts, "uppercase")
	}
	if p.RequireLower {
		parts = append(parts, "lowercase")
	}
	if p.RequireDigit {
		parts = append(parts, "number")
	}
	if p.RequireSpecial {
		parts = append(parts, "special symbol")
	}

	msg := fmt.Sprintf("password must be at least %d characters", p.MinLength)
	for i, part := range parts {
		switch {
		case i == 0:
			msg += " and contain " + part
		case i == len(parts)-1:
			msg += " and " + part
		default:
			msg += ", " + part
		}
	}
	return msg
}
