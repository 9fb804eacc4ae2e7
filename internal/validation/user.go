// Package validation checks request fields before they reach the services.
// Failures are apperror values with status 400 so handlers can pass them
// straight through.
package validation

import (
	"net/http"
	"net/mail"
	"strings"
	"unicode"

	"github.com/postlane/postlane/internal/apperror"
)

func invalid(message string) error {
	return apperror.New(http.StatusBadRequest, message)
}

// ValidateEmail checks format with Go's RFC 5322 parser and the RFC 5321
// length cap.
func ValidateEmail(email string) error {
	if email == "" {
		return invalid("Email is required")
	}
	if len(email) > 254 {
		return invalid("Email is too long (max 254 characters)")
	}
	_, err := mail.ParseAddress(email)
	if err != nil {
		return invalid("Invalid email format")
	}
	return nil
}

// ValidatePassword enforces the password policy: at least 8 characters with a
// letter, a digit and a special character. The upper bound is the 72-byte
// bcrypt input limit; longer passwords would be silently truncated.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return invalid("Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return invalid("Password must not exceed 72 characters")
	}

	var hasLetter, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	if !hasLetter || !hasDigit || !hasSpecial {
		return invalid("Password must contain a letter, a digit and a special character")
	}
	return nil
}

// ValidateName checks the display name bounds. Required reports a missing
// name; optional updates pass required=false and skip the empty check.
func ValidateName(name string, required bool) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		if required {
			return invalid("Name is required")
		}
		return nil
	}
	if len(trimmed) < 3 {
		return invalid("Name must be at least 3 characters")
	}
	if len(trimmed) > 50 {
		return invalid("Name is too long (max 50 characters)")
	}
	return nil
}

// ValidateAge checks the age bounds. Zero means "not provided" on optional
// updates.
func ValidateAge(age int, required bool) error {
	if age == 0 && !required {
		return nil
	}
	if age < 18 {
		return invalid("Age must be at least 18")
	}
	if age > 200 {
		return invalid("Age must be at most 200")
	}
	return nil
}
