// Package apperror defines the single error type service failures travel in.
// Handlers serialize it as {"message": ...} with the carried status code.
package apperror

import (
	"errors"
	"net/http"
)

type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

var (
	ErrUnauthenticated     = New(http.StatusUnauthorized, "Authorization required")
	ErrInvalidToken        = New(http.StatusUnauthorized, "Invalid or expired token")
	ErrInvalidCredentials  = New(http.StatusUnauthorized, "Invalid credentials")
	ErrIncorrectPassword   = New(http.StatusUnauthorized, "Incorrect password")
	ErrPasswordReused      = New(http.StatusUnauthorized, "You can not set the old password")
	ErrEmailAlreadyInUse   = New(http.StatusConflict, "Email is already in use")
	ErrAccountRestorable   = New(http.StatusConflict, "Account already exists and can be restored")
	ErrAlreadyVerified     = New(http.StatusConflict, "Email is already verified")
	ErrInvalidEmail        = New(http.StatusNotFound, "Invalid email")
	ErrUserNotFound        = New(http.StatusNotFound, "User not found")
	ErrPostNotFound        = New(http.StatusNotFound, "Post not found")
	ErrForbiddenPostAccess = New(http.StatusForbidden, "You do not have access to this post")
	ErrNotVerified         = New(http.StatusForbidden, "Email verification required")
	ErrEmailDelivery       = New(http.StatusInternalServerError, "Can't send email")
)

// Status maps any error to an HTTP status code. Non-apperror failures are
// treated as internal.
func Status(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing message for err. Internal failures get a
// generic message so their cause stays server-side.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}
