package domain

import "fmt"

// ValidationError reports malformed input. Reason is safe to show to clients.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ConflictError reports a uniqueness violation on Field.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// AuthError reports a failed authentication: bad credentials or an unusable token.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return e.Reason
}

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

var (
	ErrUsernameTaken = &ConflictError{Field: "username", Message: "Username already exists"}
	ErrEmailTaken    = &ConflictError{Field: "email", Message: "Email already exists"}

	ErrInvalidCredentials = &AuthError{Reason: "Incorrect username or password"}
	ErrMissingToken       = &AuthError{Reason: "Missing authorization header"}
	ErrTokenExpired       = &AuthError{Reason: "Token has expired"}
	ErrTokenInvalid       = &AuthError{Reason: "Invalid token"}
	ErrUnknownSubject     = &AuthError{Reason: "Could not validate credentials"}

	ErrUserNotFound = &NotFoundError{Resource: "user"}
)
