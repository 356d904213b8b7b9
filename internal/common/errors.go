package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Auth errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrInvalidCredentials  = errors.New("invalid email or password")

	// Role errors.
	ErrInvalidRole = errors.New("Invalid role")

	// Classroom workflow errors.
	ErrInvalidJoinCode = errors.New("Invalid class code")
	ErrAlreadyJoined   = errors.New("Already joined")
	ErrNotEnrolled     = errors.New("not enrolled in this class")

	// ErrAnalysisFailed is reported by the analyzer for a repository it
	// could not analyse.
	ErrAnalysisFailed = errors.New("Repository analysis failed")
)

// ValidationError is returned for user input that fails a domain rule.
// Its message is safe to show to the user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
