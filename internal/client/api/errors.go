package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable wraps transport failures: the server could not be reached.
	ErrUnavailable = errors.New("server unavailable")

	// ErrClassroomRequired is returned before any request is made when a
	// student signs up without a classroom id.
	ErrClassroomRequired = errors.New("classroomId is required for student signup")
)

// Fallback messages used when a failed response carries no "error" field.
const (
	msgSignupFailed      = "Signup failed"
	msgLoginFailed       = "Login failed"
	msgLogoutFailed      = "Logout failed"
	msgRefreshFailed     = "Session refresh failed"
	msgDashboardFailed   = "Failed to fetch dashboard data"
	msgClassesFailed     = "Failed to fetch classes"
	msgCreateClassFailed = "Failed to create class"
	msgJoinFailed        = "Failed to join class"
	msgStudentsFailed    = "Failed to fetch students"
	msgRemoveFailed      = "Failed to remove student"
	msgRosterFailed      = "Failed to import roster"
	msgGradebookFailed   = "Failed to export gradebook"
	msgAssignmentsFailed = "Failed to fetch assignments"
	msgCreateAsgFailed   = "Failed to create assignment"
	msgSubmitFailed      = "Failed to submit assignment"
	msgSubmissionsFailed = "Failed to fetch submissions"
	msgGradeFailed       = "Failed to grade submission"
	msgResultsFailed     = "Failed to fetch results"
	msgAnalysisFailed    = "Failed to analyze repository"
	msgBatchFailed       = "Failed to analyze repositories"
	msgPingFailed        = "Server is not healthy"
)

// APIError is a non-2xx response. Message is the server's "error" field
// verbatim, or the operation's fallback text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// StatusCode returns the HTTP status of err if it is an *APIError, else 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
