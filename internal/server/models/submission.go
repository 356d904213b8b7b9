package models

import "time"

// Submission states.
const (
	SubmissionSubmitted = "submitted"
	SubmissionReviewed  = "reviewed"
)

type Submission struct {
	ID           int64
	AssignmentID int64
	StudentID    string
	RepoURL      string
	Status       string
	Grade        *string
	Feedback     string
	SubmittedAt  time.Time
	GradedAt     *time.Time

	// Joined for listings.
	AssignmentTitle string
	ClassroomID     int64
	StudentName     string
	StudentEmail    string
}
