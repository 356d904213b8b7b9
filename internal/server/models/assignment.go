package models

import "time"

type Assignment struct {
	ID          int64
	ClassroomID int64
	ClassName   string
	Title       string
	Description string
	Deadline    time.Time
	CreatedAt   time.Time

	// Filled by listing queries only.
	SubmissionCount int
	// Submitted is set for student listings.
	Submitted bool
}
