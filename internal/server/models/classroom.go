package models

import "time"

// Classroom is owned by one teacher; students join it with Code.
type Classroom struct {
	ID          int64
	TeacherID   string
	TeacherName string
	Name        string
	Description string
	Code        string
	// StudentCount is filled by listing queries only.
	StudentCount int
	CreatedAt    time.Time
}

// Enrollment links a student to a classroom.
type Enrollment struct {
	ClassroomID  int64
	StudentID    string
	StudentName  string
	StudentEmail string
	JoinedAt     time.Time
}
