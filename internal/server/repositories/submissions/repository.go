// Package submissions stores students' repository submissions and their
// grading.
package submissions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/classroom/internal/server/models"
)

type Repository interface {
	// Upsert stores the student's answer to an assignment. A repeated
	// submission replaces the URL and clears any grading.
	Upsert(ctx context.Context, s *models.Submission) (*models.Submission, error)
	GetByID(ctx context.Context, id int64) (*models.Submission, error)
	// ListByTeacher lists submissions to the teacher's assignments, newest
	// first. A zero assignmentID lists all of them.
	ListByTeacher(ctx context.Context, teacherID string, assignmentID int64) ([]*models.Submission, error)
	ListByStudent(ctx context.Context, studentID string) ([]*models.Submission, error)
	// Grade marks the submission reviewed and returns the grading time.
	Grade(ctx context.Context, id int64, grade, feedback string) (time.Time, error)
	CountByTeacher(ctx context.Context, teacherID string) (int, error)
	Recent(ctx context.Context, teacherID string, limit int) ([]*models.Submission, error)
}
