// Package assignments stores classroom assignments.
package assignments

import (
	"context"

	"github.com/dmitrijs2005/classroom/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.Assignment) (*models.Assignment, error)
	GetByID(ctx context.Context, id int64) (*models.Assignment, error)
	// ListByTeacher lists assignments of all classes owned by teacherID,
	// newest deadline first, with submission counts.
	ListByTeacher(ctx context.Context, teacherID string) ([]*models.Assignment, error)
	// ListByStudent lists assignments of the student's classes ordered by
	// deadline, with Submitted set for those the student has answered.
	ListByStudent(ctx context.Context, studentID string) ([]*models.Assignment, error)
	CountByTeacher(ctx context.Context, teacherID string) (int, error)
	// Recent returns the teacher's latest created assignments.
	Recent(ctx context.Context, teacherID string, limit int) ([]*models.Assignment, error)
}
