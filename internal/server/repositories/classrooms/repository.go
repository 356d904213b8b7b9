// Package classrooms stores classrooms and their enrollments.
package classrooms

import (
	"context"

	"github.com/dmitrijs2005/classroom/internal/server/models"
)

type Repository interface {
	// Create inserts c and fills ID and CreatedAt. A taken join code yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, c *models.Classroom) (*models.Classroom, error)
	GetByID(ctx context.Context, id int64) (*models.Classroom, error)
	GetByCode(ctx context.Context, code string) (*models.Classroom, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]*models.Classroom, error)
	ListByStudent(ctx context.Context, studentID string) ([]*models.Classroom, error)

	// Enroll adds the student; an existing enrollment yields
	// common.ErrorAlreadyExists.
	Enroll(ctx context.Context, classroomID int64, studentID string) error
	// Unenroll returns common.ErrorNotFound when nothing was removed.
	Unenroll(ctx context.Context, classroomID int64, studentID string) error
	IsEnrolled(ctx context.Context, classroomID int64, studentID string) (bool, error)
	Students(ctx context.Context, classroomID int64) ([]*models.Enrollment, error)

	// CountByTeacher returns the teacher's classes and distinct students.
	CountByTeacher(ctx context.Context, teacherID string) (classes int, students int, err error)
}
