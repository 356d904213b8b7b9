package httpapi

import (
	"context"
	"io"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/server/models"
	"github.com/dmitrijs2005/classroom/internal/server/services"
)

// The handlers depend on these narrow views of the services package so that
// tests can stand in for them.

type UserService interface {
	SignupTeacher(ctx context.Context, in services.SignupInput) (*services.AuthResult, error)
	SignupStudent(ctx context.Context, classroomID int64, in services.SignupInput) (*services.AuthResult, error)
	Login(ctx context.Context, role common.Role, email, password string) (*services.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
}

type ClassroomService interface {
	Create(ctx context.Context, teacherID, name, description string) (*models.Classroom, error)
	ListForTeacher(ctx context.Context, teacherID string) ([]*models.Classroom, error)
	ListForStudent(ctx context.Context, studentID string) ([]*models.Classroom, error)
	Join(ctx context.Context, studentID, code string) (*models.Classroom, error)
	Students(ctx context.Context, teacherID string, classID int64) ([]*models.Enrollment, error)
	RemoveStudent(ctx context.Context, teacherID string, classID int64, studentID string) error
	ImportRoster(ctx context.Context, teacherID string, classID int64, r io.Reader) (*services.RosterImport, error)
	Gradebook(ctx context.Context, teacherID string, classID int64) ([]byte, *models.Classroom, error)
}

type AssignmentService interface {
	Create(ctx context.Context, teacherID string, in services.AssignmentInput) (*models.Assignment, error)
	ListForTeacher(ctx context.Context, teacherID string) ([]*models.Assignment, error)
	ListForStudent(ctx context.Context, studentID string) ([]*models.Assignment, error)
}

type SubmissionService interface {
	Submit(ctx context.Context, studentID string, assignmentID int64, repoURL string) (*models.Submission, error)
	ListForTeacher(ctx context.Context, teacherID string, assignmentID int64) ([]*models.Submission, error)
	ListForStudent(ctx context.Context, studentID string) ([]*models.Submission, error)
	Grade(ctx context.Context, teacherID string, submissionID int64, grade, feedback string) (*models.Submission, error)
	Results(ctx context.Context, studentID string) ([]services.Result, error)
}

type DashboardService interface {
	Teacher(ctx context.Context, teacherID string) (*services.TeacherDashboard, error)
	Student(ctx context.Context, studentID string) (*services.StudentDashboard, error)
}

type AnalysisService interface {
	Analyze(ctx context.Context, userID, repoURL string) (*models.Analysis, error)
	AnalyzeBatch(ctx context.Context, userID string, repoURLs []string) (*services.BatchResult, error)
	Get(ctx context.Context, userID string, id int64) (*models.Analysis, error)
}

var (
	_ UserService       = (*services.UserService)(nil)
	_ ClassroomService  = (*services.ClassroomService)(nil)
	_ AssignmentService = (*services.AssignmentService)(nil)
	_ SubmissionService = (*services.SubmissionService)(nil)
	_ DashboardService  = (*services.DashboardService)(nil)
	_ AnalysisService   = (*services.AnalysisService)(nil)
)
